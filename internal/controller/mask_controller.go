// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package controller contains the four reconcilers of the vpn-operator
// mesh (§2): MaskCtrl, ConsumerCtrl, ReservationCtrl and ProviderCtrl. Each
// type is wired into exactly one manager process by cmd's subcommand
// dispatcher; nothing in this package imports another reconciler directly,
// they only ever talk through the Kubernetes API.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/clock"
	"github.com/beebs-dev/vpn-operator/internal/metrics"
	"github.com/beebs-dev/vpn-operator/internal/statusutil"
)

// MaskReconciler reconciles a Mask object (§4.2). It is the user-facing
// intake controller: for every Mask it ensures exactly one same-name,
// same-namespace MaskConsumer exists, owned by the Mask, and mirrors the
// MaskConsumer's phase upward.
type MaskReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	// WatchFilterValue is the label value used to filter events prior to reconciliation.
	WatchFilterValue string

	// Recorder is used to record events for the controller.
	Recorder record.EventRecorder

	// Clock supplies "now" for status timestamps.
	Clock clock.Clock

	// Metrics records reconcile/action counters and phase-duration histograms.
	Metrics *metrics.Recorder

	// RequeueInterval is the duration after which the controller should requeue the reconciliation,
	// regardless of changes.
	RequeueInterval time.Duration
}

// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=masks,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=masks/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=masks/finalizers,verbs=update
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskconsumers,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=core,resources=events,verbs=create;patch

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
func (r *MaskReconciler) Reconcile(ctx context.Context, req ctrl.Request) (_ ctrl.Result, reterr error) {
	log := ctrl.LoggerFrom(ctx)
	r.Metrics.ReconcileCounter.Inc()
	readStart := time.Now()

	mask := &vpnv1.Mask{}
	if err := r.Get(ctx, req.NamespacedName, mask); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		log.Error(err, "failed to get Mask")
		return ctrl.Result{}, err
	}

	consumer := &vpnv1.MaskConsumer{}
	consumerErr := r.Get(ctx, req.NamespacedName, consumer)
	if consumerErr != nil && !apierrors.IsNotFound(consumerErr) {
		log.Error(consumerErr, "failed to get MaskConsumer")
		return ctrl.Result{}, consumerErr
	}
	consumerExists := consumerErr == nil
	r.Metrics.ReadDurationSecs.Observe(time.Since(readStart).Seconds())

	if !mask.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(mask, vpnv1.FinalizerName) {
			if consumerExists {
				if consumer.DeletionTimestamp.IsZero() {
					if err := r.Delete(ctx, consumer); err != nil && !apierrors.IsNotFound(err) {
						log.Error(err, "failed to delete MaskConsumer")
						return ctrl.Result{}, err
					}
					r.Metrics.ActionCounter.WithLabelValues("delete_consumer").Inc()
				}
				log.Info("waiting for MaskConsumer to be removed before clearing finalizer")
				return ctrl.Result{}, nil
			}
			controllerutil.RemoveFinalizer(mask, vpnv1.FinalizerName)
			if err := r.Update(ctx, mask); err != nil {
				log.Error(err, "failed to remove finalizer")
				return ctrl.Result{}, err
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(mask, vpnv1.FinalizerName) {
		controllerutil.AddFinalizer(mask, vpnv1.FinalizerName)
		if err := r.Update(ctx, mask); err != nil {
			log.Error(err, "failed to add finalizer")
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	orig := mask.DeepCopy()
	defer func() {
		if !equality.Semantic.DeepEqual(orig.Status, mask.Status) {
			statusutil.Touch(mask, r.Clock)
			if err := statusutil.PatchStatus(ctx, r.Client, orig, mask); err != nil {
				log.Error(err, "failed to patch Mask status")
				reterr = kerrors.NewAggregate([]error{reterr, err})
			}
		}
	}()

	writeStart := time.Now()
	defer func() { r.Metrics.WriteDurationSecs.Observe(time.Since(writeStart).Seconds()) }()

	if !consumerExists {
		desired := &vpnv1.MaskConsumer{
			ObjectMeta: metav1.ObjectMeta{
				Name:      mask.Name,
				Namespace: mask.Namespace,
			},
			Spec: vpnv1.MaskConsumerSpec{Providers: mask.Spec.Providers},
		}
		if err := controllerutil.SetControllerReference(mask, desired, r.Scheme); err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to set owner reference on MaskConsumer: %w", err)
		}
		if err := r.Create(ctx, desired); err != nil && !apierrors.IsAlreadyExists(err) {
			log.Error(err, "failed to create MaskConsumer")
			return ctrl.Result{}, err
		}
		r.Metrics.ActionCounter.WithLabelValues("create_consumer").Inc()
		r.Recorder.Event(mask, "Normal", "ConsumerCreated", "created owned MaskConsumer")
		mask.Status.Phase = vpnv1.MaskPhasePending
		mask.Status.Message = ""
		return ctrl.Result{RequeueAfter: r.RequeueInterval}, nil
	}

	phase, message := mapConsumerPhase(consumer)
	mask.Status.Phase = phase
	mask.Status.Message = message

	return ctrl.Result{}, nil
}

// mapConsumerPhase implements the Consumer.phase -> Mask.phase mapping
// documented in §4.2.
func mapConsumerPhase(consumer *vpnv1.MaskConsumer) (vpnv1.MaskPhase, string) {
	switch consumer.Status.Phase {
	case vpnv1.MaskConsumerPhasePending, vpnv1.MaskConsumerPhaseWaiting:
		return vpnv1.MaskPhaseWaiting, consumer.Status.Message
	case vpnv1.MaskConsumerPhaseErrNoProviders:
		return vpnv1.MaskPhaseErrNoProviders, consumer.Status.Message
	case vpnv1.MaskConsumerPhaseActive:
		return vpnv1.MaskPhaseActive, consumer.Status.Message
	case vpnv1.MaskConsumerPhaseTerminating:
		return vpnv1.MaskPhaseTerminating, consumer.Status.Message
	default:
		return vpnv1.MaskPhasePending, ""
	}
}

// SetupWithManager sets up the controller with the Manager.
func (r *MaskReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if r.RequeueInterval == 0 {
		return errors.New("requeue interval must not be 0")
	}

	labelSelector := metav1.LabelSelector{}
	if r.WatchFilterValue != "" {
		labelSelector.MatchLabels = map[string]string{vpnv1.WatchLabel: r.WatchFilterValue}
	}
	filter, err := predicate.LabelSelectorPredicate(labelSelector)
	if err != nil {
		return fmt.Errorf("failed to create label selector predicate: %w", err)
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&vpnv1.Mask{}, builder.WithPredicates(filter)).
		Named("mask").
		Watches(
			&vpnv1.MaskConsumer{},
			handler.EnqueueRequestsFromMapFunc(r.consumerToMask),
			// unfiltered: MaskConsumer phase changes must always be reflected
			// upward, regardless of the Mask's own watch-filter label.
		).
		Complete(r)
}

// consumerToMask is a [handler.MapFunc] enqueuing the owning Mask whenever
// its MaskConsumer changes.
func (r *MaskReconciler) consumerToMask(ctx context.Context, obj client.Object) []ctrl.Request {
	consumer, ok := obj.(*vpnv1.MaskConsumer)
	if !ok {
		panic(fmt.Sprintf("expected a MaskConsumer but got a %T", obj))
	}

	for _, owner := range consumer.GetOwnerReferences() {
		if owner.Kind == "Mask" && owner.Controller != nil && *owner.Controller {
			return []ctrl.Request{{NamespacedName: client.ObjectKey{
				Namespace: consumer.Namespace,
				Name:      owner.Name,
			}}}
		}
	}

	ctrl.LoggerFrom(ctx).V(1).Info(
		"MaskConsumer has no controlling Mask owner reference, falling back to same name",
		"MaskConsumer", klog.KObj(consumer))
	return []ctrl.Request{{NamespacedName: client.ObjectKeyFromObject(consumer)}}
}
