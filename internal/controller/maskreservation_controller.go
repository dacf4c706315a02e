// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/clock"
	"github.com/beebs-dev/vpn-operator/internal/metrics"
	"github.com/beebs-dev/vpn-operator/internal/statusutil"
)

// MaskReservationReconciler reconciles a MaskReservation object (§4.4). Its
// sole job is garbage-collecting stale claims: a reservation whose
// claiming MaskConsumer has vanished (or whose UID no longer matches) must
// itself be deleted, releasing the slot it claims.
type MaskReservationReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	WatchFilterValue string
	Recorder         record.EventRecorder
	Clock            clock.Clock
	Metrics          *metrics.Recorder
	RequeueInterval  time.Duration
}

// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskreservations,verbs=get;list;watch;update;patch;delete
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskreservations/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskreservations/finalizers,verbs=update
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskconsumers,verbs=get;list;watch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders,verbs=get;list;watch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=core,resources=events,verbs=create;patch

func (r *MaskReservationReconciler) Reconcile(ctx context.Context, req ctrl.Request) (_ ctrl.Result, reterr error) {
	log := ctrl.LoggerFrom(ctx)
	r.Metrics.ReconcileCounter.Inc()
	readStart := time.Now()

	reservation := &vpnv1.MaskReservation{}
	if err := r.Get(ctx, req.NamespacedName, reservation); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		log.Error(err, "failed to get MaskReservation")
		return ctrl.Result{}, err
	}
	r.Metrics.ReadDurationSecs.Observe(time.Since(readStart).Seconds())

	if !reservation.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(reservation, vpnv1.FinalizerName) {
			if err := r.releaseSlot(ctx, reservation); err != nil {
				log.Error(err, "failed to release slot")
				return ctrl.Result{}, err
			}
			controllerutil.RemoveFinalizer(reservation, vpnv1.FinalizerName)
			if err := r.Update(ctx, reservation); err != nil {
				log.Error(err, "failed to remove finalizer")
				return ctrl.Result{}, err
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(reservation, vpnv1.FinalizerName) {
		controllerutil.AddFinalizer(reservation, vpnv1.FinalizerName)
		if err := r.Update(ctx, reservation); err != nil {
			log.Error(err, "failed to add finalizer")
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	orig := reservation.DeepCopy()
	defer func() {
		if !equality.Semantic.DeepEqual(orig.Status, reservation.Status) {
			statusutil.Touch(reservation, r.Clock)
			if err := statusutil.PatchStatus(ctx, r.Client, orig, reservation); err != nil {
				log.Error(err, "failed to patch MaskReservation status")
				reterr = kerrors.NewAggregate([]error{reterr, err})
			}
		}
	}()

	writeStart := time.Now()
	defer func() { r.Metrics.WriteDurationSecs.Observe(time.Since(writeStart).Seconds()) }()

	consumer := &vpnv1.MaskConsumer{}
	err := r.Get(ctx, client.ObjectKey{Namespace: reservation.Spec.Namespace, Name: reservation.Spec.Name}, consumer)
	switch {
	case apierrors.IsNotFound(err):
		log.Info("claiming MaskConsumer no longer exists, releasing slot")
		r.Recorder.Event(reservation, "Normal", "ConsumerGone", "claiming MaskConsumer no longer exists")
		return ctrl.Result{}, r.Delete(ctx, reservation)
	case err != nil:
		return ctrl.Result{}, fmt.Errorf("failed to get claiming consumer: %w", err)
	}

	if !reservation.MatchesConsumer(string(consumer.UID)) {
		log.Info("claiming MaskConsumer UID no longer matches, releasing slot")
		r.Recorder.Event(reservation, "Normal", "ConsumerUIDChanged", "claiming MaskConsumer UID no longer matches")
		return ctrl.Result{}, r.Delete(ctx, reservation)
	}

	reservation.Status.Phase = vpnv1.MaskReservationPhaseActive
	reservation.Status.Message = ""
	return ctrl.Result{RequeueAfter: r.RequeueInterval}, nil
}

// releaseSlot decrements the owning provider's advisory activeSlots
// counter (§4.5 Open Question iii: reservations are authoritative,
// activeSlots is advisory). It identifies the provider by namespace, since
// a MaskReservation's name carries only the slot index; a reservation's
// namespace is understood to belong to exactly one MaskProvider.
func (r *MaskReservationReconciler) releaseSlot(ctx context.Context, reservation *vpnv1.MaskReservation) error {
	log := ctrl.LoggerFrom(ctx)

	var providers vpnv1.MaskProviderList
	if err := r.List(ctx, &providers, client.InNamespace(reservation.Namespace)); err != nil {
		return fmt.Errorf("failed to list providers in %q: %w", reservation.Namespace, err)
	}
	if len(providers.Items) != 1 {
		log.Info("cannot uniquely identify owning provider for activeSlots decrement, deferring to periodic recount",
			"namespace", reservation.Namespace, "candidates", len(providers.Items))
		return nil
	}

	provider := &providers.Items[0]
	orig := provider.DeepCopy()
	if provider.Status.ActiveSlots > 0 {
		provider.Status.ActiveSlots--
	}
	if equality.Semantic.DeepEqual(orig.Status, provider.Status) {
		return nil
	}
	statusutil.Touch(provider, r.Clock)
	return statusutil.PatchStatus(ctx, r.Client, orig, provider)
}

// SetupWithManager sets up the controller with the Manager.
func (r *MaskReservationReconciler) SetupWithManager(mgr ctrl.Manager) error {
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
		For(&vpnv1.MaskReservation{}).
		Named("maskreservation").
		WithEventFilter(filter).
		Complete(r)
}
