// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/clientutil"
	"github.com/beebs-dev/vpn-operator/internal/clock"
	"github.com/beebs-dev/vpn-operator/internal/metrics"
	"github.com/beebs-dev/vpn-operator/internal/statusutil"
)

// backoffRequeue is how soon a Waiting MaskConsumer is retried when no
// slot was available on this pass, distinct from RequeueInterval's
// steady-state resync.
const backoffRequeue = 10 * time.Second

// MaskConsumerReconciler reconciles a MaskConsumer object (§4.3). It is the
// scheduler: provider election, atomic slot allocation, credential
// mirroring and teardown coordination all live here.
type MaskConsumerReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	WatchFilterValue string
	Recorder         record.EventRecorder
	Clock            clock.Clock
	Metrics          *metrics.Recorder
	RequeueInterval  time.Duration
}

// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskconsumers,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskconsumers/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskconsumers/finalizers,verbs=update
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders,verbs=get;list;watch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskreservations,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups=core,resources=secrets,verbs=get;list;create;update;patch;delete
// +kubebuilder:rbac:groups=core,resources=events,verbs=create;patch

func (r *MaskConsumerReconciler) Reconcile(ctx context.Context, req ctrl.Request) (_ ctrl.Result, reterr error) {
	log := ctrl.LoggerFrom(ctx)
	r.Metrics.ReconcileCounter.Inc()
	readStart := time.Now()

	consumer := &vpnv1.MaskConsumer{}
	if err := r.Get(ctx, req.NamespacedName, consumer); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		log.Error(err, "failed to get MaskConsumer")
		return ctrl.Result{}, err
	}
	r.Metrics.ReadDurationSecs.Observe(time.Since(readStart).Seconds())

	if !consumer.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(consumer, vpnv1.FinalizerName) {
			if err := r.teardown(ctx, consumer); err != nil {
				log.Error(err, "failed to tear down MaskConsumer")
				return ctrl.Result{}, err
			}
			controllerutil.RemoveFinalizer(consumer, vpnv1.FinalizerName)
			if err := r.Update(ctx, consumer); err != nil {
				log.Error(err, "failed to remove finalizer")
				return ctrl.Result{}, err
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(consumer, vpnv1.FinalizerName) {
		controllerutil.AddFinalizer(consumer, vpnv1.FinalizerName)
		if err := r.Update(ctx, consumer); err != nil {
			log.Error(err, "failed to add finalizer")
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	orig := consumer.DeepCopy()
	defer func() {
		if !equality.Semantic.DeepEqual(orig.Status, consumer.Status) {
			statusutil.Touch(consumer, r.Clock)
			if err := statusutil.PatchStatus(ctx, r.Client, orig, consumer); err != nil {
				log.Error(err, "failed to patch MaskConsumer status")
				reterr = kerrors.NewAggregate([]error{reterr, err})
			}
		}
	}()

	writeStart := time.Now()
	defer func() { r.Metrics.WriteDurationSecs.Observe(time.Since(writeStart).Seconds()) }()

	if consumer.Status.Provider != nil {
		valid, reason, err := r.assignmentValid(ctx, consumer)
		if err != nil {
			log.Error(err, "failed to validate existing assignment")
			return ctrl.Result{}, err
		}
		if valid {
			consumer.Status.Phase = vpnv1.MaskConsumerPhaseActive
			consumer.Status.Message = ""
			return ctrl.Result{RequeueAfter: r.RequeueInterval}, nil
		}

		log.Info("assignment invariant broken, tearing down for re-election", "reason", reason)
		if err := r.teardown(ctx, consumer); err != nil {
			log.Error(err, "failed to tear down broken assignment")
			return ctrl.Result{}, err
		}
		r.Recorder.Event(consumer, "Warning", "AssignmentBroken", reason)
		consumer.Status.Provider = nil
		consumer.Status.Phase = vpnv1.MaskConsumerPhaseWaiting
		consumer.Status.Message = reason
		return ctrl.Result{RequeueAfter: backoffRequeue}, nil
	}

	return r.elect(ctx, consumer)
}

// assignmentValid re-checks consumer's existing assignment: that the
// provider still exists and still reserves the claimed slot for this
// consumer's current UID, and that the mirrored secret still exists
// (§4.3 Idempotence). The mirrored secret's data is not compared with the
// provider's credential secret.
func (r *MaskConsumerReconciler) assignmentValid(ctx context.Context, consumer *vpnv1.MaskConsumer) (bool, string, error) {
	assignment := consumer.Status.Provider

	provider := &vpnv1.MaskProvider{}
	err := r.Get(ctx, client.ObjectKey{Namespace: assignment.Namespace, Name: assignment.Name}, provider)
	switch {
	case apierrors.IsNotFound(err):
		return false, "elected provider no longer exists", nil
	case err != nil:
		return false, "", fmt.Errorf("failed to get elected provider: %w", err)
	}
	if string(provider.UID) != assignment.UID {
		return false, "elected provider was deleted and recreated", nil
	}

	reservation := &vpnv1.MaskReservation{}
	resKey := client.ObjectKey{Namespace: assignment.Namespace, Name: strconv.FormatUint(uint64(assignment.Slot), 10)}
	err = r.Get(ctx, resKey, reservation)
	switch {
	case apierrors.IsNotFound(err):
		return false, "reservation no longer exists", nil
	case err != nil:
		return false, "", fmt.Errorf("failed to get reservation: %w", err)
	}
	if !reservation.MatchesConsumer(string(consumer.UID)) {
		return false, "reservation no longer references this consumer", nil
	}
	if string(reservation.UID) != assignment.Reservation {
		return false, "reservation identity drifted", nil
	}

	var secret corev1.Secret
	err = r.Get(ctx, client.ObjectKey{Namespace: consumer.Namespace, Name: assignment.Secret}, &secret)
	switch {
	case apierrors.IsNotFound(err):
		return false, "mirrored secret no longer exists", nil
	case err != nil:
		return false, "", fmt.Errorf("failed to get mirrored secret: %w", err)
	}

	return true, "", nil
}

// elect runs Steps A-E of §4.3 for a consumer with no assignment yet.
func (r *MaskConsumerReconciler) elect(ctx context.Context, consumer *vpnv1.MaskConsumer) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	var providerList vpnv1.MaskProviderList
	if err := r.List(ctx, &providerList); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to list providers: %w", err)
	}

	candidates, anyMatched := candidateProviders(providerList.Items, consumer)
	if len(candidates) == 0 {
		if !anyMatched {
			consumer.Status.Phase = vpnv1.MaskConsumerPhaseErrNoProviders
			consumer.Status.Message = "no MaskProvider matches the requested namespace/tag predicates"
			r.Recorder.Event(consumer, "Warning", "NoProviders", consumer.Status.Message)
			return ctrl.Result{}, nil
		}
		consumer.Status.Phase = vpnv1.MaskConsumerPhaseWaiting
		consumer.Status.Message = "matching providers exist but are all at capacity"
		return ctrl.Result{RequeueAfter: backoffRequeue}, nil
	}

	for _, provider := range candidates {
		slot, reservation, err := r.reserveSlot(ctx, &provider, consumer)
		if err != nil {
			return ctrl.Result{}, err
		}
		if reservation == nil {
			log.Info("provider saturated on fresh listing, trying next candidate", "provider", provider.Name)
			continue
		}
		r.Metrics.ActionCounter.WithLabelValues("reserve_slot").Inc()
		return r.publishAssignment(ctx, consumer, &provider, slot, reservation)
	}

	consumer.Status.Phase = vpnv1.MaskConsumerPhaseWaiting
	consumer.Status.Message = "no candidate provider had a free slot on re-listing"
	return ctrl.Result{RequeueAfter: backoffRequeue}, nil
}

// reserveSlot implements Step C for a single candidate provider. A nil
// reservation with a nil error means the provider turned out saturated and
// the caller should move on to the next candidate.
func (r *MaskConsumerReconciler) reserveSlot(ctx context.Context, provider *vpnv1.MaskProvider, consumer *vpnv1.MaskConsumer) (uint, *vpnv1.MaskReservation, error) {
	for attempt := uint(0); attempt < provider.Spec.MaxSlots; attempt++ {
		var reservations vpnv1.MaskReservationList
		if err := r.List(ctx, &reservations, client.InNamespace(provider.Namespace)); err != nil {
			return 0, nil, fmt.Errorf("failed to list reservations for provider %q: %w", provider.Name, err)
		}

		slot, ok := nextFreeSlot(reservations.Items, provider.Spec.MaxSlots)
		if !ok {
			return 0, nil, nil
		}

		candidate := &vpnv1.MaskReservation{
			ObjectMeta: metav1.ObjectMeta{
				Name:      strconv.FormatUint(uint64(slot), 10),
				Namespace: provider.Namespace,
			},
			Spec: vpnv1.MaskReservationSpec{
				ReservationSpec: vpnv1.ReservationSpec{
					Name:      consumer.Name,
					Namespace: consumer.Namespace,
					UID:       string(consumer.UID),
				},
			},
		}

		err := r.Create(ctx, candidate)
		switch {
		case err == nil:
			return slot, candidate, nil
		case apierrors.IsAlreadyExists(err):
			existing := &vpnv1.MaskReservation{}
			key := client.ObjectKey{Namespace: provider.Namespace, Name: candidate.Name}
			if getErr := r.Get(ctx, key, existing); getErr != nil {
				return 0, nil, fmt.Errorf("failed to get competing reservation: %w", getErr)
			}
			if existing.MatchesConsumer(string(consumer.UID)) {
				return slot, existing, nil
			}
			// Lost the race for this slot; loop and re-list for the next free one.
			continue
		default:
			return 0, nil, fmt.Errorf("failed to create reservation: %w", err)
		}
	}
	return 0, nil, nil
}

// publishAssignment implements Steps D and E.
func (r *MaskConsumerReconciler) publishAssignment(ctx context.Context, consumer *vpnv1.MaskConsumer, provider *vpnv1.MaskProvider, slot uint, reservation *vpnv1.MaskReservation) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	var providerSecret corev1.Secret
	err := r.Get(ctx, client.ObjectKey{Namespace: provider.Namespace, Name: provider.Spec.Secret}, &providerSecret)
	if apierrors.IsNotFound(err) {
		if markErr := r.markProviderSecretMissing(ctx, provider); markErr != nil {
			log.Error(markErr, "failed to mark provider secret missing")
		}
		consumer.Status.Phase = vpnv1.MaskConsumerPhaseWaiting
		consumer.Status.Message = fmt.Sprintf("provider %q secret %q not found", provider.Name, provider.Spec.Secret)
		return ctrl.Result{RequeueAfter: backoffRequeue}, nil
	}
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to get provider secret: %w", err)
	}

	secretName := mirroredSecretName(consumer.Name)
	if _, err := clientutil.CopySecret(ctx, r.Client, consumer.Namespace, secretName, &providerSecret, consumer); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to mirror provider secret: %w", err)
	}
	r.Metrics.ActionCounter.WithLabelValues("mirror_secret").Inc()

	consumer.Status.Provider = &vpnv1.ProviderAssignment{
		Name:        provider.Name,
		Namespace:   provider.Namespace,
		UID:         string(provider.UID),
		Slot:        slot,
		Secret:      secretName,
		Reservation: string(reservation.UID),
	}
	consumer.Status.Phase = vpnv1.MaskConsumerPhaseActive
	consumer.Status.Message = ""
	r.Recorder.Eventf(consumer, "Normal", "Assigned", "assigned slot %d from provider %q", slot, provider.Name)

	return ctrl.Result{RequeueAfter: r.RequeueInterval}, nil
}

func (r *MaskConsumerReconciler) markProviderSecretMissing(ctx context.Context, provider *vpnv1.MaskProvider) error {
	orig := provider.DeepCopy()
	provider.Status.Phase = vpnv1.MaskProviderPhaseErrSecretNotFound
	provider.Status.Message = fmt.Sprintf("secret %q not found", provider.Spec.Secret)
	if equality.Semantic.DeepEqual(orig.Status, provider.Status) {
		return nil
	}
	statusutil.Touch(provider, r.Clock)
	return statusutil.PatchStatus(ctx, r.Client, orig, provider)
}

// teardown implements Step F's cleanup actions (1) and (2); finalizer
// removal (3) is the caller's responsibility.
func (r *MaskConsumerReconciler) teardown(ctx context.Context, consumer *vpnv1.MaskConsumer) error {
	assignment := consumer.Status.Provider
	if assignment == nil {
		return nil
	}

	secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: assignment.Secret, Namespace: consumer.Namespace}}
	if err := r.Delete(ctx, secret); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete mirrored secret: %w", err)
	}

	reservation := &vpnv1.MaskReservation{}
	resKey := client.ObjectKey{Namespace: assignment.Namespace, Name: strconv.FormatUint(uint64(assignment.Slot), 10)}
	err := r.Get(ctx, resKey, reservation)
	switch {
	case apierrors.IsNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("failed to get reservation for teardown: %w", err)
	}
	if !reservation.MatchesConsumer(string(consumer.UID)) {
		// Not ours (already reassigned or raced); nothing to release.
		return nil
	}
	if err := r.Delete(ctx, reservation); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *MaskConsumerReconciler) SetupWithManager(mgr ctrl.Manager) error {
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
		For(&vpnv1.MaskConsumer{}).
		Named("maskconsumer").
		WithEventFilter(filter).
		Watches(
			&vpnv1.MaskProvider{},
			handler.EnqueueRequestsFromMapFunc(r.providerToWaitingConsumers),
		).
		Complete(r)
}

// providerToWaitingConsumers re-enqueues every Pending, Waiting or
// ErrNoProviders MaskConsumer whenever any MaskProvider changes, so newly
// eligible capacity is picked up promptly instead of waiting for a requeue.
func (r *MaskConsumerReconciler) providerToWaitingConsumers(ctx context.Context, _ client.Object) []ctrl.Request {
	var consumers vpnv1.MaskConsumerList
	if err := r.List(ctx, &consumers); err != nil {
		ctrl.LoggerFrom(ctx).Error(err, "failed to list consumers for provider watch")
		return nil
	}

	var requests []ctrl.Request
	for _, c := range consumers.Items {
		switch c.Status.Phase {
		case vpnv1.MaskConsumerPhaseWaiting, vpnv1.MaskConsumerPhaseErrNoProviders, vpnv1.MaskConsumerPhasePending:
			requests = append(requests, ctrl.Request{NamespacedName: client.ObjectKeyFromObject(&c)})
		}
	}
	return requests
}
