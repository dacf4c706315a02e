// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
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
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/clientutil"
	"github.com/beebs-dev/vpn-operator/internal/clock"
	"github.com/beebs-dev/vpn-operator/internal/metrics"
	"github.com/beebs-dev/vpn-operator/internal/probe"
	"github.com/beebs-dev/vpn-operator/internal/statusutil"
)

// verifyPollInterval is how soon a Verifying provider is re-checked while
// its probe pod is still running.
const verifyPollInterval = 10 * time.Second

// MaskProviderReconciler reconciles a MaskProvider object (§4.5): the
// credential-verification lifecycle via an ephemeral probe pod, and the
// advisory activeSlots capacity counter.
type MaskProviderReconciler struct {
	client.Client
	Scheme *runtime.Scheme

	WatchFilterValue string
	Recorder         record.EventRecorder
	Clock            clock.Clock
	Metrics          *metrics.Recorder
	RequeueInterval  time.Duration

	// ProbeOptions parameterizes the default probe pod template
	// (IP-check endpoint, VPN image); zero value uses probe's defaults.
	ProbeOptions probe.BuildOptions

	// SecretNameOverride, when set, pins every MaskProvider this process
	// reconciles to one fixed credential Secret instead of each provider's
	// own spec.secret (§6 process surface: SECRET_NAME/SECRET_NAMESPACE,
	// for test harnesses that want a known-good credential without wiring
	// spec.secret correctly on every fixture). Empty means "use
	// spec.secret", the normal production path.
	SecretNameOverride string
	// SecretNamespaceOverride names the namespace SecretNameOverride lives
	// in; empty defaults to the provider's own namespace. When it names a
	// different namespace, the secret is mirrored into the provider's
	// namespace (the probe pod's envFrom can only reference same-namespace
	// secrets) before the probe pod is built.
	SecretNamespaceOverride string
}

// secretRef resolves which credential Secret provider's probe should read:
// the process-level override if SecretNameOverride is set, otherwise
// provider's own spec.secret.
func (r *MaskProviderReconciler) secretRef(provider *vpnv1.MaskProvider) (namespace, name string) {
	if r.SecretNameOverride == "" {
		return provider.Namespace, provider.Spec.Secret
	}
	namespace = r.SecretNamespaceOverride
	if namespace == "" {
		namespace = provider.Namespace
	}
	return namespace, r.SecretNameOverride
}

// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders,verbs=get;list;watch;update;patch;delete
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskproviders/finalizers,verbs=update
// +kubebuilder:rbac:groups=vpn.beebs.dev,resources=maskreservations,verbs=list;watch
// +kubebuilder:rbac:groups=core,resources=secrets,verbs=get;create;update
// +kubebuilder:rbac:groups=core,resources=pods,verbs=get;list;watch;create;delete
// +kubebuilder:rbac:groups=core,resources=events,verbs=create;patch

func (r *MaskProviderReconciler) Reconcile(ctx context.Context, req ctrl.Request) (_ ctrl.Result, reterr error) {
	log := ctrl.LoggerFrom(ctx)
	r.Metrics.ReconcileCounter.Inc()
	readStart := time.Now()

	provider := &vpnv1.MaskProvider{}
	if err := r.Get(ctx, req.NamespacedName, provider); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		log.Error(err, "failed to get MaskProvider")
		return ctrl.Result{}, err
	}
	r.Metrics.ReadDurationSecs.Observe(time.Since(readStart).Seconds())

	if !provider.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(provider, vpnv1.FinalizerName) {
			pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: probe.Name(provider.Name), Namespace: provider.Namespace}}
			if err := r.Delete(ctx, pod); err != nil && !apierrors.IsNotFound(err) {
				log.Error(err, "failed to delete probe pod during teardown")
				return ctrl.Result{}, err
			}
			controllerutil.RemoveFinalizer(provider, vpnv1.FinalizerName)
			if err := r.Update(ctx, provider); err != nil {
				log.Error(err, "failed to remove finalizer")
				return ctrl.Result{}, err
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(provider, vpnv1.FinalizerName) {
		controllerutil.AddFinalizer(provider, vpnv1.FinalizerName)
		if err := r.Update(ctx, provider); err != nil {
			log.Error(err, "failed to add finalizer")
			return ctrl.Result{}, err
		}
		return ctrl.Result{}, nil
	}

	orig := provider.DeepCopy()
	defer func() {
		if !equality.Semantic.DeepEqual(orig.Status, provider.Status) {
			statusutil.Touch(provider, r.Clock)
			if err := statusutil.PatchStatus(ctx, r.Client, orig, provider); err != nil {
				log.Error(err, "failed to patch MaskProvider status")
				reterr = kerrors.NewAggregate([]error{reterr, err})
			}
		}
	}()

	writeStart := time.Now()
	defer func() { r.Metrics.WriteDurationSecs.Observe(time.Since(writeStart).Seconds()) }()

	if err := r.recountActiveSlots(ctx, provider); err != nil {
		log.Error(err, "failed to recount active slots")
		return ctrl.Result{}, err
	}

	return r.reconcilePhase(ctx, provider)
}

// recountActiveSlots implements §4.5's capacity accounting: a periodic
// re-list of live MaskReservations in this provider's own namespace.
func (r *MaskProviderReconciler) recountActiveSlots(ctx context.Context, provider *vpnv1.MaskProvider) error {
	var reservations vpnv1.MaskReservationList
	if err := r.List(ctx, &reservations, client.InNamespace(provider.Namespace)); err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}
	provider.Status.ActiveSlots = uint(len(reservations.Items))
	return nil
}

func (r *MaskProviderReconciler) reconcilePhase(ctx context.Context, provider *vpnv1.MaskProvider) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	switch provider.Status.Phase {
	case vpnv1.MaskProviderPhasePending, vpnv1.MaskProviderPhaseErrSecretNotFound, vpnv1.MaskProviderPhaseErrVerifyFailed, "":
		secretNS, secretName := r.secretRef(provider)
		cu := clientutil.NewClient(r.Client, provider.Namespace)
		var secret corev1.Secret
		err := cu.Get(ctx, client.ObjectKey{Namespace: secretNS, Name: secretName}, &secret)
		if apierrors.IsNotFound(err) {
			provider.Status.Phase = vpnv1.MaskProviderPhaseErrSecretNotFound
			provider.Status.Message = fmt.Sprintf("secret %q not found", secretName)
			return ctrl.Result{RequeueAfter: backoffRequeue}, nil
		}
		if err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to get provider secret: %w", err)
		}
		if secretNS != provider.Namespace {
			if _, err := clientutil.CopySecret(ctx, r.Client, provider.Namespace, secretName, &secret, provider); err != nil {
				return ctrl.Result{}, fmt.Errorf("failed to mirror override secret into provider namespace: %w", err)
			}
		}

		if provider.Spec.Verify != nil && provider.Spec.Verify.Skip {
			return r.markVerified(provider), nil
		}

		provider.Status.Phase = vpnv1.MaskProviderPhaseVerifying
		provider.Status.Message = ""
		if err := r.ensureProbePod(ctx, provider); err != nil {
			return ctrl.Result{}, err
		}
		r.Metrics.ActionCounter.WithLabelValues("create_probe_pod").Inc()
		return ctrl.Result{RequeueAfter: verifyPollInterval}, nil

	case vpnv1.MaskProviderPhaseVerifying:
		return r.reconcileVerifying(ctx, provider)

	case vpnv1.MaskProviderPhaseVerified:
		result := r.markVerified(provider)
		return result, nil

	case vpnv1.MaskProviderPhaseReady, vpnv1.MaskProviderPhaseActive:
		provider.Status.Phase = capacityPhase(provider.Status.ActiveSlots)

		if r.reverificationDue(provider) {
			provider.Status.Phase = vpnv1.MaskProviderPhaseVerifying
			provider.Status.Message = ""
			if err := r.ensureProbePod(ctx, provider); err != nil {
				return ctrl.Result{}, err
			}
			return ctrl.Result{RequeueAfter: verifyPollInterval}, nil
		}
		return ctrl.Result{RequeueAfter: r.RequeueInterval}, nil

	default:
		log.Info("provider in unknown phase, resetting to Pending", "phase", provider.Status.Phase)
		provider.Status.Phase = vpnv1.MaskProviderPhasePending
		provider.Status.Message = ""
		return ctrl.Result{}, nil
	}
}

func (r *MaskProviderReconciler) reconcileVerifying(ctx context.Context, provider *vpnv1.MaskProvider) (ctrl.Result, error) {
	pod := &corev1.Pod{}
	err := r.Get(ctx, client.ObjectKey{Namespace: provider.Namespace, Name: probe.Name(provider.Name)}, pod)
	if apierrors.IsNotFound(err) {
		if err := r.ensureProbePod(ctx, provider); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{RequeueAfter: verifyPollInterval}, nil
	}
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to get probe pod: %w", err)
	}

	outcome, detail := probe.Evaluate(pod)
	timeout := verifyTimeout(provider)

	switch outcome {
	case probe.OutcomeSuccess:
		if err := r.deleteProbePod(ctx, provider); err != nil {
			return ctrl.Result{}, err
		}
		r.Recorder.Event(provider, "Normal", "Verified", "credential verification succeeded")
		return r.markVerified(provider), nil

	case probe.OutcomeFailure:
		provider.Status.Phase = vpnv1.MaskProviderPhaseErrVerifyFailed
		provider.Status.Message = detail
		r.Recorder.Event(provider, "Warning", "VerifyFailed", detail)
		if err := r.deleteProbePod(ctx, provider); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{RequeueAfter: backoffRequeue}, nil

	default: // OutcomePending
		if probe.TimedOut(pod, r.Clock.Now(), timeout) {
			provider.Status.Phase = vpnv1.MaskProviderPhaseErrVerifyFailed
			provider.Status.Message = "verification timed out"
			r.Recorder.Event(provider, "Warning", "VerifyFailed", provider.Status.Message)
			if err := r.deleteProbePod(ctx, provider); err != nil {
				return ctrl.Result{}, err
			}
			return ctrl.Result{RequeueAfter: backoffRequeue}, nil
		}
		return ctrl.Result{RequeueAfter: verifyPollInterval}, nil
	}
}

// markVerified records a successful verification and settles the provider
// into its capacity-determined phase (§4.5 point 4).
func (r *MaskProviderReconciler) markVerified(provider *vpnv1.MaskProvider) ctrl.Result {
	provider.Status.LastVerified = r.Clock.Now()
	provider.Status.Message = ""
	provider.Status.Phase = capacityPhase(provider.Status.ActiveSlots)
	return ctrl.Result{RequeueAfter: r.RequeueInterval}
}

// capacityPhase implements "Ready <-> Active determined by activeSlots > 0".
func capacityPhase(activeSlots uint) vpnv1.MaskProviderPhase {
	if activeSlots > 0 {
		return vpnv1.MaskProviderPhaseActive
	}
	return vpnv1.MaskProviderPhaseReady
}

// verifyTimeout resolves the configured or default verification timeout.
func verifyTimeout(provider *vpnv1.MaskProvider) time.Duration {
	if provider.Spec.Verify != nil && provider.Spec.Verify.Timeout != nil {
		return provider.Spec.Verify.Timeout.Duration
	}
	return probe.DefaultVerifyTimeout
}

// reverificationDue reports whether lastVerified+interval has elapsed.
func (r *MaskProviderReconciler) reverificationDue(provider *vpnv1.MaskProvider) bool {
	if provider.Spec.Verify == nil || provider.Spec.Verify.Interval == nil || provider.Spec.Verify.Skip {
		return false
	}
	if provider.Status.LastVerified.IsZero() {
		return true
	}
	due := provider.Status.LastVerified.Add(provider.Spec.Verify.Interval.Duration)
	return !r.Clock.Now().Time.Before(due)
}

func (r *MaskProviderReconciler) ensureProbePod(ctx context.Context, provider *vpnv1.MaskProvider) error {
	var overrides *vpnv1.ProbeOverrides
	if provider.Spec.Verify != nil {
		overrides = provider.Spec.Verify.Overrides
	}
	_, secretName := r.secretRef(provider)
	opts := r.ProbeOptions
	opts.Namespace = provider.Namespace
	opts.SecretName = secretName
	opts.Overrides = overrides

	pod, err := probe.Build(provider, opts)
	if err != nil {
		return fmt.Errorf("failed to build probe pod: %w", err)
	}
	if err := r.Create(ctx, pod); err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create probe pod: %w", err)
	}
	return nil
}

func (r *MaskProviderReconciler) deleteProbePod(ctx context.Context, provider *vpnv1.MaskProvider) error {
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: probe.Name(provider.Name), Namespace: provider.Namespace}}
	if err := r.Delete(ctx, pod); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete probe pod: %w", err)
	}
	return nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *MaskProviderReconciler) SetupWithManager(mgr ctrl.Manager) error {
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
		For(&vpnv1.MaskProvider{}).
		Named("maskprovider").
		WithEventFilter(filter).
		Owns(&corev1.Pod{}).
		Complete(r)
}
