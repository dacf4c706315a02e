// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/clock"
	"github.com/beebs-dev/vpn-operator/internal/probe"
)

func newProviderReconciler(cl client.Client, fc *clock.Fake) *MaskProviderReconciler {
	return &MaskProviderReconciler{
		Client:          cl,
		Scheme:          cl.Scheme(),
		Recorder:        newFakeRecorder(),
		Clock:           fc,
		Metrics:         newRecorder(),
		RequeueInterval: time.Minute,
	}
}

var _ = Describe("MaskProviderReconciler", func() {
	var key client.ObjectKey

	BeforeEach(func() {
		key = client.ObjectKey{Name: "acme", Namespace: "provider-ns"}
	})

	It("reports ErrSecretNotFound when the credential secret is missing", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec:       vpnv1.MaskProviderSpec{MaxSlots: 3, Secret: "acme-secret"},
		}
		cl := newFakeClient(provider)
		rec := newProviderReconciler(cl, newFakeClock())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key}) // add finalizer
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseErrSecretNotFound))
	})

	It("goes straight to Ready when verify.skip is set", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec: vpnv1.MaskProviderSpec{
				MaxSlots: 3, Secret: "acme-secret",
				Verify: &vpnv1.VerifyConfig{Skip: true},
			},
		}
		secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "acme-secret", Namespace: key.Namespace}}
		cl := newFakeClient(provider, secret)
		rec := newProviderReconciler(cl, newFakeClock())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseReady))
		Expect(got.Status.LastVerified.IsZero()).To(BeFalse())
	})

	It("creates a probe pod and moves to Verifying, then Ready on probe success", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec:       vpnv1.MaskProviderSpec{MaxSlots: 3, Secret: "acme-secret"},
		}
		secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "acme-secret", Namespace: key.Namespace}}
		cl := newFakeClient(provider, secret)
		rec := newProviderReconciler(cl, newFakeClock())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key}) // add finalizer
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key}) // Pending -> Verifying, creates pod
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseVerifying))

		pod := &corev1.Pod{}
		podKey := client.ObjectKey{Name: probe.Name(key.Name), Namespace: key.Namespace}
		Expect(cl.Get(ctx(), podKey, pod)).To(Succeed())
		Expect(pod.OwnerReferences).To(HaveLen(1))
		Expect(pod.OwnerReferences[0].Name).To(Equal(key.Name))

		pod.Status.ContainerStatuses = []corev1.ContainerStatus{
			{Name: probe.ContainerProbe, State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 0}}},
		}
		Expect(cl.Status().Update(ctx(), pod)).To(Succeed())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key}) // Verifying -> Ready
		Expect(err).NotTo(HaveOccurred())

		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseReady))

		err = cl.Get(ctx(), podKey, pod)
		Expect(err).To(HaveOccurred())
	})

	It("reports ErrVerifyFailed when the probe container fails", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Status:     vpnv1.MaskProviderStatus{Phase: vpnv1.MaskProviderPhaseVerifying},
		}
		provider.Finalizers = []string{vpnv1.FinalizerName}
		secret := &corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "acme-secret", Namespace: key.Namespace}}
		provider.Spec = vpnv1.MaskProviderSpec{MaxSlots: 3, Secret: "acme-secret"}
		pod := &corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: probe.Name(key.Name), Namespace: key.Namespace},
			Status: corev1.PodStatus{
				ContainerStatuses: []corev1.ContainerStatus{
					{Name: probe.ContainerProbe, State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 1, Reason: "Error"}}},
				},
			},
		}
		cl := newFakeClient(provider, secret, pod)
		rec := newProviderReconciler(cl, newFakeClock())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseErrVerifyFailed))
		Expect(got.Status.Message).NotTo(BeEmpty())
	})

	It("backs off when verification has timed out with no conclusive container state", func() {
		fc := clock.NewFake(metav1.NewTime(time.Now()))
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec: vpnv1.MaskProviderSpec{
				MaxSlots: 3, Secret: "acme-secret",
				Verify: &vpnv1.VerifyConfig{Timeout: &metav1.Duration{Duration: time.Minute}},
			},
			Status: vpnv1.MaskProviderStatus{Phase: vpnv1.MaskProviderPhaseVerifying},
		}
		provider.Finalizers = []string{vpnv1.FinalizerName}
		pod := &corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Name:              probe.Name(key.Name),
				Namespace:         key.Namespace,
				CreationTimestamp: fc.Now(),
			},
		}
		cl := newFakeClient(provider, pod)
		rec := newProviderReconciler(cl, fc)

		fc.Advance(metav1.Duration{Duration: 2 * time.Minute})

		res, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.RequeueAfter).To(Equal(backoffRequeue))

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseErrVerifyFailed))
	})

	It("toggles Ready <-> Active with activeSlots and reports the recount", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec:       vpnv1.MaskProviderSpec{MaxSlots: 3, Secret: "acme-secret"},
			Status:     vpnv1.MaskProviderStatus{Phase: vpnv1.MaskProviderPhaseReady},
		}
		provider.Finalizers = []string{vpnv1.FinalizerName}
		reservation := &vpnv1.MaskReservation{
			ObjectMeta: metav1.ObjectMeta{Name: "0", Namespace: key.Namespace},
			Spec: vpnv1.MaskReservationSpec{ReservationSpec: vpnv1.ReservationSpec{
				Name: "c1", Namespace: "app-ns", UID: "c1-uid",
			}},
		}
		cl := newFakeClient(provider, reservation)
		rec := newProviderReconciler(cl, newFakeClock())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.ActiveSlots).To(Equal(uint(1)))
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseActive))

		Expect(cl.Delete(ctx(), reservation)).To(Succeed())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.ActiveSlots).To(Equal(uint(0)))
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseReady))
	})

	It("re-enters Verifying once the reverification interval elapses", func() {
		fc := clock.NewFake(metav1.NewTime(time.Now()))
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec: vpnv1.MaskProviderSpec{
				MaxSlots: 3, Secret: "acme-secret",
				Verify: &vpnv1.VerifyConfig{Interval: &metav1.Duration{Duration: time.Hour}},
			},
			Status: vpnv1.MaskProviderStatus{Phase: vpnv1.MaskProviderPhaseReady, LastVerified: fc.Now()},
		}
		provider.Finalizers = []string{vpnv1.FinalizerName}
		cl := newFakeClient(provider)
		rec := newProviderReconciler(cl, fc)

		fc.Advance(metav1.Duration{Duration: 2 * time.Hour})

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseVerifying))

		pod := &corev1.Pod{}
		Expect(cl.Get(ctx(), client.ObjectKey{Name: probe.Name(key.Name), Namespace: key.Namespace}, pod)).To(Succeed())
	})

	It("uses the SECRET_NAME/SECRET_NAMESPACE override instead of spec.secret, mirroring cross-namespace", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec:       vpnv1.MaskProviderSpec{MaxSlots: 3, Secret: "acme-secret"},
		}
		fixture := &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "fixture-creds", Namespace: "test-fixtures"},
			Data:       map[string][]byte{"token": []byte("fixture")},
		}
		cl := newFakeClient(provider, fixture)
		rec := newProviderReconciler(cl, newFakeClock())
		rec.SecretNameOverride = "fixture-creds"
		rec.SecretNamespaceOverride = "test-fixtures"

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key}) // add finalizer
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key}) // Pending -> Verifying

		Expect(err).NotTo(HaveOccurred())
		got := &vpnv1.MaskProvider{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskProviderPhaseVerifying))

		// The fixture secret must have been mirrored into the provider's
		// own namespace, since envFrom can't reach across namespaces.
		mirror := &corev1.Secret{}
		Expect(cl.Get(ctx(), client.ObjectKey{Name: "fixture-creds", Namespace: key.Namespace}, mirror)).To(Succeed())
		Expect(mirror.Data).To(Equal(fixture.Data))

		pod := &corev1.Pod{}
		Expect(cl.Get(ctx(), client.ObjectKey{Name: probe.Name(key.Name), Namespace: key.Namespace}, pod)).To(Succeed())
		Expect(pod.Spec.Containers[0].EnvFrom[0].SecretRef.Name).To(Equal("fixture-creds"))
	})

	It("deletes the probe pod before removing its own finalizer", func() {
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec:       vpnv1.MaskProviderSpec{MaxSlots: 3, Secret: "acme-secret"},
		}
		provider.Finalizers = []string{vpnv1.FinalizerName}
		pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: probe.Name(key.Name), Namespace: key.Namespace}}
		cl := newFakeClient(provider, pod)
		rec := newProviderReconciler(cl, newFakeClock())

		Expect(cl.Delete(ctx(), provider)).To(Succeed())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		err = cl.Get(ctx(), key, &vpnv1.MaskProvider{})
		Expect(err).To(HaveOccurred())

		err = cl.Get(ctx(), client.ObjectKey{Name: probe.Name(key.Name), Namespace: key.Namespace}, &corev1.Pod{})
		Expect(err).To(HaveOccurred())
	})
})
