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
)

// readyProvider builds a MaskProvider already past ProviderCtrl's
// verification lifecycle, as it would be observed once Ready.
func readyProvider(name string, maxSlots uint, tags, namespaces []string) *vpnv1.MaskProvider {
	return &vpnv1.MaskProvider{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "provider-ns", Finalizers: []string{vpnv1.FinalizerName}},
		Spec: vpnv1.MaskProviderSpec{
			MaxSlots:   maxSlots,
			Secret:     name + "-secret",
			Tags:       tags,
			Namespaces: namespaces,
		},
		Status: vpnv1.MaskProviderStatus{Phase: vpnv1.MaskProviderPhaseReady},
	}
}

func providerSecret(providerName string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: providerName + "-secret", Namespace: "provider-ns"},
		Data:       map[string][]byte{"token": []byte("s3cr3t-" + providerName)},
	}
}

func newConsumerReconciler(cl client.Client) *MaskConsumerReconciler {
	return &MaskConsumerReconciler{
		Client:          cl,
		Scheme:          cl.Scheme(),
		Recorder:        newFakeRecorder(),
		Clock:           newFakeClock(),
		Metrics:         newRecorder(),
		RequeueInterval: time.Minute,
	}
}

var _ = Describe("MaskConsumerReconciler", func() {
	It("scenario 1: happy path assigns slot 0 and publishes the assignment", func() {
		provider := readyProvider("acme", 2, nil, nil)
		consumer := &vpnv1.MaskConsumer{
			ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"},
		}
		cl := newFakeClient(provider, providerSecret("acme"), consumer)
		rec := newConsumerReconciler(cl)
		key := client.ObjectKey{Name: "m1", Namespace: "app-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseActive))
		Expect(got.Status.Provider).NotTo(BeNil())
		Expect(got.Status.Provider.Slot).To(Equal(uint(0)))

		var reservation vpnv1.MaskReservation
		Expect(cl.Get(ctx(), client.ObjectKey{Namespace: "provider-ns", Name: "0"}, &reservation)).To(Succeed())
		Expect(reservation.Spec.UID).To(Equal("m1-uid"))

		var secret corev1.Secret
		Expect(cl.Get(ctx(), client.ObjectKey{Namespace: "app-ns", Name: "m1-vpn-credentials"}, &secret)).To(Succeed())
		Expect(secret.Data).To(Equal(map[string][]byte{"token": []byte("s3cr3t-acme")}))
	})

	It("scenario 2: contention leaves exactly one consumer Active and the other Waiting", func() {
		provider := readyProvider("acme", 1, nil, nil)
		c1 := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"}}
		c2 := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m2", Namespace: "app-ns", UID: "m2-uid"}}
		cl := newFakeClient(provider, providerSecret("acme"), c1, c2)
		rec := newConsumerReconciler(cl)
		k1 := client.ObjectKey{Name: "m1", Namespace: "app-ns"}
		k2 := client.ObjectKey{Name: "m2", Namespace: "app-ns"}

		for _, k := range []client.ObjectKey{k1, k2} {
			_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: k})
			Expect(err).NotTo(HaveOccurred())
		}
		for _, k := range []client.ObjectKey{k1, k2} {
			_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: k})
			Expect(err).NotTo(HaveOccurred())
		}

		got1, got2 := &vpnv1.MaskConsumer{}, &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), k1, got1)).To(Succeed())
		Expect(cl.Get(ctx(), k2, got2)).To(Succeed())

		phases := []vpnv1.MaskConsumerPhase{got1.Status.Phase, got2.Status.Phase}
		Expect(phases).To(ContainElement(vpnv1.MaskConsumerPhaseActive))
		Expect(phases).To(ContainElement(vpnv1.MaskConsumerPhaseWaiting))

		var reservations vpnv1.MaskReservationList
		Expect(cl.List(ctx(), &reservations, client.InNamespace("provider-ns"))).To(Succeed())
		Expect(reservations.Items).To(HaveLen(1))
	})

	It("scenario 3: deleting the Active consumer frees the slot for the Waiting one", func() {
		provider := readyProvider("acme", 1, nil, nil)
		c1 := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"}}
		c2 := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m2", Namespace: "app-ns", UID: "m2-uid"}}
		cl := newFakeClient(provider, providerSecret("acme"), c1, c2)
		rec := newConsumerReconciler(cl)
		k1 := client.ObjectKey{Name: "m1", Namespace: "app-ns"}
		k2 := client.ObjectKey{Name: "m2", Namespace: "app-ns"}

		for _, k := range []client.ObjectKey{k1, k2, k1, k2} {
			_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: k})
			Expect(err).NotTo(HaveOccurred())
		}

		got1 := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), k1, got1)).To(Succeed())
		activeKey, waitingKey := k1, k2
		if got1.Status.Phase != vpnv1.MaskConsumerPhaseActive {
			activeKey, waitingKey = k2, k1
		}

		active := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), activeKey, active)).To(Succeed())
		Expect(cl.Delete(ctx(), active)).To(Succeed())

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: activeKey})
		Expect(err).NotTo(HaveOccurred())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: waitingKey})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: waitingKey})
		Expect(err).NotTo(HaveOccurred())

		waiting := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), waitingKey, waiting)).To(Succeed())
		Expect(waiting.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseActive))
		Expect(waiting.Status.Provider.Slot).To(Equal(uint(0)))

		var reservation vpnv1.MaskReservation
		Expect(cl.Get(ctx(), client.ObjectKey{Namespace: "provider-ns", Name: "0"}, &reservation)).To(Succeed())
		Expect(reservation.Spec.UID).To(Equal(string(waiting.UID)))
	})

	It("scenario 4: a tagged consumer is assigned to the matching provider regardless of load", func() {
		providerEU := readyProvider("eu", 5, []string{"eu"}, nil)
		providerEU.Status.ActiveSlots = 0
		providerUS := readyProvider("us", 5, []string{"us"}, nil)
		providerUS.Status.ActiveSlots = 3
		consumer := &vpnv1.MaskConsumer{
			ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"},
			Spec:       vpnv1.MaskConsumerSpec{Providers: []string{"us"}},
		}
		cl := newFakeClient(providerEU, providerUS, providerSecret("eu"), providerSecret("us"), consumer)
		rec := newConsumerReconciler(cl)
		key := client.ObjectKey{Name: "m1", Namespace: "app-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Provider.Name).To(Equal("us"))
	})

	It("scenario 5: no matching provider yields ErrNoProviders, then resolves once one is created", func() {
		consumer := &vpnv1.MaskConsumer{
			ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"},
			Spec:       vpnv1.MaskConsumerSpec{Providers: []string{"ghost"}},
		}
		cl := newFakeClient(consumer)
		rec := newConsumerReconciler(cl)
		key := client.ObjectKey{Name: "m1", Namespace: "app-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseErrNoProviders))
		Expect(got.Status.Message).NotTo(BeEmpty())

		ghost := readyProvider("ghost-provider", 1, []string{"ghost"}, nil)
		Expect(cl.Create(ctx(), ghost)).To(Succeed())
		Expect(cl.Create(ctx(), providerSecret("ghost-provider"))).To(Succeed())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseActive))
	})

	It("scenario 6: provider delete-recreate tears down the stale assignment", func() {
		provider := readyProvider("acme", 2, nil, nil)
		consumer := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"}}
		cl := newFakeClient(provider, providerSecret("acme"), consumer)
		rec := newConsumerReconciler(cl)
		key := client.ObjectKey{Name: "m1", Namespace: "app-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseActive))

		// Simulate delete-recreate: same name, fresh UID, by directly
		// overwriting the object's UID (the fake client does not
		// re-generate one on delete/create of the same name).
		var live vpnv1.MaskProvider
		Expect(cl.Get(ctx(), client.ObjectKey{Name: "acme", Namespace: "provider-ns"}, &live)).To(Succeed())
		live.UID = "a-new-uid"
		Expect(cl.Update(ctx(), &live)).To(Succeed())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Provider).To(BeNil())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseWaiting))

		var secret corev1.Secret
		err = cl.Get(ctx(), client.ObjectKey{Namespace: "app-ns", Name: "m1-vpn-credentials"}, &secret)
		Expect(err).To(HaveOccurred())

		var reservation vpnv1.MaskReservation
		err = cl.Get(ctx(), client.ObjectKey{Namespace: "provider-ns", Name: "0"}, &reservation)
		Expect(err).To(HaveOccurred())

		// Re-elects on the next pass since the (recreated) provider is still eligible.
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskConsumerPhaseActive))
		Expect(got.Status.Provider.UID).To(Equal("a-new-uid"))
	})
})
