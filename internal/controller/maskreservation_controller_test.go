// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
)

func newReservationReconciler(cl client.Client) *MaskReservationReconciler {
	return &MaskReservationReconciler{
		Client:          cl,
		Scheme:          cl.Scheme(),
		Recorder:        newFakeRecorder(),
		Clock:           newFakeClock(),
		Metrics:         newRecorder(),
		RequeueInterval: time.Minute,
	}
}

var _ = Describe("MaskReservationReconciler", func() {
	It("keeps a reservation whose consumer still exists with a matching UID", func() {
		consumer := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "m1-uid"}}
		reservation := &vpnv1.MaskReservation{
			ObjectMeta: metav1.ObjectMeta{Name: "0", Namespace: "provider-ns"},
			Spec: vpnv1.MaskReservationSpec{ReservationSpec: vpnv1.ReservationSpec{
				Name: "m1", Namespace: "app-ns", UID: "m1-uid",
			}},
		}
		cl := newFakeClient(consumer, reservation)
		rec := newReservationReconciler(cl)
		key := client.ObjectKey{Name: "0", Namespace: "provider-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskReservation{}
		Expect(cl.Get(ctx(), key, got)).To(Succeed())
		Expect(got.Finalizers).To(ContainElement(vpnv1.FinalizerName))
		Expect(got.Status.Phase).To(Equal(vpnv1.MaskReservationPhaseActive))
	})

	It("deletes itself when the claiming consumer has vanished", func() {
		reservation := &vpnv1.MaskReservation{
			ObjectMeta: metav1.ObjectMeta{Name: "0", Namespace: "provider-ns"},
			Spec: vpnv1.MaskReservationSpec{ReservationSpec: vpnv1.ReservationSpec{
				Name: "gone", Namespace: "app-ns", UID: "gone-uid",
			}},
		}
		provider := &vpnv1.MaskProvider{
			ObjectMeta: metav1.ObjectMeta{Name: "acme", Namespace: "provider-ns"},
			Spec:       vpnv1.MaskProviderSpec{MaxSlots: 1, Secret: "acme-secret"},
			Status:     vpnv1.MaskProviderStatus{Phase: vpnv1.MaskProviderPhaseActive, ActiveSlots: 1},
		}
		cl := newFakeClient(reservation, provider)
		rec := newReservationReconciler(cl)
		key := client.ObjectKey{Name: "0", Namespace: "provider-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		// The finalizer holds the deleted reservation until the next pass
		// releases its slot.
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskReservation{}
		err = cl.Get(ctx(), key, got)
		Expect(err).To(HaveOccurred())

		var liveProvider vpnv1.MaskProvider
		Expect(cl.Get(ctx(), client.ObjectKey{Name: "acme", Namespace: "provider-ns"}, &liveProvider)).To(Succeed())
		Expect(liveProvider.Status.ActiveSlots).To(Equal(uint(0)))
	})

	It("deletes itself when the consumer's UID no longer matches", func() {
		consumer := &vpnv1.MaskConsumer{ObjectMeta: metav1.ObjectMeta{Name: "m1", Namespace: "app-ns", UID: "new-uid"}}
		reservation := &vpnv1.MaskReservation{
			ObjectMeta: metav1.ObjectMeta{Name: "0", Namespace: "provider-ns"},
			Spec: vpnv1.MaskReservationSpec{ReservationSpec: vpnv1.ReservationSpec{
				Name: "m1", Namespace: "app-ns", UID: "stale-uid",
			}},
		}
		cl := newFakeClient(consumer, reservation)
		rec := newReservationReconciler(cl)
		key := client.ObjectKey{Name: "0", Namespace: "provider-ns"}

		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		got := &vpnv1.MaskReservation{}
		err = cl.Get(ctx(), key, got)
		Expect(err).To(HaveOccurred())
	})
})
