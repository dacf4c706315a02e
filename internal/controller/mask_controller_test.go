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

var _ = Describe("MaskReconciler", func() {
	var (
		cl  client.Client
		rec *MaskReconciler
		key client.ObjectKey
	)

	BeforeEach(func() {
		key = client.ObjectKey{Name: "web", Namespace: "app-ns"}
		cl = newFakeClient(&vpnv1.Mask{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
		})
		rec = &MaskReconciler{
			Client:          cl,
			Scheme:          cl.Scheme(),
			Recorder:        newFakeRecorder(),
			Clock:           newFakeClock(),
			Metrics:         newRecorder(),
			RequeueInterval: time.Minute,
		}
	})

	It("adds a finalizer then creates an owned MaskConsumer", func() {
		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		mask := &vpnv1.Mask{}
		Expect(cl.Get(ctx(), key, mask)).To(Succeed())
		Expect(mask.Finalizers).To(ContainElement(vpnv1.FinalizerName))

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		consumer := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), key, consumer)).To(Succeed())
		Expect(consumer.OwnerReferences).To(HaveLen(1))
		Expect(consumer.OwnerReferences[0].Name).To(Equal(key.Name))
		Expect(*consumer.OwnerReferences[0].Controller).To(BeTrue())
	})

	It("mirrors the MaskConsumer's phase upward", func() {
		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		consumer := &vpnv1.MaskConsumer{}
		Expect(cl.Get(ctx(), key, consumer)).To(Succeed())
		consumer.Status.Phase = vpnv1.MaskConsumerPhaseActive
		Expect(cl.Status().Update(ctx(), consumer)).To(Succeed())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		mask := &vpnv1.Mask{}
		Expect(cl.Get(ctx(), key, mask)).To(Succeed())
		Expect(mask.Status.Phase).To(Equal(vpnv1.MaskPhaseActive))
	})

	It("deletes the MaskConsumer before removing its own finalizer", func() {
		_, err := rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		mask := &vpnv1.Mask{}
		Expect(cl.Get(ctx(), key, mask)).To(Succeed())
		Expect(cl.Delete(ctx(), mask)).To(Succeed())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		consumer := &vpnv1.MaskConsumer{}
		err = cl.Get(ctx(), key, consumer)
		Expect(err).To(HaveOccurred())

		_, err = rec.Reconcile(ctx(), ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())

		err = cl.Get(ctx(), key, mask)
		Expect(err).To(HaveOccurred())
	})
})
