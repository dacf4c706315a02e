// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// LocalObjectReference refers to another object in the same namespace.
type LocalObjectReference struct {
	// Name of the referent.
	// +required
	Name string `json:"name"`
}

// SecretReference refers to a Secret, optionally in another namespace.
type SecretReference struct {
	// Name of the Secret.
	// +required
	Name string `json:"name"`

	// Namespace of the Secret. Defaults to the referencing object's
	// namespace when empty.
	// +optional
	Namespace string `json:"namespace,omitempty"`
}

// ProviderAssignment records the outcome of a successful ConsumerCtrl
// election: which MaskProvider this MaskConsumer was assigned to, which
// slot it holds, the name of its mirrored Secret, and the UID of the
// MaskReservation claiming the slot. It is only ever written in its
// entirety (§4.3 Step E) and is the single source of truth for which
// provider/slot/secret a consumer currently holds.
type ProviderAssignment struct {
	// Name of the elected MaskProvider.
	// +required
	Name string `json:"name"`

	// Namespace of the elected MaskProvider.
	// +required
	Namespace string `json:"namespace"`

	// UID of the elected MaskProvider at the moment of assignment. Used
	// to detect provider delete-recreate (scenario 6): if the live
	// Provider's UID no longer matches this value, the assignment is
	// stale and must be torn down.
	// +required
	UID string `json:"uid"`

	// Slot is the integer index reserved within the provider, in
	// [0, spec.maxSlots).
	// +required
	Slot uint `json:"slot"`

	// Secret is the name of the mirrored Secret created in this
	// consumer's namespace.
	// +required
	Secret string `json:"secret"`

	// Reservation is the UID of the MaskReservation claiming Slot. It
	// must equal the UID of a live MaskReservation whose spec.uid equals
	// this MaskConsumer's own UID.
	// +required
	Reservation string `json:"reservation"`
}

// ReservationSpec identifies the MaskConsumer that a MaskReservation backs.
// It is a struct rather than an owner reference because MaskReservation and
// its MaskConsumer can live in different namespaces.
type ReservationSpec struct {
	// Name of the claiming MaskConsumer.
	// +required
	Name string `json:"name"`

	// Namespace of the claiming MaskConsumer.
	// +required
	Namespace string `json:"namespace"`

	// UID of the claiming MaskConsumer at the moment the reservation was
	// created. ReservationCtrl deletes the reservation once no
	// MaskConsumer with this exact UID still exists.
	// +required
	UID string `json:"uid"`
}

// VerifyConfig configures ProviderCtrl's credential-verification cycle for
// a MaskProvider.
type VerifyConfig struct {
	// Skip, when true, bypasses probe-pod verification entirely: the
	// provider is marked verified and goes straight to Ready (or Active
	// when it already has reservations).
	// +optional
	Skip bool `json:"skip,omitempty"`

	// Timeout bounds a single verification attempt. Defaults to
	// DefaultVerifyTimeout when unset.
	// +optional
	Timeout *metav1.Duration `json:"timeout,omitempty"`

	// Interval, when set, schedules re-verification at
	// lastVerified + Interval. When unset the provider is verified once
	// and never re-verified automatically.
	// +optional
	Interval *metav1.Duration `json:"interval,omitempty"`

	// Overrides are strategic-merge-patched onto the controller's default
	// probe pod template; user-supplied fields win.
	// +optional
	Overrides *ProbeOverrides `json:"overrides,omitempty"`
}

// ProbeOverrides carries user-supplied fragments merged onto the default
// probe pod template (§4.5.3). Pod carries top-level PodSpec overrides
// (e.g. nodeSelector, tolerations); the per-container fields target the
// three well-known containers by name.
type ProbeOverrides struct {
	// Pod is merged onto the probe Pod's top-level template.
	// +optional
	Pod *runtime.RawExtension `json:"pod,omitempty"`

	// Containers overrides individual probe-pod containers by role.
	// +optional
	Containers *ProbeContainerOverrides `json:"containers,omitempty"`
}

// ProbeContainerOverrides overrides individual containers of the probe pod
// by their well-known role name.
type ProbeContainerOverrides struct {
	// +optional
	Init *runtime.RawExtension `json:"init,omitempty"`
	// +optional
	VPN *runtime.RawExtension `json:"vpn,omitempty"`
	// +optional
	Probe *runtime.RawExtension `json:"probe,omitempty"`
}
