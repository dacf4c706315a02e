// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MaskReservationSpec identifies the MaskConsumer claiming this
// reservation's slot. metadata.name is the slot index rendered as a
// decimal string; the API server's per-namespace name uniqueness is what
// makes slot allocation atomic (§9).
type MaskReservationSpec struct {
	ReservationSpec `json:",inline"`
}

// MaskReservationPhase is the lifecycle phase of a MaskReservation
// (§4.4).
// +kubebuilder:validation:Enum=Pending;Active;Terminating
type MaskReservationPhase string

const (
	MaskReservationPhasePending     MaskReservationPhase = "Pending"
	MaskReservationPhaseActive      MaskReservationPhase = "Active"
	MaskReservationPhaseTerminating MaskReservationPhase = "Terminating"
)

// MaskReservationStatus defines the observed state of MaskReservation.
type MaskReservationStatus struct {
	// +kubebuilder:default=Pending
	// +optional
	Phase MaskReservationPhase `json:"phase,omitempty"`

	// +optional
	Message string `json:"message,omitempty"`

	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitzero"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=maskreservations
// +kubebuilder:resource:singular=maskreservation
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="Consumer",type="string",JSONPath=".spec.name"
// +kubebuilder:printcolumn:name="ConsumerNamespace",type="string",JSONPath=".spec.namespace",priority=1
// +kubebuilder:printcolumn:name="LastUpdated",type="date",JSONPath=".status.lastUpdated"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// MaskReservation is the Schema for the maskreservations API. It lives in
// the provider's namespace and its mere existence, under a name equal to
// the slot index, is the authoritative claim on that slot (§3). It is the
// reverse-anchor object that simulates a cross-namespace owner reference:
// it points at its MaskConsumer by (name, namespace, uid) rather than the
// other way around, because Kubernetes owner references cannot cross
// namespaces.
type MaskReservation struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +required
	Spec MaskReservationSpec `json:"spec"`

	// +optional
	Status MaskReservationStatus `json:"status,omitempty"`
}

// GetPhase implements statusutil.PhaseObject.
func (r *MaskReservation) GetPhase() string { return string(r.Status.Phase) }

// GetLastUpdated implements statusutil.PhaseObject.
func (r *MaskReservation) GetLastUpdated() metav1.Time { return r.Status.LastUpdated }

// SetLastUpdated implements statusutil.PhaseObject.
func (r *MaskReservation) SetLastUpdated(t metav1.Time) { r.Status.LastUpdated = t }

// MatchesConsumer reports whether uid is the UID of the MaskConsumer this
// reservation claims to back.
func (r *MaskReservation) MatchesConsumer(uid string) bool {
	return r.Spec.UID == uid
}

// +kubebuilder:object:root=true

// MaskReservationList contains a list of MaskReservation.
type MaskReservationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MaskReservation `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MaskReservation{}, &MaskReservationList{})
}
