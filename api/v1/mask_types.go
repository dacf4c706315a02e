// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MaskSpec defines the desired state of Mask.
type MaskSpec struct {
	// Providers, when set, restricts eligible MaskProviders to those
	// carrying at least one of these tags in spec.tags. An absent or
	// empty list matches any provider.
	// +optional
	Providers []string `json:"providers,omitempty"`
}

// MaskPhase is the lifecycle phase of a Mask, mirrored from its child
// MaskConsumer (§4.2).
// +kubebuilder:validation:Enum=Pending;Waiting;Active;Terminating;ErrNoProviders
type MaskPhase string

const (
	MaskPhasePending        MaskPhase = "Pending"
	MaskPhaseWaiting        MaskPhase = "Waiting"
	MaskPhaseActive         MaskPhase = "Active"
	MaskPhaseTerminating    MaskPhase = "Terminating"
	MaskPhaseErrNoProviders MaskPhase = "ErrNoProviders"
)

// MaskStatus defines the observed state of Mask.
type MaskStatus struct {
	// Phase mirrors the owned MaskConsumer's phase through the mapping
	// documented in §4.2.
	// +kubebuilder:default=Pending
	// +optional
	Phase MaskPhase `json:"phase,omitempty"`

	// Message carries a human-readable explanation, always populated
	// alongside an Err* phase.
	// +optional
	Message string `json:"message,omitempty"`

	// LastUpdated is the timestamp of the most recent status write.
	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitzero"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=masks
// +kubebuilder:resource:singular=mask
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="LastUpdated",type="date",JSONPath=".status.lastUpdated"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// Mask is the Schema for the masks API. It is the user-facing declaration
// of a workload's wish to be assigned a VPN connection slot.
type Mask struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +optional
	Spec MaskSpec `json:"spec,omitempty"`

	// +optional
	Status MaskStatus `json:"status,omitempty"`
}

// GetPhase implements statusutil.PhaseObject.
func (m *Mask) GetPhase() string { return string(m.Status.Phase) }

// GetLastUpdated implements statusutil.PhaseObject.
func (m *Mask) GetLastUpdated() metav1.Time { return m.Status.LastUpdated }

// SetLastUpdated implements statusutil.PhaseObject.
func (m *Mask) SetLastUpdated(t metav1.Time) { m.Status.LastUpdated = t }

// +kubebuilder:object:root=true

// MaskList contains a list of Mask.
type MaskList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Mask `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Mask{}, &MaskList{})
}
