// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MaskConsumerSpec defines the desired state of MaskConsumer. It is copied
// verbatim from the owning Mask's spec when MaskCtrl creates it.
type MaskConsumerSpec struct {
	// +optional
	Providers []string `json:"providers,omitempty"`
}

// MaskConsumerPhase is the scheduling state of a MaskConsumer, driven by
// ConsumerCtrl's state machine (§4.3).
// +kubebuilder:validation:Enum=Pending;Waiting;Active;Terminating;ErrNoProviders
type MaskConsumerPhase string

const (
	MaskConsumerPhasePending        MaskConsumerPhase = "Pending"
	MaskConsumerPhaseWaiting        MaskConsumerPhase = "Waiting"
	MaskConsumerPhaseActive         MaskConsumerPhase = "Active"
	MaskConsumerPhaseTerminating    MaskConsumerPhase = "Terminating"
	MaskConsumerPhaseErrNoProviders MaskConsumerPhase = "ErrNoProviders"
)

// MaskConsumerStatus defines the observed state of MaskConsumer.
type MaskConsumerStatus struct {
	// +kubebuilder:default=Pending
	// +optional
	Phase MaskConsumerPhase `json:"phase,omitempty"`

	// Provider is set exactly once, atomically, in Step E of ConsumerCtrl
	// (§4.3) and cleared only by teardown.
	// +optional
	Provider *ProviderAssignment `json:"provider,omitempty"`

	// +optional
	Message string `json:"message,omitempty"`

	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitzero"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=maskconsumers
// +kubebuilder:resource:singular=maskconsumer
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="Provider",type="string",JSONPath=".status.provider.name",priority=1
// +kubebuilder:printcolumn:name="Slot",type="integer",JSONPath=".status.provider.slot",priority=1
// +kubebuilder:printcolumn:name="LastUpdated",type="date",JSONPath=".status.lastUpdated"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// MaskConsumer is the Schema for the maskconsumers API. It is the
// garbage-collection anchor user workloads point at, and the object whose
// reconciler performs provider election and slot allocation.
type MaskConsumer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +optional
	Spec MaskConsumerSpec `json:"spec,omitempty"`

	// +optional
	Status MaskConsumerStatus `json:"status,omitempty"`
}

// GetPhase implements statusutil.PhaseObject.
func (c *MaskConsumer) GetPhase() string { return string(c.Status.Phase) }

// GetLastUpdated implements statusutil.PhaseObject.
func (c *MaskConsumer) GetLastUpdated() metav1.Time { return c.Status.LastUpdated }

// SetLastUpdated implements statusutil.PhaseObject.
func (c *MaskConsumer) SetLastUpdated(t metav1.Time) { c.Status.LastUpdated = t }

// +kubebuilder:object:root=true

// MaskConsumerList contains a list of MaskConsumer.
type MaskConsumerList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MaskConsumer `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MaskConsumer{}, &MaskConsumerList{})
}
