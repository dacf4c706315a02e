// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// MaskProviderSpec defines the desired state of MaskProvider.
type MaskProviderSpec struct {
	// MaxSlots bounds the number of concurrent MaskReservations this
	// provider will accept.
	// +required
	// +kubebuilder:validation:Minimum=1
	MaxSlots uint `json:"maxSlots"`

	// Secret names the provider's credential Secret, living in the same
	// namespace as this MaskProvider.
	// +required
	Secret string `json:"secret"`

	// Tags this provider advertises. A consumer whose spec.providers is
	// non-empty is only eligible if at least one tag intersects.
	// +optional
	Tags []string `json:"tags,omitempty"`

	// Namespaces, when set, restricts eligible consumers to the listed
	// namespaces.
	// +optional
	Namespaces []string `json:"namespaces,omitempty"`

	// Verify configures credential verification. A nil value behaves as
	// the zero VerifyConfig (verification required, default timeout, no
	// periodic re-verification, no overrides).
	// +optional
	Verify *VerifyConfig `json:"verify,omitempty"`
}

// MaskProviderPhase is the verification/capacity lifecycle phase of a
// MaskProvider (§4.5).
// +kubebuilder:validation:Enum=Pending;Verifying;Verified;Ready;Active;Terminating;ErrSecretNotFound;ErrVerifyFailed
type MaskProviderPhase string

const (
	MaskProviderPhasePending           MaskProviderPhase = "Pending"
	MaskProviderPhaseVerifying         MaskProviderPhase = "Verifying"
	MaskProviderPhaseVerified          MaskProviderPhase = "Verified"
	MaskProviderPhaseReady             MaskProviderPhase = "Ready"
	MaskProviderPhaseActive            MaskProviderPhase = "Active"
	MaskProviderPhaseTerminating       MaskProviderPhase = "Terminating"
	MaskProviderPhaseErrSecretNotFound MaskProviderPhase = "ErrSecretNotFound"
	MaskProviderPhaseErrVerifyFailed   MaskProviderPhase = "ErrVerifyFailed"
)

// MaskProviderStatus defines the observed state of MaskProvider.
type MaskProviderStatus struct {
	// +kubebuilder:default=Pending
	// +optional
	Phase MaskProviderPhase `json:"phase,omitempty"`

	// ActiveSlots is ProviderCtrl's advisory recount of live
	// MaskReservations in this provider's namespace. MaskReservation
	// existence remains authoritative (§9 Open Question iii).
	// +optional
	ActiveSlots uint `json:"activeSlots,omitempty"`

	// LastVerified is the timestamp of the most recent successful
	// verification.
	// +optional
	LastVerified metav1.Time `json:"lastVerified,omitzero"`

	// +optional
	Message string `json:"message,omitempty"`

	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitzero"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=maskproviders
// +kubebuilder:resource:singular=maskprovider
// +kubebuilder:printcolumn:name="Phase",type="string",JSONPath=".status.phase"
// +kubebuilder:printcolumn:name="MaxSlots",type="integer",JSONPath=".spec.maxSlots"
// +kubebuilder:printcolumn:name="ActiveSlots",type="integer",JSONPath=".status.activeSlots"
// +kubebuilder:printcolumn:name="LastUpdated",type="date",JSONPath=".status.lastUpdated"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// MaskProvider is the Schema for the maskproviders API. It represents a
// third-party VPN account with a bounded number of concurrent connection
// slots.
type MaskProvider struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +optional
	Spec MaskProviderSpec `json:"spec,omitempty"`

	// +optional
	Status MaskProviderStatus `json:"status,omitempty"`
}

// GetPhase implements statusutil.PhaseObject.
func (p *MaskProvider) GetPhase() string { return string(p.Status.Phase) }

// GetLastUpdated implements statusutil.PhaseObject.
func (p *MaskProvider) GetLastUpdated() metav1.Time { return p.Status.LastUpdated }

// SetLastUpdated implements statusutil.PhaseObject.
func (p *MaskProvider) SetLastUpdated(t metav1.Time) { p.Status.LastUpdated = t }

// IsEligible reports whether p can currently accept a new reservation,
// independent of any per-consumer predicate (§4.3 Step A, clause a and d).
func (p *MaskProvider) IsEligible() bool {
	switch p.Status.Phase {
	case MaskProviderPhaseReady, MaskProviderPhaseActive:
	default:
		return false
	}
	return p.Status.ActiveSlots < p.Spec.MaxSlots
}

// +kubebuilder:object:root=true

// MaskProviderList contains a list of MaskProvider.
type MaskProviderList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []MaskProvider `json:"items"`
}

func init() {
	SchemeBuilder.Register(&MaskProvider{}, &MaskProviderList{})
}
