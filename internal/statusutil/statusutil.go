// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package statusutil centralizes the status-subresource patch discipline
// repeated across this repository's four controllers: a status write is
// only ever a superset of the prior value plus a refreshed LastUpdated, and
// is skipped entirely when nothing changed, to avoid resourceVersion churn
// and watch storms (§4.1).
//
// It is adapted from network-operator's internal/conditions package, which
// centralizes condition-array bookkeeping the same way for objects that
// carry a metav1.Condition slice. None of this repository's CRDs carry
// conditions — their status is a flat {phase, message, lastUpdated} — so
// PhaseObject replaces conditions.Getter/Setter as the minimal interface
// this package needs.
package statusutil

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/beebs-dev/vpn-operator/internal/clock"
)

// PhaseObject is implemented by every kind in api/v1.
type PhaseObject interface {
	client.Object
	GetPhase() string
	GetLastUpdated() metav1.Time
	SetLastUpdated(metav1.Time)
}

// Touch stamps obj.LastUpdated with the clock's current time. Callers must
// call this only after determining (via equality.Semantic.DeepEqual on the
// concrete Status struct, which differs per kind and so cannot be compared
// generically here) that the status is about to change for a reason other
// than the timestamp itself.
func Touch(obj PhaseObject, c clock.Clock) {
	obj.SetLastUpdated(c.Now())
}

// PatchStatus patches obj's status subresource against orig. Call only
// after Touch, and only when the caller has confirmed the status changed.
func PatchStatus(ctx context.Context, c client.Client, orig, obj client.Object) error {
	return c.Status().Patch(ctx, obj, client.MergeFrom(orig))
}
