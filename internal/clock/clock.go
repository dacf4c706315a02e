// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package clock supplies the one external collaborator every controller in
// this repository needs besides the Kubernetes client: a source of "now".
// Tests inject a fake so schedule-dependent assertions (verify intervals,
// requeue backoff) don't depend on wall-clock time. Wraps
// k8s.io/utils/clock the way target_status.go does, adapted to return
// metav1.Time since every status field in api/v1 is metav1-typed.
package clock

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilclock "k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"
)

// Clock returns the current time. Production code uses Real; tests use a
// Fake so lastVerified/interval arithmetic is deterministic.
type Clock interface {
	Now() metav1.Time
}

// Real is the production Clock, backed by utilclock.RealClock.
type Real struct{}

// Now implements Clock.
func (Real) Now() metav1.Time { return metav1.NewTime(utilclock.RealClock{}.Now()) }

// Fake is a deterministic Clock for tests, backed by
// k8s.io/utils/clock/testing.FakeClock.
type Fake struct {
	fc *clocktesting.FakeClock
}

// NewFake returns a Fake initialized to t.
func NewFake(t metav1.Time) *Fake {
	return &Fake{fc: clocktesting.NewFakeClock(t.Time)}
}

// Now implements Clock.
func (f *Fake) Now() metav1.Time { return metav1.NewTime(f.fc.Now()) }

// Set moves the fake clock to t.
func (f *Fake) Set(t metav1.Time) { f.fc.SetTime(t.Time) }

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d metav1.Duration) { f.fc.Step(d.Duration) }
