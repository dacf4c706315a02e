// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"cmp"
	"slices"
	"strconv"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
)

// candidateProviders implements Step A + Step B of ConsumerCtrl (§4.3):
// filter providers eligible for consumer, then order them by ascending
// activeSlots, then ascending name. anyMatched reports whether any
// provider satisfied the namespace/tag predicates regardless of capacity,
// distinguishing "no matching provider exists at all" (-> ErrNoProviders)
// from "matching providers exist but are saturated" (-> Waiting).
func candidateProviders(providers []vpnv1.MaskProvider, consumer *vpnv1.MaskConsumer) (candidates []vpnv1.MaskProvider, anyMatched bool) {
	for _, p := range providers {
		if !matchesPredicates(&p, consumer) {
			continue
		}
		anyMatched = true
		if !p.IsEligible() {
			continue
		}
		candidates = append(candidates, p)
	}

	slices.SortFunc(candidates, func(a, b vpnv1.MaskProvider) int {
		if c := cmp.Compare(a.Status.ActiveSlots, b.Status.ActiveSlots); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return candidates, anyMatched
}

// matchesPredicates implements Step A clauses (b) and (c): namespace
// restriction and tag intersection. Clauses (a)/(d) (phase, capacity) are
// covered by MaskProvider.IsEligible and checked separately so callers can
// tell "no match" apart from "matched but saturated".
func matchesPredicates(provider *vpnv1.MaskProvider, consumer *vpnv1.MaskConsumer) bool {
	if len(provider.Spec.Namespaces) > 0 && !slices.Contains(provider.Spec.Namespaces, consumer.Namespace) {
		return false
	}
	if len(consumer.Spec.Providers) > 0 && !tagsIntersect(consumer.Spec.Providers, provider.Spec.Tags) {
		return false
	}
	return true
}

func tagsIntersect(want, have []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// mirroredSecretName derives the deterministic Secret name ConsumerCtrl
// mirrors a Provider's credentials into, stable across reconciles and
// restarts (§9 Open Question ii).
func mirroredSecretName(consumerName string) string {
	return consumerName + "-vpn-credentials"
}

// nextFreeSlot implements Step C.1: the smallest non-negative integer
// below maxSlots not already claimed by a live MaskReservation name.
// ok is false if every slot in [0, maxSlots) is taken.
func nextFreeSlot(reservations []vpnv1.MaskReservation, maxSlots uint) (slot uint, ok bool) {
	used := make(map[uint]struct{}, len(reservations))
	for _, r := range reservations {
		n, err := strconv.ParseUint(r.Name, 10, 64)
		if err != nil {
			continue
		}
		used[uint(n)] = struct{}{}
	}
	for n := uint(0); n < maxSlots; n++ {
		if _, taken := used[n]; !taken {
			return n, true
		}
	}
	return 0, false
}
