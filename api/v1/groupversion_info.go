// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package v1 contains API Schema definitions for the vpn.beebs.dev v1 API group.
// +kubebuilder:object:generate=true
// +groupName=vpn.beebs.dev
package v1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// GroupVersion is group version used to register these objects.
	GroupVersion = schema.GroupVersion{Group: "vpn.beebs.dev", Version: "v1"}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

// WatchLabel can be applied to any resource in this group. Controllers that
// allow selective reconciliation check this label and proceed only if it is
// present with a configured value.
const WatchLabel = "vpn.beebs.dev/watch-filter"

// FinalizerName is the finalizer every primary resource in this group
// carries, giving its owning controller a guaranteed hook to run teardown
// before the object is removed from etcd.
const FinalizerName = "vpn.beebs.dev/finalizer"
