// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package podtemplate merges user-supplied pod/container override
// fragments onto ProviderCtrl's default probe pod template (§4.5.3). It
// uses a strategic merge patch against the corev1.Pod schema so that
// PodSpec.Containers merge element-wise by name (the field's
// patchMergeKey) rather than being replaced wholesale, and so that
// user-supplied scalar fields always win over the default.
package podtemplate

import (
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/strategicpatch"
)

// MergePod strategic-merges patch onto base and returns the result. patch
// is raw JSON (as stored in a runtime.RawExtension); a nil or empty patch
// returns base unchanged.
func MergePod(base *corev1.Pod, patch *runtime.RawExtension) (*corev1.Pod, error) {
	if patch == nil || len(patch.Raw) == 0 {
		return base.DeepCopy(), nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal base pod: %w", err)
	}

	merged, err := strategicpatch.StrategicMergePatch(baseJSON, patch.Raw, &corev1.Pod{})
	if err != nil {
		return nil, fmt.Errorf("failed to apply strategic merge patch: %w", err)
	}

	out := &corev1.Pod{}
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merged pod: %w", err)
	}
	return out, nil
}

// MergeContainer strategic-merges patch onto base, matching the schema of
// a single corev1.Container. Used for the per-role container overrides
// (init/vpn/probe) that ProbeContainerOverrides carries.
func MergeContainer(base corev1.Container, patch *runtime.RawExtension) (corev1.Container, error) {
	if patch == nil || len(patch.Raw) == 0 {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base, fmt.Errorf("failed to marshal base container %q: %w", base.Name, err)
	}

	merged, err := strategicpatch.StrategicMergePatch(baseJSON, patch.Raw, &corev1.Container{})
	if err != nil {
		return base, fmt.Errorf("failed to apply strategic merge patch to container %q: %w", base.Name, err)
	}

	out := corev1.Container{}
	if err := json.Unmarshal(merged, &out); err != nil {
		return base, fmt.Errorf("failed to unmarshal merged container %q: %w", base.Name, err)
	}
	return out, nil
}
