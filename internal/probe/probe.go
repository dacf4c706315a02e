// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package probe builds the ephemeral three-container verification
// workload ProviderCtrl launches to confirm a MaskProvider's credentials
// actually mask the pod's public IP (§4.5).
package probe

import (
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	vpnv1 "github.com/beebs-dev/vpn-operator/api/v1"
	"github.com/beebs-dev/vpn-operator/internal/podtemplate"
)

// DefaultVerifyTimeout bounds a single verification attempt when
// spec.verify.timeout is unset. Chosen as a value generous enough for a
// VPN handshake plus two IP-check round trips without leaving a stuck
// probe pod running indefinitely (Open Question i).
const DefaultVerifyTimeout = 5 * time.Minute

// DefaultVPNImage is the VPN client container used when no override is
// supplied. gluetun supports the broadest set of commodity VPN providers
// out of the box, which is why it is the sane default for a generic
// credential-distribution operator.
const DefaultVPNImage = "qmcgaw/gluetun:latest"

// DefaultIPCheckEndpoint is queried by both the init and probe containers
// to observe the pod's public IP before and after the tunnel comes up.
const DefaultIPCheckEndpoint = "https://api.ipify.org"

const (
	sharedVolumeName = "shared"
	sharedMountPath  = "/shared"
	sharedIPFile     = sharedMountPath + "/ip"

	// ContainerInit fetches the unmasked public IP before the tunnel is up.
	ContainerInit = "init"
	// ContainerVPN runs the VPN client establishing the tunnel.
	ContainerVPN = "vpn"
	// ContainerProbe polls for the IP to change once the tunnel is up.
	ContainerProbe = "probe"
)

// Name returns the deterministic, reused probe pod name for provider.
// Reusing one name per provider (rather than minting a fresh name per
// verification cycle) means repeated cycles never accumulate orphaned
// pods. The controller deletes the probe pod when an attempt concludes;
// when creating, it reuses an existing pod of this name rather than
// replacing it.
func Name(providerName string) string {
	return providerName + "-vpn-probe"
}

// BuildOptions parameterizes the default probe pod template.
type BuildOptions struct {
	// Namespace the pod is created in (the Provider's namespace).
	Namespace string
	// SecretName is the Provider's credential Secret, injected into the
	// vpn container via envFrom.
	SecretName string
	// IPCheckEndpoint overrides DefaultIPCheckEndpoint.
	IPCheckEndpoint string
	// VPNImage overrides DefaultVPNImage.
	VPNImage string
	// Overrides are strategic-merge-patched onto the built template,
	// user-supplied fields winning (§4.5.3).
	Overrides *vpnv1.ProbeOverrides
}

// Build constructs the probe pod for provider, owned by it, per the
// three-container layout described in §4.5: init primes /shared/ip with
// the pre-tunnel public IP, vpn establishes the tunnel, probe polls until
// the observed IP differs from /shared/ip.
func Build(provider *vpnv1.MaskProvider, opts BuildOptions) (*corev1.Pod, error) {
	endpoint := opts.IPCheckEndpoint
	if endpoint == "" {
		endpoint = DefaultIPCheckEndpoint
	}
	vpnImage := opts.VPNImage
	if vpnImage == "" {
		vpnImage = DefaultVPNImage
	}

	trueVal := true
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      Name(provider.Name),
			Namespace: opts.Namespace,
			Labels: map[string]string{
				"vpn.beebs.dev/provider": provider.Name,
				"vpn.beebs.dev/role":     "verify-probe",
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Volumes: []corev1.Volume{
				{
					Name:         sharedVolumeName,
					VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
				},
			},
			InitContainers: []corev1.Container{
				{
					Name:  ContainerInit,
					Image: "curlimages/curl:latest",
					Command: []string{"sh", "-c",
						fmt.Sprintf("curl -fsS %q > %s", endpoint, sharedIPFile)},
					VolumeMounts: []corev1.VolumeMount{
						{Name: sharedVolumeName, MountPath: sharedMountPath},
					},
				},
			},
			Containers: []corev1.Container{
				{
					Name:  ContainerVPN,
					Image: vpnImage,
					SecurityContext: &corev1.SecurityContext{
						Capabilities: &corev1.Capabilities{Add: []corev1.Capability{"NET_ADMIN"}},
					},
					EnvFrom: []corev1.EnvFromSource{
						{SecretRef: &corev1.SecretEnvSource{
							LocalObjectReference: corev1.LocalObjectReference{Name: opts.SecretName},
						}},
					},
					VolumeMounts: []corev1.VolumeMount{
						{Name: sharedVolumeName, MountPath: sharedMountPath},
					},
				},
				{
					Name:  ContainerProbe,
					Image: "curlimages/curl:latest",
					Command: []string{"sh", "-c", fmt.Sprintf(
						`orig=$(cat %s); while true; do cur=$(curl -fsS %q || true); if [ -n "$cur" ] && [ "$cur" != "$orig" ]; then exit 0; fi; sleep 5; done`,
						sharedIPFile, endpoint)},
					VolumeMounts: []corev1.VolumeMount{
						{Name: sharedVolumeName, MountPath: sharedMountPath},
					},
				},
			},
		},
	}

	if err := setOwner(pod, provider, &trueVal); err != nil {
		return nil, err
	}

	return applyOverrides(pod, opts.Overrides)
}

func setOwner(pod *corev1.Pod, provider *vpnv1.MaskProvider, blockDeletion *bool) error {
	pod.OwnerReferences = []metav1.OwnerReference{
		{
			APIVersion:         vpnv1.GroupVersion.String(),
			Kind:               "MaskProvider",
			Name:               provider.Name,
			UID:                provider.UID,
			Controller:         blockDeletion,
			BlockOwnerDeletion: blockDeletion,
		},
	}
	return nil
}

func applyOverrides(pod *corev1.Pod, overrides *vpnv1.ProbeOverrides) (*corev1.Pod, error) {
	if overrides == nil {
		return pod, nil
	}

	merged, err := podtemplate.MergePod(pod, overrides.Pod)
	if err != nil {
		return nil, fmt.Errorf("failed to merge pod-level overrides: %w", err)
	}

	if overrides.Containers != nil {
		if err := mergeInitContainer(merged, ContainerInit, overrides.Containers.Init); err != nil {
			return nil, err
		}
		if err := mergeContainer(merged, ContainerVPN, overrides.Containers.VPN); err != nil {
			return nil, err
		}
		if err := mergeContainer(merged, ContainerProbe, overrides.Containers.Probe); err != nil {
			return nil, err
		}
	}

	return merged, nil
}

func mergeContainer(pod *corev1.Pod, name string, override *runtime.RawExtension) error {
	for i := range pod.Spec.Containers {
		if pod.Spec.Containers[i].Name != name {
			continue
		}
		merged, err := podtemplate.MergeContainer(pod.Spec.Containers[i], override)
		if err != nil {
			return fmt.Errorf("failed to merge container %q overrides: %w", name, err)
		}
		pod.Spec.Containers[i] = merged
		return nil
	}
	return nil
}

func mergeInitContainer(pod *corev1.Pod, name string, override *runtime.RawExtension) error {
	for i := range pod.Spec.InitContainers {
		if pod.Spec.InitContainers[i].Name != name {
			continue
		}
		merged, err := podtemplate.MergeContainer(pod.Spec.InitContainers[i], override)
		if err != nil {
			return fmt.Errorf("failed to merge init container %q overrides: %w", name, err)
		}
		pod.Spec.InitContainers[i] = merged
		return nil
	}
	return nil
}

// Outcome is the result of inspecting a probe pod's container statuses.
type Outcome int

const (
	// OutcomePending means verification hasn't concluded yet; keep waiting.
	OutcomePending Outcome = iota
	// OutcomeSuccess means the probe container exited 0: the tunnel is up
	// and the public IP changed.
	OutcomeSuccess
	// OutcomeFailure means verification failed: either the probe container
	// exited non-zero or the init/vpn containers failed. Timeouts are not
	// reported here; TimedOut checks them separately.
	OutcomeFailure
)

// Evaluate inspects pod's container statuses and reports the current
// verification outcome, plus a human-readable detail string for
// OutcomeFailure (§4.5.2, "surface stderr/container exit info in
// status.message").
func Evaluate(pod *corev1.Pod) (Outcome, string) {
	for _, cs := range pod.Status.InitContainerStatuses {
		if term := cs.State.Terminated; term != nil && term.ExitCode != 0 {
			return OutcomeFailure, fmt.Sprintf("init container %q failed: %s", cs.Name, term.Reason)
		}
	}

	for _, cs := range pod.Status.ContainerStatuses {
		term := cs.State.Terminated
		if term == nil {
			continue
		}
		switch cs.Name {
		case ContainerProbe:
			if term.ExitCode == 0 {
				return OutcomeSuccess, ""
			}
			return OutcomeFailure, fmt.Sprintf("probe container exited %d: %s", term.ExitCode, term.Reason)
		case ContainerVPN:
			if term.ExitCode != 0 {
				return OutcomeFailure, fmt.Sprintf("vpn container exited %d: %s", term.ExitCode, term.Reason)
			}
		}
	}

	return OutcomePending, ""
}

// TimedOut reports whether pod has been running longer than timeout
// without concluding, measured from its creation timestamp.
func TimedOut(pod *corev1.Pod, now metav1.Time, timeout time.Duration) bool {
	if pod.CreationTimestamp.IsZero() {
		return false
	}
	return now.Sub(pod.CreationTimestamp.Time) > timeout
}
