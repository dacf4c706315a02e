// SPDX-FileCopyrightText: 2026 beebs-dev contributors
// SPDX-License-Identifier: Apache-2.0

// Package clientutil wraps the controller-runtime client with the handful
// of namespace-scoped helpers every controller in this repository needs:
// a default-namespace-aware reader, and the Secret load/copy primitives
// ConsumerCtrl's credential mirroring (§4.3 Step D) depends on.
package clientutil

import (
	"bytes"
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
)

var _ client.Reader = (*Client)(nil)

// Client wraps a controller-runtime reader, defaulting the namespace of any
// key/list that doesn't specify one. Useful because most of a controller's
// own-namespace lookups (listing MaskReservations in the provider's
// namespace, reading the provider's Secret) don't carry an explicit
// namespace at the call site.
type Client struct {
	r client.Reader

	// DefaultNamespace is used for Get/List calls that omit one.
	DefaultNamespace string
}

// NewClient creates a Client wrapping r, defaulting to defaultNamespace.
func NewClient(r client.Reader, defaultNamespace string) *Client {
	return &Client{r: r, DefaultNamespace: defaultNamespace}
}

// Get retrieves obj for the given key. If key.Namespace is empty, the
// default namespace is used.
func (c *Client) Get(ctx context.Context, key client.ObjectKey, obj client.Object, opts ...client.GetOption) error {
	if key.Namespace == "" {
		key.Namespace = c.DefaultNamespace
	}
	return c.r.Get(ctx, key, obj, opts...)
}

// List retrieves list, restricted to the default namespace.
func (c *Client) List(ctx context.Context, list client.ObjectList, opts ...client.ListOption) error {
	opts = append(opts, client.InNamespace(c.DefaultNamespace))
	return c.r.List(ctx, list, opts...)
}

// Secret loads the named Secret from namespace ns.
func (c *Client) Secret(ctx context.Context, ns, name string) (*corev1.Secret, error) {
	var secret corev1.Secret
	key := client.ObjectKey{Namespace: ns, Name: name}
	if err := c.Get(ctx, key, &secret); err != nil {
		return nil, fmt.Errorf("failed to get secret %q: %w", key, err)
	}
	return &secret, nil
}

// CopySecretWriter is the subset of client.Client CopySecret needs to
// create-or-update the mirrored Secret.
type CopySecretWriter interface {
	Get(ctx context.Context, key client.ObjectKey, obj client.Object, opts ...client.GetOption) error
	Create(ctx context.Context, obj client.Object, opts ...client.CreateOption) error
	Update(ctx context.Context, obj client.Object, opts ...client.UpdateOption) error
	Scheme() *runtime.Scheme
}

// CopySecret mirrors src's data byte-for-byte into a Secret named name in
// namespace ns, owned by owner (native owner ref, controller=true,
// blockOwnerDeletion=true). It is idempotent: a second call with
// identical src data is a no-op write; differing data is updated in place.
func CopySecret(ctx context.Context, w CopySecretWriter, ns, name string, src *corev1.Secret, owner client.Object) (changed bool, err error) {
	mirror := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: ns,
		},
	}
	err = w.Get(ctx, client.ObjectKey{Namespace: ns, Name: name}, mirror)
	switch {
	case apierrors.IsNotFound(err):
		mirror = &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: ns,
			},
			Type: src.Type,
			Data: copyData(src.Data),
		}
		if err := controllerutil.SetControllerReference(owner, mirror, w.Scheme()); err != nil {
			return false, fmt.Errorf("failed to set owner reference on mirrored secret %q: %w", name, err)
		}
		if err := w.Create(ctx, mirror); err != nil {
			return false, fmt.Errorf("failed to create mirrored secret %q: %w", name, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to get mirrored secret %q: %w", name, err)
	}

	if secretDataEqual(mirror.Data, src.Data) && mirror.Type == src.Type {
		return false, nil
	}
	mirror.Type = src.Type
	mirror.Data = copyData(src.Data)
	if err := w.Update(ctx, mirror); err != nil {
		return false, fmt.Errorf("failed to update mirrored secret %q: %w", name, err)
	}
	return true, nil
}

func copyData(in map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(in))
	for k, v := range in {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func secretDataEqual(a, b map[string][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !bytes.Equal(v, bv) {
			return false
		}
	}
	return true
}
