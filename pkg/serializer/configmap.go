/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	k8sclient "github.com/NVIDIA/redfish-service-validator/pkg/k8s/client"
)

const (
	configMapManagedBy = "rsvctl"
	labelManagedBy     = "app.kubernetes.io/managed-by"
	annotationUpdated  = "redfish-service-validator/updated"
)

// ConfigMapWriter stores serialized output in a ConfigMap under the key
// report.<ext>, creating the ConfigMap when it does not exist.
type ConfigMapWriter struct {
	client    kubernetes.Interface
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a writer for namespace/name. A nil client is
// resolved from the environment on first use.
func NewConfigMapWriter(client kubernetes.Interface, namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		format = FormatJSON
	}
	return &ConfigMapWriter{client: client, namespace: namespace, name: name, format: format}
}

// Key returns the data key the output is stored under.
func (c *ConfigMapWriter) Key() string {
	return "report." + c.format.extension()
}

// Serialize implements Serializer.
func (c *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	b, err := Encode(c.format, data)
	if err != nil {
		return err
	}
	if c.client == nil {
		cs, err := k8sclient.GetKubeClient()
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
		c.client = cs
	}

	cms := c.client.CoreV1().ConfigMaps(c.namespace)
	now := time.Now().UTC().Format(time.RFC3339)
	existing, err := cms.Get(ctx, c.name, metav1.GetOptions{})
	switch {
	case apierrors.IsNotFound(err):
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:        c.name,
				Namespace:   c.namespace,
				Labels:      map[string]string{labelManagedBy: configMapManagedBy},
				Annotations: map[string]string{annotationUpdated: now},
			},
			Data: map[string]string{c.Key(): string(b)},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create ConfigMap %s/%s: %w", c.namespace, c.name, err)
		}
		slog.Debug("created ConfigMap", "namespace", c.namespace, "name", c.name, "key", c.Key())
		return nil
	case err != nil:
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", c.namespace, c.name, err)
	}

	if existing.Data == nil {
		existing.Data = map[string]string{}
	}
	if existing.Annotations == nil {
		existing.Annotations = map[string]string{}
	}
	existing.Data[c.Key()] = string(b)
	existing.Annotations[annotationUpdated] = now
	if _, err := cms.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %w", c.namespace, c.name, err)
	}
	slog.Debug("updated ConfigMap", "namespace", c.namespace, "name", c.name, "key", c.Key())
	return nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (string, string, error) {
	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)
	namespace, name, ok := strings.Cut(rest, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q, expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return namespace, name, nil
}
