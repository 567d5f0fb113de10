/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"time"

	corev1 "k8s.io/api/core/v1"
)

const (
	DefaultNamespace      = "default"
	DefaultJobName        = "rsvctl"
	DefaultServiceAccount = "rsvctl"
	DefaultImage          = "ghcr.io/nvidia/rsvctl:latest"

	// ConfigFile is the key of the run configuration in the config
	// ConfigMap and its file name inside the pod.
	ConfigFile = "config.yaml"
	// ReportKey is the data key the Job stores its JSON report under.
	ReportKey = "report.json"

	configMountPath     = "/etc/rsvctl"
	defaultPollInterval = 2 * time.Second
	jobTTL              = int32(3600)

	labelApp       = "app.kubernetes.io/name"
	labelManagedBy = "app.kubernetes.io/managed-by"
	appName        = "rsvctl"
)

// Config describes one in-cluster validation.
type Config struct {
	Namespace          string
	ServiceAccountName string
	JobName            string
	Image              string
	ImagePullPolicy    corev1.PullPolicy

	// RunConfig is the YAML configuration the Job validates with. Its
	// output is overridden to point at the report ConfigMap.
	RunConfig []byte

	// CredentialsSecret names an existing Secret with username, password
	// and token keys. It wins over Credentials.
	CredentialsSecret string
	Credentials       *Credentials

	NodeSelector map[string]string
	Tolerations  []corev1.Toleration

	// PollInterval is how often WaitForCompletion checks the Job.
	PollInterval time.Duration
}

// Credentials are stored in the generated Secret.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// CleanupOptions controls Cleanup.
type CleanupOptions struct {
	// RemoveRBAC also deletes the ServiceAccount, Role and RoleBinding.
	RemoveRBAC bool
	// KeepReport leaves the report ConfigMap in place.
	KeepReport bool
}

func (c *Config) setDefaults() {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.JobName == "" {
		c.JobName = DefaultJobName
	}
	if c.ServiceAccountName == "" {
		c.ServiceAccountName = DefaultServiceAccount
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.ImagePullPolicy == "" {
		c.ImagePullPolicy = corev1.PullIfNotPresent
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
}

func (c *Config) configMapName() string { return c.JobName + "-config" }

func (c *Config) reportConfigMapName() string { return c.JobName + "-report" }

func (c *Config) secretName() string {
	if c.CredentialsSecret != "" {
		return c.CredentialsSecret
	}
	if c.Credentials != nil {
		return c.JobName + "-credentials"
	}
	return ""
}

func (c *Config) labels() map[string]string {
	return map[string]string{
		labelApp:       appName,
		labelManagedBy: appName,
	}
}
