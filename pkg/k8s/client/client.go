/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package client builds Kubernetes clients for ConfigMap report output
// and the in-cluster agent.
package client

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

var (
	clientOnce   sync.Once
	cachedClient kubernetes.Interface
	clientErr    error
)

// GetKubeClient returns a process-wide client, building it on first call
// from KUBECONFIG, ~/.kube/config or the in-cluster service account.
func GetKubeClient() (kubernetes.Interface, error) {
	clientOnce.Do(func() {
		cachedClient, _, clientErr = BuildKubeClient("")
	})
	return cachedClient, clientErr
}

// BuildKubeClient creates a client from kubeconfig. An empty path uses
// KUBECONFIG, then ~/.kube/config when it exists, then in-cluster
// configuration.
func BuildKubeClient(kubeconfig string) (kubernetes.Interface, *rest.Config, error) {
	kubeconfig = ResolveKubeconfig(kubeconfig)

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to build kube config", err)
	}
	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to create kubernetes client", err)
	}
	slog.Debug("created kubernetes client", "host", config.Host, "kubeconfig", kubeconfig)
	return cs, config, nil
}

// ResolveKubeconfig returns the kubeconfig path BuildKubeClient uses for
// path. The empty result selects in-cluster configuration.
func ResolveKubeconfig(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}
