/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

// Deployer manages the resources of one in-cluster validation.
type Deployer struct {
	clientset kubernetes.Interface
	config    Config
}

// NewDeployer creates a Deployer. Empty Config fields take the package
// defaults.
func NewDeployer(clientset kubernetes.Interface, config Config) *Deployer {
	config.setDefaults()
	return &Deployer{clientset: clientset, config: config}
}

type step struct {
	what string
	fn   func(context.Context) error
}

// ReportURI is the cm:// output the Job writes its report to.
func (d *Deployer) ReportURI() string {
	return fmt.Sprintf("cm://%s/%s", d.config.Namespace, d.config.reportConfigMapName())
}

// Deploy creates the RBAC resources, the run configuration and the Job.
func (d *Deployer) Deploy(ctx context.Context) error {
	if len(d.config.RunConfig) == 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "agent run configuration is empty")
	}
	steps := []step{
		{"ServiceAccount", d.ensureServiceAccount},
		{"Role", d.ensureRole},
		{"RoleBinding", d.ensureRoleBinding},
		{"ConfigMap", d.ensureConfigMap},
		{"Secret", d.ensureSecret},
		{"Job", d.ensureJob},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create "+s.what, err, map[string]any{
				"namespace": d.config.Namespace,
			})
		}
	}
	slog.Info("agent deployed",
		"namespace", d.config.Namespace,
		"job", d.config.JobName,
		"image", d.config.Image,
		"report", d.ReportURI())
	return nil
}

// WaitForCompletion blocks until the Job finishes and reports whether it
// succeeded. A Job whose validation failed still counts as finished.
func (d *Deployer) WaitForCompletion(ctx context.Context, timeout time.Duration) (bool, error) {
	return d.waitForJobCompletion(ctx, timeout)
}

// GetReport returns the JSON report the Job stored.
func (d *Deployer) GetReport(ctx context.Context) ([]byte, error) {
	return d.getReportFromConfigMap(ctx)
}

// Cleanup removes the Job and its inputs, and optionally the RBAC
// resources and the report.
func (d *Deployer) Cleanup(ctx context.Context, opts CleanupOptions) error {
	deletes := []step{
		{"Job", d.deleteJob},
		{"ConfigMap", d.deleteConfigMap},
		{"Secret", d.deleteSecret},
	}
	if !opts.KeepReport {
		deletes = append(deletes, step{"report ConfigMap", d.deleteReportConfigMap})
	}
	if opts.RemoveRBAC {
		deletes = append(deletes,
			step{"RoleBinding", d.deleteRoleBinding},
			step{"Role", d.deleteRole},
			step{"ServiceAccount", d.deleteServiceAccount},
		)
	}
	for _, del := range deletes {
		if err := del.fn(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to delete "+del.what, err)
		}
	}
	slog.Debug("agent resources removed", "namespace", d.config.Namespace, "rbac", opts.RemoveRBAC)
	return nil
}

// ignoreAlreadyExists makes creation idempotent.
func ignoreAlreadyExists(err error) error {
	if apierrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}

// ignoreNotFound makes deletion idempotent.
func ignoreNotFound(err error) error {
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}
