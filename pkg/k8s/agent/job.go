/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

const jobDeleteTimeout = time.Minute

// ensureConfigMap stores RunConfig, replacing an earlier one.
func (d *Deployer) ensureConfigMap(ctx context.Context) error {
	cm := &corev1.ConfigMap{
		ObjectMeta: d.objectMeta(d.config.configMapName()),
		Data:       map[string]string{ConfigFile: string(d.config.RunConfig)},
	}
	cms := d.clientset.CoreV1().ConfigMaps(d.config.Namespace)
	_, err := cms.Create(ctx, cm, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		_, err = cms.Update(ctx, cm, metav1.UpdateOptions{})
	}
	return err
}

// ensureSecret writes Credentials unless an existing Secret was named.
func (d *Deployer) ensureSecret(ctx context.Context) error {
	if d.config.CredentialsSecret != "" || d.config.Credentials == nil {
		return nil
	}
	secret := &corev1.Secret{
		ObjectMeta: d.objectMeta(d.config.secretName()),
		Type:       corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"username": d.config.Credentials.Username,
			"password": d.config.Credentials.Password,
			"token":    d.config.Credentials.Token,
		},
	}
	secrets := d.clientset.CoreV1().Secrets(d.config.Namespace)
	_, err := secrets.Create(ctx, secret, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		_, err = secrets.Update(ctx, secret, metav1.UpdateOptions{})
	}
	return err
}

// ensureJob deletes a previous Job of the same name and creates a new one.
func (d *Deployer) ensureJob(ctx context.Context) error {
	if err := d.deleteJob(ctx); err != nil {
		return err
	}
	jobs := d.clientset.BatchV1().Jobs(d.config.Namespace)
	err := wait.PollUntilContextTimeout(ctx, d.config.PollInterval, jobDeleteTimeout, true,
		func(ctx context.Context) (bool, error) {
			_, err := jobs.Get(ctx, d.config.JobName, metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				return true, nil
			}
			return false, err
		})
	if err != nil {
		return fmt.Errorf("previous Job %s was not removed: %w", d.config.JobName, err)
	}
	_, err = jobs.Create(ctx, d.buildJob(), metav1.CreateOptions{})
	return err
}

func (d *Deployer) buildJob() *batchv1.Job {
	args := []string{
		"validate",
		"--config", path.Join(configMountPath, ConfigFile),
		"--output", d.ReportURI(),
		"--format", "json",
	}

	var env []corev1.EnvVar
	if secret := d.config.secretName(); secret != "" {
		for _, kv := range []struct{ name, key string }{
			{"RSV_USERNAME", "username"},
			{"RSV_PASSWORD", "password"},
			{"RSV_TOKEN", "token"},
		} {
			env = append(env, corev1.EnvVar{
				Name: kv.name,
				ValueFrom: &corev1.EnvVarSource{
					SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: secret},
						Key:                  kv.key,
						Optional:             ptr.To(true),
					},
				},
			})
		}
	}

	labels := d.config.labels()
	return &batchv1.Job{
		ObjectMeta: d.objectMeta(d.config.JobName),
		Spec: batchv1.JobSpec{
			BackoffLimit:            ptr.To(int32(0)),
			TTLSecondsAfterFinished: ptr.To(jobTTL),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					ServiceAccountName: d.config.ServiceAccountName,
					RestartPolicy:      corev1.RestartPolicyNever,
					NodeSelector:       d.config.NodeSelector,
					Tolerations:        d.config.Tolerations,
					SecurityContext: &corev1.PodSecurityContext{
						RunAsNonRoot: ptr.To(true),
					},
					Containers: []corev1.Container{
						{
							Name:            appName,
							Image:           d.config.Image,
							ImagePullPolicy: d.config.ImagePullPolicy,
							Args:            args,
							Env:             env,
							SecurityContext: &corev1.SecurityContext{
								AllowPrivilegeEscalation: ptr.To(false),
								ReadOnlyRootFilesystem:   ptr.To(true),
							},
							VolumeMounts: []corev1.VolumeMount{
								{Name: "config", MountPath: configMountPath, ReadOnly: true},
							},
						},
					},
					Volumes: []corev1.Volume{
						{
							Name: "config",
							VolumeSource: corev1.VolumeSource{
								ConfigMap: &corev1.ConfigMapVolumeSource{
									LocalObjectReference: corev1.LocalObjectReference{Name: d.config.configMapName()},
								},
							},
						},
					},
				},
			},
		},
	}
}

// waitForJobCompletion polls the Job until it succeeds or fails.
func (d *Deployer) waitForJobCompletion(ctx context.Context, timeout time.Duration) (bool, error) {
	var succeeded bool
	jobs := d.clientset.BatchV1().Jobs(d.config.Namespace)
	err := wait.PollUntilContextTimeout(ctx, d.config.PollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			job, err := jobs.Get(ctx, d.config.JobName, metav1.GetOptions{})
			if err != nil {
				return false, err
			}
			done, ok := jobFinished(job)
			if done {
				succeeded = ok
				slog.Debug("agent job finished", "job", job.Name, "succeeded", ok)
			}
			return done, nil
		})
	if err != nil {
		return false, errors.WrapWithContext(errors.ErrCodeTimeout, "agent job did not finish", err, map[string]any{
			"job":     d.config.JobName,
			"timeout": timeout.String(),
		})
	}
	return succeeded, nil
}

// jobFinished reports whether job reached a terminal state and whether
// that state is success.
func jobFinished(job *batchv1.Job) (bool, bool) {
	for _, c := range job.Status.Conditions {
		if c.Status != corev1.ConditionTrue {
			continue
		}
		switch c.Type {
		case batchv1.JobComplete:
			return true, true
		case batchv1.JobFailed:
			return true, false
		}
	}
	switch {
	case job.Status.Succeeded > 0:
		return true, true
	case job.Status.Failed > 0:
		return true, false
	}
	return false, false
}

func (d *Deployer) getReportFromConfigMap(ctx context.Context) ([]byte, error) {
	name := d.config.reportConfigMapName()
	cm, err := d.clientset.CoreV1().ConfigMaps(d.config.Namespace).
		Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "agent report not found", err, map[string]any{
			"namespace": d.config.Namespace,
			"configmap": name,
		})
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to read agent report", err)
	}
	data, ok := cm.Data[ReportKey]
	if !ok || data == "" {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "agent report is empty", nil, map[string]any{
			"configmap": name,
			"key":       ReportKey,
		})
	}
	return []byte(data), nil
}

func (d *Deployer) deleteJob(ctx context.Context) error {
	return ignoreNotFound(d.clientset.BatchV1().Jobs(d.config.Namespace).
		Delete(ctx, d.config.JobName, metav1.DeleteOptions{
			PropagationPolicy: ptr.To(metav1.DeletePropagationBackground),
		}))
}

func (d *Deployer) deleteConfigMap(ctx context.Context) error {
	return ignoreNotFound(d.clientset.CoreV1().ConfigMaps(d.config.Namespace).
		Delete(ctx, d.config.configMapName(), metav1.DeleteOptions{}))
}

func (d *Deployer) deleteReportConfigMap(ctx context.Context) error {
	return ignoreNotFound(d.clientset.CoreV1().ConfigMaps(d.config.Namespace).
		Delete(ctx, d.config.reportConfigMapName(), metav1.DeleteOptions{}))
}

// deleteSecret removes only a Secret the Deployer generated.
func (d *Deployer) deleteSecret(ctx context.Context) error {
	if d.config.CredentialsSecret != "" || d.config.Credentials == nil {
		return nil
	}
	return ignoreNotFound(d.clientset.CoreV1().Secrets(d.config.Namespace).
		Delete(ctx, d.config.secretName(), metav1.DeleteOptions{}))
}
