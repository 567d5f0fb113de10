/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agent runs a validation inside a Kubernetes cluster.

The Deployer creates a Job that runs "rsvctl validate" next to the BMCs
it can reach, for example on a management network only cluster nodes
are attached to. The run configuration is stored in a ConfigMap and
mounted into the pod, credentials come from a Secret and the report is
written back to a second ConfigMap that the caller reads once the Job
finishes.

# Resources

All resources live in Config.Namespace:

	ServiceAccount  <serviceAccount>
	Role            <serviceAccount>   get/create/update configmaps
	RoleBinding     <serviceAccount>
	ConfigMap       <job>-config       config.yaml
	Secret          <job>-credentials  username, password, token
	Job             <job>
	ConfigMap       <job>-report       report.json (written by the Job)

RBAC resources are created when missing and reused otherwise. The Job
is deleted and recreated on every Deploy. The credentials Secret is only
created when Config.Credentials is set; Config.CredentialsSecret names an
existing Secret instead.

# Usage

	d := agent.NewDeployer(clientset, agent.Config{
		Namespace:  "validation",
		Image:      "ghcr.io/nvidia/rsvctl:latest",
		RunConfig:  cfgYAML,
		Credentials: &agent.Credentials{Username: "admin", Password: "secret"},
	})
	if err := d.Deploy(ctx); err != nil {
		return err
	}
	succeeded, err := d.WaitForCompletion(ctx, 10*time.Minute)
	if err != nil {
		return err
	}
	report, err := d.GetReport(ctx)

A Job that fails because resources failed validation still leaves its
report behind, so GetReport is meaningful whether or not the Job
succeeded.

Tests use k8s.io/client-go/kubernetes/fake.
*/
package agent
