/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/redfish-service-validator/pkg/config"
	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
	"github.com/NVIDIA/redfish-service-validator/pkg/k8s/agent"
	k8sclient "github.com/NVIDIA/redfish-service-validator/pkg/k8s/client"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
)

const defaultAgentTimeout = 15 * time.Minute

func agentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "deploy-agent",
			Usage: "Run the validation as a Kubernetes Job and collect its report",
		},
		&cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Value:   agent.DefaultNamespace,
			Usage:   "Namespace of the agent Job",
			Sources: cli.EnvVars("RSV_NAMESPACE"),
		},
		&cli.StringFlag{
			Name:  "image",
			Usage: "Agent container image (default: ghcr.io/nvidia/rsvctl:<version>)",
		},
		&cli.StringFlag{
			Name:  "job-name",
			Value: agent.DefaultJobName,
			Usage: "Name of the agent Job",
		},
		&cli.StringFlag{
			Name:  "credentials-secret",
			Usage: "Existing Secret with username, password and token keys for the agent",
		},
		&cli.StringSliceFlag{
			Name:  "node-selector",
			Usage: "Node selector for the agent pod as key=value (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "agent-timeout",
			Value: defaultAgentTimeout,
			Usage: "How long to wait for the agent Job",
		},
		&cli.BoolFlag{
			Name:  "cleanup",
			Value: true,
			Usage: "Delete the agent Job and its inputs afterwards",
		},
		&cli.BoolFlag{
			Name:  "cleanup-rbac",
			Usage: "Also delete the agent ServiceAccount, Role and RoleBinding",
		},
	}
}

// newAgentConfig describes the Job for opts. Credentials never enter the
// run configuration; they travel in a Secret.
func newAgentConfig(cmd *cli.Command, opts *config.Options) (agent.Config, error) {
	if opts.Service.URL == "" {
		return agent.Config{}, errors.New(errors.ErrCodeInvalidRequest, "--deploy-agent requires a service URL")
	}
	if opts.MockupDir != "" {
		return agent.Config{}, errors.New(errors.ErrCodeInvalidRequest, "--mockup cannot be used with --deploy-agent")
	}
	selector, err := parseNodeSelector(cmd.StringSlice("node-selector"))
	if err != nil {
		return agent.Config{}, err
	}

	run := *opts
	run.Service.Username = ""
	run.Service.Password = ""
	run.Service.Token = ""
	run.Output = ""
	run.Format = ""
	run.MetricsAddress = ""
	if !cmd.IsSet("auth-type") {
		// The Job infers the auth type again from the credentials it reads.
		run.Service.AuthType = ""
	}
	data, err := yaml.Marshal(&run)
	if err != nil {
		return agent.Config{}, errors.Wrap(errors.ErrCodeInternal, "failed to encode agent configuration", err)
	}

	image := cmd.String("image")
	if image == "" {
		image = "ghcr.io/nvidia/rsvctl:" + imageTag()
	}
	cfg := agent.Config{
		Namespace:          cmd.String("namespace"),
		JobName:            cmd.String("job-name"),
		ServiceAccountName: cmd.String("job-name"),
		Image:              image,
		RunConfig:          data,
		CredentialsSecret:  cmd.String("credentials-secret"),
		NodeSelector:       selector,
	}
	if cfg.CredentialsSecret == "" && (opts.Service.Username != "" || opts.Service.Token != "") {
		cfg.Credentials = &agent.Credentials{
			Username: opts.Service.Username,
			Password: opts.Service.Password,
			Token:    opts.Service.Token,
		}
	}
	return cfg, nil
}

func imageTag() string {
	if version == "dev" || version == "" {
		return "latest"
	}
	return strings.TrimPrefix(version, "v")
}

func parseNodeSelector(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid --node-selector %q, want key=value", p))
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}

// runAgentValidation deploys the agent for opts and returns its report.
func runAgentValidation(ctx context.Context, cmd *cli.Command, opts *config.Options) (*result.Report, error) {
	cfg, err := newAgentConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	clientset, _, err := k8sclient.BuildKubeClient(cmd.String("kubeconfig"))
	if err != nil {
		return nil, err
	}
	return runAgent(ctx, agent.NewDeployer(clientset, cfg), cmd.Duration("agent-timeout"), cmd.Bool("cleanup"), agent.CleanupOptions{
		RemoveRBAC: cmd.Bool("cleanup-rbac"),
	})
}

func runAgent(ctx context.Context, d *agent.Deployer, timeout time.Duration, cleanup bool, cleanupOpts agent.CleanupOptions) (*result.Report, error) {
	if err := d.Deploy(ctx); err != nil {
		return nil, err
	}
	if cleanup {
		defer func() {
			if err := d.Cleanup(context.WithoutCancel(ctx), cleanupOpts); err != nil {
				slog.Warn("failed to clean up agent", "error", err)
			}
		}()
	}

	succeeded, err := d.WaitForCompletion(ctx, timeout)
	if err != nil {
		return nil, err
	}
	data, err := d.GetReport(ctx)
	if err != nil {
		return nil, err
	}
	r, err := serializer.NewReader(serializer.FormatJSON, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var rep result.Report
	if err := r.Deserialize(&rep); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to decode agent report", err)
	}
	slog.Info("agent finished",
		"succeeded", succeeded,
		"resources", rep.Summary.Resources,
		"failed", rep.Summary.Failed)
	return &rep, nil
}
