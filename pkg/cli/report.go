/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/redfish-service-validator/pkg/result"
	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Render a saved validation report in another format",
		Description: `Reads a JSON or YAML report written by 'rsvctl validate' and writes it
again, by default as a table. With --failed-only only resources with
failures are kept.

# Examples

  rsvctl report --input report.json
  rsvctl report --input report.yaml --failed-only --format json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "Report file (JSON or YAML)",
			},
			&cli.BoolFlag{
				Name:  "failed-only",
				Usage: "Keep only failed resources",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd.String("format"), cmd.String("output"), serializer.FormatTable)
			if err != nil {
				return err
			}

			in := cmd.String("input")
			rep, err := readReport(in)
			if err != nil {
				return err
			}
			if cmd.Bool("failed-only") {
				rep.Resources = failedResources(rep.Resources)
			}
			slog.Debug("rendering report", "input", in, "resources", len(rep.Resources), "format", outFormat)
			return writeOutput(ctx, outFormat, cmd.String("output"), cmd.String("kubeconfig"), rep)
		},
	}
}

func readReport(path string) (*result.Report, error) {
	r, err := serializer.NewFileReader(serializer.FormatFromPath(path), path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			slog.Warn("failed to close report", "error", err)
		}
	}()

	var rep result.Report
	if err := r.Deserialize(&rep); err != nil {
		return nil, fmt.Errorf("failed to read report %q: %w", path, err)
	}
	return &rep, nil
}

func failedResources(in []*result.Resource) []*result.Resource {
	out := make([]*result.Resource, 0, len(in))
	for _, r := range in {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
