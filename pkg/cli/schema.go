/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/redfish-service-validator/pkg/api"
	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/defaults"
	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
	"github.com/NVIDIA/redfish-service-validator/pkg/server"
)

func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:                  "schema",
		EnableShellCompletion: true,
		Usage:                 "Summarize a schema directory or describe one type",
		Description: `Loads the CSDL documents in --schema-dir and prints:
  - the schema pack version and every loaded document
  - with --namespace, the versions of one namespace
  - with --type, the properties of a qualified type including inherited ones

Documents that failed to load are listed under errors.

# Examples

  rsvctl schema --schema-dir ./SchemaFiles/metadata
  rsvctl schema --namespace Chassis
  rsvctl schema --type Chassis.v1_20_0.Chassis --format yaml`,
		Flags: []cli.Flag{
			schemaDirFlag(),
			&cli.StringFlag{
				Name:  "namespace",
				Usage: "List the versions of an unversioned namespace, e.g. Chassis",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Describe a qualified type, e.g. Chassis.v1_20_0.Chassis",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd.String("format"), cmd.String("output"), serializer.FormatYAML)
			if err != nil {
				return err
			}

			dir := cmd.String("schema-dir")
			if dir == "" {
				dir = defaults.SchemaDir
			}
			cat, err := catalog.LoadDirectory(ctx, dir)
			if err != nil {
				return err
			}

			var data any
			switch {
			case cmd.String("type") != "":
				data, err = api.DescribeType(cat, cmd.String("type"))
			case cmd.String("namespace") != "":
				data, err = api.DescribeNamespace(cat, cmd.String("namespace"))
			default:
				data = api.Summarize(cat, dir)
			}
			if err != nil {
				return err
			}
			return writeOutput(ctx, outFormat, cmd.String("output"), cmd.String("kubeconfig"), data)
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve schema lookups over HTTP",
		Description: `Loads --schema-dir and serves:

  GET /v1/schemas                  loaded documents
  GET /v1/namespaces?name=Chassis  versions of a namespace
  GET /v1/types?name=<qualified>   a type with inherited properties

together with /health, /ready (ready once schemas are loaded) and /metrics.

# Examples

  rsvctl serve --schema-dir ./SchemaFiles/metadata --address :9090`,
		Flags: []cli.Flag{
			schemaDirFlag(),
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Value:   defaults.ServerAddress,
				Usage:   "Listen address",
				Sources: cli.EnvVars("METRICS_ADDRESS"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("schema-dir")
			if dir == "" {
				dir = defaults.SchemaDir
			}
			cfg := server.DefaultConfig()
			cfg.Address = cmd.String("address")
			return api.Serve(ctx, dir, version, cfg)
		},
	}
}
