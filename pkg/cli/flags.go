/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
)

// Flags shared by several commands. Each call returns a new flag so
// commands never share parsed state.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path, '-' for stdout or cm://namespace/name for a ConfigMap",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("Output format (%v); default derived from the output file extension", serializer.SupportedFormats()),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file (overrides KUBECONFIG env and default ~/.kube/config)",
	}
}

func schemaDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "schema-dir",
		Aliases: []string{"s"},
		Usage:   "Directory of CSDL schema documents",
		Sources: cli.EnvVars("RSV_SCHEMA_DIR"),
	}
}
