/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// An empty format follows the extension of a file output, or fallback for
// stdout and ConfigMap outputs.
func parseOutputFormat(format, output string, fallback serializer.Format) (serializer.Format, error) {
	if format == "" {
		if output != "" && output != serializer.StdoutURI && !strings.HasPrefix(output, serializer.ConfigMapURIScheme) {
			return serializer.FormatFromPath(output), nil
		}
		return fallback, nil
	}
	outFormat := serializer.Format(strings.ToLower(format))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %v", format, serializer.SupportedFormats())
	}
	return outFormat, nil
}

// writeOutput serializes data to output and closes the destination.
func writeOutput(ctx context.Context, format serializer.Format, output, kubeconfig string, data any) error {
	ser, err := serializer.NewFileWriterOrStdoutWithKubeconfig(format, output, kubeconfig)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}()
	return ser.Serialize(ctx, data)
}
