/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/redfish-service-validator/pkg/catalog"
	"github.com/NVIDIA/redfish-service-validator/pkg/client"
	"github.com/NVIDIA/redfish-service-validator/pkg/config"
	"github.com/NVIDIA/redfish-service-validator/pkg/crawler"
	"github.com/NVIDIA/redfish-service-validator/pkg/header"
	"github.com/NVIDIA/redfish-service-validator/pkg/result"
	"github.com/NVIDIA/redfish-service-validator/pkg/serializer"
	"github.com/NVIDIA/redfish-service-validator/pkg/server"
	"github.com/NVIDIA/redfish-service-validator/pkg/validator"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Crawl a Redfish service and validate every resource against the schemas",
		Description: `Crawls a Redfish service from its root (or from --uri) and validates each
resource payload against the CSDL schema documents in --schema-dir.

# Modes

  - Service: follow every link reachable from the start URI (default)
  - Tree:    follow only links below the start URI
  - Single:  validate the start URI alone

# Configuration

Settings are read in order from defaults, the --config YAML file, the
environment (RSV_IP, RSV_USERNAME, RSV_PASSWORD, RSV_TOKEN, RSV_AUTH_TYPE,
RSV_SCHEMA_DIR, RSV_MOCKUP_DIR, RSV_INSECURE, LOG_LEVEL, optionally from
--env-file or .env) and finally flags.

# Examples

Validate a live service with basic auth:
  rsvctl validate --ip https://bmc.example.com -u admin -p secret

Validate one subtree and write YAML:
  rsvctl validate --ip bmc.example.com -u admin -p secret \
    --mode tree --uri /redfish/v1/Chassis --output report.yaml

Validate a mockup without a service:
  rsvctl validate --mockup ./mockups/public-rackmount1

Store the report in a ConfigMap:
  rsvctl validate --config rsv.yaml --output cm://monitoring/bmc-report

Run the validation inside the cluster, from a node that reaches the BMC:
  rsvctl validate --ip 10.0.0.5 --credentials-secret bmc-admin \
    --deploy-agent --namespace validation --node-selector bmc-network=true

The command exits non-zero when any resource fails validation. The
report is written even when the crawl is aborted.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("RSV_CONFIG"),
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Environment file to load before reading RSV_* variables (default: .env when present)",
			},
			&cli.StringFlag{
				Name:    "ip",
				Aliases: []string{"i"},
				Usage:   "Service URL or host, e.g. https://10.0.0.5",
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account user name",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Session token for Token authentication",
			},
			&cli.StringFlag{
				Name:  "auth-type",
				Usage: "Authentication: None, Basic, Session or Token",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "Skip TLS certificate verification",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Retries after a transport error",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Maximum requests per second to the service (0 for unlimited)",
			},
			schemaDirFlag(),
			&cli.StringFlag{
				Name:    "mockup",
				Aliases: []string{"m"},
				Usage:   "Mockup directory served in place of (or in front of) the service",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Crawl mode: Service, Tree or Single",
			},
			&cli.StringFlag{
				Name:  "uri",
				Usage: "URI to start from",
			},
			&cli.StringSliceFlag{
				Name:  "collection-limit",
				Usage: "Maximum members followed for a collection type, e.g. --collection-limit LogEntry:20 (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "oem-check",
				Value: true,
				Usage: "Validate OEM objects and follow OEM links",
			},
			&cli.StringFlag{
				Name:  "uri-check",
				Usage: "Check @odata.id against schema URI patterns: auto, on or off",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Resources fetched and validated in parallel",
			},
			&cli.IntFlag{
				Name:  "cache-size",
				Usage: "Fetched responses kept in memory",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Free text recorded in the report metadata",
			},
			&cli.StringFlag{
				Name:  "metrics-address",
				Usage: "Serve /metrics, /health and /v1/status on this address while crawling",
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		}, agentFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}

			outFormat, err := parseOutputFormat(opts.Format, opts.Output, serializer.FormatTable)
			if err != nil {
				return err
			}

			var rep *result.Report
			var runErr error
			if cmd.Bool("deploy-agent") {
				rep, runErr = runAgentValidation(ctx, cmd, opts)
			} else {
				rep, runErr = runValidation(ctx, opts)
			}
			if rep != nil && (runErr == nil || rep.Summary.Resources > 0) {
				if err := writeOutput(ctx, outFormat, opts.Output, cmd.String("kubeconfig"), rep); err != nil {
					slog.Error("failed to write report", "error", err, "output", opts.Output)
					if runErr == nil {
						return err
					}
				}
			}
			if runErr != nil {
				return runErr
			}
			if !rep.Passed() {
				return cli.Exit(fmt.Sprintf("validation failed: %d of %d resources failed", rep.Summary.Failed, rep.Summary.Resources), exitError)
			}
			return nil
		},
	}
}

// loadOptions layers the config file, environment and flags over the
// defaults and validates the result.
func loadOptions(cmd *cli.Command) (*config.Options, error) {
	opts := config.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		var err error
		if opts, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := opts.ApplyEnv(cmd.StringSlice("env-file")...); err != nil {
		return nil, err
	}

	setString := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	setString("ip", &opts.Service.URL)
	setString("username", &opts.Service.Username)
	setString("password", &opts.Service.Password)
	setString("token", &opts.Service.Token)
	setString("auth-type", &opts.Service.AuthType)
	setString("schema-dir", &opts.SchemaDir)
	setString("mockup", &opts.MockupDir)
	setString("mode", &opts.Mode)
	setString("uri", &opts.StartURI)
	setString("uri-check", &opts.URICheck)
	setString("description", &opts.Description)
	setString("metrics-address", &opts.MetricsAddress)
	setString("output", &opts.Output)
	setString("format", &opts.Format)

	if cmd.IsSet("insecure") {
		opts.Service.Insecure = cmd.Bool("insecure")
	}
	if cmd.IsSet("timeout") {
		opts.Service.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("retries") {
		opts.Service.Retries = cmd.Int("retries")
	}
	if cmd.IsSet("rate-limit") {
		opts.Service.RateLimit = cmd.Float("rate-limit")
	}
	if cmd.IsSet("oem-check") {
		opts.OEMCheck = cmd.Bool("oem-check")
	}
	if cmd.IsSet("concurrency") {
		opts.Concurrency = cmd.Int("concurrency")
	}
	if cmd.IsSet("cache-size") {
		opts.CacheSize = cmd.Int("cache-size")
	}
	if cmd.IsSet("collection-limit") {
		limits, err := config.ParseCollectionLimits(cmd.StringSlice("collection-limit"))
		if err != nil {
			return nil, fmt.Errorf("invalid --collection-limit: %w", err)
		}
		for k, v := range limits {
			opts.CollectionLimits[k] = v
		}
	}
	// Without an explicit auth type the credentials pick one.
	if !cmd.IsSet("auth-type") && opts.Service.AuthType == string(client.AuthBasic) && opts.Service.Username == "" {
		switch {
		case opts.Service.Token != "":
			opts.Service.AuthType = string(client.AuthToken)
		case opts.Service.URL != "":
			opts.Service.AuthType = string(client.AuthNone)
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// newGetter builds the service client, fronted by a mockup when one is
// configured.
func newGetter(opts *config.Options) (client.Getter, string, error) {
	var getter client.Getter
	service := opts.Service.URL
	if opts.Service.URL != "" {
		authType, err := client.ParseAuthType(opts.Service.AuthType)
		if err != nil {
			return nil, "", err
		}
		httpOpts := []client.Option{
			client.WithInsecure(opts.Service.Insecure),
			client.WithTimeout(opts.Service.Timeout),
			client.WithRetries(opts.Service.Retries),
			client.WithRateLimit(opts.Service.RateLimit, opts.Service.RateBurst),
			client.WithUserAgent(name + "/" + version),
		}
		switch authType {
		case client.AuthToken:
			httpOpts = append(httpOpts, client.WithToken(opts.Service.Token))
		default:
			httpOpts = append(httpOpts, client.WithAuth(authType, opts.Service.Username, opts.Service.Password))
		}
		h, err := client.NewHTTP(opts.Service.URL, httpOpts...)
		if err != nil {
			return nil, "", err
		}
		getter = h
		service = h.BaseURL()
	}
	if opts.MockupDir != "" {
		m, err := client.NewMockup(opts.MockupDir, getter)
		if err != nil {
			return nil, "", err
		}
		getter = m
		if service == "" {
			service = "mockup:" + opts.MockupDir
		}
	}
	return getter, service, nil
}

// runValidation loads the schemas and crawls the service. A non-nil
// report is returned whenever the crawl started.
func runValidation(ctx context.Context, opts *config.Options) (*result.Report, error) {
	var srv *server.Server
	agg := result.NewAggregator()

	if opts.MetricsAddress != "" {
		cfg := server.DefaultConfig()
		cfg.Address = opts.MetricsAddress
		srv = server.New(
			server.WithName(name),
			server.WithVersion(version),
			server.WithConfig(cfg),
			server.WithStatus(func() any { return newProgress(agg) }),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	srvCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()
	if srv != nil {
		g.Go(func() error { return srv.Run(srvCtx) })
	}

	var rep *result.Report
	g.Go(func() error {
		defer stopServer()
		var err error
		rep, err = crawl(gctx, opts, agg, srv)
		return err
	})

	err := g.Wait()
	return rep, err
}

func crawl(ctx context.Context, opts *config.Options, agg *result.Aggregator, srv *server.Server) (*result.Report, error) {
	getter, service, err := newGetter(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cat, err := catalog.LoadDirectory(ctx, opts.SchemaDir)
	if err != nil {
		return nil, err
	}
	slog.Info("schemas loaded",
		"dir", opts.SchemaDir,
		"documents", len(cat.Documents()),
		"version", cat.PackVersion,
		"errors", len(cat.Errors),
		"duration", time.Since(start))
	if srv != nil {
		srv.SetReady(true)
	}

	mode, err := crawler.ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}

	fetcher := crawler.NewFetcher(getter, opts.CacheSize)
	v := validator.New(cat,
		validator.WithOEMCheck(opts.OEMCheck),
		validator.WithURICheck(validator.ParseURICheck(opts.URICheck)),
		validator.WithCollectionLimits(opts.CollectionLimits),
		validator.WithReferenceResolver(fetcher),
	)
	c := crawler.New(fetcher, v,
		crawler.WithMode(mode),
		crawler.WithConcurrency(opts.Concurrency),
		crawler.WithAggregator(agg),
		crawler.WithHeaderOptions(
			header.WithMetadata(header.MetadataService, service),
			header.WithMetadata(header.MetadataSchemaVersion, cat.PackVersion),
			header.WithMetadata(header.MetadataToolVersion, version),
			header.WithMetadata(header.MetadataDescription, opts.Description),
			header.WithMetadata(header.MetadataMode, string(mode)),
		),
	)
	return c.Run(ctx, opts.StartURI)
}

// progress is served at /v1/status while a crawl runs.
type progress struct {
	Validated int           `json:"validated"`
	Counts    result.Counts `json:"counts"`
}

func newProgress(agg *result.Aggregator) progress {
	return progress{Validated: agg.Len(), Counts: agg.Counts()}
}
