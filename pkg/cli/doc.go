/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the rsvctl command line.
//
// # Commands
//
// validate - Crawl a service and validate it:
//
//	rsvctl validate --ip https://bmc.example.com -u admin -p secret
//	rsvctl validate --config rsv.yaml --mode tree --uri /redfish/v1/Chassis
//	rsvctl validate --mockup ./mockup --output report.yaml
//	rsvctl validate --config rsv.yaml --output cm://monitoring/bmc-report
//
// The crawl starts at the service root, or at --uri, and validates every
// reachable resource against the CSDL documents in --schema-dir. The report
// is written to --output in --format even when the crawl is aborted by an
// authentication failure or interrupt. With --metrics-address the crawl
// serves Prometheus metrics, health probes and progress at /v1/status.
//
// With --deploy-agent the validation runs as a Kubernetes Job in
// --namespace instead, for services only reachable from inside the cluster.
// Credentials are passed to the Job in a Secret (or --credentials-secret)
// and the report is collected from a ConfigMap once the Job finishes:
//
//	rsvctl validate --ip 10.0.0.5 --credentials-secret bmc-admin \
//	  --deploy-agent --namespace validation --node-selector bmc-network=true
//
// schema - Inspect a schema directory:
//
//	rsvctl schema --schema-dir ./SchemaFiles/metadata
//	rsvctl schema --namespace Chassis
//	rsvctl schema --type Chassis.v1_20_0.Chassis
//
// report - Re-render a saved report:
//
//	rsvctl report --input report.json --failed-only
//
// serve - Serve the schema directory over HTTP:
//
//	rsvctl serve --schema-dir ./SchemaFiles/metadata --address :9090
//
// version - Print build information.
//
// # Configuration
//
// validate reads, in order: built-in defaults, the --config YAML file, the
// environment (after loading --env-file or .env) and flags. See package
// config for the file format and variables.
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Formats
//
//	table  Summary, per-resource counts and every WARN and FAIL entry (default)
//	json   Complete report
//	yaml   Complete report
//
// With an output file and no --format the format follows the extension.
//
// # Exit Codes
//
//	0  Success, no resource failed
//	1  Validation failures or execution error
//	2  Interrupted or timed out
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/redfish-service-validator/pkg/cli.version=1.0.0'"
package cli
