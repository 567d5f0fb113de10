/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package config holds the options of a validation run.
//
// Options start from DefaultConfig, are optionally overlaid with a YAML
// file by Load and then with environment variables by ApplyEnv. CLI flags
// are applied last by the caller.
//
// # YAML
//
//	service:
//	  url: https://10.0.0.5
//	  authType: Session
//	  username: admin
//	  password: secret
//	  insecure: true
//	  timeout: 10s
//	schemaDir: ./SchemaFiles/metadata
//	mode: Tree
//	startURI: /redfish/v1/Chassis
//	collectionLimits:
//	  LogEntry: 20
//
// # Environment
//
// ApplyEnv loads a .env file when present (github.com/joho/godotenv) and
// then reads RSV_IP, RSV_USERNAME, RSV_PASSWORD, RSV_TOKEN, RSV_AUTH_TYPE,
// RSV_SCHEMA_DIR, RSV_MOCKUP_DIR and LOG_LEVEL.
package config
