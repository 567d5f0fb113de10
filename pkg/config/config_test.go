/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Basic", cfg.Service.AuthType)
	assert.Equal(t, 30*time.Second, cfg.Service.Timeout)
	assert.Equal(t, map[string]int{"LogEntry": 20}, cfg.CollectionLimits)
	assert.True(t, cfg.OEMCheck)
	assert.Equal(t, "auto", cfg.URICheck)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, "/redfish/v1/", cfg.StartURI)
	assert.Equal(t, "Service", cfg.Mode)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "rsv.yaml", `
service:
  url: https://10.0.0.5
  authType: Session
  username: admin
  password: secret
  insecure: true
  timeout: 10s
schemaDir: /opt/schemas
mode: Tree
startURI: /redfish/v1/Chassis
collectionLimits:
  Chassis: 5
oemCheck: false
concurrency: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.5", cfg.Service.URL)
	assert.Equal(t, "Session", cfg.Service.AuthType)
	assert.True(t, cfg.Service.Insecure)
	assert.Equal(t, 10*time.Second, cfg.Service.Timeout)
	assert.Equal(t, 2, cfg.Service.Retries, "defaults survive")
	assert.Equal(t, "/opt/schemas", cfg.SchemaDir)
	assert.Equal(t, "Tree", cfg.Mode)
	assert.False(t, cfg.OEMCheck)
	assert.Equal(t, 4, cfg.Concurrency)
	// file limits are merged into the defaults
	assert.Equal(t, map[string]int{"LogEntry": 20, "Chassis": 5}, cfg.CollectionLimits)
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.ErrorCode
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.yaml") }, errors.ErrCodeNotFound},
		{"unknown key", func(t *testing.T) string { return writeFile(t, "c.yaml", "colour: red\n") }, errors.ErrCodeInvalidRequest},
		{"bad type", func(t *testing.T) string { return writeFile(t, "c.yaml", "concurrency: many\n") }, errors.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RSV_IP", "https://bmc.example")
	t.Setenv("RSV_USERNAME", "root")
	t.Setenv("RSV_PASSWORD", "calvin")
	t.Setenv("RSV_SCHEMA_DIR", "/schemas")
	t.Setenv("RSV_INSECURE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "https://bmc.example", cfg.Service.URL)
	assert.Equal(t, "root", cfg.Service.Username)
	assert.Equal(t, "calvin", cfg.Service.Password)
	assert.Equal(t, "/schemas", cfg.SchemaDir)
	assert.True(t, cfg.Service.Insecure)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnvFile(t *testing.T) {
	path := writeFile(t, "test.env", "RSV_TOKEN=abc123\nRSV_AUTH_TYPE=Token\nRSV_USERNAME=fromfile\n")
	t.Setenv("RSV_USERNAME", "fromenv")
	// godotenv sets variables that are not yet set; clear them afterwards
	t.Setenv("RSV_TOKEN", "")
	t.Setenv("RSV_AUTH_TYPE", "")
	require.NoError(t, os.Unsetenv("RSV_TOKEN"))
	require.NoError(t, os.Unsetenv("RSV_AUTH_TYPE"))

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(path))
	assert.Equal(t, "abc123", cfg.Service.Token)
	assert.Equal(t, "Token", cfg.Service.AuthType)
	assert.Equal(t, "fromenv", cfg.Service.Username)

	err := DefaultConfig().ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestApplyEnvInvalidBool(t *testing.T) {
	t.Setenv("RSV_INSECURE", "sometimes")
	err := DefaultConfig().ApplyEnv()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	valid := func() *Options {
		cfg := DefaultConfig()
		cfg.Service.URL = "https://10.0.0.5"
		cfg.Service.Username = "admin"
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"valid", func(*Options) {}, false},
		{"mockup only", func(o *Options) { o.Service.URL = ""; o.Service.Username = ""; o.MockupDir = "/mockup" }, false},
		{"no target", func(o *Options) { o.Service.URL = "" }, true},
		{"no schema dir", func(o *Options) { o.SchemaDir = "" }, true},
		{"basic without username", func(o *Options) { o.Service.Username = "" }, true},
		{"none without username", func(o *Options) { o.Service.AuthType = "none"; o.Service.Username = "" }, false},
		{"token without token", func(o *Options) { o.Service.AuthType = "Token" }, true},
		{"token", func(o *Options) { o.Service.AuthType = "Token"; o.Service.Token = "t" }, false},
		{"unknown auth", func(o *Options) { o.Service.AuthType = "Kerberos" }, true},
		{"unknown mode", func(o *Options) { o.Mode = "Subtree" }, true},
		{"start outside service", func(o *Options) { o.StartURI = "/api" }, true},
		{"unknown uri check", func(o *Options) { o.URICheck = "strict" }, true},
		{"zero limit", func(o *Options) { o.CollectionLimits = map[string]int{"LogEntry": 0} }, true},
		{"zero concurrency", func(o *Options) { o.Concurrency = 0 }, true},
		{"zero cache", func(o *Options) { o.CacheSize = 0 }, true},
		{"negative retries", func(o *Options) { o.Service.Retries = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseCollectionLimits(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]int
		wantErr bool
	}{
		{"pair", []string{"LogEntry", "20"}, map[string]int{"LogEntry": 20}, false},
		{"single argument", []string{"LogEntry 20"}, map[string]int{"LogEntry": 20}, false},
		{"colon", []string{"LogEntry:20", "Sensor:5"}, map[string]int{"LogEntry": 20, "Sensor": 5}, false},
		{"comma list", []string{"LogEntry 20, Sensor 5"}, map[string]int{"LogEntry": 20, "Sensor": 5}, false},
		{"empty", nil, map[string]int{}, false},
		{"odd tokens", []string{"LogEntry"}, nil, true},
		{"not a number", []string{"LogEntry", "many"}, nil, true},
		{"zero", []string{"LogEntry", "0"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCollectionLimits(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
