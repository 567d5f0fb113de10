/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/redfish-service-validator/pkg/client"
	"github.com/NVIDIA/redfish-service-validator/pkg/crawler"
	"github.com/NVIDIA/redfish-service-validator/pkg/defaults"
	"github.com/NVIDIA/redfish-service-validator/pkg/errors"
	"github.com/NVIDIA/redfish-service-validator/pkg/validator"
)

// Service describes how to reach the Redfish service.
type Service struct {
	URL       string        `yaml:"url,omitempty"`
	AuthType  string        `yaml:"authType,omitempty"`
	Username  string        `yaml:"username,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	Token     string        `yaml:"token,omitempty"`
	Insecure  bool          `yaml:"insecure,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Retries   int           `yaml:"retries"`
	RateLimit float64       `yaml:"rateLimit,omitempty"`
	RateBurst int           `yaml:"rateBurst,omitempty"`
}

// Options configures a validation run.
type Options struct {
	Service Service `yaml:"service"`

	SchemaDir   string `yaml:"schemaDir"`
	MockupDir   string `yaml:"mockupDir,omitempty"`
	Mode        string `yaml:"mode"`
	StartURI    string `yaml:"startURI"`
	Description string `yaml:"description,omitempty"`

	CollectionLimits map[string]int `yaml:"collectionLimits,omitempty"`
	OEMCheck         bool           `yaml:"oemCheck"`
	URICheck         string         `yaml:"uriCheck"`

	CacheSize   int `yaml:"cacheSize"`
	Concurrency int `yaml:"concurrency"`

	Output         string `yaml:"output"`
	Format         string `yaml:"format"`
	MetricsAddress string `yaml:"metricsAddress,omitempty"`
	LogLevel       string `yaml:"logLevel"`
}

// DefaultConfig returns the defaults of a run.
func DefaultConfig() *Options {
	return &Options{
		Service: Service{
			AuthType: string(client.AuthBasic),
			Timeout:  defaults.ClientTimeout,
			Retries:  defaults.ClientRetries,
		},
		SchemaDir:        defaults.SchemaDir,
		Mode:             string(crawler.ModeService),
		StartURI:         crawler.RootURI,
		CollectionLimits: map[string]int{"LogEntry": defaults.LogEntryLimit},
		OEMCheck:         true,
		URICheck:         string(validator.URICheckAuto),
		CacheSize:        defaults.CacheSize,
		Concurrency:      defaults.Concurrency,
		Output:           "-",
		Format:           "table",
		LogLevel:         slog.LevelInfo.String(),
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to read config %q", path), err)
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("failed to parse config %q", path), err)
	}
	slog.Debug("loaded config", "path", path)
	return cfg, nil
}

// ApplyEnv overrides o from the environment. files are env files to load
// first; without files a .env in the working directory is loaded when it
// exists. Variables already set in the environment win over file values.
func (o *Options) ApplyEnv(files ...string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, "failed to load env file", err)
		}
	} else if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("RSV_IP", &o.Service.URL)
	setString("RSV_USERNAME", &o.Service.Username)
	setString("RSV_PASSWORD", &o.Service.Password)
	setString("RSV_TOKEN", &o.Service.Token)
	setString("RSV_AUTH_TYPE", &o.Service.AuthType)
	setString("RSV_SCHEMA_DIR", &o.SchemaDir)
	setString("RSV_MOCKUP_DIR", &o.MockupDir)
	setString("LOG_LEVEL", &o.LogLevel)

	if v := os.Getenv("RSV_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid RSV_INSECURE", err)
		}
		o.Service.Insecure = b
	}
	return nil
}

// Validate checks o for consistency.
func (o *Options) Validate() error {
	if o.Service.URL == "" && o.MockupDir == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "a service URL or a mockup directory is required")
	}
	if o.SchemaDir == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "a schema directory is required")
	}
	auth, err := client.ParseAuthType(o.Service.AuthType)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid auth type", err)
	}
	switch {
	case (auth == client.AuthBasic || auth == client.AuthSession) && o.Service.URL != "" && o.Service.Username == "":
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("%s authentication requires a username", auth))
	case auth == client.AuthToken && o.Service.URL != "" && o.Service.Token == "":
		return errors.New(errors.ErrCodeInvalidRequest, "Token authentication requires a token")
	}
	if _, err := crawler.ParseMode(o.Mode); err != nil {
		return err
	}
	if !strings.HasPrefix(o.StartURI, "/redfish/v1") {
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("start URI %q must be under /redfish/v1", o.StartURI))
	}
	switch validator.URICheck(o.URICheck) {
	case validator.URICheckAuto, validator.URICheckOn, validator.URICheckOff:
	default:
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("unknown URI check %q, want auto, on or off", o.URICheck))
	}
	for name, n := range o.CollectionLimits {
		if n <= 0 {
			return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("collection limit for %s must be positive, got %d", name, n))
		}
	}
	if o.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidRequest, "concurrency must be at least 1")
	}
	if o.CacheSize < 1 {
		return errors.New(errors.ErrCodeInvalidRequest, "cache size must be at least 1")
	}
	if o.Service.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "retries must not be negative")
	}
	return nil
}

// ParseCollectionLimits parses limits given as alternating names and
// counts. Each argument may hold several tokens separated by spaces,
// commas or colons, so "LogEntry 20", "LogEntry:20" and the pair
// "LogEntry", "20" are equivalent.
func ParseCollectionLimits(args []string) (map[string]int, error) {
	var tokens []string
	for _, a := range args {
		tokens = append(tokens, strings.FieldsFunc(a, func(r rune) bool {
			return r == ' ' || r == ',' || r == ':' || r == '\t'
		})...)
	}
	if len(tokens)%2 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("collection limits need name and count pairs, got %q", strings.Join(tokens, " ")))
	}
	limits := make(map[string]int, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		n, err := strconv.Atoi(tokens[i+1])
		if err != nil || n <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("collection limit for %s must be a positive integer, got %q", tokens[i], tokens[i+1]))
		}
		limits[tokens[i]] = n
	}
	return limits, nil
}
