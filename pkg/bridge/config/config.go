// Package config provides the configuration of the ScriptSDK bridge.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go.minekube.com/scriptsdk/pkg/util/validation"
)

// DefaultBytes is the default configuration file.
//
//go:embed config.yml
var DefaultBytes []byte

// EnvPrefix is the prefix of environment variables overriding config keys.
const EnvPrefix = "SCRIPTSDK"

// DefaultConfig is a default Config.
var DefaultConfig = Config{
	Bind: "localhost:8420",
	Path: "/rpc",
	HealthService: HealthService{
		Enabled: false,
		Bind:    "0.0.0.0:9090",
	},
	Discord: Discord{
		Timeout: 10 * time.Second,
		BaseURL: "https://discord.com/api/webhooks/",
	},
	Ping: Ping{
		Timeout:  8 * time.Second,
		CacheTTL: 5 * time.Second,
	},
	Telemetry: Telemetry{
		Metrics: TelemetryMetrics{
			Enabled:  false,
			Endpoint: "localhost:4317",
			Interval: time.Minute,
		},
		Tracing: TelemetryTracing{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	},
}

// Config is the root configuration of the bridge.
type Config struct {
	// Bind is the address the bridge listens on.
	Bind string `json:"bind,omitempty" yaml:"bind,omitempty"`
	// Path is the HTTP path of the websocket endpoint.
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Debug bool   `json:"debug,omitempty" yaml:"debug,omitempty"`

	HealthService HealthService `json:"healthService,omitempty" yaml:"healthService,omitempty"`
	Discord       Discord       `json:"discord,omitempty" yaml:"discord,omitempty"`
	Ping          Ping          `json:"ping,omitempty" yaml:"ping,omitempty"`
	Telemetry     Telemetry     `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

// HealthService is a GRPC health probe service for use with Kubernetes pods.
// (https://github.com/grpc-ecosystem/grpc-health-probe)
type HealthService struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Bind    string `json:"bind,omitempty" yaml:"bind,omitempty"`
}

// Discord configures webhook relaying.
type Discord struct {
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	BaseURL string        `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// Ping configures external server info lookups.
type Ping struct {
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	CacheTTL time.Duration `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	Metrics TelemetryMetrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Tracing TelemetryTracing `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

type TelemetryMetrics struct {
	Enabled  bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Endpoint string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Interval time.Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
}

type TelemetryTracing struct {
	Enabled  bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// Load reads the embedded defaults into v, merges the config file set on v
// (if any and if it exists) and environment variables, and unmarshals the result.
func Load(v *viper.Viper) (*Config, error) {
	file := v.ConfigFileUsed()

	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(DefaultBytes)); err != nil {
		return nil, fmt.Errorf("error reading default config: %w", err)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %q: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return &c, nil
}

// Validate validates a Config.
func (c *Config) Validate() (warns []error, errs []error) {
	e := func(m string, args ...any) { errs = append(errs, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warns = append(warns, fmt.Errorf(m, args...)) }
	if c == nil {
		e("config must not be nil")
		return
	}

	if strings.TrimSpace(c.Bind) == "" {
		e("bind address must not be empty")
	} else if err := validation.ValidHostPort(c.Bind); err != nil {
		e("Invalid bind %q: %v", c.Bind, err)
	} else if !validation.IsLoopback(c.Bind) {
		w("Bind %q is not a loopback address, the bridge is reachable from the network", c.Bind)
	}
	if !strings.HasPrefix(c.Path, "/") {
		e("Path %q must start with a slash", c.Path)
	}

	if c.HealthService.Enabled {
		if err := validation.ValidHostPort(c.HealthService.Bind); err != nil {
			e("Invalid health probe bind address %q: %v", c.HealthService.Bind, err)
		}
	}

	if c.Discord.Timeout <= 0 {
		e("Discord timeout must be positive, got %s", c.Discord.Timeout)
	}
	if u, err := url.Parse(c.Discord.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		e("Invalid Discord base URL %q", c.Discord.BaseURL)
	}

	if c.Ping.Timeout <= 0 {
		e("Ping timeout must be positive, got %s", c.Ping.Timeout)
	}
	if c.Ping.CacheTTL < 0 {
		e("Ping cache TTL must not be negative, got %s", c.Ping.CacheTTL)
	}

	if m := c.Telemetry.Metrics; m.Enabled {
		if err := validation.ValidHostPort(m.Endpoint); err != nil {
			e("Invalid metrics endpoint %q: %v", m.Endpoint, err)
		}
		if m.Interval <= 0 {
			e("Metrics interval must be positive, got %s", m.Interval)
		}
	}
	if t := c.Telemetry.Tracing; t.Enabled {
		if err := validation.ValidHostPort(t.Endpoint); err != nil {
			e("Invalid tracing endpoint %q: %v", t.Endpoint, err)
		}
	}
	return
}
