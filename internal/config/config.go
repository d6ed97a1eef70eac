// Package config provides configuration loading and validation for the
// reachability core.
package config

import "time"

// Config is the root configuration for the gateway and demo services.
type Config struct {
	Server   ServerConfig    `yaml:"server" json:"server"`
	Logging  LoggingConfig   `yaml:"logging,omitempty" json:"logging,omitempty"`
	Backends []BackendConfig `yaml:"backends" json:"backends"`
	Ingress  IngressConfig   `yaml:"ingress" json:"ingress"`
	Health   HealthConfig    `yaml:"health,omitempty" json:"health,omitempty"`
}

// ServerConfig holds the listen configuration for the ingress server.
type ServerConfig struct {
	Address      string   `yaml:"address,omitempty" json:"address,omitempty"`
	Port         int      `yaml:"port" json:"port"`
	ReadTimeout  Duration `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout Duration `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`
	IdleTimeout  Duration `yaml:"idleTimeout,omitempty" json:"idleTimeout,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// BackendConfig describes one named backend service.
type BackendConfig struct {
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
	Port    int    `yaml:"port" json:"port"`
}

// IngressConfig holds the ordered ingress rule list.
type IngressConfig struct {
	Rules []RuleConfig `yaml:"rules" json:"rules"`
}

// RuleConfig binds a hostname pattern to a backend. The catch-all rule uses
// hostname "*" and no backend; it must be the last rule in the list.
type RuleConfig struct {
	Hostname string `yaml:"hostname" json:"hostname"`
	Backend  string `yaml:"backend,omitempty" json:"backend,omitempty"`
}

// IsTerminal reports whether the rule is the catch-all rule.
func (r RuleConfig) IsTerminal() bool {
	return r.Hostname == "*"
}

// HealthConfig holds health aggregation configuration.
type HealthConfig struct {
	ProbeTimeout Duration      `yaml:"probeTimeout,omitempty" json:"probeTimeout,omitempty"`
	Probes       []ProbeConfig `yaml:"probes,omitempty" json:"probes,omitempty"`
}

// ProbeConfig describes one dependency probe.
type ProbeConfig struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
	Address  string `yaml:"address,omitempty" json:"address,omitempty"`
	Critical bool   `yaml:"critical,omitempty" json:"critical,omitempty"`
}

// Probe types understood by the health layer.
const (
	ProbeTypeHTTP   = "http"
	ProbeTypeTCP    = "tcp"
	ProbeTypeDocker = "docker"
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(120 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Health: HealthConfig{
			ProbeTimeout: Duration(3 * time.Second),
		},
	}
}

// applyDefaults fills zero-valued fields with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaults.Logging.Output
	}
	if c.Health.ProbeTimeout == 0 {
		c.Health.ProbeTimeout = defaults.Health.ProbeTimeout
	}
}
