package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates a configuration. Besides hard errors it collects
// non-fatal warnings, e.g. duplicate ingress hostname patterns where the
// earlier declaration stays authoritative.
type Validator struct {
	errors   ValidationErrors
	warnings []string
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors:   make(ValidationErrors, 0),
		warnings: make([]string, 0),
	}
}

// ValidateConfig validates a configuration and returns any errors.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}

// Validate validates the configuration and returns any errors. Warnings are
// available via Warnings after the call.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)
	v.warnings = make([]string, 0)

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&cfg.Server)
	v.validateBackends(cfg.Backends)
	v.validateIngress(&cfg.Ingress, cfg.Backends)
	v.validateHealth(&cfg.Health)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// Warnings returns non-fatal findings from the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) validateServer(server *ServerConfig) {
	if server.Port < 0 || server.Port > 65535 {
		v.addError("server.port", fmt.Sprintf("invalid port %d", server.Port))
	}
}

func (v *Validator) validateBackends(backends []BackendConfig) {
	if len(backends) == 0 {
		v.addError("backends", "at least one backend is required")
	}

	seen := make(map[string]bool)
	for i, b := range backends {
		path := fmt.Sprintf("backends[%d]", i)
		if b.Name == "" {
			v.addError(path+".name", "name is required")
			continue
		}
		if seen[b.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate backend name %q", b.Name))
		}
		seen[b.Name] = true
		if b.Address == "" {
			v.addError(path+".address", "address is required")
		}
		if b.Port <= 0 || b.Port > 65535 {
			v.addError(path+".port", fmt.Sprintf("invalid port %d", b.Port))
		}
	}
}

func (v *Validator) validateIngress(ingress *IngressConfig, backends []BackendConfig) {
	if len(ingress.Rules) == 0 {
		v.addError("ingress.rules", "at least one rule is required")
		return
	}

	backendNames := make(map[string]bool, len(backends))
	for _, b := range backends {
		backendNames[b.Name] = true
	}

	terminals := 0
	seen := make(map[string]int)
	for i, rule := range ingress.Rules {
		path := fmt.Sprintf("ingress.rules[%d]", i)

		if rule.IsTerminal() {
			terminals++
			if i != len(ingress.Rules)-1 {
				v.addError(path, "catch-all rule must be the last rule")
			}
			if rule.Backend != "" {
				v.addError(path+".backend", "catch-all rule must not name a backend")
			}
			continue
		}

		if rule.Hostname == "" {
			v.addError(path+".hostname", "hostname is required")
		}
		if rule.Backend == "" {
			v.addError(path+".backend", "backend is required")
		} else if !backendNames[rule.Backend] {
			v.addError(path+".backend", fmt.Sprintf("unknown backend %q", rule.Backend))
		}

		hostname := strings.ToLower(rule.Hostname)
		if first, dup := seen[hostname]; dup {
			v.addWarning(fmt.Sprintf(
				"ingress.rules[%d]: duplicate hostname %q, rule %d declared earlier wins",
				i, rule.Hostname, first))
		} else {
			seen[hostname] = i
		}
	}

	if terminals == 0 {
		v.addError("ingress.rules", "exactly one catch-all rule is required")
	} else if terminals > 1 {
		v.addError("ingress.rules", fmt.Sprintf("exactly one catch-all rule is allowed, found %d", terminals))
	}
}

func (v *Validator) validateHealth(health *HealthConfig) {
	if health.ProbeTimeout < 0 {
		v.addError("health.probeTimeout", "probe timeout must not be negative")
	}

	for i, probe := range health.Probes {
		path := fmt.Sprintf("health.probes[%d]", i)
		if probe.Name == "" {
			v.addError(path+".name", "name is required")
		}
		switch probe.Type {
		case ProbeTypeHTTP:
			if probe.URL == "" {
				v.addError(path+".url", "url is required for http probes")
			}
		case ProbeTypeTCP:
			if probe.Address == "" {
				v.addError(path+".address", "address is required for tcp probes")
			}
		case ProbeTypeDocker:
		default:
			v.addError(path+".type", fmt.Sprintf("unknown probe type %q", probe.Type))
		}
	}
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) addWarning(message string) {
	v.warnings = append(v.warnings, message)
}
