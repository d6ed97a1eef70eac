package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Load loads configuration from a file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return parse(data)
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

// parse parses YAML data into a Config, substituting environment variables
// and applying defaults.
func parse(data []byte) (*Config, error) {
	content := substituteEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment variable values.
func substituteEnvVars(content string) string {
	// Handle escaped dollar signs first
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""
		if len(submatches) >= 3 {
			defaultValue = submatches[2]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return defaultValue
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}
