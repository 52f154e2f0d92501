package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/renderdash/rdash/internal/domain"
)

// DefaultRefreshInterval is the dashboard auto-refresh period in
// seconds when the config omits one.
const DefaultRefreshInterval = 30

// ConfigError is a user-facing configuration failure. Always fatal to
// the operation that triggered it.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func errf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// RenderConfig is the API section of config.yaml.
type RenderConfig struct {
	APIKey          string `yaml:"api_key"`
	RefreshInterval int    `yaml:"refresh_interval,omitempty"`
}

// AppConfig is the loaded and validated application configuration.
type AppConfig struct {
	Render   RenderConfig
	Services []domain.ServiceConfig

	// Path is the file the config was read from, used when writing
	// edits back.
	Path string
}

// fileConfig is the raw on-disk shape, before env substitution and
// defaulting. Also used when writing edits back so the api_key
// placeholder is preserved verbatim.
type fileConfig struct {
	Render   RenderConfig           `yaml:"render"`
	Services []domain.ServiceConfig `yaml:"services"`
}

var envPlaceholder = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// substituteEnv resolves a ${VAR_NAME} placeholder from the
// environment. Plain values pass through unchanged.
func substituteEnv(value string) (string, error) {
	m := envPlaceholder.FindStringSubmatch(value)
	if m == nil {
		return value, nil
	}
	env := os.Getenv(m[1])
	if env == "" {
		return "", errf("environment variable %s not set: export %s=your-value", m[1], m[1])
	}
	return env, nil
}

// Locate returns the config file to use: an explicit path if given,
// else config.yaml in the current directory, else
// ~/.config/rdash/config.yaml.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml", nil
	}

	home := homePath()
	if _, err := os.Stat(home); err == nil {
		return home, nil
	}

	return "", errf("no config.yaml found in the current directory or %s: create one with at least a render.api_key and one service", home)
}

func homePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "rdash", "config.yaml")
}

// Load reads and validates the configuration. An empty path triggers
// the default search order.
func Load(path string) (*AppConfig, error) {
	return load(path, false)
}

// LoadAllowEmpty is Load without the at-least-one-service requirement,
// for commands that only need credentials (ex: service add).
func LoadAllowEmpty(path string) (*AppConfig, error) {
	return load(path, true)
}

func load(path string, allowEmptyServices bool) (*AppConfig, error) {
	resolved, err := Locate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &ConfigError{Msg: "failed to read config file", Err: err}
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Msg: "invalid YAML in config file", Err: err}
	}

	apiKey, err := substituteEnv(raw.Render.APIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, errf("missing render.api_key in config: set it to ${RENDER_API_KEY} and export RENDER_API_KEY=your-key")
	}

	interval := raw.Render.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	if len(raw.Services) == 0 && !allowEmptyServices {
		return nil, errf("no services configured: add at least one service to the 'services' list")
	}

	services := make([]domain.ServiceConfig, 0, len(raw.Services))
	seen := make(map[string]bool, len(raw.Services))
	for i, svc := range raw.Services {
		if svc.ID == "" {
			return nil, errf("service at index %d missing required 'id' field", i)
		}
		if seen[svc.ID] {
			return nil, errf("duplicate service id %s", svc.ID)
		}
		seen[svc.ID] = true
		if svc.Name == "" {
			svc.Name = svc.ID
		}
		if svc.Priority == 0 {
			svc.Priority = 1
		}
		services = append(services, svc)
	}

	return &AppConfig{
		Render:   RenderConfig{APIKey: apiKey, RefreshInterval: interval},
		Services: services,
		Path:     resolved,
	}, nil
}

// FindServiceByAlias resolves a user-typed alias to a configured
// service. An exact alias match wins immediately; otherwise aliases
// and names are matched by case-insensitive substring. Zero matches
// returns nil; multiple matches is an error listing the candidates.
func FindServiceByAlias(cfg *AppConfig, alias string) (*domain.ServiceConfig, error) {
	lower := strings.ToLower(alias)
	var matches []*domain.ServiceConfig

	for i := range cfg.Services {
		svc := &cfg.Services[i]

		exact := false
		partial := false
		for _, a := range svc.Aliases {
			al := strings.ToLower(a)
			if al == lower {
				exact = true
				break
			}
			if strings.Contains(al, lower) {
				partial = true
			}
		}
		if exact {
			return svc, nil
		}
		if partial || strings.Contains(strings.ToLower(svc.Name), lower) {
			matches = append(matches, svc)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "multiple services match %q:\n", alias)
	for i, svc := range matches {
		fmt.Fprintf(&b, "  %d. %s (aliases: %s)\n", i+1, svc.Name, strings.Join(svc.Aliases, ", "))
	}
	b.WriteString("\nuse a more specific alias or service name")
	return nil, &ConfigError{Msg: b.String()}
}

// FindServiceByAliasOrID is FindServiceByAlias extended with an exact
// id match, for commands that accept either form.
func FindServiceByAliasOrID(cfg *AppConfig, key string) (*domain.ServiceConfig, error) {
	for i := range cfg.Services {
		if cfg.Services[i].ID == key {
			return &cfg.Services[i], nil
		}
	}
	return FindServiceByAlias(cfg, key)
}
