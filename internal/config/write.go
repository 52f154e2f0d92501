package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/renderdash/rdash/internal/domain"
)

// AddService appends a service to the config file at path, creating
// the file with an api_key placeholder if it does not exist yet. The
// raw file is re-read without env substitution so the placeholder is
// never replaced by the resolved secret.
func AddService(path string, svc domain.ServiceConfig) error {
	if path == "" {
		path = homePath()
	}

	raw, err := readRaw(path)
	if err != nil {
		return err
	}
	if raw.Render.APIKey == "" {
		raw.Render.APIKey = "${RENDER_API_KEY}"
	}

	for _, existing := range raw.Services {
		if existing.ID == svc.ID {
			return errf("service %s already configured", svc.ID)
		}
	}
	if svc.Priority == 0 {
		svc.Priority = 1
	}
	raw.Services = append(raw.Services, svc)

	return writeRaw(path, raw)
}

// RemoveService deletes the service with the given id from the config
// file at path.
func RemoveService(path, id string) error {
	if path == "" {
		resolved, err := Locate("")
		if err != nil {
			return err
		}
		path = resolved
	}

	raw, err := readRaw(path)
	if err != nil {
		return err
	}

	kept := raw.Services[:0]
	found := false
	for _, svc := range raw.Services {
		if svc.ID == id {
			found = true
			continue
		}
		kept = append(kept, svc)
	}
	if !found {
		return errf("service %s not found in config", id)
	}
	raw.Services = kept

	return writeRaw(path, raw)
}

func readRaw(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &fileConfig{}, nil
	}
	if err != nil {
		return nil, &ConfigError{Msg: "failed to read config file", Err: err}
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Msg: "invalid YAML in config file", Err: err}
	}
	return &raw, nil
}

func writeRaw(path string, raw *fileConfig) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return &ConfigError{Msg: "failed to encode config", Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ConfigError{Msg: "failed to create config directory", Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &ConfigError{Msg: "failed to write config file", Err: err}
	}
	return nil
}
