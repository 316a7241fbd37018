package source

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the source alias file.
type Config struct {
	Sources       map[string]SourceAlias `yaml:"sources"`
	DefaultSource string                 `yaml:"default_source"`
}

// SourceAlias defines a named source alias.
type SourceAlias struct {
	URI      string `yaml:"uri"`
	Language string `yaml:"language,omitempty"` // Optional language override for oxford
}

// ConfigPath returns the path to the alias file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lexicon", "config.yaml")
}

// LoadConfig loads the aliases from ~/.lexicon/config.yaml.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Sources: make(map[string]SourceAlias),
	}

	path := ConfigPath()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]SourceAlias)
	}

	return cfg, nil
}

// SaveConfig saves the aliases to ~/.lexicon/config.yaml.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return os.ErrNotExist
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
