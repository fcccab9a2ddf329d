package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bolens/ps-profile/assets"
	"github.com/bolens/ps-profile/internal/domain"
	"github.com/bolens/ps-profile/internal/pkg/filesystem"
	"github.com/bolens/ps-profile/internal/ports"
)

// FileLoader loads YAML configuration from ~/.psprofile/config.yaml (overridable via PSPROFILE_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg, err := defaultConfig()
			if err != nil {
				return domain.Config{}, err
			}
			if err := l.Save(cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg = hydrateDefaults(cfg)
	if err := validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to the resolved path.
func (l *FileLoader) Save(cfg domain.Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(domain.ConfigEnvVar); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

// FragmentsDir returns the expanded fragments directory from cfg.
func FragmentsDir(cfg domain.Config) string {
	return filesystem.ExpandPath(cfg.Fragments.Dir)
}

func defaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.Shell == "" {
		cfg.Preferences.Shell = "auto"
	}
	if cfg.Fragments.Dir == "" {
		cfg.Fragments.Dir = filepath.Join("~", ".psprofile", domain.FragmentsDirName)
	}
	return cfg
}

func validate(cfg domain.Config) error {
	if _, err := cfg.AvailabilityTTL(); err != nil {
		return err
	}
	if _, err := cfg.ExecutionTimeout(); err != nil {
		return err
	}
	return nil
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
