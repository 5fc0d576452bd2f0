// Package core contains the business logic for bt: task lifecycle,
// short-id resolution, dependency trees, readiness ordering, imports and
// configuration.
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/bt/internal/taskpath"
	"github.com/valter-silva-au/bt/pkg/models"
)

// ConfigFileName is the config file stem inside .tasks/.
const ConfigFileName = "config"

// EnvPrefix is prepended to environment overrides, e.g. BT_AUTHOR or
// BT_OUTPUT_COLOR.
const EnvPrefix = "BT"

// ConfigurationManager defines the interface for loading and validating
// repository configuration.
type ConfigurationManager interface {
	LoadConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading .tasks/config.yaml and BT_* environment variables.
type viperConfigManager struct {
	// root is the project directory that contains .tasks. It may be empty
	// when no repository was found; only the environment is read then.
	root string
}

// NewConfigurationManager creates a new ConfigurationManager for the
// project at root.
func NewConfigurationManager(root string) ConfigurationManager {
	return &viperConfigManager{root: root}
}

// ConfigPath returns the config file location for a project root.
func ConfigPath(root string) string {
	return filepath.Join(taskpath.Base(root), ConfigFileName+".yaml")
}

// defaultConfig returns a GlobalConfig populated with sensible defaults.
func defaultConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Author:          "",
		DefaultPriority: models.DefaultPriority,
		Color:           models.ColorAuto,
		LogLevel:        "warn",
		EventsEnabled:   false,
	}
}

// LoadConfig reads .tasks/config.yaml. A missing file yields the defaults,
// still subject to environment overrides.
func (cm *viperConfigManager) LoadConfig() (*models.GlobalConfig, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	if cm.root != "" {
		v.AddConfigPath(taskpath.Base(cm.root))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("author", cfg.Author)
	v.SetDefault("defaults.priority", string(cfg.DefaultPriority))
	v.SetDefault("output.color", string(cfg.Color))
	v.SetDefault("log.level", cfg.LogLevel)
	v.SetDefault("events.enabled", cfg.EventsEnabled)

	if cm.root != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading %s: %w", ConfigPath(cm.root), err)
			}
		}
	}

	cfg.Author = strings.TrimSpace(v.GetString("author"))
	cfg.DefaultPriority = models.Priority(strings.ToLower(strings.TrimSpace(v.GetString("defaults.priority"))))
	cfg.Color = models.ColorMode(strings.ToLower(strings.TrimSpace(v.GetString("output.color"))))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("log.level")))
	cfg.EventsEnabled = v.GetBool("events.enabled")

	return cfg, nil
}

var validColorModes = map[models.ColorMode]bool{
	models.ColorAuto:   true,
	models.ColorAlways: true,
	models.ColorNever:  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks every field and reports all problems at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if _, err := models.ParsePriority(string(cfg.DefaultPriority)); err != nil {
		errs = append(errs, fmt.Sprintf(
			"defaults.priority %q is invalid, must be one of: critical, high, medium, low",
			cfg.DefaultPriority,
		))
	}

	if !validColorModes[cfg.Color] {
		errs = append(errs, fmt.Sprintf(
			"output.color %q is invalid, must be one of: auto, always, never",
			cfg.Color,
		))
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: debug, info, warn, error",
			cfg.LogLevel,
		))
	}

	if strings.ContainsAny(cfg.Author, "\r\n") {
		errs = append(errs, "author must be a single line")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
