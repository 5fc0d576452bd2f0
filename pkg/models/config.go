package models

// ColorMode controls when terminal output is styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// GlobalConfig holds repository settings read from .tasks/config.yaml via
// Viper, with BT_* environment variables taking precedence.
type GlobalConfig struct {
	Author          string    `yaml:"author" mapstructure:"author"`
	DefaultPriority Priority  `yaml:"default_priority" mapstructure:"default_priority"`
	Color           ColorMode `yaml:"color" mapstructure:"color"`
	LogLevel        string    `yaml:"log_level" mapstructure:"log_level"`
	EventsEnabled   bool      `yaml:"events_enabled" mapstructure:"events_enabled"`
}
