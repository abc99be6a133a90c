// Package config loads minq.yaml, the settings shared by the CLI, the
// interactive console and the web module.
package config

import "time"

// Config is the complete minq configuration.
type Config struct {
	BaseDir     string      `yaml:"-"` // directory containing the config file
	Log         bool        `yaml:"log"`
	HistoryFile string      `yaml:"history_file"`
	Watch       WatchConfig `yaml:"watch"`
	Web         WebConfig   `yaml:"web"`
	DB          DBConfig    `yaml:"db"`
}

// WatchConfig holds --watch settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// WebConfig holds settings for the web module.
type WebConfig struct {
	Host        string            `yaml:"host"`
	Compression CompressionConfig `yaml:"compression"`
	Logging     LoggingConfig     `yaml:"logging"`
	Markdown    bool              `yaml:"markdown"`
}

// CompressionConfig holds response compression settings.
type CompressionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`    // fastest, default, best, none
	MinSize int    `yaml:"min_size"` // minimum response size in bytes
}

// LoggingConfig holds request logging settings.
type LoggingConfig struct {
	Format string `yaml:"format"` // text, json, none
}

// DBConfig holds db module settings.
type DBConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"` // 0 leaves the driver default
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Web: WebConfig{
			Compression: CompressionConfig{
				Enabled: true,
				Level:   "default",
				MinSize: 1024,
			},
			Logging: LoggingConfig{
				Format: "text",
			},
			Markdown: true,
		},
	}
}
