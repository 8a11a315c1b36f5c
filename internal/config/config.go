// Package config handles loading and saving user configuration for tabconv.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration for tabconv.
type Config struct {
	Rounding RoundingConfig `yaml:"rounding" mapstructure:"rounding"`
	LaTeX    LaTeXConfig    `yaml:"latex" mapstructure:"latex"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
}

// RoundingConfig holds the initial state of the rounding controls.
type RoundingConfig struct {
	Mode     string `yaml:"mode" mapstructure:"mode"`         // none, decimal, sig-figs
	Decimals string `yaml:"decimals" mapstructure:"decimals"` // raw text for the decimals field
	SigFigs  string `yaml:"sig_figs" mapstructure:"sig_figs"` // raw text for the sig-figs field
}

// LaTeXConfig holds tabular output settings.
type LaTeXConfig struct {
	Align string `yaml:"align" mapstructure:"align"` // l, c or r
}

// HistoryConfig controls the conversion history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"` // empty means <config dir>/history.db
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"` // empty means <config dir>/tabconv.log
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Rounding: RoundingConfig{Mode: "none", Decimals: "2", SigFigs: "3"},
		LaTeX:    LaTeXConfig{Align: "c"},
		History:  HistoryConfig{Enabled: true},
		Log:      LogConfig{Level: "info"},
		Server:   ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// SetDefaults registers the default values with v so that env variables and
// partial files fall back to them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("rounding.mode", d.Rounding.Mode)
	v.SetDefault("rounding.decimals", d.Rounding.Decimals)
	v.SetDefault("rounding.sig_figs", d.Rounding.SigFigs)
	v.SetDefault("latex.align", d.LaTeX.Align)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
}

// Load reads <dir>/config.yaml into v and decodes it. A missing file is not
// an error; defaults and environment variables still apply.
func Load(v *viper.Viper, dir string) (*Config, error) {
	SetDefaults(v)
	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TABCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Decode(v)
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// Decode unmarshals the current state of v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// HistoryPath returns the history database path, defaulting into dir.
func (c *Config) HistoryPath(dir string) string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(dir, "history.db")
}

// LogPath returns the log file path, defaulting into dir.
func (c *Config) LogPath(dir string) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(dir, "tabconv.log")
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabconv"), nil
}
