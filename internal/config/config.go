// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package config

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// Config is the top-level Vorte configuration.
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Sessions   SessionsConfig   `mapstructure:"sessions"`
	Commands   CommandsConfig   `mapstructure:"commands"`
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Media      MediaConfig      `mapstructure:"media"`
	Log        LogConfig        `mapstructure:"log"`
	DataDir    string           `mapstructure:"data_dir"`

	// Source is the config file that was read, empty when running on
	// defaults and environment only.
	Source string `mapstructure:"-"`
}

// BotConfig identifies the bot and who may administer it.
type BotConfig struct {
	Name   string        `mapstructure:"name"`
	Prefix string        `mapstructure:"prefix"`
	ID     string        `mapstructure:"id"`
	Owners []OwnerConfig `mapstructure:"owners"`
}

// OwnerConfig is one bot admin. The first owner is the primary owner.
type OwnerConfig struct {
	Number string `mapstructure:"number"`
	Label  string `mapstructure:"label"`
}

// SessionsConfig controls game session expiry.
type SessionsConfig struct {
	TTL            time.Duration `mapstructure:"ttl"`
	ReaperInterval time.Duration `mapstructure:"reaper_interval"`
}

// CommandsConfig controls command dispatch.
type CommandsConfig struct {
	Cooldown        time.Duration `mapstructure:"cooldown"`
	Workers         int           `mapstructure:"workers"`
	BroadcastPacing time.Duration `mapstructure:"broadcast_pacing"`
}

// NetworkingConfig controls the HTTP listener and bridge socket.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	BridgeToken string   `mapstructure:"bridge_token"`
}

// StorageConfig selects the statistics backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

// MediaConfig configures the media commands.
type MediaConfig struct {
	YouTubeAPIKey   string `mapstructure:"youtube_api_key"`
	YouTubeEndpoint string `mapstructure:"youtube_endpoint"`
	QRSize          int    `mapstructure:"qr_size"`
	QRMaxChars      int    `mapstructure:"qr_max_chars"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bot.name", "VORTE PRO")
	v.SetDefault("bot.prefix", ".")
	v.SetDefault("bot.id", "")
	v.SetDefault("bot.owners", []map[string]string{})
	v.SetDefault("sessions.ttl", time.Hour)
	v.SetDefault("sessions.reaper_interval", 5*time.Minute)
	v.SetDefault("commands.cooldown", time.Second)
	v.SetDefault("commands.workers", 64)
	v.SetDefault("commands.broadcast_pacing", 100*time.Millisecond)
	v.SetDefault("networking.listen", "127.0.0.1:3000")
	v.SetDefault("networking.cors_origins", []string{})
	v.SetDefault("networking.bridge_token", "")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("data_dir", "")
	v.SetDefault("media.youtube_api_key", "")
	v.SetDefault("media.youtube_endpoint", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("media.qr_size", 300)
	v.SetDefault("media.qr_max_chars", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// SetupEnv binds VORTE_-prefixed environment variables, with "." in keys
// written as "_" (VORTE_BOT_NAME overrides bot.name).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("VORTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv copies variables from a .env file into the process
// environment without overriding variables already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "reading %s: %w", path, err)
	}
	return nil
}

// Discover reads vorte.yaml from the standard locations into v. Finding no
// file is fine; parse and permission errors are returned.
func Discover(v *viper.Viper) error {
	// SetConfigType is omitted so viper does not fall back to the bare
	// name, which would match the ./vorte binary.
	v.SetConfigName("vorte")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/vorte")
	v.AddConfigPath("/etc/vorte")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "reading config: %w", err)
	}
	return nil
}

// Load reads configuration from path, or from the standard locations when
// path is empty, with environment overrides (prefix VORTE_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, vorteerr.Errorf(vorteerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	} else if err := Discover(v); err != nil {
		return nil, err
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, vorteerr.Errorf(vorteerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateBot()...)
	errs = append(errs, c.validateDurations()...)
	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateMedia()...)
	errs = append(errs, c.validateLog()...)

	return errs
}

func invalid(format string, args ...any) error {
	return vorteerr.Errorf(vorteerr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func (c *Config) validateBot() []error {
	var errs []error

	if strings.TrimSpace(c.Bot.Name) == "" {
		errs = append(errs, invalid("bot.name must not be empty"))
	}
	if c.Bot.Prefix == "" || strings.ContainsAny(c.Bot.Prefix, " \t\n") {
		errs = append(errs, invalid("bot.prefix must be non-empty without whitespace, got %q", c.Bot.Prefix))
	}

	seen := make(map[string]bool, len(c.Bot.Owners))
	for i, o := range c.Bot.Owners {
		digits := strings.TrimPrefix(o.Number, "+")
		if digits == "" || strings.Trim(digits, "0123456789") != "" {
			errs = append(errs, invalid("bot.owners[%d].number must be a phone number, got %q", i, o.Number))
			continue
		}
		if seen[digits] {
			errs = append(errs, invalid("bot.owners[%d].number %q is listed twice", i, o.Number))
		}
		seen[digits] = true
	}

	return errs
}

func (c *Config) validateDurations() []error {
	var errs []error

	if c.Sessions.TTL <= 0 {
		errs = append(errs, invalid("sessions.ttl must be greater than 0, got %s", c.Sessions.TTL))
	}
	if c.Sessions.ReaperInterval <= 0 {
		errs = append(errs, invalid("sessions.reaper_interval must be greater than 0, got %s", c.Sessions.ReaperInterval))
	}
	if c.Commands.Cooldown < 0 {
		errs = append(errs, invalid("commands.cooldown must not be negative, got %s", c.Commands.Cooldown))
	}
	if c.Commands.Workers <= 0 {
		errs = append(errs, invalid("commands.workers must be greater than 0, got %d", c.Commands.Workers))
	}
	if c.Commands.BroadcastPacing < 0 {
		errs = append(errs, invalid("commands.broadcast_pacing must not be negative, got %s", c.Commands.BroadcastPacing))
	}

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, invalid("networking.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Networking.Listen)
		if err != nil {
			errs = append(errs, invalid("networking.listen must be a valid host:port address, got %q: %w",
				c.Networking.Listen, err))
		} else if port, err := strconv.Atoi(portStr); err != nil {
			errs = append(errs, invalid("networking.listen port must be a number, got %q", portStr))
		} else if port < 1 || port > 65535 {
			errs = append(errs, invalid("networking.listen port must be between 1 and 65535, got %d", port))
		}
	}

	for i, origin := range c.Networking.CORSOrigins {
		if origin == "*" {
			errs = append(errs, invalid("networking.cors_origins[%d] must list an explicit origin, not \"*\"", i))
		}
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"memory": true, "sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, invalid("storage.backend must be one of [memory, sqlite], got %q", c.Storage.Backend))
	}

	return errs
}

func (c *Config) validateMedia() []error {
	var errs []error

	if c.Media.YouTubeEndpoint != "" {
		u, err := url.Parse(c.Media.YouTubeEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, invalid("media.youtube_endpoint must be an http(s) URL, got %q", c.Media.YouTubeEndpoint))
		}
	}
	if c.Media.QRSize < 64 || c.Media.QRSize > 2048 {
		errs = append(errs, invalid("media.qr_size must be between 64 and 2048, got %d", c.Media.QRSize))
	}
	if c.Media.QRMaxChars <= 0 {
		errs = append(errs, invalid("media.qr_max_chars must be greater than 0, got %d", c.Media.QRMaxChars))
	}

	return errs
}

func (c *Config) validateLog() []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, invalid("log.level must be one of [debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, invalid("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	return errs
}
