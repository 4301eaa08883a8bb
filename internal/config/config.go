// Package config loads storybook configuration from command-line flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Seed   SeedConfig
	Speech SpeechConfig
	Reader ReaderConfig
	Images ImageConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage configuration.
type DataConfig struct {
	// Path is the root directory for the book database and search index (default: ~/Storybook/data).
	Path string
}

// DatabasePath is where the book store lives.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.Path, "db")
}

// SearchPath is where the search index lives.
func (d DataConfig) SearchPath() string {
	return filepath.Join(d.Path, "search.bleve")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed origins (default: *)
}

// SeedConfig controls built-in content.
type SeedConfig struct {
	Enabled bool
	// BasePath prefixes relative asset paths of built-in books (default: /).
	BasePath string
}

// SpeechConfig selects the text-to-speech backend.
type SpeechConfig struct {
	// Command is the TTS binary (default: espeak-ng). Falls back to console output when not on PATH.
	Command string
	Voice   string
	// WPM is the speaking rate, used by both backends (default: 160).
	WPM int
}

// ReaderConfig holds read-aloud settings.
type ReaderConfig struct {
	EmptyPageDelay time.Duration // default: 2s
}

// ImageConfig holds image upload settings.
type ImageConfig struct {
	MaxDimension        int // Longest side after downscaling (default: 1600)
	UploadRatePerMinute int // Per-client upload budget (default: 30)
}

// LoadConfig loads configuration from os.Args with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return LoadFrom(flag.CommandLine, os.Args[1:])
}

// LoadFrom registers the config flags on fs, parses args and builds the config.
// Precedence is the same as LoadConfig.
func LoadFrom(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the book database and search index")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins (default: *)")

	seedEnabled := fs.String("seed", "", "Insert built-in books into an empty library (default: true)")
	seedBasePath := fs.String("seed-base-path", "", "Base path for built-in book assets (default: /)")

	speechCommand := fs.String("speech-command", "", "Text-to-speech command (default: espeak-ng)")
	speechVoice := fs.String("speech-voice", "", "Voice passed to the speech command")
	speechWPM := fs.String("speech-wpm", "", "Speaking rate in words per minute (default: 160)")

	emptyPageDelay := fs.String("empty-page-delay", "", "How long pages with nothing to read stay up (default: 2s)")

	maxDimension := fs.String("image-max-dimension", "", "Longest image side after downscaling (default: 1600)")
	uploadRate := fs.String("upload-rate", "", "Image uploads per minute per client (default: 30)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Seed: SeedConfig{
			Enabled:  getBoolConfigValue(*seedEnabled, "SEED_ENABLED", true),
			BasePath: getConfigValue(*seedBasePath, "SEED_BASE_PATH", "/"),
		},
		Speech: SpeechConfig{
			Command: getConfigValue(*speechCommand, "SPEECH_COMMAND", "espeak-ng"),
			Voice:   getConfigValue(*speechVoice, "SPEECH_VOICE", ""),
			WPM:     getIntConfigValue(*speechWPM, "SPEECH_WPM", 160),
		},
		Images: ImageConfig{
			MaxDimension:        getIntConfigValue(*maxDimension, "IMAGE_MAX_DIMENSION", 1600),
			UploadRatePerMinute: getIntConfigValue(*uploadRate, "UPLOAD_RATE_PER_MINUTE", 30),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Reader.EmptyPageDelay, err = getDurationConfigValue(*emptyPageDelay, "READER_EMPTY_PAGE_DELAY", "2s"); err != nil {
		return nil, fmt.Errorf("invalid empty page delay: %w", err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Speech.WPM < 40 || c.Speech.WPM > 600 {
		return fmt.Errorf("invalid speech rate: %d wpm (must be between 40 and 600)", c.Speech.WPM)
	}

	if c.Reader.EmptyPageDelay < 0 {
		return fmt.Errorf("invalid empty page delay: %s (must not be negative)", c.Reader.EmptyPageDelay)
	}

	if c.Images.MaxDimension < 1 {
		return fmt.Errorf("invalid image max dimension: %d", c.Images.MaxDimension)
	}

	if c.Images.UploadRatePerMinute < 1 {
		return fmt.Errorf("invalid upload rate: %d per minute", c.Images.UploadRatePerMinute)
	}

	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath resolves the data directory, defaulting to ~/Storybook/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Storybook", "data")

	expanded, err := expandPath(c.Data.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Data.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment wins over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
