// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the mintctl configuration file.
//
// The file lives at <datadir>/config and holds one "key = value" pair per
// line. Blank lines and lines starting with # are ignored, as are unknown
// keys. Environment variables override file values (see ApplyEnv).
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Default values.
const (
	DefaultNetwork   = "mainnet"
	DefaultVariant   = "whitelist"
	DefaultBaseURI   = "http://assets.example.com/"
	DefaultHiddenURI = DefaultBaseURI + "hidden.json"
	DefaultLogLevel  = "info"

	configFileName = "config"
	dataDirName    = ".mint"
)

// Config holds mintctl settings.
type Config struct {
	DataDir   string
	Network   string
	Variant   string
	BaseURI   string
	HiddenURI string
	LogLevel  string
	LogFile   string // empty means stderr
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:   DefaultDataDir(),
		Network:   DefaultNetwork,
		Variant:   DefaultVariant,
		BaseURI:   DefaultBaseURI,
		HiddenURI: DefaultHiddenURI,
		LogLevel:  DefaultLogLevel,
	}
}

// DefaultDataDir returns ~/.mint, or .mint in the working directory if the
// home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return dataDirName
	}
	return filepath.Join(home, dataDirName)
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// LoadConfig reads path over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		applyKey(&cfg, key, value)
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Mint Configuration\n")
	b.WriteString("# Environment variables (MINT_*) override these values.\n\n")
	for _, kv := range [][2]string{
		{"datadir", cfg.DataDir},
		{"network", cfg.Network},
		{"variant", cfg.Variant},
		{"baseuri", cfg.BaseURI},
		{"hiddenuri", cfg.HiddenURI},
		{"loglevel", cfg.LogLevel},
		{"logfile", cfg.LogFile},
	} {
		fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// parseKeyValue splits on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func applyKey(cfg *Config, key, value string) {
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "network":
		cfg.Network = value
	case "variant":
		cfg.Variant = value
	case "baseuri":
		cfg.BaseURI = value
	case "hiddenuri":
		cfg.HiddenURI = value
	case "loglevel":
		cfg.LogLevel = value
	case "logfile":
		cfg.LogFile = value
	}
}
