// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Overrides are the environment variables that take precedence over the
// config file. Unset or empty variables leave the file value alone.
type Overrides struct {
	DataDir   string `env:"MINT_DATADIR"`
	Network   string `env:"MINT_NETWORK"`
	Variant   string `env:"MINT_VARIANT"`
	BaseURI   string `env:"MINT_BASE_URI"`
	HiddenURI string `env:"MINT_HIDDEN_URI"`
	LogLevel  string `env:"MINT_LOG_LEVEL"`
	LogFile   string `env:"MINT_LOG_FILE"`
}

// Secrets are never written to the config file.
type Secrets struct {
	// Mnemonic restores the HD wallet on init instead of generating one.
	Mnemonic string `env:"MNEMONIC"`
	// Password encrypts and decrypts wallet.enc.
	Password string `env:"MINT_PASSWORD"`
}

// ParseEnv loads environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("%w: %w", ErrEnv, err)
	}
	return nil
}

// ApplyEnv returns cfg with environment overrides applied.
func ApplyEnv(cfg Config) (Config, error) {
	var o Overrides
	if err := ParseEnv(&o); err != nil {
		return cfg, err
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.DataDir, o.DataDir)
	set(&cfg.Network, o.Network)
	set(&cfg.Variant, o.Variant)
	set(&cfg.BaseURI, o.BaseURI)
	set(&cfg.HiddenURI, o.HiddenURI)
	set(&cfg.LogLevel, o.LogLevel)
	set(&cfg.LogFile, o.LogFile)
	return cfg, nil
}

// LoadSecrets reads the wallet secrets from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := ParseEnv(&s); err != nil {
		return s, err
	}
	return s, nil
}
