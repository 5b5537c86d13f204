// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validNetworks = map[string]bool{
	"mainnet": true,
	"testnet": true,
	"regtest": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validNetworks[cfg.Network] {
		return ErrInvalidNetwork
	}

	switch cfg.Variant {
	case "simple":
	case "whitelist":
		if err := validateURI(cfg.HiddenURI); err != nil {
			return fmt.Errorf("%w: hiddenuri: %w", ErrInvalidURI, err)
		}
	default:
		return ErrInvalidVariant
	}

	if err := validateURI(cfg.BaseURI); err != nil {
		return fmt.Errorf("%w: baseuri: %w", ErrInvalidURI, err)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateURI accepts absolute URIs with a scheme, such as http(s) or ipfs.
func validateURI(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return fmt.Errorf("missing scheme in %q", raw)
	}
	return nil
}
