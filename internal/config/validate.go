package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireCredentials so offline commands work without them.
func (c *Config) Validate() error {
	if err := c.validateWebin(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWebin() error {
	for key, raw := range map[string]string{
		"webin.sandbox_url":    c.Webin.SandboxURL,
		"webin.production_url": c.Webin.ProductionURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) url, got %q", key, raw)
		}
	}
	if c.Webin.FTPHost == "" {
		return errors.New("webin.ftp_host must be set")
	}
	if c.Webin.FTPTimeoutSeconds <= 0 {
		return errors.New("webin.ftp_timeout_seconds must be positive")
	}
	if c.Webin.HTTPTimeoutSeconds <= 0 {
		return errors.New("webin.http_timeout_seconds must be positive")
	}
	if c.Webin.HoldDays < 0 {
		return errors.New("webin.hold_days must not be negative")
	}
	return nil
}
