package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeWebin()
	c.normalizeDefaults()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeWebin() {
	c.Webin.Username = strings.TrimSpace(c.Webin.Username)
	if c.Webin.Username == "" {
		if value, ok := os.LookupEnv("WEBIN_USER"); ok {
			c.Webin.Username = strings.TrimSpace(value)
		}
	}
	if c.Webin.Password == "" {
		if value, ok := os.LookupEnv("WEBIN_PASS"); ok {
			c.Webin.Password = value
		}
	}
	c.Webin.SandboxURL = strings.TrimSpace(c.Webin.SandboxURL)
	if c.Webin.SandboxURL == "" {
		c.Webin.SandboxURL = defaultSandboxURL
	}
	c.Webin.ProductionURL = strings.TrimSpace(c.Webin.ProductionURL)
	if c.Webin.ProductionURL == "" {
		c.Webin.ProductionURL = defaultProductionURL
	}
	c.Webin.FTPHost = strings.TrimSpace(c.Webin.FTPHost)
	if c.Webin.FTPHost != "" && !strings.Contains(c.Webin.FTPHost, ":") {
		c.Webin.FTPHost += ":21"
	}
	if c.Webin.FTPTimeoutSeconds == 0 {
		c.Webin.FTPTimeoutSeconds = defaultFTPTimeoutSeconds
	}
	if c.Webin.HTTPTimeoutSeconds == 0 {
		c.Webin.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}
}

func (c *Config) normalizeDefaults() {
	c.Defaults.StudyAccession = strings.TrimSpace(c.Defaults.StudyAccession)
	if c.Defaults.StudyAccession == "" {
		if value, ok := os.LookupEnv("WEBIN_STUDY"); ok {
			c.Defaults.StudyAccession = strings.TrimSpace(value)
		}
	}
	c.Defaults.TaxonID = strings.TrimSpace(c.Defaults.TaxonID)
	if c.Defaults.TaxonID == "" {
		c.Defaults.TaxonID = defaultTaxonID
	}
	c.Defaults.FileType = strings.ToLower(strings.TrimSpace(c.Defaults.FileType))
	if c.Defaults.FileType == "" {
		c.Defaults.FileType = defaultFileType
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	var err error
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
