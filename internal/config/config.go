package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Webin contains the drop-box credentials and endpoints.
type Webin struct {
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	Production         bool   `toml:"production"`
	SandboxURL         string `toml:"sandbox_url"`
	ProductionURL      string `toml:"production_url"`
	FTPHost            string `toml:"ftp_host"`
	FTPTimeoutSeconds  int    `toml:"ftp_timeout_seconds"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	HoldDays           int    `toml:"hold_days"`
}

// Defaults contains values used when the command line omits them.
type Defaults struct {
	StudyAccession string `toml:"study_accession"`
	TaxonID        string `toml:"taxon_id"`
	FileType       string `toml:"file_type"`
}

// Paths contains local state locations.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Journal controls the local receipt journal.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Metrics controls the Prometheus textfile output.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// Config encapsulates all configuration values for enasubmit.
//
// Configuration sections by subsystem:
//   - Webin: credentials, sandbox/production endpoints, FTP host, timeouts
//   - Defaults: study accession, taxon and file type fallbacks
//   - Paths: local state directory (journal, lock, log file)
//   - Journal: local receipt journal toggle
//   - Notifications: ntfy push notification settings
//   - Metrics: Prometheus textfile-collector output
//   - Logging: log format and level
type Config struct {
	Webin         Webin         `toml:"webin"`
	Defaults      Defaults      `toml:"defaults"`
	Paths         Paths         `toml:"paths"`
	Journal       Journal       `toml:"journal"`
	Notifications Notifications `toml:"notifications"`
	Metrics       Metrics       `toml:"metrics"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/enasubmit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("enasubmit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// SubmitURL returns the drop-box endpoint selected by the production switch.
func (c *Config) SubmitURL() string {
	if c.Webin.Production {
		return c.Webin.ProductionURL
	}
	return c.Webin.SandboxURL
}

// EnvironmentName labels the selected endpoint for logs and summaries.
func (c *Config) EnvironmentName() string {
	if c.Webin.Production {
		return "production"
	}
	return "sandbox"
}

// FTPTimeout returns the control connection timeout.
func (c *Config) FTPTimeout() time.Duration {
	return time.Duration(c.Webin.FTPTimeoutSeconds) * time.Second
}

// HTTPTimeout returns the per-request timeout for drop-box calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Webin.HTTPTimeoutSeconds) * time.Second
}

// RequireCredentials reports an error when the Webin credential pair is incomplete.
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.Webin.Username) == "" || c.Webin.Password == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/enasubmit/config.toml"
		}
		return fmt.Errorf("webin.username and webin.password are required. Set WEBIN_USER and WEBIN_PASS or edit %s (create with 'enasubmit config init')", defaultPath)
	}
	return nil
}

// JournalPath returns the location of the receipt journal database.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockPath returns the location of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "submit.lock")
}

// LogPath returns the location of the optional log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "enasubmit.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleOptions pre-fills the generated sample configuration. Passwords are
// never written; they stay in WEBIN_PASS or are added by hand.
type SampleOptions struct {
	Username       string
	StudyAccession string
	Production     bool
}

// SampleOptionsFromEnv fills SampleOptions from WEBIN_USER and WEBIN_STUDY.
func SampleOptionsFromEnv() SampleOptions {
	return SampleOptions{
		Username:       strings.TrimSpace(os.Getenv("WEBIN_USER")),
		StudyAccession: strings.TrimSpace(os.Getenv("WEBIN_STUDY")),
	}
}

// RenderSample returns the sample configuration with opts applied.
func RenderSample(opts SampleOptions) ([]byte, error) {
	replacements := map[string]string{}
	for key, value := range map[string]string{
		"username":        opts.Username,
		"study_accession": opts.StudyAccession,
	} {
		if value == "" {
			continue
		}
		line, err := toml.Marshal(map[string]string{key: value})
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		replacements[key+` = ""`] = strings.TrimSpace(string(line))
	}
	if opts.Production {
		replacements["production = false"] = "production = true"
	}

	lines := strings.Split(sampleConfig, "\n")
	for i, line := range lines {
		if repl, ok := replacements[strings.TrimSpace(line)]; ok {
			lines[i] = repl
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// CreateSample writes the sample configuration, pre-filled from opts, to path.
func CreateSample(path string, opts SampleOptions) error {
	data, err := RenderSample(opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
