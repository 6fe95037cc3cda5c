package testsupport

import (
	"path/filepath"
	"testing"

	"enasubmit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp state directory and
// test credentials. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Webin.Username = "Webin-test"
	cfgVal.Webin.Password = "test-password"
	cfgVal.Webin.SandboxURL = "http://127.0.0.1:0/submit/"
	cfgVal.Webin.FTPHost = "127.0.0.1:21"
	cfgVal.Defaults.StudyAccession = "ERP1"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithArchive points the sandbox endpoint at a fake archive server.
func WithArchive(server *ArchiveServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Webin.SandboxURL = server.URL()
	}
}

// WithoutCredentials clears the Webin credential pair.
func WithoutCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Webin.Username = ""
		b.cfg.Webin.Password = ""
	}
}

// WithMetricsTextfile enables metrics output inside the temp directory.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "enasubmit.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
