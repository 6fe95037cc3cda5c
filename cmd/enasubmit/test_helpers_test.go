package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"enasubmit/internal/config"
	"enasubmit/internal/testsupport"
	"enasubmit/internal/upload"
)

type cliTestEnv struct {
	cfg        *config.Config
	archive    *testsupport.ArchiveServer
	ftp        *memoryFTP
	configPath string
	runFile    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	archive := testsupport.NewArchiveServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithArchive(archive))
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	runFile := filepath.Join(base, "data", "test.bam")
	testsupport.WriteFile(t, runFile, 0)

	conn := &memoryFTP{}
	previous := ftpDialer
	ftpDialer = memoryDialer{conn: conn}
	t.Cleanup(func() { ftpDialer = previous })

	return &cliTestEnv{
		cfg:        cfg,
		archive:    archive,
		ftp:        conn,
		configPath: configPath,
		runFile:    runFile,
	}
}

func (e *cliTestEnv) submitArgs(extra ...string) []string {
	args := []string{
		"submit",
		"--center", "Centre",
		"--sample", "S1",
		"--taxon", "9606",
		"--run", "R1",
		"--file", e.runFile,
		"--instrument", "miseq",
		"--library-source", "VIRAL_RNA",
		"--library-selection", "PCR",
		"--library-strategy", "AMPLICON",
	}
	return append(args, extra...)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

type memoryFTP struct {
	mu     sync.Mutex
	stored map[string][]byte
}

func (c *memoryFTP) Login(string, string) error { return nil }

func (c *memoryFTP) Stor(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored == nil {
		c.stored = map[string][]byte{}
	}
	c.stored[path] = data
	return nil
}

func (c *memoryFTP) Quit() error { return nil }

func (c *memoryFTP) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.stored))
	for name := range c.stored {
		out = append(out, name)
	}
	return out
}

type memoryDialer struct{ conn *memoryFTP }

func (d memoryDialer) Dial(context.Context, string, time.Duration) (upload.Conn, error) {
	return d.conn, nil
}
