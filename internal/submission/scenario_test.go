package submission_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"enasubmit/internal/journal"
	"enasubmit/internal/metrics"
	"enasubmit/internal/receipt"
	"enasubmit/internal/services/webin"
	"enasubmit/internal/submission"
	"enasubmit/internal/testsupport"
	"enasubmit/internal/upload"
)

type scenario struct {
	archive *testsupport.ArchiveServer
	ftp     *ftpConn
	store   *journal.Store
	metrics *metrics.Metrics
	orch    *submission.Orchestrator
	cfgPath string
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	archive := testsupport.NewArchiveServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithArchive(archive), testsupport.WithMetricsTextfile())
	store := testsupport.MustOpenJournal(t, cfg)
	conn := &ftpConn{}
	m := metrics.New()

	client := webin.NewClient(webin.Config{
		URL:            cfg.SubmitURL(),
		Username:       cfg.Webin.Username,
		Password:       cfg.Webin.Password,
		TimeoutSeconds: cfg.Webin.HTTPTimeoutSeconds,
	})
	uploader := upload.NewUploader(upload.Config{
		Host:     cfg.Webin.FTPHost,
		Username: cfg.Webin.Username,
		Password: cfg.Webin.Password,
		Timeout:  cfg.FTPTimeout(),
	}, ftpDialer{conn: conn})

	ids := []string{"run-1", "run-2", "run-3"}
	next := 0
	orch := newOrchestrator(t, submission.Options{
		Transport:   client,
		Uploader:    uploader,
		Journal:     store,
		Metrics:     m,
		Environment: cfg.EnvironmentName(),
		NewID: func() string {
			id := ids[next]
			next++
			return id
		},
	})
	return &scenario{archive: archive, ftp: conn, store: store, metrics: m, orch: orch, cfgPath: cfg.Metrics.Textfile}
}

func TestScenarioHappyPath(t *testing.T) {
	s := newScenario(t)
	req := scenarioRequest(t)

	out := s.orch.Run(context.Background(), req)
	if !out.Success() {
		t.Fatalf("expected success, got %s: %v", out.State, out.Err)
	}
	got := []string{out.SampleAccession, out.ExperimentAccession, out.RunAccession}
	if diff := cmp.Diff([]string{"ERS000001", "ERX000001", "ERR000001"}, got); diff != "" {
		t.Fatalf("accessions mismatch (-want +got):\n%s", diff)
	}
	if out.Upload == nil || out.Upload.Checksum != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected upload result: %+v", out.Upload)
	}
	if _, ok := s.ftp.stored["test.bam"]; !ok {
		t.Fatalf("file not stored under basename: %v", s.ftp.stored)
	}
	if diff := cmp.Diff([]string{"ERS000001", "ERX000001", "ERR000001"}, s.archive.Releases()); diff != "" {
		t.Fatalf("releases mismatch (-want +got):\n%s", diff)
	}

	var runPayload string
	for _, r := range s.archive.Requests() {
		if r.Kind == "RUN" {
			runPayload = string(r.Payload)
		}
		if r.Kind == "EXPERIMENT" && r.Alias != "S1/R1" {
			t.Fatalf("unexpected experiment alias %q", r.Alias)
		}
		if r.Kind != "RELEASE" && !strings.Contains(string(r.Submission), `HoldUntilDate="2026-10-14"`) {
			t.Fatalf("missing HOLD action in %s envelope:\n%s", r.Kind, r.Submission)
		}
	}
	if !strings.Contains(runPayload, `checksum="d41d8cd98f00b204e9800998ecf8427e"`) || !strings.Contains(runPayload, `filename="test.bam"`) {
		t.Fatalf("run manifest missing file block:\n%s", runPayload)
	}

	entries, err := s.store.List(context.Background(), journal.ListOptions{CorrelationID: "run-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 journal entries, got %d", len(entries))
	}
}

func TestScenarioDuplicateRerun(t *testing.T) {
	s := newScenario(t)
	req := scenarioRequest(t)

	first := s.orch.Run(context.Background(), req)
	if !first.Success() {
		t.Fatalf("first run failed: %v", first.Err)
	}
	releasesAfterFirst := s.archive.Releases()

	second := s.orch.Run(context.Background(), req)
	if !second.Success() {
		t.Fatalf("rerun failed: %s %v", second.State, second.Err)
	}
	if second.SampleAccession != first.SampleAccession ||
		second.ExperimentAccession != first.ExperimentAccession ||
		second.RunAccession != first.RunAccession {
		t.Fatalf("rerun accessions differ: first=%+v second=%+v", first, second)
	}
	for _, step := range second.Steps {
		if step.Status != receipt.Duplicate || step.Released {
			t.Fatalf("expected unreleased duplicate for %s, got %+v", step.Step, step)
		}
	}
	if diff := cmp.Diff(releasesAfterFirst, s.archive.Releases()); diff != "" {
		t.Fatalf("release re-invoked on rerun (-want +got):\n%s", diff)
	}

	entries, err := s.store.List(context.Background(), journal.ListOptions{CorrelationID: "run-2", Alias: "S1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "duplicate" || entries[0].Accession != "ERS000001" {
		t.Fatalf("unexpected rerun journal entries: %+v", entries)
	}
}

func TestScenarioAwaitingProcessingDuplicate(t *testing.T) {
	s := newScenario(t)
	s.archive.UseAwaitingMessage()
	req := scenarioRequest(t)

	if out := s.orch.Run(context.Background(), req); !out.Success() {
		t.Fatalf("first run failed: %v", out.Err)
	}
	out := s.orch.Run(context.Background(), req)
	if !out.Success() {
		t.Fatalf("rerun failed: %v", out.Err)
	}
	sample, _ := out.Step(submission.StepSample)
	if sample.Pattern != "awaiting-processing@v1" {
		t.Fatalf("unexpected pattern %q", sample.Pattern)
	}
}

func TestScenarioMetricsTextfile(t *testing.T) {
	s := newScenario(t)
	if out := s.orch.Run(context.Background(), scenarioRequest(t)); !out.Success() {
		t.Fatalf("run failed: %v", out.Err)
	}
	if err := s.metrics.WriteTextfile(s.cfgPath); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(s.cfgPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{
		`enasubmit_step_results_total{status="accepted",step="sample"} 1`,
		`enasubmit_release_total{status="accepted",step="run"} 1`,
		`enasubmit_step_results_total{status="completed",step="upload"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("metrics missing %q:\n%s", want, data)
		}
	}
}
