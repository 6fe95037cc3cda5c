package upload_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"testing"
	"time"

	"enasubmit/internal/services"
	"enasubmit/internal/upload"
)

type fakeConn struct {
	user, pass string
	stored     map[string][]byte
	loginErr   error
	storErr    error
	quits      int
}

func (c *fakeConn) Login(user, pass string) error {
	c.user, c.pass = user, pass
	return c.loginErr
}

func (c *fakeConn) Stor(path string, r io.Reader) error {
	if c.storErr != nil {
		return c.storErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if c.stored == nil {
		c.stored = map[string][]byte{}
	}
	c.stored[path] = data
	return nil
}

func (c *fakeConn) Quit() error {
	c.quits++
	return nil
}

type fakeDialer struct {
	conn    *fakeConn
	err     error
	addr    string
	timeout time.Duration
}

func (d *fakeDialer) Dial(_ context.Context, addr string, timeout time.Duration) (upload.Conn, error) {
	d.addr, d.timeout = addr, timeout
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func testConfig() upload.Config {
	return upload.Config{Host: "webin.example.org:21", Username: "Webin-1", Password: "secret"}
}

func TestUploadStoresBasenameAndDigestsSentBytes(t *testing.T) {
	path, data := writeSized(t, 3*upload.ChunkSize+5)
	conn := &fakeConn{}
	dialer := &fakeDialer{conn: conn}

	res, err := upload.NewUploader(testConfig(), dialer).Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if dialer.addr != "webin.example.org:21" || dialer.timeout != 30*time.Second {
		t.Fatalf("unexpected dial %s %s", dialer.addr, dialer.timeout)
	}
	if conn.user != "Webin-1" || conn.pass != "secret" {
		t.Fatalf("unexpected login %q/%q", conn.user, conn.pass)
	}
	sent, ok := conn.stored["reads.bam"]
	if !ok {
		t.Fatalf("expected remote basename, stored %v", conn.stored)
	}
	sum := md5.Sum(sent)
	if res.Checksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("checksum %s does not match transferred bytes", res.Checksum)
	}
	if len(sent) != len(data) || res.Bytes != int64(len(data)) {
		t.Fatalf("byte count mismatch: sent=%d result=%d want=%d", len(sent), res.Bytes, len(data))
	}
	if res.RemoteName != "reads.bam" {
		t.Fatalf("remote name = %q", res.RemoteName)
	}
	if conn.quits != 1 {
		t.Fatalf("expected one QUIT, got %d", conn.quits)
	}

	local, _, err := upload.Checksum(context.Background(), path)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if local != res.Checksum {
		t.Fatalf("streaming digest %s differs from file digest %s", res.Checksum, local)
	}
}

func TestUploadEmptyFile(t *testing.T) {
	path, _ := writeSized(t, 0)
	res, err := upload.NewUploader(testConfig(), &fakeDialer{conn: &fakeConn{}}).Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Checksum != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("checksum = %s", res.Checksum)
	}
}

func TestUploadFailuresAreUploadErrors(t *testing.T) {
	path, _ := writeSized(t, 10)
	cases := map[string]*fakeDialer{
		"dial":  {err: errors.New("i/o timeout")},
		"login": {conn: &fakeConn{loginErr: errors.New("530 Login incorrect")}},
		"stor":  {conn: &fakeConn{storErr: errors.New("451 aborted")}},
	}
	for name, dialer := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := upload.NewUploader(testConfig(), dialer).Upload(context.Background(), path)
			if !errors.Is(err, services.ErrUpload) {
				t.Fatalf("expected upload error, got %v", err)
			}
			if dialer.conn != nil && dialer.conn.quits != 1 {
				t.Fatalf("expected connection to be closed, quits=%d", dialer.conn.quits)
			}
		})
	}
}

func TestUploadMissingFileNeverDials(t *testing.T) {
	dialer := &fakeDialer{conn: &fakeConn{}}
	_, err := upload.NewUploader(testConfig(), dialer).Upload(context.Background(), "/nonexistent/reads.bam")
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if dialer.addr != "" {
		t.Fatal("dialed despite missing file")
	}
}

func TestUploadRequiresCredentials(t *testing.T) {
	path, _ := writeSized(t, 1)
	cfg := testConfig()
	cfg.Password = ""
	if _, err := upload.NewUploader(cfg, &fakeDialer{conn: &fakeConn{}}).Upload(context.Background(), path); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestUploadCancelledMidTransfer(t *testing.T) {
	path, _ := writeSized(t, upload.ChunkSize)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn := &fakeConn{}
	_, err := upload.NewUploader(testConfig(), &fakeDialer{conn: conn}).Upload(ctx, path)
	if !errors.Is(err, services.ErrUpload) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled upload error, got %v", err)
	}
}
