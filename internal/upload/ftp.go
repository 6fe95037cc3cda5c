package upload

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"enasubmit/internal/services"
)

const defaultTimeout = 30 * time.Second

// Conn is the subset of an FTP control connection used for one transfer.
type Conn interface {
	Login(user, password string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

// Dialer opens FTP control connections.
type Dialer interface {
	Dial(ctx context.Context, addr string, timeout time.Duration) (Conn, error)
}

// FTPDialer dials real servers with github.com/jlaffaye/ftp.
type FTPDialer struct{}

// Dial connects to addr, bounding the connect and each operation by timeout.
func (FTPDialer) Dial(ctx context.Context, addr string, timeout time.Duration) (Conn, error) {
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config captures the FTP endpoint and credentials.
type Config struct {
	Host     string
	Username string
	Password string
	Timeout  time.Duration
}

// Result describes a completed transfer.
type Result struct {
	LocalPath  string
	RemoteName string
	Checksum   string
	Bytes      int64
	Duration   time.Duration
}

// Uploader streams one file per call to the FTP drop box.
type Uploader struct {
	cfg    Config
	dialer Dialer
	now    func() time.Time
}

// NewUploader constructs an uploader. A nil dialer uses FTPDialer.
func NewUploader(cfg Config, dialer Dialer) *Uploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.Host = strings.TrimSpace(cfg.Host)
	if dialer == nil {
		dialer = FTPDialer{}
	}
	return &Uploader{cfg: cfg, dialer: dialer, now: time.Now}
}

// Upload stores the file at path under its basename and returns the MD5 of
// the bytes that were sent.
func (u *Uploader) Upload(ctx context.Context, path string) (Result, error) {
	const step = "upload"
	if u == nil || u.dialer == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, step, "upload", "uploader unavailable", nil)
	}
	if u.cfg.Host == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, step, "upload", "ftp host is required", nil)
	}
	if u.cfg.Username == "" || u.cfg.Password == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, step, "upload", "webin credentials are required", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrUpload, step, "open", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Result{}, services.Wrap(services.ErrUpload, step, "stat", path, err)
	}
	if info.IsDir() {
		return Result{}, services.Wrap(services.ErrUpload, step, "open", path+" is a directory", nil)
	}

	remote := filepath.Base(path)
	started := u.now()

	conn, err := u.dialer.Dial(ctx, u.cfg.Host, u.cfg.Timeout)
	if err != nil {
		return Result{}, services.Wrap(services.ErrUpload, step, "dial", u.cfg.Host, err)
	}
	if err := conn.Login(u.cfg.Username, u.cfg.Password); err != nil {
		_ = conn.Quit()
		return Result{}, services.Wrap(services.ErrUpload, step, "login", u.cfg.Host, err)
	}

	src := &digestReader{ctx: ctx, r: f, h: md5.New()}
	if err := conn.Stor(remote, src); err != nil {
		_ = conn.Quit()
		return Result{}, services.Wrap(services.ErrUpload, step, "stor", remote, err)
	}
	if err := ctx.Err(); err != nil {
		_ = conn.Quit()
		return Result{}, services.Wrap(services.ErrUpload, step, "stor", remote, err)
	}
	if err := conn.Quit(); err != nil {
		return Result{}, services.Wrap(services.ErrUpload, step, "quit", u.cfg.Host, err)
	}

	return Result{
		LocalPath:  path,
		RemoteName: remote,
		Checksum:   hex.EncodeToString(src.h.Sum(nil)),
		Bytes:      src.n,
		Duration:   u.now().Sub(started),
	}, nil
}

// digestReader hashes every byte handed to the FTP data connection and
// stops the transfer once ctx is done.
type digestReader struct {
	ctx context.Context
	r   io.Reader
	h   hash.Hash
	n   int64
}

func (d *digestReader) Read(p []byte) (int, error) {
	if err := d.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := d.r.Read(p)
	if n > 0 {
		d.h.Write(p[:n])
		d.n += int64(n)
	}
	return n, err
}
