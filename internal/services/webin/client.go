package webin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enasubmit/internal/manifest"
	"enasubmit/internal/services"
)

const (
	defaultHTTPTimeout = 5 * time.Minute
	maxReceiptBytes    = 8 << 20
)

// HTTPDoer describes the HTTP client used to reach the drop-box.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config captures the endpoint and credentials for one archive environment.
type Config struct {
	URL            string
	Username       string
	Password       string
	TimeoutSeconds int
}

// Response is the raw outcome of one drop-box call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client submits documents to the drop-box.
type Client struct {
	cfg  Config
	http HTTPDoer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient constructs a drop-box client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			URL:            strings.TrimSpace(cfg.URL),
			Username:       strings.TrimSpace(cfg.Username),
			Password:       cfg.Password,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		http: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Endpoint returns the configured drop-box URL.
func (c *Client) Endpoint() string {
	if c == nil {
		return ""
	}
	return c.cfg.URL
}

// Submit posts the envelope together with the object documents as one
// multipart request. Each document travels as a file part named after its
// kind. Non-2xx statuses are returned as a Response, not an error; only
// failures to obtain a response at all are reported as transport errors.
func (c *Client) Submit(ctx context.Context, envelope manifest.Document, docs ...manifest.Document) (Response, error) {
	step := stepOf(envelope, docs)
	if c == nil || c.http == nil {
		return Response{}, services.Wrap(services.ErrConfiguration, step, "submit", "drop-box client unavailable", nil)
	}
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return Response{}, services.Wrap(services.ErrConfiguration, step, "submit", "webin credentials are required", nil)
	}
	endpoint, err := url.Parse(c.cfg.URL)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return Response{}, services.Wrap(services.ErrConfiguration, step, "submit", fmt.Sprintf("invalid drop-box url %q", c.cfg.URL), err)
	}
	if envelope.Kind != manifest.KindSubmission {
		return Response{}, services.Wrap(services.ErrConstruction, step, "submit", "envelope must be a SUBMISSION document", nil)
	}

	body, contentType, err := encodeParts(envelope, docs)
	if err != nil {
		return Response{}, services.Wrap(services.ErrConstruction, step, "encode multipart", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, step, "build request", "", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/xml")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, step, "post", "drop-box unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxReceiptBytes))
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, step, "read receipt", "", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: payload}, nil
}

func encodeParts(envelope manifest.Document, docs []manifest.Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	seen := make(map[manifest.Kind]struct{}, len(docs)+1)
	parts := append([]manifest.Document{envelope}, docs...)
	for _, doc := range parts {
		if _, dup := seen[doc.Kind]; dup {
			return nil, "", fmt.Errorf("duplicate %s part", doc.Kind)
		}
		seen[doc.Kind] = struct{}{}
		part, err := writer.CreateFormFile(string(doc.Kind), doc.Kind.Step()+".xml")
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(doc.Body); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func stepOf(envelope manifest.Document, docs []manifest.Document) string {
	if len(docs) > 0 {
		return docs[0].Kind.Step()
	}
	if envelope.Kind != "" {
		return "release"
	}
	return ""
}
