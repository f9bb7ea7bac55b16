// Package client talks to the catalog REST backend.
//
// Transport is the low-level request executor. Client adds the bearer token
// of the current session to every call.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/and161185/perpus/internal/errs"
	"github.com/and161185/perpus/internal/pkg/json"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// DefaultTimeout bounds one request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// DefaultMaxResponseBytes caps how much of a response body is read.
const DefaultMaxResponseBytes = 10 << 20

// ErrResponseTooLarge is returned when a response body exceeds the cap.
var ErrResponseTooLarge = errors.New("response too large")

// Request describes one backend call.
type Request struct {
	Method string
	Path   string // joined to the base URL, must start with "/"
	Token  string // bearer token, omitted when empty
	Body   any    // nil, *Multipart, or any JSON-encodable value
}

// Transport executes requests against one backend.
type Transport struct {
	base       string
	http       *http.Client
	propagator propagation.TextMapPropagator
	log        *zap.Logger
	maxBody    int64
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped with request logging.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.http = c }
}

// WithPropagator sets the trace-context propagator. Defaults to the global one.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Transport) { t.propagator = p }
}

// WithMaxResponseBytes sets the response body cap. Values <= 0 keep the default.
func WithMaxResponseBytes(n int64) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxBody = n
		}
	}
}

// NewTransport creates a Transport for baseURL.
func NewTransport(baseURL string, timeout time.Duration, log *zap.Logger, opts ...Option) (*Transport, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("api url %q: want http(s)://host[:port][/prefix]", baseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	t := &Transport{
		base: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
		maxBody: DefaultMaxResponseBytes,
	}
	for _, o := range opts {
		o(t)
	}

	next := t.http.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc := *t.http
	hc.Transport = LoggingRoundTripper(next, log)
	t.http = &hc
	return t, nil
}

// BaseURL returns the normalized backend URL.
func (t *Transport) BaseURL() string { return t.base }

// Do sends r and decodes a 2xx JSON response into out (when out is non-nil).
// Non-2xx responses become *errs.RequestError, transport failures *errs.NetworkError.
func (t *Transport) Do(ctx context.Context, r Request, out any) error {
	body, ctype, err := encodeBody(r.Body)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", r.Method, r.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, t.base+r.Path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", r.Method, r.Path, err)
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set("Accept", "application/json")
	if id, err := uuid.NewV4(); err == nil {
		req.Header.Set(HeaderRequestID, id.String())
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	t.propagatorOrGlobal().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.http.Do(req)
	if err != nil {
		return &errs.NetworkError{Op: r.Method + " " + r.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return &errs.NetworkError{Op: "read " + r.Path, Err: err}
	}
	if int64(len(data)) > t.maxBody {
		return fmt.Errorf("%s %s: %w (over %d bytes)", r.Method, r.Path, ErrResponseTooLarge, t.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errs.RequestError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}

func (t *Transport) propagatorOrGlobal() propagation.TextMapPropagator {
	if t.propagator != nil {
		return t.propagator
	}
	return otel.GetTextMapPropagator()
}

func encodeBody(v any) (io.Reader, string, error) {
	switch b := v.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		if b == nil {
			return nil, "", errors.New("nil multipart body")
		}
		return b.Encode()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
