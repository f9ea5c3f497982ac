// Package transport wraps an HTTP client with persistent cookies. Every other
// component talks to the portal through a Session, so the portal's session
// cookies (JSESSIONID, ACCESS_TOKEN) accumulate in one place.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
)

// DefaultTimeout bounds every portal request unless overridden.
const DefaultTimeout = 20 * time.Second

// Response is the subset of the HTTP response the portal steps need.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Session is the cookie-persisting HTTP client shared by all portal steps.
// Each session owns its own jar; nothing here is global.
type Session struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Session
type Option func(*Session)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.client = c
	}
}

// NewSession creates a session. The client gets a fresh cookie jar if it has
// none, since the whole protocol rides on portal cookies.
func NewSession(opts ...Option) *Session {
	s := &Session{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		s.client.Jar = jar
	}
	return s
}

// Timeout returns the configured per-request timeout.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Get issues a GET with optional headers.
func (s *Session) Get(ctx context.Context, op, rawURL string, header http.Header) (*Response, error) {
	return s.do(ctx, op, http.MethodGet, rawURL, "", nil, header, s.timeout)
}

// PostForm issues a form-encoded POST.
func (s *Session) PostForm(ctx context.Context, op, rawURL string, form url.Values) (*Response, error) {
	body := strings.NewReader(form.Encode())
	return s.do(ctx, op, http.MethodPost, rawURL, "application/x-www-form-urlencoded", body, nil, s.timeout)
}

// PostFormTimeout issues a form-encoded POST with an operation-specific
// timeout. Logout uses this with a short budget since it is best-effort.
func (s *Session) PostFormTimeout(ctx context.Context, op, rawURL string, form url.Values, timeout time.Duration) (*Response, error) {
	body := strings.NewReader(form.Encode())
	return s.do(ctx, op, http.MethodPost, rawURL, "application/x-www-form-urlencoded", body, nil, timeout)
}

// PostJSON issues a JSON POST with optional headers.
func (s *Session) PostJSON(ctx context.Context, op, rawURL string, payload any, header http.Header) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, model.WrapTransportError(op, rawURL, err)
	}
	return s.do(ctx, op, http.MethodPost, rawURL, "application/json", bytes.NewReader(data), header, s.timeout)
}

// CookieValue returns the value of the named cookie currently held for the
// given URL, or empty if absent. Callers re-read per request: the portal
// rotates the access token.
func (s *Session) CookieValue(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, c := range s.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (s *Session) do(ctx context.Context, op, method, rawURL, contentType string, body io.Reader, header http.Header, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, model.WrapTransportError(op, rawURL, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, model.NewTransportTimeout(op, rawURL, err)
		}
		return nil, model.WrapTransportError(op, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, model.NewTransportTimeout(op, rawURL, err)
		}
		return nil, model.WrapTransportError(op, rawURL, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
