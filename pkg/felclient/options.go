package felclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/fel"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/portal"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout       time.Duration
	logoutTimeout time.Duration
	httpClient    *http.Client
	log           zerolog.Logger
	portalURL     string
	apiURL        string
	verifierURL   string
}

func defaultOptions() *options {
	return &options{
		timeout:       transport.DefaultTimeout,
		logoutTimeout: portal.DefaultLogoutTimeout,
		log:           zerolog.Nop(),
		portalURL:     portal.DefaultPortalURL,
		apiURL:        fel.DefaultAPIURL,
		verifierURL:   fel.DefaultVerifierURL,
	}
}

func (o *options) transportOptions() []transport.Option {
	opts := []transport.Option{transport.WithTimeout(o.timeout)}
	if o.httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(o.httpClient))
	}
	return opts
}

// WithTimeout sets the per-request timeout for every portal and API call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogoutTimeout sets the budget for the best-effort logout exchange.
func WithLogoutTimeout(d time.Duration) Option {
	return func(o *options) {
		o.logoutTimeout = d
	}
}

// WithLogger attaches a structured logger. Without it the client is silent.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithPortalURL overrides the Agencia Virtual entry point.
func WithPortalURL(u string) Option {
	return func(o *options) {
		o.portalURL = u
	}
}

// WithAPIURL overrides the consultation API base.
func WithAPIURL(u string) Option {
	return func(o *options) {
		o.apiURL = u
	}
}

// WithVerifierURL overrides the public verifier endpoint.
func WithVerifierURL(u string) Option {
	return func(o *options) {
		o.verifierURL = u
	}
}
