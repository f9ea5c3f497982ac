package portal

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// DefaultLogoutTimeout bounds the best-effort logout exchange.
const DefaultLogoutTimeout = 5 * time.Second

// State is the controller's lifecycle position.
type State int

// Controller states. Any initialization failure returns to Uninitialized so a
// later call retries from a clean login rather than stale partial state.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Controller orchestrates login and menu discovery and owns the resulting
// session state. It provides no internal locking; callers serialize access
// (one in-flight operation per controller).
type Controller struct {
	creds         model.Credentials
	session       *transport.Session
	portalURL     string
	logoutTimeout time.Duration
	log           zerolog.Logger

	state     State
	viewState string
	queryURL  string
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithPortalURL overrides the portal entry point (tests).
func WithPortalURL(u string) ControllerOption {
	return func(c *Controller) {
		c.portalURL = u
	}
}

// WithLogoutTimeout overrides the logout budget.
func WithLogoutTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.logoutTimeout = d
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = log
	}
}

// NewController creates a session controller over the given transport.
func NewController(creds model.Credentials, session *transport.Session, opts ...ControllerOption) *Controller {
	c := &Controller{
		creds:         creds,
		session:       session,
		portalURL:     DefaultPortalURL,
		logoutTimeout: DefaultLogoutTimeout,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// QueryURL returns the discovered invoice-query URL. Empty unless Ready.
func (c *Controller) QueryURL() string {
	return c.queryURL
}

// Initialize runs login then menu discovery. On any failure all partial state
// is discarded and the controller returns to Uninitialized.
func (c *Controller) Initialize(ctx context.Context) error {
	if c.creds.IsZero() {
		return model.NewConfigurationError("credentials not set")
	}

	c.state = StateInitializing
	c.viewState = ""
	c.queryURL = ""

	viewState, err := NewLoginStep(c.creds, c.session, c.portalURL).Execute(ctx)
	if err != nil {
		c.state = StateUninitialized
		return err
	}

	queryURL, err := NewMenuStep(c.session, c.portalURL, viewState).Execute(ctx)
	if err != nil {
		c.state = StateUninitialized
		return err
	}

	c.viewState = viewState
	c.queryURL = queryURL
	c.state = StateReady
	c.log.Debug().Str("queryURL", queryURL).Msg("session ready")
	return nil
}

// EnsureReady lazily initializes the session. Callers never invoke Initialize
// directly; every listing/retrieval operation goes through here first.
func (c *Controller) EnsureReady(ctx context.Context) error {
	if c.state == StateReady {
		return nil
	}
	return c.Initialize(ctx)
}

// Logout submits the portal's cancel form pair and clears local session state.
// Portal failures are logged and ignored: local state is cleared regardless.
func (c *Controller) Logout(ctx context.Context) {
	if c.state != StateReady {
		return
	}

	homeURL := c.portalURL + homePath
	cancelForm := url.Values{
		"javax.faces.partial.ajax":   {"true"},
		"javax.faces.source":         {"formContent:btnCerrarSesion"},
		"javax.faces.partial.render": {"formContent"},
		"formContent":                {"formContent"},
		viewStateField:               {c.viewState},
	}
	if _, err := c.session.PostFormTimeout(ctx, "logout", homeURL, cancelForm, c.logoutTimeout); err != nil {
		c.log.Warn().Err(err).Msg("logout cancel trigger failed")
	}

	logoutURL := c.portalURL + loginPath
	form := url.Values{"operacion": {"CANCELAR"}}
	if _, err := c.session.PostFormTimeout(ctx, "logout", logoutURL, form, c.logoutTimeout); err != nil {
		c.log.Warn().Err(err).Msg("logout confirmation failed")
	}

	c.state = StateUninitialized
	c.viewState = ""
	c.queryURL = ""
}
