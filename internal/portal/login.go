package portal

import (
	"bytes"
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// DefaultPortalURL is the Agencia Virtual entry point.
const DefaultPortalURL = "https://farm3.sat.gob.gt"

const (
	loginPath = "/menu/init.do"
	homePath  = "/menu-agenciaVirtual/private/home.jsf"

	// viewStateField is the JSF hidden input the portal issues after a
	// successful login. Its absence on a 200 response means bad credentials.
	viewStateField = "javax.faces.ViewState"
)

// LoginStep performs the credential login and recovers the view-state token.
type LoginStep struct {
	creds     model.Credentials
	session   *transport.Session
	portalURL string
}

// NewLoginStep creates the authentication step.
func NewLoginStep(creds model.Credentials, session *transport.Session, portalURL string) *LoginStep {
	return &LoginStep{creds: creds, session: session, portalURL: portalURL}
}

// Execute submits the login form and extracts the view-state token from the
// response HTML. Side effect: the session's jar now holds portal cookies.
func (s *LoginStep) Execute(ctx context.Context) (string, error) {
	loginURL := s.portalURL + loginPath
	form := url.Values{
		"login":     {s.creds.Username},
		"password":  {s.creds.Password},
		"operacion": {"ACEPTAR"},
	}

	resp, err := s.session.PostForm(ctx, "login", loginURL, form)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", model.NewTransportError("login", loginURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return "", model.NewAuthenticationError("no view-state token recovered after login")
	}
	viewState, ok := doc.Find(`input[name="` + viewStateField + `"]`).Attr("value")
	if !ok || viewState == "" {
		return "", model.NewAuthenticationError("no view-state token recovered after login")
	}
	return viewState, nil
}
