package portal

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// queryRoutePattern matches the href of the invoice-query menu entry inside
// the partial-update fragment.
var queryRoutePattern = regexp.MustCompile(`dte-consulta`)

// MenuStep replays the home-menu partial update and locates the dynamically
// assigned invoice-query URL inside its CDATA fragment.
type MenuStep struct {
	session   *transport.Session
	portalURL string
	viewState string
}

// NewMenuStep creates the menu discovery step.
func NewMenuStep(session *transport.Session, portalURL, viewState string) *MenuStep {
	return &MenuStep{session: session, portalURL: portalURL, viewState: viewState}
}

// Execute posts the JSF partial-ajax request and returns the discovered
// invoice-query URL, resolved against the home endpoint when relative.
func (s *MenuStep) Execute(ctx context.Context) (string, error) {
	homeURL := s.portalURL + homePath
	form := url.Values{
		"javax.faces.partial.ajax":    {"true"},
		"javax.faces.source":          {"formContent:j_idt34"},
		"javax.faces.partial.execute": {"@all"},
		"javax.faces.partial.render":  {"formContent:contentAgenciaVirtual"},
		"formContent:j_idt34":         {"formContent:j_idt34"},
		"formContent":                 {"formContent"},
		viewStateField:                {s.viewState},
	}

	resp, err := s.session.PostForm(ctx, "menu", homeURL, form)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", model.NewTransportError("menu", homeURL, resp.StatusCode)
	}

	fragment, ok := firstCDATA(resp.Body)
	if !ok {
		return "", model.NewMenuDiscoveryError("no CDATA section in partial response")
	}

	href, ok := findQueryAnchor(fragment)
	if !ok {
		return "", model.NewMenuDiscoveryError("no invoice-query link in menu fragment")
	}
	return resolveURL(homeURL, href), nil
}

// firstCDATA scans every text node of the partial-response XML and returns the
// first CDATA section's content.
func firstCDATA(body []byte) (string, bool) {
	doc := etree.NewDocument()
	// etree flattens CDATA into plain character data unless told to keep it.
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(body); err != nil {
		return "", false
	}
	var found string
	var walk func(el *etree.Element) bool
	walk = func(el *etree.Element) bool {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				if t.IsCData() {
					found = t.Data
					return true
				}
			case *etree.Element:
				if walk(t) {
					return true
				}
			}
		}
		return false
	}
	if root := doc.Root(); root != nil && walk(root) {
		return found, true
	}
	return "", false
}

// findQueryAnchor parses the CDATA content as HTML and returns the first
// anchor href matching the invoice-query route.
func findQueryAnchor(fragment string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}
	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		h, _ := sel.Attr("href")
		if queryRoutePattern.MatchString(h) {
			href = h
			return false
		}
		return true
	})
	return href, href != ""
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
