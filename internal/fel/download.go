package fel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// DefaultVerifierURL is the public verification service used for contingency
// documents: invoices not yet served by the consultation API but retrievable
// by authorization identity, in PDF form only.
const DefaultVerifierURL = "https://felpub.c.sat.gob.gt/verificador-web/publico/api/verificacionDte"

// Format selects the document representation to retrieve.
type Format string

// Supported document formats.
const (
	FormatPDF Format = "pdf"
	FormatXML Format = "xml"
)

// Ext returns the filename extension for the format.
func (f Format) Ext() string {
	return string(f)
}

// Provenance records which path produced a document. Contingency-recovered
// content carries weaker guarantees and has already passed the signature check.
type Provenance int

// Document provenance values.
const (
	ProvenancePrimary Provenance = iota
	ProvenanceContingency
)

func (p Provenance) String() string {
	if p == ProvenanceContingency {
		return "contingency"
	}
	return "primary"
}

// Document is a retrieved invoice representation. Filename is empty when the
// server suggested none; callers fall back to FallbackFilename.
type Document struct {
	Content    []byte
	Filename   string
	Provenance Provenance
}

// filenamePattern extracts the suggested name from Content-Disposition.
var filenamePattern = regexp.MustCompile(`filename=(.+)`)

// pdfMagic is the signature expected at the start of any PDF.
var pdfMagic = []byte("%PDF")

// RetrievalClient fetches PDF or XML representations of one invoice.
type RetrievalClient struct {
	session     *transport.Session
	apiURL      string
	verifierURL string
	username    string
	log         zerolog.Logger
}

// NewRetrievalClient creates a document retrieval client.
func NewRetrievalClient(session *transport.Session, apiURL, verifierURL, username string, log zerolog.Logger) *RetrievalClient {
	return &RetrievalClient{
		session:     session,
		apiURL:      apiURL,
		verifierURL: verifierURL,
		username:    username,
		log:         log,
	}
}

// Fetch retrieves one invoice document in the requested format. An HTTP 500 on
// a PDF request fails over to the public verifier exactly once; a 500 on an
// XML request has no fallback and surfaces as a transport error.
func (c *RetrievalClient) Fetch(ctx context.Context, sum model.InvoiceSummary, format Format, dir model.Direction) (*Document, error) {
	params := url.Values{
		"usuario":       {c.username},
		"tipoOperacion": {string(dir)},
		"nitIdReceptor": {""},
	}
	fetchURL := c.apiURL + "/consulta-dte/" + string(format) + "?" + params.Encode()

	// Token re-read fresh per call; it may have rotated since listing.
	token := c.session.CookieValue(c.apiURL, accessTokenCookie)

	resp, err := c.session.PostJSON(ctx, "fetch", fetchURL, []model.InvoiceSummary{sum}, bearerHeader(token))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusInternalServerError {
		if format != FormatPDF {
			return nil, model.NewTransportError("fetch", fetchURL, resp.StatusCode)
		}
		c.log.Debug().Str("uuid", sum.NumeroUUID).Msg("primary retrieval returned 500, trying public verifier")
		return c.fetchContingency(ctx, sum)
	}
	if !resp.IsSuccess() {
		return nil, model.NewTransportError("fetch", fetchURL, resp.StatusCode)
	}

	return &Document{
		Content:    resp.Body,
		Filename:   filenameFromDisposition(resp.Header.Get("Content-Disposition")),
		Provenance: ProvenancePrimary,
	}, nil
}

// contingencyRequest is the reduced lookup payload the public verifier takes:
// authorization identity instead of internal record id, no bearer token.
type contingencyRequest struct {
	NumeroUUID string `json:"numeroUuid"`
	NitEmisor  string `json:"nitEmisor"`
	Estado     string `json:"estado"`
	MontoTotal string `json:"montoTotal"`
	IDReceptor string `json:"idReceptor"`
}

func (c *RetrievalClient) fetchContingency(ctx context.Context, sum model.InvoiceSummary) (*Document, error) {
	payload := contingencyRequest{
		NumeroUUID: sum.NumeroUUID,
		NitEmisor:  sum.NitEmisor,
		Estado:     "VIGENTE",
		MontoTotal: sum.MontoTotal.String(),
		IDReceptor: sum.IDReceptor,
	}

	resp, err := c.session.PostJSON(ctx, "contingency", c.verifierURL, payload, nil)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, model.NewTransportError("contingency", c.verifierURL, resp.StatusCode)
	}

	var encoded []string
	if err := json.Unmarshal(resp.Body, &encoded); err != nil || len(encoded) == 0 {
		return nil, model.NewIntegrityError("verifier response carried no document")
	}

	content, err := base64.StdEncoding.DecodeString(encoded[0])
	if err != nil {
		return nil, model.NewIntegrityError("verifier document is not valid base64")
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return nil, model.NewIntegrityError("decoded content is not a valid PDF")
	}

	return &Document{
		Content:    content,
		Provenance: ProvenanceContingency,
	}, nil
}

// filenameFromDisposition extracts the suggested filename from a
// Content-Disposition header, stripping surrounding quotes. Empty when the
// header is absent or unparsable; callers synthesize a name instead.
func filenameFromDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	m := filenamePattern.FindStringSubmatch(cd)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], `"`, "")
}

// FallbackFilename synthesizes a filename from the invoice's authorization
// UUID when the server suggested none.
func FallbackFilename(sum model.InvoiceSummary, format Format) string {
	return sum.NumeroUUID + "." + format.Ext()
}
