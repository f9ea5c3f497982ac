// Package felclient is the public entry point for downloading FEL invoices
// from SAT's Agencia Virtual: listing, PDF/XML retrieval with the contingency
// fallback, and parsing of the certified XML into the invoice model.
package felclient

import (
	"context"
	"sync"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/fel"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/parser/dte"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/portal"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// Re-exported domain types so callers need only this package.
type (
	// Credentials are the taxpayer portal credentials.
	Credentials = model.Credentials
	// Filter is the invoice search criteria.
	Filter = model.Filter
	// InvoiceSummary is one invoice-search result record.
	InvoiceSummary = model.InvoiceSummary
	// Invoice is the parsed DTE document model.
	Invoice = model.Invoice
	// Document is a retrieved invoice representation.
	Document = fel.Document
	// Format selects PDF or XML retrieval.
	Format = fel.Format
)

// Retrieval formats.
const (
	FormatPDF = fel.FormatPDF
	FormatXML = fel.FormatXML
)

// Client drives one portal session. All public operations serialize on an
// internal mutex: the portal's view-state and token cookies belong to a single
// server-side session and interleaved requests corrupt them. Use separate
// Clients (separate credentials/transports) for parallelism.
type Client struct {
	mu sync.Mutex

	creds      model.Credentials
	session    *transport.Session
	controller *portal.Controller
	lister     *fel.ListingClient
	retriever  *fel.RetrievalClient
}

// New creates a client for the given credentials. Each client owns its own
// transport and cookie jar unless one is injected.
func New(creds Credentials, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	session := transport.NewSession(o.transportOptions()...)
	controller := portal.NewController(creds, session,
		portal.WithPortalURL(o.portalURL),
		portal.WithLogoutTimeout(o.logoutTimeout),
		portal.WithLogger(o.log),
	)

	return &Client{
		creds:      creds,
		session:    session,
		controller: controller,
		lister:     fel.NewListingClient(session, o.apiURL, creds.Username),
		retriever:  fel.NewRetrievalClient(session, o.apiURL, o.verifierURL, creds.Username, o.log),
	}
}

// Invoices lists invoice summaries matching the filter. The session is lazily
// initialized on first use.
func (c *Client) Invoices(ctx context.Context, f Filter) ([]InvoiceSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.controller.EnsureReady(ctx); err != nil {
		return nil, err
	}
	return c.lister.List(ctx, c.controller.QueryURL(), f)
}

// Fetch retrieves one invoice document in the requested format.
func (c *Client) Fetch(ctx context.Context, sum InvoiceSummary, format Format, dir model.Direction) (*Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fetchLocked(ctx, sum, format, dir)
}

// PDF retrieves the PDF representation of one invoice.
func (c *Client) PDF(ctx context.Context, sum InvoiceSummary, dir model.Direction) (*Document, error) {
	return c.Fetch(ctx, sum, FormatPDF, dir)
}

// XML retrieves the certified XML representation of one invoice.
func (c *Client) XML(ctx context.Context, sum InvoiceSummary, dir model.Direction) (*Document, error) {
	return c.Fetch(ctx, sum, FormatXML, dir)
}

// InvoiceModel retrieves one invoice's XML and parses it into the document model.
func (c *Client) InvoiceModel(ctx context.Context, sum InvoiceSummary, dir model.Direction) (*Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.fetchLocked(ctx, sum, FormatXML, dir)
	if err != nil {
		return nil, err
	}
	return dte.ParseBytes(doc.Content)
}

// InvoiceModels lists invoices matching the filter and parses each one's XML.
func (c *Client) InvoiceModels(ctx context.Context, f Filter) ([]*Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.controller.EnsureReady(ctx); err != nil {
		return nil, err
	}
	summaries, err := c.lister.List(ctx, c.controller.QueryURL(), f)
	if err != nil {
		return nil, err
	}

	invoices := make([]*Invoice, 0, len(summaries))
	for _, sum := range summaries {
		doc, err := c.retriever.Fetch(ctx, sum, FormatXML, f.Direction)
		if err != nil {
			return nil, err
		}
		inv, err := dte.ParseBytes(doc.Content)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// Logout ends the portal session, best-effort, and clears local session state.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.controller.Logout(ctx)
}

func (c *Client) fetchLocked(ctx context.Context, sum InvoiceSummary, format Format, dir model.Direction) (*Document, error) {
	if err := c.controller.EnsureReady(ctx); err != nil {
		return nil, err
	}
	return c.retriever.Fetch(ctx, sum, format, dir)
}

// ParseInvoice parses certified DTE XML bytes without touching the network.
func ParseInvoice(data []byte) (*Invoice, error) {
	return dte.ParseBytes(data)
}

// FallbackFilename synthesizes a filename from the invoice's authorization
// UUID, for documents the server suggested no name for.
func FallbackFilename(sum InvoiceSummary, format Format) string {
	return fel.FallbackFilename(sum, format)
}

// Filename returns the document's server-suggested name, or the fallback when
// the server suggested none.
func Filename(doc *Document, sum InvoiceSummary, format Format) string {
	if doc.Filename != "" {
		return doc.Filename
	}
	return FallbackFilename(sum, format)
}

// ValidatePDF runs a structural validation over retrieved PDF bytes.
func ValidatePDF(content []byte) error {
	return fel.ValidatePDF(content)
}
