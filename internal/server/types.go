package server

import (
	"time"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
)

// requestDateFormat is the wire layout for search date bounds.
const requestDateFormat = "2006-01-02"

// SearchRequest is the request for the invoice search endpoint.
type SearchRequest struct {
	From          string `json:"from" binding:"required"`
	To            string `json:"to" binding:"required"`
	Direction     string `json:"direction"`
	Status        string `json:"status"`
	Establishment int    `json:"establishment"`
}

// Filter converts the request into search criteria. Dates use YYYY-MM-DD;
// direction defaults to received.
func (r SearchRequest) Filter() (model.Filter, error) {
	from, err := time.Parse(requestDateFormat, r.From)
	if err != nil {
		return model.Filter{}, err
	}
	to, err := time.Parse(requestDateFormat, r.To)
	if err != nil {
		return model.Filter{}, err
	}

	dir := model.Direction(r.Direction)
	if dir == "" {
		dir = model.DirectionReceived
	}

	return model.Filter{
		Establishment: r.Establishment,
		Status:        model.DTEStatus(r.Status),
		From:          from,
		To:            to,
		Direction:     dir,
	}, nil
}

// SearchResponse is the response for the search endpoint.
type SearchResponse struct {
	Count    int                    `json:"count"`
	Invoices []model.InvoiceSummary `json:"invoices"`
}

// DownloadRequest is the request for the document download endpoint. Summary
// must be a record previously returned by search; the API matches it against
// the server-side result set.
type DownloadRequest struct {
	Summary   model.InvoiceSummary `json:"summary" binding:"required"`
	Format    string               `json:"format" binding:"required"`
	Direction string               `json:"direction"`
	Validate  bool                 `json:"validate"`
}

// DownloadResponse carries the retrieved document, base64-encoded.
type DownloadResponse struct {
	Filename   string `json:"filename"`
	Provenance string `json:"provenance"`
	Content    string `json:"content"`
}

// ParseResponse is the response for the XML parse endpoint.
type ParseResponse struct {
	Invoice *model.Invoice `json:"invoice"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
