// Package fel implements the authenticated consultation API clients: invoice
// listing and document retrieval with the public-verifier contingency path.
package fel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/transport"
)

// DefaultAPIURL is the consultation API base assigned to Agencia Virtual sessions.
const DefaultAPIURL = "https://felcons.c.sat.gob.gt/dte-agencia-virtual/api"

const (
	// accessTokenCookie holds the bearer token. It is primed by visiting the
	// discovered query URL and may rotate, so it is re-read per request.
	accessTokenCookie = "ACCESS_TOKEN"

	authTokenHeader = "authtoken"
)

// bearerHeader builds the authtoken header the consultation API expects.
func bearerHeader(token string) http.Header {
	h := http.Header{}
	h.Set(authTokenHeader, "token "+token)
	return h
}

// ListingClient queries the invoice-search endpoint.
type ListingClient struct {
	session  *transport.Session
	apiURL   string
	username string
}

// NewListingClient creates an invoice listing client.
func NewListingClient(session *transport.Session, apiURL, username string) *ListingClient {
	return &ListingClient{session: session, apiURL: apiURL, username: username}
}

// listResponse mirrors the search endpoint's envelope.
type listResponse struct {
	Detalle struct {
		Data []model.InvoiceSummary `json:"data"`
	} `json:"detalle"`
}

// List first visits the discovered query URL to prime the access-token cookie,
// then issues the filtered search. Server order is preserved; zero results is
// an empty slice, not an error.
func (c *ListingClient) List(ctx context.Context, queryURL string, f model.Filter) ([]model.InvoiceSummary, error) {
	resp, err := c.session.Get(ctx, "prime", queryURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, model.NewTransportError("prime", queryURL, resp.StatusCode)
	}

	token := c.session.CookieValue(c.apiURL, accessTokenCookie)

	params := url.Values{
		"usuario":           {c.username},
		"tipoOperacion":     {string(f.Direction)},
		"nitIdReceptor":     {""},
		"estadoDte":         {string(f.Status)},
		"establecimiento":   {strconv.Itoa(f.Establishment)},
		"fechaEmisionIni":   {f.From.Format(model.QueryDateFormat)},
		"fechaEmisionFinal": {f.To.Format(model.QueryDateFormat)},
	}
	searchURL := c.apiURL + "/consulta-dte?" + params.Encode()

	resp, err = c.session.Get(ctx, "list", searchURL, bearerHeader(token))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, model.NewTransportError("list", searchURL, resp.StatusCode)
	}

	var parsed listResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, model.WrapTransportError("list", searchURL, err)
	}
	if parsed.Detalle.Data == nil {
		return []model.InvoiceSummary{}, nil
	}
	return parsed.Detalle.Data, nil
}
