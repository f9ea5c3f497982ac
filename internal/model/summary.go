package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// InvoiceSummary is one record from the invoice-search response. It is an
// opaque key for document retrieval: the full server record is retained and
// echoed back verbatim when requesting the document, so fields the client does
// not model survive the round trip.
type InvoiceSummary struct {
	NitEmisor  string          `json:"nitEmisor"`
	IDReceptor string          `json:"idReceptor"`
	NumeroUUID string          `json:"numeroUuid"`
	MontoTotal decimal.Decimal `json:"montoTotal"`
	Estado     string          `json:"estado"`

	raw json.RawMessage
}

// UnmarshalJSON parses the known fields and keeps the raw record.
func (s *InvoiceSummary) UnmarshalJSON(data []byte) error {
	type alias InvoiceSummary
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = InvoiceSummary(a)
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the original server record when available so retrieval
// requests carry every field the server sent, modeled or not.
func (s InvoiceSummary) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	type alias InvoiceSummary
	return json.Marshal(alias(s))
}
