package model

import "time"

// Credentials are the taxpayer portal credentials, supplied once at construction.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// DTEStatus filters invoices by their certification status.
type DTEStatus string

// Status codes as the consultation API expects them.
const (
	StatusAll       DTEStatus = ""
	StatusActive    DTEStatus = "V"
	StatusCancelled DTEStatus = "I"
)

// Direction selects between invoices received by or issued by the taxpayer.
type Direction string

// Direction codes as the consultation API expects them.
const (
	DirectionReceived Direction = "R"
	DirectionIssued   Direction = "E"
)

// Filter is the invoice search criteria. Pure value object; the server is the
// sole validator (an inverted date range is sent as-is).
type Filter struct {
	Establishment int
	Status        DTEStatus
	From          time.Time
	To            time.Time
	Direction     Direction
}

// QueryDateFormat is the DD-MM-YYYY layout the consultation API expects.
const QueryDateFormat = "02-01-2006"
