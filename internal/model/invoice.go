package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the parsed DTE document model. Built once per parsed XML document
// and immutable thereafter.
type Invoice struct {
	Header        InvoiceHeader
	Lines         []InvoiceLine
	Totals        InvoiceTotals
	Certification Certification
}

// InvoiceHeader carries the general data of the emission section.
type InvoiceHeader struct {
	IssueDate   time.Time
	InvoiceType string
	Currency    string
	Issuer      Issuer
	Receiver    Receiver
}

// Address is the issuer's registered address.
type Address struct {
	Street  string
	ZipCode string
	City    string
	State   string
	Country string
}

// Issuer identifies the emitting taxpayer.
type Issuer struct {
	Nit            string
	CommercialName string
	IssuingName    string
	VatAffiliation string
	Establishment  string
	Email          string
	Address        Address
}

// Receiver identifies the receiving taxpayer. Email is optional text content;
// some documents omit it entirely.
type Receiver struct {
	Nit   string
	Name  string
	Email string
}

// InvoiceLine is one Item of the document, in source order.
type InvoiceLine struct {
	LineNumber          int
	GoodOrService       string
	Quantity            decimal.Decimal
	UnitOfMeasure       string
	Description         string
	UnitPrice           decimal.Decimal
	PriceBeforeDiscount decimal.Decimal
	Discount            decimal.Decimal
	Total               decimal.Decimal
}

// TotalTax is one named tax total from the Totales section.
type TotalTax struct {
	Name   string
	Amount decimal.Decimal
}

// InvoiceTotals holds the ordered tax totals and the grand total.
type InvoiceTotals struct {
	Taxes      []TotalTax
	GrandTotal decimal.Decimal
}

// Certification is the fiscal certification stamped by the certifier.
type Certification struct {
	AuthorizationNumber string
	Series              string
	Signature           string
}

// LineSum returns the sum of all line totals, for reconciliation against the
// grand total.
func (i *Invoice) LineSum() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range i.Lines {
		sum = sum.Add(l.Total)
	}
	return sum
}
