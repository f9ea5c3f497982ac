// Package dte parses certified FEL documents (DTE XML) into the invoice model.
package dte

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/money"
)

// DTE XML structures. Tags carry no namespace so elements match regardless of
// the FEL schema version prefix.
type gtDocument struct {
	XMLName       xml.Name
	DatosEmision  *datosEmision  `xml:"SAT>DTE>DatosEmision"`
	Certificacion *certificacion `xml:"SAT>DTE>Certificacion"`
}

type datosEmision struct {
	DatosGenerales datosGenerales `xml:"DatosGenerales"`
	Emisor         emisor         `xml:"Emisor"`
	Receptor       receptor       `xml:"Receptor"`
	Items          items          `xml:"Items"`
	Totales        totales        `xml:"Totales"`
}

type datosGenerales struct {
	CodigoMoneda     string `xml:"CodigoMoneda,attr"`
	FechaHoraEmision string `xml:"FechaHoraEmision,attr"`
	Tipo             string `xml:"Tipo,attr"`
}

type emisor struct {
	NITEmisor             string    `xml:"NITEmisor,attr"`
	NombreComercial       string    `xml:"NombreComercial,attr"`
	NombreEmisor          string    `xml:"NombreEmisor,attr"`
	AfiliacionIVA         string    `xml:"AfiliacionIVA,attr"`
	CodigoEstablecimiento string    `xml:"CodigoEstablecimiento,attr"`
	CorreoEmisor          string    `xml:"CorreoEmisor,attr"`
	Direccion             direccion `xml:"DireccionEmisor"`
}

type direccion struct {
	Direccion    string `xml:"Direccion"`
	CodigoPostal string `xml:"CodigoPostal"`
	Municipio    string `xml:"Municipio"`
	Departamento string `xml:"Departamento"`
	Pais         string `xml:"Pais"`
}

type receptor struct {
	IDReceptor     string `xml:"IDReceptor,attr"`
	NombreReceptor string `xml:"NombreReceptor,attr"`
	CorreoReceptor string `xml:"CorreoReceptor,attr"`
}

type items struct {
	Items []item `xml:"Item"`
}

type item struct {
	BienOServicio  string `xml:"BienOServicio,attr"`
	NumeroLinea    int    `xml:"NumeroLinea,attr"`
	Cantidad       string `xml:"Cantidad"`
	UnidadMedida   string `xml:"UnidadMedida"`
	Descripcion    string `xml:"Descripcion"`
	PrecioUnitario string `xml:"PrecioUnitario"`
	Precio         string `xml:"Precio"`
	Descuento      string `xml:"Descuento"`
	Total          string `xml:"Total"`
}

type totales struct {
	TotalImpuestos totalImpuestos `xml:"TotalImpuestos"`
	GranTotal      string         `xml:"GranTotal"`
}

type totalImpuestos struct {
	Totals []totalImpuesto `xml:"TotalImpuesto"`
}

type totalImpuesto struct {
	NombreCorto        string `xml:"NombreCorto,attr"`
	TotalMontoImpuesto string `xml:"TotalMontoImpuesto,attr"`
}

type certificacion struct {
	NumeroAutorizacion *numeroAutorizacion `xml:"NumeroAutorizacion"`
}

type numeroAutorizacion struct {
	Serie  string `xml:"Serie,attr"`
	Numero string `xml:"Numero,attr"`
	Value  string `xml:",chardata"`
}

// issueTimeLayouts are the observed emission timestamp formats, attempted in
// this fixed order; the first successful parse wins.
var issueTimeLayouts = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05.999999-07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Parse reads a certified DTE document into the invoice model.
func Parse(r io.Reader) (*model.Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewMalformedDocumentError("content", "failed to read content", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses raw DTE XML bytes into the invoice model. The result is a
// pure function of the input: parsing the same bytes twice yields equal models.
func ParseBytes(data []byte) (*model.Invoice, error) {
	var doc gtDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, model.NewMalformedDocumentError("xml", "failed to parse XML", err)
	}
	if doc.DatosEmision == nil {
		return nil, model.NewMalformedDocumentError("DatosEmision", "section not found", nil)
	}

	header, err := convertHeader(doc.DatosEmision)
	if err != nil {
		return nil, err
	}

	if len(doc.DatosEmision.Items.Items) == 0 {
		return nil, model.NewMalformedDocumentError("Items", "no Item elements", nil)
	}
	lines := make([]model.InvoiceLine, 0, len(doc.DatosEmision.Items.Items))
	for _, it := range doc.DatosEmision.Items.Items {
		line, err := convertLine(it)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	totals, err := convertTotals(doc.DatosEmision.Totales)
	if err != nil {
		return nil, err
	}

	cert, err := convertCertification(doc.Certificacion)
	if err != nil {
		return nil, err
	}

	return &model.Invoice{
		Header:        header,
		Lines:         lines,
		Totals:        totals,
		Certification: cert,
	}, nil
}

func convertHeader(de *datosEmision) (model.InvoiceHeader, error) {
	issueDate, err := parseIssueTime(de.DatosGenerales.FechaHoraEmision)
	if err != nil {
		return model.InvoiceHeader{}, err
	}

	return model.InvoiceHeader{
		IssueDate:   issueDate,
		InvoiceType: de.DatosGenerales.Tipo,
		Currency:    de.DatosGenerales.CodigoMoneda,
		Issuer: model.Issuer{
			Nit:            de.Emisor.NITEmisor,
			CommercialName: de.Emisor.NombreComercial,
			IssuingName:    de.Emisor.NombreEmisor,
			VatAffiliation: de.Emisor.AfiliacionIVA,
			Establishment:  de.Emisor.CodigoEstablecimiento,
			Email:          de.Emisor.CorreoEmisor,
			Address: model.Address{
				Street:  de.Emisor.Direccion.Direccion,
				ZipCode: de.Emisor.Direccion.CodigoPostal,
				City:    de.Emisor.Direccion.Municipio,
				State:   de.Emisor.Direccion.Departamento,
				Country: de.Emisor.Direccion.Pais,
			},
		},
		Receiver: model.Receiver{
			Nit:   de.Receptor.IDReceptor,
			Name:  de.Receptor.NombreReceptor,
			Email: de.Receptor.CorreoReceptor,
		},
	}, nil
}

func convertLine(it item) (model.InvoiceLine, error) {
	quantity, err := parseAmount("Cantidad", it.Cantidad)
	if err != nil {
		return model.InvoiceLine{}, err
	}
	unitPrice, err := parseAmount("PrecioUnitario", it.PrecioUnitario)
	if err != nil {
		return model.InvoiceLine{}, err
	}
	price, err := parseAmount("Precio", it.Precio)
	if err != nil {
		return model.InvoiceLine{}, err
	}
	// Descuento is optional in practice; absent means zero.
	discount := money.Zero
	if it.Descuento != "" {
		if discount, err = parseAmount("Descuento", it.Descuento); err != nil {
			return model.InvoiceLine{}, err
		}
	}
	total, err := parseAmount("Total", it.Total)
	if err != nil {
		return model.InvoiceLine{}, err
	}

	return model.InvoiceLine{
		LineNumber:          it.NumeroLinea,
		GoodOrService:       it.BienOServicio,
		Quantity:            quantity,
		UnitOfMeasure:       it.UnidadMedida,
		Description:         it.Descripcion,
		UnitPrice:           unitPrice,
		PriceBeforeDiscount: price,
		Discount:            discount,
		Total:               total,
	}, nil
}

func convertTotals(t totales) (model.InvoiceTotals, error) {
	grand, err := parseAmount("GranTotal", t.GranTotal)
	if err != nil {
		return model.InvoiceTotals{}, err
	}

	taxes := make([]model.TotalTax, 0, len(t.TotalImpuestos.Totals))
	for _, ti := range t.TotalImpuestos.Totals {
		amount, err := parseAmount("TotalMontoImpuesto", ti.TotalMontoImpuesto)
		if err != nil {
			return model.InvoiceTotals{}, err
		}
		taxes = append(taxes, model.TotalTax{Name: ti.NombreCorto, Amount: amount})
	}

	return model.InvoiceTotals{Taxes: taxes, GrandTotal: grand}, nil
}

func convertCertification(c *certificacion) (model.Certification, error) {
	if c == nil || c.NumeroAutorizacion == nil {
		return model.Certification{}, model.NewMalformedDocumentError("Certificacion", "section not found", nil)
	}
	return model.Certification{
		AuthorizationNumber: c.NumeroAutorizacion.Numero,
		Series:              c.NumeroAutorizacion.Serie,
		Signature:           strings.TrimSpace(c.NumeroAutorizacion.Value),
	}, nil
}

func parseIssueTime(s string) (time.Time, error) {
	for _, layout := range issueTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, model.NewMalformedDocumentError("FechaHoraEmision", "unrecognized timestamp format: "+s, nil)
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := money.FromString(s)
	if err != nil {
		return money.Zero, model.NewMalformedDocumentError(field, "not a decimal amount: "+s, err)
	}
	return d, nil
}
