package dte_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/money"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/parser/dte"
)

func readTestFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestParseBytes_SampleDocument(t *testing.T) {
	content := readTestFile(t, "sample_dte.xml")

	invoice, err := dte.ParseBytes(content)
	require.NoError(t, err)
	require.NotNil(t, invoice)

	// Header
	wantIssue := time.Date(2026, 1, 15, 14, 30, 0, 0, time.FixedZone("", -6*3600))
	assert.True(t, invoice.Header.IssueDate.Equal(wantIssue))
	assert.Equal(t, "FACT", invoice.Header.InvoiceType)
	assert.Equal(t, "GTQ", invoice.Header.Currency)

	// Issuer
	issuer := invoice.Header.Issuer
	assert.Equal(t, "12345678", issuer.Nit)
	assert.Equal(t, "La Central", issuer.CommercialName)
	assert.Equal(t, "Comercial La Central, Sociedad Anonima", issuer.IssuingName)
	assert.Equal(t, "GEN", issuer.VatAffiliation)
	assert.Equal(t, "1", issuer.Establishment)
	assert.Equal(t, "facturas@lacentral.com.gt", issuer.Email)
	assert.Equal(t, "5A AVENIDA 10-25 ZONA 1", issuer.Address.Street)
	assert.Equal(t, "01001", issuer.Address.ZipCode)
	assert.Equal(t, "GUATEMALA", issuer.Address.City)
	assert.Equal(t, "GUATEMALA", issuer.Address.State)
	assert.Equal(t, "GT", issuer.Address.Country)

	// Receiver
	assert.Equal(t, "87654321", invoice.Header.Receiver.Nit)
	assert.Equal(t, "CLIENTE EJEMPLO", invoice.Header.Receiver.Name)
	assert.Equal(t, "cliente@example.com", invoice.Header.Receiver.Email)

	// Lines, in source order
	require.Len(t, invoice.Lines, 2)
	first := invoice.Lines[0]
	assert.Equal(t, 1, first.LineNumber)
	assert.Equal(t, "B", first.GoodOrService)
	assert.True(t, first.Quantity.Equal(money.MustFromString("2")))
	assert.Equal(t, "UND", first.UnitOfMeasure)
	assert.Equal(t, "Resma papel bond carta", first.Description)
	assert.True(t, first.UnitPrice.Equal(money.MustFromString("45.00")))
	assert.True(t, first.PriceBeforeDiscount.Equal(money.MustFromString("90.00")))
	assert.True(t, first.Discount.Equal(money.MustFromString("10.00")))
	assert.True(t, first.Total.Equal(money.MustFromString("80.00")))

	second := invoice.Lines[1]
	assert.Equal(t, 2, second.LineNumber)
	assert.Equal(t, "S", second.GoodOrService)
	assert.True(t, second.Total.Equal(money.MustFromString("20.00")))

	// Totals
	require.Len(t, invoice.Totals.Taxes, 1)
	assert.Equal(t, "IVA", invoice.Totals.Taxes[0].Name)
	assert.True(t, invoice.Totals.Taxes[0].Amount.Equal(money.MustFromString("10.71")))
	assert.True(t, invoice.Totals.GrandTotal.Equal(money.MustFromString("100.00")))

	// Line totals reconcile against the grand total
	assert.True(t, invoice.LineSum().Equal(invoice.Totals.GrandTotal))

	// Certification
	assert.Equal(t, "2854898270", invoice.Certification.AuthorizationNumber)
	assert.Equal(t, "AA19F253", invoice.Certification.Series)
	assert.Equal(t, "AA19F253-AA3E-4B3E-9B8C-2854898270AF", invoice.Certification.Signature)
}

func TestParseBytes_Deterministic(t *testing.T) {
	content := readTestFile(t, "sample_dte.xml")

	a, err := dte.ParseBytes(content)
	require.NoError(t, err)
	b, err := dte.ParseBytes(content)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestParse_Reader(t *testing.T) {
	content := readTestFile(t, "sample_dte.xml")

	invoice, err := dte.Parse(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "GTQ", invoice.Header.Currency)
}

func TestParseBytes_IssueTimestampFormats(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "zoned without fraction",
			value: "2026-01-15T14:30:00-06:00",
			want:  time.Date(2026, 1, 15, 14, 30, 0, 0, time.FixedZone("", -6*3600)),
		},
		{
			name:  "zoned with fraction",
			value: "2026-01-15T14:30:00.123456-06:00",
			want:  time.Date(2026, 1, 15, 14, 30, 0, 123456000, time.FixedZone("", -6*3600)),
		},
		{
			name:  "naive with fraction",
			value: "2026-01-15T14:30:00.123456",
			want:  time.Date(2026, 1, 15, 14, 30, 0, 123456000, time.UTC),
		},
		{
			name:  "naive without fraction",
			value: "2026-01-15T14:30:00",
			want:  time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice, err := dte.ParseBytes(minimalDTE(tt.value))
			require.NoError(t, err)
			assert.True(t, invoice.Header.IssueDate.Equal(tt.want),
				"got %s, want %s", invoice.Header.IssueDate, tt.want)
		})
	}
}

func TestParseBytes_UnknownTimestampFormat(t *testing.T) {
	_, err := dte.ParseBytes(minimalDTE("15/01/2026 14:30"))
	require.Error(t, err)

	var docErr *model.MalformedDocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, "FechaHoraEmision", docErr.Field)
}

func TestParseBytes_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "not xml",
			content: `{"numeroUuid": "nope"}`,
			field:   "xml",
		},
		{
			name:    "missing emission section",
			content: `<GTDocumento><SAT><DTE></DTE></SAT></GTDocumento>`,
			field:   "DatosEmision",
		},
		{
			name: "no items",
			content: `<GTDocumento><SAT><DTE><DatosEmision>
				<DatosGenerales CodigoMoneda="GTQ" FechaHoraEmision="2026-01-15T14:30:00" Tipo="FACT"/>
				<Items></Items>
				<Totales><GranTotal>0</GranTotal></Totales>
			</DatosEmision></DTE></SAT></GTDocumento>`,
			field: "Items",
		},
		{
			name: "missing certification",
			content: `<GTDocumento><SAT><DTE><DatosEmision>
				<DatosGenerales CodigoMoneda="GTQ" FechaHoraEmision="2026-01-15T14:30:00" Tipo="FACT"/>
				<Items><Item NumeroLinea="1"><Cantidad>1</Cantidad><PrecioUnitario>1</PrecioUnitario><Precio>1</Precio><Total>1</Total></Item></Items>
				<Totales><GranTotal>1</GranTotal></Totales>
			</DatosEmision></DTE></SAT></GTDocumento>`,
			field: "Certificacion",
		},
		{
			name: "bad decimal amount",
			content: `<GTDocumento><SAT><DTE><DatosEmision>
				<DatosGenerales CodigoMoneda="GTQ" FechaHoraEmision="2026-01-15T14:30:00" Tipo="FACT"/>
				<Items><Item NumeroLinea="1"><Cantidad>dos</Cantidad><PrecioUnitario>1</PrecioUnitario><Precio>1</Precio><Total>1</Total></Item></Items>
				<Totales><GranTotal>1</GranTotal></Totales>
			</DatosEmision></DTE></SAT></GTDocumento>`,
			field: "Cantidad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dte.ParseBytes([]byte(tt.content))
			require.Error(t, err)

			var docErr *model.MalformedDocumentError
			require.ErrorAs(t, err, &docErr)
			assert.Equal(t, tt.field, docErr.Field)
		})
	}
}

func TestParseBytes_OptionalDiscountDefaultsToZero(t *testing.T) {
	content := `<GTDocumento><SAT><DTE><DatosEmision>
		<DatosGenerales CodigoMoneda="GTQ" FechaHoraEmision="2026-01-15T14:30:00" Tipo="FACT"/>
		<Items><Item NumeroLinea="1"><Cantidad>1</Cantidad><PrecioUnitario>5</PrecioUnitario><Precio>5</Precio><Total>5</Total></Item></Items>
		<Totales><GranTotal>5</GranTotal></Totales>
	</DatosEmision><Certificacion><NumeroAutorizacion Numero="1" Serie="A">UUID-1</NumeroAutorizacion></Certificacion></DTE></SAT></GTDocumento>`

	invoice, err := dte.ParseBytes([]byte(content))
	require.NoError(t, err)
	require.Len(t, invoice.Lines, 1)
	assert.True(t, invoice.Lines[0].Discount.IsZero())
}

// minimalDTE builds a valid single-line document with the given emission timestamp.
func minimalDTE(issuedAt string) []byte {
	return []byte(`<GTDocumento><SAT><DTE><DatosEmision>
		<DatosGenerales CodigoMoneda="GTQ" FechaHoraEmision="` + issuedAt + `" Tipo="FACT"/>
		<Items><Item NumeroLinea="1"><Cantidad>1</Cantidad><PrecioUnitario>5</PrecioUnitario><Precio>5</Precio><Total>5</Total></Item></Items>
		<Totales><GranTotal>5</GranTotal></Totales>
	</DatosEmision><Certificacion><NumeroAutorizacion Numero="1" Serie="A">UUID-1</NumeroAutorizacion></Certificacion></DTE></SAT></GTDocumento>`)
}
