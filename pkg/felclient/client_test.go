package felclient_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/pkg/felclient"
)

const sampleDTE = `<GTDocumento><SAT><DTE><DatosEmision>
	<DatosGenerales CodigoMoneda="GTQ" FechaHoraEmision="2026-01-15T14:30:00-06:00" Tipo="FACT"/>
	<Emisor NITEmisor="111" NombreEmisor="Emisor, S.A."/>
	<Receptor IDReceptor="222" NombreReceptor="Receptor"/>
	<Items><Item NumeroLinea="1"><Cantidad>1</Cantidad><PrecioUnitario>75.25</PrecioUnitario><Precio>75.25</Precio><Total>75.25</Total></Item></Items>
	<Totales><GranTotal>75.25</GranTotal></Totales>
</DatosEmision><Certificacion><NumeroAutorizacion Numero="2854898270" Serie="AA19F253">UUID-1</NumeroAutorizacion></Certificacion></DTE></SAT></GTDocumento>`

var samplePDF = []byte("%PDF-1.7 fake body")

// felSim fakes the whole portal round trip: login, menu discovery, token
// priming, listing, retrieval and the public verifier.
type felSim struct {
	ts         *httptest.Server
	loginCount atomic.Int32
	fetchFails atomic.Bool
}

func newFELSim(t *testing.T) *felSim {
	t.Helper()
	sim := &felSim{}

	loginPage := `<html><body><input type="hidden" name="javax.faces.ViewState" value="vs-1"/></body></html>`
	menuFragment := `<?xml version="1.0"?><partial-response><changes><update id="x"><![CDATA[<a href="/dte-consulta/index.html">Consulta DTE</a>]]></update></changes></partial-response>`
	listBody := `{"detalle":{"data":[{"nitEmisor":"111","idReceptor":"222","numeroUuid":"UUID-1","montoTotal":75.25,"estado":"VIGENTE"}]}}`

	mux := http.NewServeMux()
	mux.HandleFunc("/menu/init.do", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("operacion") == "ACEPTAR" {
			sim.loginCount.Add(1)
			w.Write([]byte(loginPage))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/menu-agenciaVirtual/private/home.jsf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(menuFragment))
	})
	mux.HandleFunc("/dte-consulta/index.html", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "ACCESS_TOKEN", Value: "tok-1", Path: "/"})
	})
	mux.HandleFunc("/api/consulta-dte", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authtoken") != "token tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(listBody))
	})
	mux.HandleFunc("/api/consulta-dte/pdf", func(w http.ResponseWriter, r *http.Request) {
		if sim.fetchFails.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="factura.pdf"`)
		w.Write(samplePDF)
	})
	mux.HandleFunc("/api/consulta-dte/xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleDTE))
	})
	mux.HandleFunc("/verifier", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["` + base64.StdEncoding.EncodeToString(samplePDF) + `"]`))
	})

	sim.ts = httptest.NewServer(mux)
	t.Cleanup(sim.ts.Close)
	return sim
}

func (s *felSim) newClient() *felclient.Client {
	return felclient.New(
		felclient.Credentials{Username: "123456", Password: "secret"},
		felclient.WithPortalURL(s.ts.URL),
		felclient.WithAPIURL(s.ts.URL+"/api"),
		felclient.WithVerifierURL(s.ts.URL+"/verifier"),
		felclient.WithTimeout(5*time.Second),
	)
}

func januaryFilter() felclient.Filter {
	return felclient.Filter{
		From:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Direction: model.DirectionReceived,
	}
}

func TestClient_InvoicesThenFetchSharesOneLogin(t *testing.T) {
	sim := newFELSim(t)
	client := sim.newClient()

	summaries, err := client.Invoices(context.Background(), januaryFilter())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "UUID-1", summaries[0].NumeroUUID)

	doc, err := client.PDF(context.Background(), summaries[0], model.DirectionReceived)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, doc.Content)
	assert.Equal(t, "factura.pdf", felclient.Filename(doc, summaries[0], felclient.FormatPDF))

	assert.Equal(t, int32(1), sim.loginCount.Load(), "session initialized once")
}

func TestClient_InvoiceModel(t *testing.T) {
	sim := newFELSim(t)
	client := sim.newClient()

	summaries, err := client.Invoices(context.Background(), januaryFilter())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	invoice, err := client.InvoiceModel(context.Background(), summaries[0], model.DirectionReceived)
	require.NoError(t, err)
	assert.Equal(t, "GTQ", invoice.Header.Currency)
	assert.True(t, invoice.Totals.GrandTotal.Equal(summaries[0].MontoTotal))
	assert.Equal(t, "AA19F253", invoice.Certification.Series)
}

func TestClient_InvoiceModels(t *testing.T) {
	sim := newFELSim(t)
	client := sim.newClient()

	invoices, err := client.InvoiceModels(context.Background(), januaryFilter())
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.True(t, invoices[0].LineSum().Equal(invoices[0].Totals.GrandTotal))
	assert.Equal(t, int32(1), sim.loginCount.Load())
}

func TestClient_ContingencyFallback(t *testing.T) {
	sim := newFELSim(t)
	sim.fetchFails.Store(true)
	client := sim.newClient()

	summaries, err := client.Invoices(context.Background(), januaryFilter())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	doc, err := client.PDF(context.Background(), summaries[0], model.DirectionReceived)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, doc.Content)
	assert.Equal(t, "contingency", doc.Provenance.String())

	// No server-suggested name on the contingency path.
	assert.Equal(t, "UUID-1.pdf", felclient.Filename(doc, summaries[0], felclient.FormatPDF))
}

func TestClient_MissingCredentials(t *testing.T) {
	sim := newFELSim(t)
	client := felclient.New(felclient.Credentials{}, felclient.WithPortalURL(sim.ts.URL))

	_, err := client.Invoices(context.Background(), januaryFilter())
	require.Error(t, err)

	var confErr *model.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
	assert.Equal(t, int32(0), sim.loginCount.Load())
}

func TestClient_LogoutThenReuseLogsInAgain(t *testing.T) {
	sim := newFELSim(t)
	client := sim.newClient()

	_, err := client.Invoices(context.Background(), januaryFilter())
	require.NoError(t, err)

	client.Logout(context.Background())

	_, err = client.Invoices(context.Background(), januaryFilter())
	require.NoError(t, err)
	assert.Equal(t, int32(2), sim.loginCount.Load())
}

func TestParseInvoice(t *testing.T) {
	invoice, err := felclient.ParseInvoice([]byte(sampleDTE))
	require.NoError(t, err)
	assert.Equal(t, "FACT", invoice.Header.InvoiceType)

	_, err = felclient.ParseInvoice([]byte("<not-a-dte/>"))
	require.Error(t, err)

	var docErr *model.MalformedDocumentError
	assert.ErrorAs(t, err, &docErr)
}
