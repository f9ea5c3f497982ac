package fel

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
)

// ValidatePDF runs a structural validation over retrieved PDF bytes, on top of
// the signature check the contingency path already performs. Opt-in: damaged
// but openable PDFs are common enough that callers choose strictness.
func ValidatePDF(content []byte) error {
	conf := pdfcpumodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfcpumodel.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(content), conf); err != nil {
		return model.NewIntegrityError("pdf failed structural validation: " + err.Error())
	}
	return nil
}
