package fel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/fel"
	"github.com/Charlisim/sat-gt-fel-invoices-downloader/internal/model"
)

func TestValidatePDF_RejectsTruncatedContent(t *testing.T) {
	// Carries the magic bytes but no cross-reference structure.
	err := fel.ValidatePDF([]byte("%PDF-1.7 truncated"))
	require.Error(t, err)

	var integrityErr *model.IntegrityError
	assert.ErrorAs(t, err, &integrityErr)
}
