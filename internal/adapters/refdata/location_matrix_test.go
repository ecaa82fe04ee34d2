package refdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/adapters/refdata"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

const locationMatrixCsv = `Sold-To Name, Location #, Sold-To #
WALMART DC CORNWALL, 6094, C0000123456
WALMART DC CALGARY, 7078, 987654
WALMART DC MISSING, , 111111
`

func writeLocationMatrix(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "location-matrix.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLocationMatrix_SkipsHeaderAndIncompleteRows(t *testing.T) {
	// Arrange
	path := writeLocationMatrix(t, locationMatrixCsv)

	// Act
	m, err := refdata.LoadLocationMatrix(path, zap.NewNop())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "6094", m.ResolveDcLocation("123456"))
	assert.Equal(t, "7078", m.ResolveDcLocation("987654"))
	// row with blank location was skipped; input falls through
	assert.Equal(t, "111111", m.ResolveDcLocation("111111"))
}

func TestLoadLocationMatrix_MissingFile(t *testing.T) {
	_, err := refdata.LoadLocationMatrix("/nonexistent/location-matrix.csv", zap.NewNop())

	require.Error(t, err)
	assert.Equal(t, shared.KindConfig, shared.KindOf(err))
}

func TestResolveDcLocation_CanonicalisesInput(t *testing.T) {
	m, err := refdata.LoadLocationMatrix(writeLocationMatrix(t, locationMatrixCsv), zap.NewNop())
	require.NoError(t, err)

	// all spellings of the same sold-to number resolve identically
	assert.Equal(t, "6094", m.ResolveDcLocation("C0000123456"))
	assert.Equal(t, "6094", m.ResolveDcLocation("c123456"))
	assert.Equal(t, "6094", m.ResolveDcLocation(" 00123456 "))
}

func TestResolveDcLocation_UnknownFallsThrough(t *testing.T) {
	m, err := refdata.LoadLocationMatrix(writeLocationMatrix(t, locationMatrixCsv), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "UNKNOWN-DC", m.ResolveDcLocation(" UNKNOWN-DC "))
	assert.Equal(t, "", m.ResolveDcLocation("  "))
}

func TestCanonicalSoldTo(t *testing.T) {
	assert.Equal(t, "123456", refdata.CanonicalSoldTo("C0000123456"))
	assert.Equal(t, "123456", refdata.CanonicalSoldTo(" c123456 "))
	assert.Equal(t, "0", refdata.CanonicalSoldTo("C000"))
	assert.Equal(t, "", refdata.CanonicalSoldTo("no digits"))
}
