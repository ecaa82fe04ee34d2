package refdata

import (
	"encoding/csv"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// LocationMatrix maps canonicalised sold-to numbers to Walmart DC
// location codes. Immutable after load.
type LocationMatrix struct {
	bySoldTo map[string]string
	logger   *zap.Logger
}

// LoadLocationMatrix reads the comma-separated matrix with header
// "Sold-To Name, Location #, Sold-To #". Rows missing either the
// location or the sold-to number are skipped with a warning.
func LoadLocationMatrix(path string, logger *zap.Logger) (*LocationMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shared.NewConfigError("location matrix file not readable: "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, shared.NewConfigError("location matrix file malformed: "+path, err)
	}

	m := &LocationMatrix{bySoldTo: make(map[string]string), logger: logger}
	for i, record := range records {
		if i == 0 && isLocationHeader(record) {
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		location, soldTo := field(record, 1), field(record, 2)
		if location == "" || soldTo == "" {
			logger.Warn("skipping location matrix row with missing key fields",
				zap.Int("line", i+1), zap.Strings("row", record))
			continue
		}
		m.bySoldTo[CanonicalSoldTo(soldTo)] = location
	}

	logger.Info("loaded location matrix", zap.String("path", path), zap.Int("rows", len(m.bySoldTo)))
	return m, nil
}

// ResolveDcLocation returns the DC location for a sold-to value, or the
// trimmed input when no mapping exists.
func (m *LocationMatrix) ResolveDcLocation(value string) string {
	t := strings.TrimSpace(value)
	if t == "" {
		return t
	}
	if loc, ok := m.bySoldTo[CanonicalSoldTo(t)]; ok {
		return loc
	}
	return t
}

// CanonicalSoldTo normalises a sold-to number: uppercase, drop a leading
// "C", keep digits only, strip leading zeros (all-zero collapses to "0").
func CanonicalSoldTo(s string) string {
	t := shared.UpperTrim(s)
	t = strings.TrimPrefix(t, "C")
	t = shared.DigitsOnly(t)
	return shared.StripLeadingZeros(t)
}

func isLocationHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "Sold-To Name")
}
