// Package refdata loads the operator-maintained reference tables: the
// TBG↔Walmart SKU matrix and the sold-to→DC location matrix.
package refdata

import (
	"encoding/csv"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// SkuMapping is one row of the SKU matrix.
type SkuMapping struct {
	TbgSku      string
	WalmartItem string
	Description string
}

// SkuMatrix provides O(1) lookups over the SKU matrix, keyed both by
// TBG SKU and by Walmart item number. Immutable after load.
type SkuMatrix struct {
	byTbgSku     map[string]*SkuMapping
	byWalmartNum map[string]*SkuMapping
	logger       *zap.Logger
}

// LoadSkuMatrix reads the comma-separated matrix with header
// "TBG SKU#, WALMART ITEM#, Item Description, check". The header and
// blank lines are skipped; rows with fewer than two non-empty fields are
// skipped with a warning.
func LoadSkuMatrix(path string, logger *zap.Logger) (*SkuMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shared.NewConfigError("SKU matrix file not readable: "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, shared.NewConfigError("SKU matrix file malformed: "+path, err)
	}

	m := &SkuMatrix{
		byTbgSku:     make(map[string]*SkuMapping),
		byWalmartNum: make(map[string]*SkuMapping),
		logger:       logger,
	}

	for i, record := range records {
		if i == 0 && isSkuHeader(record) {
			continue
		}
		if isBlankRecord(record) {
			continue
		}
		tbg, walmart, desc := field(record, 0), field(record, 1), field(record, 2)
		if tbg == "" || walmart == "" {
			logger.Warn("skipping SKU matrix row with missing key fields",
				zap.Int("line", i+1), zap.Strings("row", record))
			continue
		}
		mapping := &SkuMapping{TbgSku: tbg, WalmartItem: walmart, Description: desc}
		m.byTbgSku[tbg] = mapping
		m.byWalmartNum[walmart] = mapping
	}

	logger.Info("loaded SKU matrix", zap.String("path", path), zap.Int("rows", len(m.byTbgSku)))
	return m, nil
}

// FindByTbgSku returns the mapping for a TBG SKU, or nil.
func (m *SkuMatrix) FindByTbgSku(sku string) *SkuMapping {
	t := strings.TrimSpace(sku)
	if t == "" {
		return nil
	}
	return m.byTbgSku[t]
}

// FindByWalmartItem returns the mapping for a Walmart item number, or nil.
func (m *SkuMatrix) FindByWalmartItem(item string) *SkuMapping {
	t := strings.TrimSpace(item)
	if t == "" {
		return nil
	}
	return m.byWalmartNum[t]
}

// FindByPrtnum resolves a full internal part number to a matrix row.
// The long-to-short relationship is not a documented transform, so after
// a direct match this slides windows over the digit projection, longest
// window first, trying each substring as-is and with leading zeros
// stripped. Returns nil when no window matches.
func (m *SkuMatrix) FindByPrtnum(prtnum string) *SkuMapping {
	t := strings.TrimSpace(prtnum)
	if t == "" {
		return nil
	}
	if hit := m.byTbgSku[t]; hit != nil {
		return hit
	}

	digits := shared.DigitsOnly(t)
	for length := len(digits); length >= 5; length-- {
		for start := 0; start+length <= len(digits); start++ {
			window := digits[start : start+length]
			if hit := m.byTbgSku[window]; hit != nil {
				return hit
			}
			if stripped := shared.StripLeadingZeros(window); stripped != window {
				if hit := m.byTbgSku[stripped]; hit != nil {
					return hit
				}
			}
		}
	}

	m.logger.Debug("no SKU matrix window match for part number", zap.String("prtnum", t))
	return nil
}

// ResolveByPrtnum adapts FindByPrtnum to the label builder's resolver
// contract.
func (m *SkuMatrix) ResolveByPrtnum(prtnum string) (string, string, string, bool) {
	hit := m.FindByPrtnum(prtnum)
	if hit == nil {
		return "", "", "", false
	}
	return hit.TbgSku, hit.WalmartItem, hit.Description, true
}

func isSkuHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "TBG SKU#")
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
