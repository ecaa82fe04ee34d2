package shipment

import (
	"strings"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// SkuFootprint is the aggregated per-SKU packaging row for a shipment.
// Zero values mean "absent" for the optional fields; UnitsPerPallet is
// strictly positive when present.
type SkuFootprint struct {
	Sku             string
	ItemDescription string
	TotalUnits      int
	UnitsPerCase    int
	UnitsPerPallet  int
	PalletLength    float64
	PalletWidth     float64
	PalletHeight    float64
}

// NewSkuFootprint validates the footprint invariant: SKU non-empty and
// units non-negative.
func NewSkuFootprint(sku string, totalUnits int) (*SkuFootprint, error) {
	t := strings.TrimSpace(sku)
	if t == "" {
		return nil, shared.NewValidationError("footprint sku must not be empty")
	}
	if totalUnits < 0 {
		return nil, shared.NewValidationError("footprint units for " + t + " must not be negative")
	}
	return &SkuFootprint{Sku: t, TotalUnits: totalUnits}, nil
}

// HasUnitsPerPallet reports whether the footprint carries a usable
// units-per-pallet figure.
func (f *SkuFootprint) HasUnitsPerPallet() bool {
	return f.UnitsPerPallet > 0
}
