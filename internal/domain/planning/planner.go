// Package planning computes pallet counts from SKU footprints and
// synthesizes virtual pallets for shipments the store has not picked yet.
package planning

import (
	"fmt"
	"strings"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

// PlanResult summarises the pallet math over a shipment's footprints.
type PlanResult struct {
	TotalUnits           int
	FullPallets          int
	PartialPallets       int
	EstimatedPallets     int
	SkusMissingFootprint []string
}

// SkuMath is the per-SKU breakdown backing PlanResult. The invariant
// FullPallets*UnitsPerPallet + PartialUnits == Units holds whenever
// UnitsPerPallet > 0.
type SkuMath struct {
	Sku              string
	Units            int
	UnitsPerPallet   int
	FullPallets      int
	PartialUnits     int
	EstimatedPallets int
}

// Plan folds footprint rows into pallet counts. Rows without a usable
// units-per-pallet figure count as one partial pallet each and are
// reported in SkusMissingFootprint.
func Plan(footprints []*shipment.SkuFootprint) PlanResult {
	var result PlanResult
	for _, fp := range footprints {
		if fp.TotalUnits <= 0 {
			continue
		}
		result.TotalUnits += fp.TotalUnits
		if !fp.HasUnitsPerPallet() {
			result.PartialPallets++
			result.SkusMissingFootprint = append(result.SkusMissingFootprint, fp.Sku)
			continue
		}
		full := fp.TotalUnits / fp.UnitsPerPallet
		remainder := fp.TotalUnits % fp.UnitsPerPallet
		result.FullPallets += full
		if remainder > 0 {
			result.PartialPallets++
		}
	}
	result.EstimatedPallets = result.FullPallets + result.PartialPallets
	return result
}

// ComputeSkuMath returns the per-SKU rows in footprint order, using the
// same arithmetic as Plan.
func ComputeSkuMath(footprints []*shipment.SkuFootprint) []SkuMath {
	rows := make([]SkuMath, 0, len(footprints))
	for _, fp := range footprints {
		row := SkuMath{Sku: fp.Sku, Units: fp.TotalUnits, UnitsPerPallet: fp.UnitsPerPallet}
		if fp.TotalUnits > 0 {
			if fp.HasUnitsPerPallet() {
				row.FullPallets = fp.TotalUnits / fp.UnitsPerPallet
				row.PartialUnits = fp.TotalUnits % fp.UnitsPerPallet
				row.EstimatedPallets = row.FullPallets
				if row.PartialUnits > 0 {
					row.EstimatedPallets++
				}
			} else {
				row.PartialUnits = fp.TotalUnits
				row.EstimatedPallets = 1
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// SsccSequence issues synthetic 18-digit SSCCs for virtual pallets.
// One sequence is scoped to one job.
type SsccSequence struct {
	next int64
}

// NewSsccSequence starts a sequence at the given seed.
func NewSsccSequence(seed int64) *SsccSequence {
	return &SsccSequence{next: seed}
}

// Next returns the next zero-padded 18-digit SSCC.
func (s *SsccSequence) Next() string {
	s.next++
	return fmt.Sprintf("%018d", s.next)
}

// SynthesizeVirtualPallets builds one virtual pallet per full
// units-per-pallet slice, plus a partial pallet for the remainder. Rows
// without a usable units-per-pallet figure produce a single pallet
// carrying all units. Unit conservation holds per SKU.
func SynthesizeVirtualPallets(footprints []*shipment.SkuFootprint, seq *SsccSequence) []*shipment.Pallet {
	var pallets []*shipment.Pallet
	n := 0
	for _, fp := range footprints {
		if fp.TotalUnits <= 0 || strings.TrimSpace(fp.Sku) == "" {
			continue
		}
		counts := splitUnits(fp.TotalUnits, fp.UnitsPerPallet)
		for _, units := range counts {
			n++
			p := &shipment.Pallet{
				ID:        fmt.Sprintf("%s%d", shipment.VirtualPalletPrefix, n),
				Sscc:      seq.Next(),
				UnitCount: units,
				LineItems: []*shipment.LineItem{
					{
						Sku:          fp.Sku,
						Description:  fp.ItemDescription,
						Quantity:     units,
						UnitsPerCase: fp.UnitsPerCase,
					},
				},
			}
			if fp.UnitsPerCase > 0 {
				p.CaseCount = units / fp.UnitsPerCase
			}
			pallets = append(pallets, p)
		}
	}
	return pallets
}

// splitUnits slices units into per-pallet loads: upp units for each full
// pallet and the remainder on the last one.
func splitUnits(units, upp int) []int {
	if upp <= 0 {
		return []int{units}
	}
	count := (units + upp - 1) / upp
	loads := make([]int, 0, count)
	for i := 0; i < count-1; i++ {
		loads = append(loads, upp)
	}
	last := units % upp
	if last == 0 {
		last = upp
	}
	loads = append(loads, last)
	return loads
}
