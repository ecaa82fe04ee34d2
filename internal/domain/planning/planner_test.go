package planning_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbg-logistics/wms-labeler/internal/domain/planning"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

func footprint(t *testing.T, sku string, units, upp int) *shipment.SkuFootprint {
	t.Helper()
	fp, err := shipment.NewSkuFootprint(sku, units)
	require.NoError(t, err)
	fp.UnitsPerPallet = upp
	return fp
}

func TestPlan_FullAndPartialPallets(t *testing.T) {
	// Arrange: 250 units at 100 per pallet -> 2 full + 1 partial
	fps := []*shipment.SkuFootprint{footprint(t, "205641", 250, 100)}

	// Act
	plan := planning.Plan(fps)

	// Assert
	assert.Equal(t, 250, plan.TotalUnits)
	assert.Equal(t, 2, plan.FullPallets)
	assert.Equal(t, 1, plan.PartialPallets)
	assert.Equal(t, 3, plan.EstimatedPallets)
	assert.Empty(t, plan.SkusMissingFootprint)
}

func TestPlan_ExactMultipleHasNoPartial(t *testing.T) {
	plan := planning.Plan([]*shipment.SkuFootprint{footprint(t, "205641", 200, 100)})

	assert.Equal(t, 2, plan.FullPallets)
	assert.Equal(t, 0, plan.PartialPallets)
	assert.Equal(t, 2, plan.EstimatedPallets)
}

func TestPlan_MissingFootprintCountsOnePartial(t *testing.T) {
	plan := planning.Plan([]*shipment.SkuFootprint{footprint(t, "205640", 480, 0)})

	assert.Equal(t, 0, plan.FullPallets)
	assert.Equal(t, 1, plan.PartialPallets)
	assert.Equal(t, 1, plan.EstimatedPallets)
	assert.Equal(t, []string{"205640"}, plan.SkusMissingFootprint)
}

func TestPlan_SkipsZeroUnitRows(t *testing.T) {
	plan := planning.Plan([]*shipment.SkuFootprint{
		footprint(t, "205641", 0, 100),
		footprint(t, "205640", 50, 100),
	})

	assert.Equal(t, 50, plan.TotalUnits)
	assert.Equal(t, 1, plan.EstimatedPallets)
}

func TestComputeSkuMath_ConservesUnits(t *testing.T) {
	rows := planning.ComputeSkuMath([]*shipment.SkuFootprint{
		footprint(t, "205641", 250, 100),
		footprint(t, "205640", 480, 0),
	})

	require.Len(t, rows, 2)
	for _, row := range rows {
		if row.UnitsPerPallet > 0 {
			assert.Equal(t, row.Units, row.FullPallets*row.UnitsPerPallet+row.PartialUnits, row.Sku)
		} else {
			assert.Equal(t, row.Units, row.PartialUnits, row.Sku)
		}
	}
	assert.Equal(t, 3, rows[0].EstimatedPallets)
	assert.Equal(t, 1, rows[1].EstimatedPallets)
}

func TestSsccSequence_ZeroPaddedTo18Digits(t *testing.T) {
	seq := planning.NewSsccSequence(0)

	first := seq.Next()
	second := seq.Next()

	assert.Equal(t, "000000000000000001", first)
	assert.Equal(t, "000000000000000002", second)
	assert.Len(t, first, 18)
}

func TestSynthesizeVirtualPallets_SplitsByFootprint(t *testing.T) {
	// Arrange
	fp := footprint(t, "205641", 250, 100)
	fp.ItemDescription = "1.36L PL 1/6 NJ STRW BAN"
	fp.UnitsPerCase = 10

	// Act
	pallets := planning.SynthesizeVirtualPallets([]*shipment.SkuFootprint{fp}, planning.NewSsccSequence(0))

	// Assert
	require.Len(t, pallets, 3)
	assert.Equal(t, 100, pallets[0].UnitCount)
	assert.Equal(t, 100, pallets[1].UnitCount)
	assert.Equal(t, 50, pallets[2].UnitCount)
	for _, p := range pallets {
		assert.True(t, strings.HasPrefix(p.ID, shipment.VirtualPalletPrefix), p.ID)
		assert.True(t, p.IsVirtual())
		assert.Len(t, p.Sscc, 18)
		require.Len(t, p.LineItems, 1)
		assert.Equal(t, "205641", p.LineItems[0].Sku)
		assert.Equal(t, p.UnitCount, p.LineItems[0].Quantity)
	}
	assert.Equal(t, 10, pallets[0].CaseCount)
	assert.Equal(t, 5, pallets[2].CaseCount)
}

func TestSynthesizeVirtualPallets_MissingFootprintOnePallet(t *testing.T) {
	fp := footprint(t, "205640", 480, 0)

	pallets := planning.SynthesizeVirtualPallets([]*shipment.SkuFootprint{fp}, planning.NewSsccSequence(0))

	require.Len(t, pallets, 1)
	assert.Equal(t, 480, pallets[0].UnitCount)
}

func TestSynthesizeVirtualPallets_UnitConservation(t *testing.T) {
	fps := []*shipment.SkuFootprint{
		footprint(t, "A11111", 301, 100),
		footprint(t, "B22222", 99, 100),
		footprint(t, "C33333", 7, 0),
	}

	pallets := planning.SynthesizeVirtualPallets(fps, planning.NewSsccSequence(0))

	total := 0
	for _, p := range pallets {
		total += p.UnitCount
	}
	assert.Equal(t, 301+99+7, total)
	assert.Len(t, pallets, 4+1+1)
}
