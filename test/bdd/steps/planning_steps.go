package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/tbg-logistics/wms-labeler/internal/domain/planning"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

type planningContext struct {
	footprints []*shipment.SkuFootprint
	plan       planning.PlanResult
	pallets    []*shipment.Pallet
}

func (pc *planningContext) reset() {
	pc.footprints = nil
	pc.plan = planning.PlanResult{}
	pc.pallets = nil
}

func (pc *planningContext) aSkuWithUnitsAndUnitsPerPallet(sku string, units, upp int) error {
	fp, err := shipment.NewSkuFootprint(sku, units)
	if err != nil {
		return err
	}
	fp.UnitsPerPallet = upp
	pc.footprints = append(pc.footprints, fp)
	return nil
}

func (pc *planningContext) aSkuWithUnitsAndNoUnitsPerPallet(sku string, units int) error {
	return pc.aSkuWithUnitsAndUnitsPerPallet(sku, units, 0)
}

func (pc *planningContext) iPlanTheShipment() error {
	pc.plan = planning.Plan(pc.footprints)
	return nil
}

func (pc *planningContext) iSynthesizeVirtualPallets() error {
	pc.pallets = planning.SynthesizeVirtualPallets(pc.footprints, planning.NewSsccSequence(0))
	return nil
}

func (pc *planningContext) thePlanHasFullPallets(n int) error {
	if pc.plan.FullPallets != n {
		return fmt.Errorf("expected %d full pallets, got %d", n, pc.plan.FullPallets)
	}
	return nil
}

func (pc *planningContext) thePlanHasPartialPallets(n int) error {
	if pc.plan.PartialPallets != n {
		return fmt.Errorf("expected %d partial pallets, got %d", n, pc.plan.PartialPallets)
	}
	return nil
}

func (pc *planningContext) theEstimatedPalletCountIs(n int) error {
	if pc.plan.EstimatedPallets != n {
		return fmt.Errorf("expected %d estimated pallets, got %d", n, pc.plan.EstimatedPallets)
	}
	return nil
}

func (pc *planningContext) theSkuIsReportedAsMissingFootprintData(sku string) error {
	for _, missing := range pc.plan.SkusMissingFootprint {
		if missing == sku {
			return nil
		}
	}
	return fmt.Errorf("SKU %s not reported in %v", sku, pc.plan.SkusMissingFootprint)
}

func (pc *planningContext) virtualPalletsAreCreated(n int) error {
	if len(pc.pallets) != n {
		return fmt.Errorf("expected %d virtual pallets, got %d", n, len(pc.pallets))
	}
	return nil
}

func (pc *planningContext) theVirtualPalletsCarryUnitsInTotal(total int) error {
	sum := 0
	for _, p := range pc.pallets {
		sum += p.UnitCount
	}
	if sum != total {
		return fmt.Errorf("expected %d units in total, got %d", total, sum)
	}
	return nil
}

func (pc *planningContext) everyVirtualPalletHasAnDigitSscc(digits int) error {
	for _, p := range pc.pallets {
		if len(p.Sscc) != digits {
			return fmt.Errorf("pallet %s has SSCC %q of length %d", p.ID, p.Sscc, len(p.Sscc))
		}
	}
	return nil
}

// InitializePlanningScenario registers the pallet planning steps.
func InitializePlanningScenario(sc *godog.ScenarioContext) {
	ctx := &planningContext{}

	sc.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		ctx.reset()
		return c, nil
	})

	sc.Step(`^a SKU "([^"]*)" with (\d+) units and (\d+) units per pallet$`, ctx.aSkuWithUnitsAndUnitsPerPallet)
	sc.Step(`^a SKU "([^"]*)" with (\d+) units and no units per pallet$`, ctx.aSkuWithUnitsAndNoUnitsPerPallet)
	sc.Step(`^I plan the shipment$`, ctx.iPlanTheShipment)
	sc.Step(`^I synthesize virtual pallets$`, ctx.iSynthesizeVirtualPallets)
	sc.Step(`^the plan has (\d+) full pallets?$`, ctx.thePlanHasFullPallets)
	sc.Step(`^the plan has (\d+) partial pallets?$`, ctx.thePlanHasPartialPallets)
	sc.Step(`^the estimated pallet count is (\d+)$`, ctx.theEstimatedPalletCountIs)
	sc.Step(`^the SKU "([^"]*)" is reported as missing footprint data$`, ctx.theSkuIsReportedAsMissingFootprintData)
	sc.Step(`^(\d+) virtual pallets are created$`, ctx.virtualPalletsAreCreated)
	sc.Step(`^the virtual pallets carry (\d+) units in total$`, ctx.theVirtualPalletsCarryUnitsInTotal)
	sc.Step(`^every virtual pallet has an (\d+) digit SSCC$`, ctx.everyVirtualPalletHasAnDigitSscc)
}
