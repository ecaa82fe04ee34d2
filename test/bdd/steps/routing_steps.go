package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/tbg-logistics/wms-labeler/internal/domain/printing"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

type routingContext struct {
	printers  []*printing.PrinterConfig
	rules     []*printing.RoutingRule
	defaultID string
	selected  *printing.PrinterConfig
	err       error
}

func (rc *routingContext) reset() {
	rc.printers = nil
	rc.rules = nil
	rc.defaultID = ""
	rc.selected = nil
	rc.err = nil
}

func (rc *routingContext) aPrinterAt(id, host string) error {
	rc.printers = append(rc.printers, &printing.PrinterConfig{
		ID:      id,
		Name:    id,
		Host:    host,
		Port:    printing.DefaultPort,
		Enabled: true,
	})
	return nil
}

func (rc *routingContext) theDefaultPrinterIs(id string) error {
	rc.defaultID = id
	return nil
}

func (rc *routingContext) aRuleRouting(field, op, value, printerID string) error {
	rc.rules = append(rc.rules, &printing.RoutingRule{
		ID:        fmt.Sprintf("rule-%d", len(rc.rules)+1),
		Enabled:   true,
		Field:     field,
		Op:        printing.RuleOperator(op),
		Value:     value,
		PrinterID: printerID,
	})
	return nil
}

func (rc *routingContext) iSelectAPrinterFor(field, value string) error {
	registry, err := printing.NewRegistry(rc.printers, rc.rules, rc.defaultID)
	if err != nil {
		return err
	}
	rc.selected, rc.err = registry.SelectPrinter(map[string]string{field: value})
	return nil
}

func (rc *routingContext) theSelectedPrinterIs(id string) error {
	if rc.err != nil {
		return fmt.Errorf("selection failed: %v", rc.err)
	}
	if rc.selected == nil || rc.selected.ID != id {
		return fmt.Errorf("expected printer %s, got %+v", id, rc.selected)
	}
	return nil
}

func (rc *routingContext) theSelectionFailsWithAValidationError() error {
	if rc.err == nil {
		return errors.New("expected a selection error, got none")
	}
	if shared.KindOf(rc.err) != shared.KindValidation {
		return fmt.Errorf("expected validation error, got kind %s", shared.KindOf(rc.err))
	}
	return nil
}

// InitializeRoutingScenario registers the printer routing steps.
func InitializeRoutingScenario(sc *godog.ScenarioContext) {
	ctx := &routingContext{}

	sc.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		ctx.reset()
		return c, nil
	})

	sc.Step(`^a printer "([^"]*)" at "([^"]*)"$`, ctx.aPrinterAt)
	sc.Step(`^the default printer is "([^"]*)"$`, ctx.theDefaultPrinterIs)
	sc.Step(`^a rule routing (\S+) (\S+) "([^"]*)" to "([^"]*)"$`, ctx.aRuleRouting)
	sc.Step(`^I select a printer for (\S+) "([^"]*)"$`, ctx.iSelectAPrinterFor)
	sc.Step(`^the selected printer is "([^"]*)"$`, ctx.theSelectedPrinterIs)
	sc.Step(`^the selection fails with a validation error$`, ctx.theSelectionFailsWithAValidationError)
}
