package printing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbg-logistics/wms-labeler/internal/domain/printing"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

const inventoryYaml = `printers:
  - id: OFFICE
    name: Office Zebra
    ip: 10.0.0.10
  - id: DISPATCH
    name: Dispatch Zebra
    ip: 10.0.0.11
    port: 9101
    tags: [dispatch, dock-a]
  - id: BROKEN
    name: Retired Zebra
    ip: 10.0.0.12
    enabled: false
`

const routingYaml = `defaultPrinterId: OFFICE
rules:
  - id: rossi-to-dispatch
    when:
      all:
        - field: carrierCode
          op: EQUALS
          value: rossi
    then:
      printerId: DISPATCH
  - id: stage-prefix
    when:
      all:
        - field: stagingLocation
          op: STARTS_WITH
          value: DOCK
    then:
      printerId: DISPATCH
`

func writeRegistryFiles(t *testing.T, inventory, routing string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	invPath := filepath.Join(dir, "printers.yaml")
	routePath := filepath.Join(dir, "printer-routing.yaml")
	require.NoError(t, os.WriteFile(invPath, []byte(inventory), 0o644))
	require.NoError(t, os.WriteFile(routePath, []byte(routing), 0o644))
	return invPath, routePath
}

func writeRegistry(t *testing.T, inventory, routing string) *printing.Registry {
	t.Helper()
	invPath, routePath := writeRegistryFiles(t, inventory, routing)

	r, err := printing.LoadRegistry(invPath, routePath, "")
	require.NoError(t, err)
	return r
}

func TestLoadRegistry_ParsesInventoryAndRules(t *testing.T) {
	r := writeRegistry(t, inventoryYaml, routingYaml)

	assert.Equal(t, "OFFICE", r.DefaultPrinterID())
	office := r.FindPrinter("OFFICE")
	require.NotNil(t, office)
	assert.Equal(t, "10.0.0.10:9100", office.Endpoint())
	dispatch := r.FindPrinter("DISPATCH")
	require.NotNil(t, dispatch)
	assert.Equal(t, "10.0.0.11:9101", dispatch.Endpoint())
}

func TestLoadRegistry_DefaultPrinterOverride(t *testing.T) {
	// Arrange
	invPath, routePath := writeRegistryFiles(t, inventoryYaml, routingYaml)

	// Act
	r, err := printing.LoadRegistry(invPath, routePath, "DISPATCH")

	// Assert: the override replaces the routing file's OFFICE default.
	require.NoError(t, err)
	assert.Equal(t, "DISPATCH", r.DefaultPrinterID())
	p, err := r.SelectPrinter(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "DISPATCH", p.ID)
}

func TestLoadRegistry_UnknownDefaultOverride(t *testing.T) {
	invPath, routePath := writeRegistryFiles(t, inventoryYaml, routingYaml)

	_, err := printing.LoadRegistry(invPath, routePath, "GHOST")

	require.Error(t, err)
	assert.Equal(t, shared.KindConfig, shared.KindOf(err))
}

func TestSelectPrinter_EqualsIsCaseInsensitive(t *testing.T) {
	r := writeRegistry(t, inventoryYaml, routingYaml)

	p, err := r.SelectPrinter(map[string]string{"carrierCode": "Rossi"})

	require.NoError(t, err)
	assert.Equal(t, "DISPATCH", p.ID)
}

func TestSelectPrinter_FallsBackToDefault(t *testing.T) {
	r := writeRegistry(t, inventoryYaml, routingYaml)

	p, err := r.SelectPrinter(map[string]string{"carrierCode": "OTHER"})

	require.NoError(t, err)
	assert.Equal(t, "OFFICE", p.ID)
}

func TestSelectPrinter_StartsWith(t *testing.T) {
	r := writeRegistry(t, inventoryYaml, routingYaml)

	p, err := r.SelectPrinter(map[string]string{"stagingLocation": "dock-a-03"})

	require.NoError(t, err)
	assert.Equal(t, "DISPATCH", p.ID)
}

func TestSelectPrinter_MissingContextFieldSkipsRule(t *testing.T) {
	r := writeRegistry(t, inventoryYaml, routingYaml)

	p, err := r.SelectPrinter(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "OFFICE", p.ID)
}

func TestSelectPrinter_TargetDisabled(t *testing.T) {
	routing := `defaultPrinterId: OFFICE
rules:
  - id: to-broken
    when:
      all:
        - field: carrierCode
          op: EQUALS
          value: ROSSI
    then:
      printerId: BROKEN
`
	r := writeRegistry(t, inventoryYaml, routing)

	_, err := r.SelectPrinter(map[string]string{"carrierCode": "ROSSI"})

	require.Error(t, err)
	assert.Equal(t, shared.KindConfig, shared.KindOf(err))
}

func TestSelectPrinter_UnknownOperator(t *testing.T) {
	routing := `defaultPrinterId: OFFICE
rules:
  - id: bad-op
    when:
      all:
        - field: carrierCode
          op: MATCHES
          value: ROSSI
    then:
      printerId: DISPATCH
`
	r := writeRegistry(t, inventoryYaml, routing)

	_, err := r.SelectPrinter(map[string]string{"carrierCode": "ROSSI"})

	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	assert.Contains(t, err.Error(), "unknown operator")
}

func TestNewRegistry_DefaultMustExist(t *testing.T) {
	_, err := printing.NewRegistry(
		[]*printing.PrinterConfig{{ID: "OFFICE", Host: "10.0.0.10", Port: 9100, Enabled: true}},
		nil, "GHOST")

	require.Error(t, err)
	assert.Equal(t, shared.KindConfig, shared.KindOf(err))
}

func TestFindPrinter_DisabledIsNil(t *testing.T) {
	r := writeRegistry(t, inventoryYaml, routingYaml)

	assert.Nil(t, r.FindPrinter("BROKEN"))
	assert.Nil(t, r.FindPrinter("GHOST"))
}

func TestPrinterConfig_Validate(t *testing.T) {
	bad := &printing.PrinterConfig{ID: "X", Host: "", Port: 9100}
	assert.Error(t, bad.Validate())

	badPort := &printing.PrinterConfig{ID: "X", Host: "10.0.0.1", Port: 0}
	assert.Error(t, badPort.Validate())

	ok := &printing.PrinterConfig{ID: "X", Host: "10.0.0.1", Port: 9100}
	assert.NoError(t, ok.Validate())
}
