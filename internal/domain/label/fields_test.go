package label_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/domain/label"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

type stubSkus struct{}

func (stubSkus) ResolveByPrtnum(prtnum string) (string, string, string, bool) {
	if prtnum == "10048500205641000" {
		return "205641", "30081705", "1.36L PL 1/6 NJ STRW BAN", true
	}
	return "", "", "", false
}

type stubLocations struct{}

func (stubLocations) ResolveDcLocation(value string) string {
	if value == "123456" {
		return "6094"
	}
	return value
}

func testShipment(t *testing.T) *shipment.Shipment {
	t.Helper()
	s, err := shipment.NewShipment("8000141715")
	require.NoError(t, err)
	s.ShipToName = "WALMART DC CORNWALL"
	s.ShipToAddress1 = "2760 INDUSTRIAL PARK DR"
	s.ShipToCity = "CORNWALL"
	s.ShipToState = "ON"
	s.ShipToPostal = "K6H 7N1"
	s.CarrierCode = "ROSSI"
	s.DocumentNumber = "BOL-7781"
	s.LocationNumber = "123456"
	return s
}

func testPallet(t *testing.T) *shipment.Pallet {
	t.Helper()
	p, err := shipment.NewPallet("LPN00042", "00123456789012345678")
	require.NoError(t, err)
	p.Weight = 512.5
	p.LineItems = []*shipment.LineItem{{
		Sku:          "10048500205641000",
		Quantity:     100,
		UnitsPerCase: 6,
		UnitOfMeas:   "EA",
	}}
	return p
}

func baseRequest(t *testing.T) label.BuildRequest {
	s := testShipment(t)
	s.Pallets = []*shipment.Pallet{testPallet(t)}
	return label.BuildRequest{
		Shipment:    s,
		Pallet:      s.Pallets[0],
		PalletIndex: 0,
		LabelCount:  1,
		ShipFrom: label.ShipFrom{
			Name:         "TBG LOGISTICS",
			Address:      "100 PLANT RD",
			CityStateZip: "TORONTO, ON M1B 2K9",
		},
		Skus:            stubSkus{},
		Locations:       stubLocations{},
		StagingLocation: "STAGE-01",
	}
}

func TestBuildFields_AssemblesFullLabel(t *testing.T) {
	// Act
	fields, err := label.BuildFields(baseRequest(t), zap.NewNop())

	// Assert
	require.NoError(t, err)
	get := func(name string) string {
		v, ok := fields.Get(name)
		require.True(t, ok, "field %s", name)
		return v
	}
	assert.Equal(t, "TBG LOGISTICS", get("shipFromName"))
	assert.Equal(t, "WALMART DC CORNWALL", get("shipToName"))
	assert.Equal(t, "ROSSI", get("carrierCode"))
	assert.Equal(t, "LPN00042", get("lpnId"))
	assert.Equal(t, "00123456789012345678", get("ssccBarcode"))
	assert.Equal(t, "512.5", get("weight"))
	assert.Equal(t, "1", get("palletSeq"))
	assert.Equal(t, "1", get("palletTotal"))
	assert.Equal(t, "205641", get("tbgSku"))
	assert.Equal(t, "30081705", get("walmartItemNumber"))
	assert.Equal(t, "1.36L PL 1/6 NJ STRW BAN", get("itemDescription"))
	assert.Equal(t, "6094", get("locationNumber"))
	assert.Equal(t, "BOL-7781", get("bolNumber"))
	assert.Equal(t, "STAGE-01", get("stagingLocation"))
}

func TestBuildFields_MissingRequiredField(t *testing.T) {
	req := baseRequest(t)
	req.Shipment.ShipToName = "  "

	_, err := label.BuildFields(req, zap.NewNop())

	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	assert.Contains(t, err.Error(), "shipToName")
}

func TestBuildFields_OptionalFieldsFallBackToSpace(t *testing.T) {
	req := baseRequest(t)
	req.Shipment.CustomerPO = ""
	req.Shipment.TrackingNumber = ""

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	po, ok := fields.Get("customerPo")
	require.True(t, ok)
	assert.Equal(t, " ", po)
	track, _ := fields.Get("trackingNumber")
	assert.Equal(t, " ", track)
}

func TestBuildFields_ZeroWeightStillRenders(t *testing.T) {
	req := baseRequest(t)
	req.Pallet.Weight = 0

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	w, _ := fields.Get("weight")
	assert.Equal(t, "0", w)
}

func TestBuildFields_DatesFormatted(t *testing.T) {
	req := baseRequest(t)
	ship := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	req.Shipment.ShipDate = &ship

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	d, _ := fields.Get("shipDate")
	assert.Equal(t, "08.03.2026", d)
	dd, _ := fields.Get("deliveryDate")
	assert.Equal(t, " ", dd)
}

func TestBuildFields_UnmatchedSkuDefaultsWalmartFields(t *testing.T) {
	req := baseRequest(t)
	req.Pallet.LineItems[0].Sku = "99999999999"

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	item, _ := fields.Get("walmartItemNumber")
	assert.Equal(t, " ", item)
	desc, _ := fields.Get("itemDescription")
	assert.Equal(t, " ", desc)
}

func TestBuildFields_TbgSkuPrefersMatrixShortSku(t *testing.T) {
	// Arrange: the line carries the full internal part number.
	req := baseRequest(t)
	require.Equal(t, "10048500205641000", req.Pallet.LineItems[0].Sku)

	// Act
	fields, err := label.BuildFields(req, zap.NewNop())

	// Assert: the matrix short SKU is printed, not the part number.
	require.NoError(t, err)
	sku, _ := fields.Get("tbgSku")
	assert.Equal(t, "205641", sku)
}

func TestBuildFields_TbgSkuFallsBackToLineSkuOnMiss(t *testing.T) {
	req := baseRequest(t)
	req.Pallet.LineItems[0].Sku = "99999999999"

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	sku, _ := fields.Get("tbgSku")
	assert.Equal(t, "99999999999", sku)
}

func TestBuildFields_StopSequenceOverrideWins(t *testing.T) {
	req := baseRequest(t)
	seq := 4
	req.Shipment.StopSeq = &seq
	override := 2
	req.StopSeqOverride = &override

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	v, _ := fields.Get("stopSequence")
	assert.Equal(t, "2", v)
}

func TestBuildFields_PalletTotalUsesLabelCountWhenLarger(t *testing.T) {
	req := baseRequest(t)
	req.LabelCount = 3

	fields, err := label.BuildFields(req, zap.NewNop())

	require.NoError(t, err)
	total, _ := fields.Get("palletTotal")
	assert.Equal(t, "3", total)
}

func TestPayloadID(t *testing.T) {
	assert.Equal(t, "8000141715/LPN00042 1 of 3", label.PayloadID("8000141715", "LPN00042", 1, 3))
}
