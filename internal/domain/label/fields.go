package label

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

// dateLayout is the label date format MM.dd.yyyy.
const dateLayout = "01.02.2006"

// optionalPlaceholder is substituted for absent optional fields so the
// renderer never sees a blank value.
const optionalPlaceholder = " "

// SkuResolver resolves a full internal part number to its matrix row.
type SkuResolver interface {
	ResolveByPrtnum(prtnum string) (tbgSku, walmartItem, description string, ok bool)
}

// LocationResolver maps a sold-to value to a DC location code.
type LocationResolver interface {
	ResolveDcLocation(value string) string
}

// ShipFrom is the site-level origin block printed on every label.
type ShipFrom struct {
	Name         string
	Address      string
	CityStateZip string
}

// FieldMap is an ordered, unmodifiable map of label field name to value.
// Iteration order is insertion order.
type FieldMap struct {
	keys   []string
	values map[string]string
}

func newFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]string)}
}

func (m *FieldMap) set(name, value string) {
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Get returns the value for a field name.
func (m *FieldMap) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Keys returns the field names in insertion order.
func (m *FieldMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of fields.
func (m *FieldMap) Len() int {
	return len(m.keys)
}

// BuildRequest carries everything the builder needs for one label.
type BuildRequest struct {
	Shipment    *shipment.Shipment
	Pallet      *shipment.Pallet
	PalletIndex int // 0-based
	LabelCount  int // labels actually generated for the job

	ShipFrom  ShipFrom
	Skus      SkuResolver
	Locations LocationResolver // nil when no location matrix is configured

	Footprints      map[string]*shipment.SkuFootprint
	StagingLocation string
	StopSeqOverride *int
}

// builder accumulates fields and the first required-field failure.
type builder struct {
	fields *FieldMap
	err    error
}

func (b *builder) required(name, value string) {
	if b.err != nil {
		return
	}
	t := strings.TrimSpace(value)
	if t == "" {
		b.err = shared.NewValidationError("required label field " + name + " is missing or blank")
		return
	}
	b.fields.set(name, t)
}

func (b *builder) optional(name, value string) {
	if b.err != nil {
		return
	}
	t := strings.TrimSpace(value)
	if t == "" {
		t = optionalPlaceholder
	}
	b.fields.set(name, t)
}

func (b *builder) optionalDate(name string, d *time.Time) {
	if d == nil {
		b.optional(name, "")
		return
	}
	b.optional(name, d.Format(dateLayout))
}

// BuildFields assembles the flat field map for one pallet label.
// Required fields fail the build with a validation error; optional
// fields fall back to a single space. A missing SKU-matrix entry is a
// warning, never a failure.
func BuildFields(req BuildRequest, logger *zap.Logger) (*FieldMap, error) {
	s := req.Shipment
	p := req.Pallet
	b := &builder{fields: newFieldMap()}

	b.required("shipFromName", req.ShipFrom.Name)
	b.required("shipFromAddress", req.ShipFrom.Address)
	b.required("shipFromCityStateZip", req.ShipFrom.CityStateZip)

	b.required("shipToName", s.ShipToName)
	b.required("shipToAddress1", s.ShipToAddress1)
	b.optional("shipToAddress2", s.ShipToAddress2)
	b.optional("shipToAddress3", s.ShipToAddress3)
	b.required("shipToCity", s.ShipToCity)
	b.required("shipToState", s.ShipToState)
	b.required("shipToZip", s.ShipToPostal)
	b.optional("shipToCountry", s.ShipToCountry)
	b.optional("shipToPhone", s.ShipToPhone)

	b.required("carrierCode", s.CarrierCode)
	b.optional("carrierMoveId", s.CarrierMoveID)
	b.optional("serviceLevel", s.ServiceLevel)
	b.optional("documentNumber", s.DocumentNumber)
	b.optional("trackingNumber", s.TrackingNumber)

	b.optional("customerPo", s.CustomerPO)
	b.optional("locationNumber", resolveLocation(req.Locations, s.LocationNumber))
	b.optional("departmentNumber", s.DepartmentNumber)
	b.optional("proNumber", s.ProNumber)
	b.optional("bolNumber", s.DocumentNumber)
	b.optional("stopSequence", stopSequence(s, req.StopSeqOverride))

	b.optionalDate("shipDate", s.ShipDate)
	b.optionalDate("deliveryDate", s.DeliveryDate)

	b.required("lpnId", p.ID)
	b.required("ssccBarcode", p.Sscc)
	b.fields.set("palletSeq", strconv.Itoa(req.PalletIndex+1))
	b.fields.set("palletTotal", strconv.Itoa(palletTotal(s, req.LabelCount)))
	b.required("weight", strconv.FormatFloat(p.Weight, 'f', -1, 64))

	b.optional("warehouseLot", p.Lot.WarehouseLot)
	b.optional("customerLot", p.Lot.SupplierLot)
	b.optionalDate("manufactureDate", p.Lot.ManufactureDate)
	b.optionalDate("bestByDate", p.Lot.BestByDate)

	if line := chooseLineItem(p, req.Skus); line != nil {
		buildLineFields(b, line, req, logger)
	}

	b.optional("stagingLocation", req.StagingLocation)

	if b.err != nil {
		return nil, b.err
	}
	return b.fields, nil
}

// buildLineFields fills the item block from the representative line item
// and its footprint row.
func buildLineFields(b *builder, line *shipment.LineItem, req BuildRequest, logger *zap.Logger) {
	// The matrix short SKU wins over the full internal part number; the
	// raw line SKU is only printed when the lookup misses.
	displaySku := line.Sku
	walmartItem, description := "", ""
	if req.Skus != nil {
		if short, item, desc, ok := req.Skus.ResolveByPrtnum(line.Sku); ok {
			walmartItem, description = item, desc
			if short != "" {
				displaySku = short
			}
		} else {
			logger.Warn("no SKU matrix entry for line item; Walmart fields default to blank",
				zap.String("sku", line.Sku))
		}
	}

	b.required("tbgSku", displaySku)
	b.optional("quantity", strconv.Itoa(line.Quantity))
	uom := line.UnitOfMeas
	if strings.TrimSpace(uom) == "" {
		uom = "EA"
	}
	b.optional("unitOfMeasure", uom)
	b.optional("walmartItemNumber", walmartItem)
	b.optional("itemDescription", description)

	b.optional("gtinBarcode", line.GtinCode)
	b.optional("upcCode", line.UpcCode)

	unitsPerCase := line.UnitsPerCase
	fp := req.Footprints[line.Sku]
	if unitsPerCase == 0 && fp != nil {
		unitsPerCase = fp.UnitsPerCase
	}
	b.optional("unitsPerCase", formatCount(unitsPerCase))
	if fp != nil {
		b.optional("unitsPerPallet", formatCount(fp.UnitsPerPallet))
		b.optional("palletLength", formatWeight(fp.PalletLength))
		b.optional("palletWidth", formatWeight(fp.PalletWidth))
		b.optional("palletHeight", formatWeight(fp.PalletHeight))
	} else {
		b.optional("unitsPerPallet", "")
		b.optional("palletLength", "")
		b.optional("palletWidth", "")
		b.optional("palletHeight", "")
	}
}

// chooseLineItem picks the representative line item for a pallet: the
// first whose SKU resolves via the matrix, else the first.
func chooseLineItem(p *shipment.Pallet, skus SkuResolver) *shipment.LineItem {
	if len(p.LineItems) == 0 {
		return nil
	}
	if skus != nil {
		for _, line := range p.LineItems {
			if _, _, _, ok := skus.ResolveByPrtnum(line.Sku); ok {
				return line
			}
		}
	}
	return p.LineItems[0]
}

func palletTotal(s *shipment.Shipment, labelCount int) int {
	total := len(s.Pallets)
	if labelCount > total {
		total = labelCount
	}
	return total
}

func stopSequence(s *shipment.Shipment, override *int) string {
	if override != nil {
		return strconv.Itoa(*override)
	}
	if s.StopSeq != nil {
		return strconv.Itoa(*s.StopSeq)
	}
	return ""
}

func resolveLocation(locations LocationResolver, value string) string {
	if locations == nil {
		return value
	}
	return locations.ResolveDcLocation(value)
}

func formatWeight(w float64) string {
	if w == 0 {
		return ""
	}
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func formatCount(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// PayloadID is the human-readable identifier used in logs for one
// rendered label.
func PayloadID(shipmentID, lpnID string, seq, total int) string {
	return fmt.Sprintf("%s/%s %d of %d", shipmentID, lpnID, seq, total)
}
