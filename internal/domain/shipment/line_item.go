package shipment

// LineItem is one order line attached to a pallet. Alternate item codes
// may be absent at entity level; the label builder performs the final
// matrix lookup.
type LineItem struct {
	Line    string
	SubLine string

	Sku         string
	Description string

	OrderNumber string

	Quantity     int
	UnitsPerCase int
	UnitOfMeas   string

	GtinCode string
	UpcCode  string
}
