package shipment

import (
	"strings"
	"time"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// Shipment is the read-only header aggregate assembled by the query
// layer. It is constructed once from query rows and never mutated; the
// owning job discards it on completion.
type Shipment struct {
	ID            string
	ExternalOrder string
	WarehouseID   string
	Status        string

	DestinationLocation string

	ShipToName     string
	ShipToAddress1 string
	ShipToAddress2 string
	ShipToAddress3 string
	ShipToCity     string
	ShipToState    string
	ShipToPostal   string
	ShipToCountry  string
	ShipToPhone    string

	CarrierCode    string
	ServiceLevel   string
	DocumentNumber string
	TrackingNumber string

	StopID        string
	StopSeq       *int
	CarrierMoveID string
	ProNumber     string

	CustomerPO       string
	LocationNumber   string
	DepartmentNumber string

	ShipDate     *time.Time
	DeliveryDate *time.Time
	CreatedAt    *time.Time

	Pallets []*Pallet
}

// NewShipment validates the minimum header content: a non-empty id plus
// at least one populated routing field, so a completely empty join row
// cannot masquerade as a shipment.
func NewShipment(id string) (*Shipment, error) {
	t := strings.TrimSpace(id)
	if t == "" {
		return nil, shared.NewValidationError("shipment id must not be empty")
	}
	return &Shipment{ID: t}, nil
}

// Validate enforces the header invariant after the query layer has
// populated the fields.
func (s *Shipment) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return shared.NewValidationError("shipment id must not be empty")
	}
	anyRouting := strings.TrimSpace(s.ShipToName) != "" ||
		strings.TrimSpace(s.ShipToAddress1) != "" ||
		strings.TrimSpace(s.ShipToCity) != "" ||
		strings.TrimSpace(s.ShipToState) != "" ||
		strings.TrimSpace(s.ShipToPostal) != "" ||
		strings.TrimSpace(s.CarrierCode) != ""
	if !anyRouting {
		return shared.NewValidationError("shipment " + s.ID + " has no ship-to address or carrier data")
	}
	return nil
}

// HasPallets reports whether the store returned physical pallet rows.
func (s *Shipment) HasPallets() bool {
	return len(s.Pallets) > 0
}
