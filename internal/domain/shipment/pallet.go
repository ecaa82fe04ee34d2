package shipment

import (
	"strings"
	"time"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// VirtualPalletPrefix marks pallet identifiers synthesized by planning
// when the store has no physical pallet rows yet.
const VirtualPalletPrefix = "NO_LPN_"

// LotTracking carries the lot fields printed in the label's lot block.
type LotTracking struct {
	WarehouseLot    string
	SupplierLot     string
	ManufactureDate *time.Time
	BestByDate      *time.Time
}

// Pallet is one license plate (LPN) on a shipment, physical or virtual.
type Pallet struct {
	ID              string
	Sscc            string
	CaseCount       int
	UnitCount       int
	Weight          float64
	StagingLocation string
	Lot             LotTracking
	LineItems       []*LineItem
}

// NewPallet validates the pallet invariant: identifier and SSCC are
// non-empty.
func NewPallet(id, sscc string) (*Pallet, error) {
	tid := strings.TrimSpace(id)
	if tid == "" {
		return nil, shared.NewValidationError("pallet id must not be empty")
	}
	tsscc := strings.TrimSpace(sscc)
	if tsscc == "" {
		return nil, shared.NewValidationError("pallet " + tid + " has no SSCC")
	}
	return &Pallet{ID: tid, Sscc: tsscc}, nil
}

// IsVirtual reports whether this pallet was synthesized by planning
// rather than read from the store.
func (p *Pallet) IsVirtual() bool {
	return strings.HasPrefix(p.ID, VirtualPalletPrefix)
}
