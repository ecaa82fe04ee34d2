package shipment

import "time"

// CarrierMoveStopRef links a carrier move to one shipment through its
// stop. The primary stop sequence is trusted; the TMS-provided sequence
// is secondary and known unreliable.
type CarrierMoveStopRef struct {
	CarrierMoveID string
	StopID        string
	StopSeq       *int
	TmsStopSeq    *int
	ShipmentID    string
	Status        string
	CreatedAt     *time.Time
}
