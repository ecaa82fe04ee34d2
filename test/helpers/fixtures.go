package helpers

import (
	"fmt"
	"testing"

	"gorm.io/gorm"
)

// ShipmentSeed describes one shipment to insert into the test schema.
// Zero-valued optional fields stay NULL or empty in the store.
type ShipmentSeed struct {
	ShipID      string
	WarehouseID string
	Status      string
	Stgloc      string
	Carrier     string
	DocNum      string
	StopID      string
	AdrID       string
	Name        string
	Address1    string
	City        string
	State       string
	Postal      string
	Country     string
}

// SeedShipment inserts a shipment header with its ship-to address.
func SeedShipment(t *testing.T, db *gorm.DB, s ShipmentSeed) {
	t.Helper()
	if s.AdrID == "" {
		s.AdrID = "ADR-" + s.ShipID
	}
	if s.WarehouseID == "" {
		s.WarehouseID = "WMD1"
	}
	mustExec(t, db,
		`INSERT INTO adrmst (adr_id, adrnam, adrln1, adrcty, adrstc, adrpsz, ctry_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.AdrID, s.Name, s.Address1, s.City, s.State, s.Postal, s.Country)
	mustExec(t, db,
		`INSERT INTO shipment (ship_id, wh_id, shpsts, stgloc, carcod, doc_num, stop_id, rt_adr_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ShipID, s.WarehouseID, s.Status, nullIfEmpty(s.Stgloc), s.Carrier, s.DocNum, nullIfEmpty(s.StopID), s.AdrID)
}

// LineSeed describes one shipment line with its item master entry.
type LineSeed struct {
	LineID   string
	ShipID   string
	OrderNum string
	Line     string
	SubLine  string
	Sku      string
	Qty      int
	Desc     string
	Untcas   int
	Untpal   int
}

// SeedLine inserts a shipment line plus prtmst and prtftp rows for the
// SKU when descriptions or packaging data are given.
func SeedLine(t *testing.T, db *gorm.DB, warehouseID string, l LineSeed) {
	t.Helper()
	mustExec(t, db,
		`INSERT INTO shipment_line (ship_line_id, ship_id, ordnum, ordlin, ordsln, prtnum, qty)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.LineID, l.ShipID, l.OrderNum, l.Line, l.SubLine, l.Sku, l.Qty)
	if l.Desc != "" || l.Untcas > 0 {
		mustExec(t, db,
			`INSERT OR IGNORE INTO prtmst (prtnum, wh_id, lngdsc, untcas) VALUES (?, ?, ?, ?)`,
			l.Sku, warehouseID, l.Desc, l.Untcas)
	}
	if l.Untpal > 0 {
		mustExec(t, db,
			`INSERT OR IGNORE INTO prtftp (prtnum, wh_id, untpal) VALUES (?, ?, ?)`,
			l.Sku, warehouseID, l.Untpal)
	}
}

// PalletSeed links a shipment line to a physical pallet through the
// pick detail chain.
type PalletSeed struct {
	LineID string
	Lodnum string
	Sscc   string
	Stoloc string
	Weight float64
	Qty    int
	Untcas int
}

var seedCounter int

// SeedPallet inserts the invlod/invsub/invdtl/pckwrk_dtl chain for one
// line on one pallet.
func SeedPallet(t *testing.T, db *gorm.DB, p PalletSeed) {
	t.Helper()
	seedCounter++
	dtlnum := fmt.Sprintf("DTL%06d", seedCounter)
	subnum := fmt.Sprintf("SUB%06d", seedCounter)
	wrkref := fmt.Sprintf("WRK%06d", seedCounter)

	mustExec(t, db,
		`INSERT OR IGNORE INTO invlod (lodnum, stoloc, lodwgt, sscc) VALUES (?, ?, ?, ?)`,
		p.Lodnum, p.Stoloc, p.Weight, p.Sscc)
	mustExec(t, db, `INSERT INTO invsub (subnum, lodnum) VALUES (?, ?)`, subnum, p.Lodnum)
	mustExec(t, db,
		`INSERT INTO invdtl (dtlnum, subnum, untqty, untcas) VALUES (?, ?, ?, ?)`,
		dtlnum, subnum, p.Qty, p.Untcas)
	mustExec(t, db,
		`INSERT INTO pckwrk_dtl (wrkref, ship_line_id, dtlnum) VALUES (?, ?, ?)`,
		wrkref, p.LineID, dtlnum)
}

// SeedStop inserts a carrier-move stop. seq may be nil for stops the
// TMS has not sequenced yet.
func SeedStop(t *testing.T, db *gorm.DB, stopID, carMoveID string, seq *int) {
	t.Helper()
	mustExec(t, db, `INSERT OR IGNORE INTO car_move (car_move_id) VALUES (?)`, carMoveID)
	mustExec(t, db,
		`INSERT INTO stop (stop_id, car_move_id, stop_seq) VALUES (?, ?, ?)`,
		stopID, carMoveID, seq)
}

// IntPtr returns a pointer to v for nullable sequence columns.
func IntPtr(v int) *int { return &v }

func mustExec(t *testing.T, db *gorm.DB, sql string, args ...any) {
	t.Helper()
	if err := db.Exec(sql, args...).Error; err != nil {
		t.Fatalf("seed failed: %v\nsql: %s", err, sql)
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
