// Package persistence implements the read-only query layer over the WMS
// store. All operations validate their input before touching the
// database and wrap driver failures as connectivity errors.
package persistence

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

// ShipmentRepository retrieves shipment graphs, footprints and
// carrier-move indexes. It performs only reads.
type ShipmentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewShipmentRepository creates a repository over an open connection.
func NewShipmentRepository(db *gorm.DB, logger *zap.Logger) *ShipmentRepository {
	return &ShipmentRepository{db: db, logger: logger}
}

// shipmentRow is one row of the shipment graph join, flattened. Pallet
// and detail columns are null for shipments that have not been picked.
type shipmentRow struct {
	ShipID      string     `gorm:"column:ship_id"`
	HostExtID   string     `gorm:"column:host_ext_id"`
	WhID        string     `gorm:"column:wh_id"`
	Shpsts      string     `gorm:"column:shpsts"`
	Stgloc      string     `gorm:"column:stgloc"`
	Carcod      string     `gorm:"column:carcod"`
	Srvlvl      string     `gorm:"column:srvlvl"`
	DocNum      string     `gorm:"column:doc_num"`
	TrackNum    string     `gorm:"column:track_num"`
	StopID      string     `gorm:"column:stop_id"`
	StopSeq     *int       `gorm:"column:stop_seq"`
	CarMoveID   string     `gorm:"column:car_move_id"`
	ProNum      string     `gorm:"column:pro_num"`
	EarlyShpdte *time.Time `gorm:"column:early_shpdte"`
	LateDlvdte  *time.Time `gorm:"column:late_dlvdte"`
	Adddte      *time.Time `gorm:"column:adddte"`

	Adrnam   string `gorm:"column:adrnam"`
	Adrln1   string `gorm:"column:adrln1"`
	Adrln2   string `gorm:"column:adrln2"`
	Adrln3   string `gorm:"column:adrln3"`
	Adrcty   string `gorm:"column:adrcty"`
	Adrstc   string `gorm:"column:adrstc"`
	Adrpsz   string `gorm:"column:adrpsz"`
	CtryName string `gorm:"column:ctry_name"`
	Phnnum   string `gorm:"column:phnnum"`

	Cponum  string `gorm:"column:cponum"`
	LocNum  string `gorm:"column:loc_num"`
	DeptNum string `gorm:"column:dept_num"`

	Ordnum  string `gorm:"column:ordnum"`
	Ordlin  string `gorm:"column:ordlin"`
	Ordsln  string `gorm:"column:ordsln"`
	Prtnum  string `gorm:"column:prtnum"`
	LineQty int    `gorm:"column:line_qty"`

	Lngdsc  string `gorm:"column:lngdsc"`
	Untcas  int    `gorm:"column:untcas"`
	Untmea  string `gorm:"column:untmea"`
	GtinNum string `gorm:"column:gtin_num"`
	UpcNum  string `gorm:"column:upc_num"`

	Lodnum string  `gorm:"column:lodnum"`
	Stoloc string  `gorm:"column:stoloc"`
	Lodwgt float64 `gorm:"column:lodwgt"`
	Sscc   string  `gorm:"column:sscc"`

	Untqty    int        `gorm:"column:untqty"`
	DtlUntcas int        `gorm:"column:dtl_untcas"`
	Lotnum    string     `gorm:"column:lotnum"`
	SupLotnum string     `gorm:"column:sup_lotnum"`
	Mandte    *time.Time `gorm:"column:mandte"`
	ExpireDte *time.Time `gorm:"column:expire_dte"`
}

const shipmentGraphQuery = `
SELECT s.ship_id, s.host_ext_id, s.wh_id, s.shpsts, s.stgloc,
       s.carcod, s.srvlvl, s.doc_num, s.track_num,
       s.stop_id, st.stop_seq, st.car_move_id, s.pro_num,
       s.early_shpdte, s.late_dlvdte, s.adddte,
       a.adrnam, a.adrln1, a.adrln2, a.adrln3,
       a.adrcty, a.adrstc, a.adrpsz, a.ctry_name, a.phnnum,
       o.cponum, o.loc_num, o.dept_num,
       sl.ordnum, sl.ordlin, sl.ordsln, sl.prtnum, sl.qty AS line_qty,
       p.lngdsc, p.untcas, p.untmea, p.gtin_num, p.upc_num,
       il.lodnum, il.stoloc, il.lodwgt, il.sscc,
       id.untqty, id.untcas AS dtl_untcas,
       id.lotnum, id.sup_lotnum, id.mandte, id.expire_dte
  FROM shipment s
  JOIN adrmst a           ON a.adr_id = s.rt_adr_id
  LEFT JOIN stop st       ON st.stop_id = s.stop_id
  LEFT JOIN shipment_line sl ON sl.ship_id = s.ship_id
  LEFT JOIN ord o         ON o.ordnum = sl.ordnum
  LEFT JOIN prtmst p      ON p.prtnum = sl.prtnum AND p.wh_id = s.wh_id
  LEFT JOIN pckwrk_dtl pw ON pw.ship_line_id = sl.ship_line_id
  LEFT JOIN invdtl id     ON id.dtlnum = pw.dtlnum
  LEFT JOIN invsub sb     ON sb.subnum = id.subnum
  LEFT JOIN invlod il     ON il.lodnum = sb.lodnum
 WHERE s.ship_id = ?
 ORDER BY il.lodnum, sl.ordlin, sl.ordsln`

// ShipmentExists reports whether the shipment has at least one line.
func (r *ShipmentRepository) ShipmentExists(ctx context.Context, shipID string) (bool, error) {
	id, err := shared.RequireNonEmpty("shipment id", shipID)
	if err != nil {
		return false, err
	}
	var count int64
	result := r.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM shipment_line WHERE ship_id = ?`, id).
		Scan(&count)
	if result.Error != nil {
		return false, shared.NewDbError("failed to check shipment "+id, result.Error)
	}
	return count > 0, nil
}

// FindShipmentWithLpnsAndLineItems retrieves the full shipment graph in
// a single join and regroups the rows by pallet in memory. Shipments
// without inventory rows come back with an empty pallet list; planning
// synthesizes virtual pallets for those.
func (r *ShipmentRepository) FindShipmentWithLpnsAndLineItems(ctx context.Context, shipID string) (*shipment.Shipment, error) {
	id, err := shared.RequireNonEmpty("shipment id", shipID)
	if err != nil {
		return nil, err
	}

	var rows []shipmentRow
	result := r.db.WithContext(ctx).Raw(shipmentGraphQuery, id).Scan(&rows)
	if result.Error != nil {
		return nil, shared.NewDbError("failed to load shipment "+id, result.Error)
	}
	if len(rows) == 0 {
		return nil, shared.NewValidationError("shipment " + id + " not found")
	}
	r.logger.Debug("loaded shipment graph", zap.String("shipment", id), zap.Int("rows", len(rows)))

	return buildShipment(rows)
}

// buildShipment folds the flat join rows into the shipment tree.
func buildShipment(rows []shipmentRow) (*shipment.Shipment, error) {
	head := rows[0]
	s, err := shipment.NewShipment(head.ShipID)
	if err != nil {
		return nil, err
	}
	s.ExternalOrder = shared.Trim(head.HostExtID)
	s.WarehouseID = shared.Trim(head.WhID)
	s.Status = shared.UpperTrim(head.Shpsts)
	s.DestinationLocation = shared.UpperTrim(head.Stgloc)
	s.ShipToName = shared.Trim(head.Adrnam)
	s.ShipToAddress1 = shared.Trim(head.Adrln1)
	s.ShipToAddress2 = shared.Trim(head.Adrln2)
	s.ShipToAddress3 = shared.Trim(head.Adrln3)
	s.ShipToCity = shared.Trim(head.Adrcty)
	s.ShipToState = shared.UpperTrim(head.Adrstc)
	s.ShipToPostal = shared.UpperTrim(head.Adrpsz)
	s.ShipToCountry = shared.UpperTrim(head.CtryName)
	s.ShipToPhone = shared.Trim(head.Phnnum)
	s.CarrierCode = shared.UpperTrim(head.Carcod)
	s.ServiceLevel = shared.Trim(head.Srvlvl)
	s.DocumentNumber = shared.Trim(head.DocNum)
	s.TrackingNumber = shared.Trim(head.TrackNum)
	s.StopID = shared.Trim(head.StopID)
	s.StopSeq = head.StopSeq
	s.CarrierMoveID = shared.Trim(head.CarMoveID)
	s.ProNumber = shared.Trim(head.ProNum)
	s.CustomerPO = shared.Trim(head.Cponum)
	s.LocationNumber = shared.Trim(head.LocNum)
	s.DepartmentNumber = shared.Trim(head.DeptNum)
	s.ShipDate = head.EarlyShpdte
	s.DeliveryDate = head.LateDlvdte
	s.CreatedAt = head.Adddte
	if err := s.Validate(); err != nil {
		return nil, err
	}

	pallets := make(map[string]*shipment.Pallet)
	var order []string
	for _, row := range rows {
		lodnum := shared.Trim(row.Lodnum)
		if lodnum == "" {
			continue
		}
		p, ok := pallets[lodnum]
		if !ok {
			p, err = shipment.NewPallet(lodnum, row.Sscc)
			if err != nil {
				return nil, err
			}
			p.Weight = row.Lodwgt
			p.StagingLocation = shared.UpperTrim(row.Stoloc)
			p.Lot = shipment.LotTracking{
				WarehouseLot:    shared.Trim(row.Lotnum),
				SupplierLot:     shared.Trim(row.SupLotnum),
				ManufactureDate: row.Mandte,
				BestByDate:      row.ExpireDte,
			}
			pallets[lodnum] = p
			order = append(order, lodnum)
		}
		p.UnitCount += row.Untqty
		if cases := rowCases(row); cases > 0 {
			p.CaseCount += cases
		}
		p.LineItems = append(p.LineItems, &shipment.LineItem{
			Line:         shared.Trim(row.Ordlin),
			SubLine:      shared.Trim(row.Ordsln),
			Sku:          shared.Trim(row.Prtnum),
			Description:  shared.Trim(row.Lngdsc),
			OrderNumber:  shared.Trim(row.Ordnum),
			Quantity:     row.Untqty,
			UnitsPerCase: unitsPerCase(row),
			UnitOfMeas:   shared.UpperTrim(row.Untmea),
			GtinCode:     shared.Trim(row.GtinNum),
			UpcCode:      shared.Trim(row.UpcNum),
		})
	}
	for _, lodnum := range order {
		s.Pallets = append(s.Pallets, pallets[lodnum])
	}
	return s, nil
}

func unitsPerCase(row shipmentRow) int {
	if row.DtlUntcas > 0 {
		return row.DtlUntcas
	}
	return row.Untcas
}

func rowCases(row shipmentRow) int {
	upc := unitsPerCase(row)
	if upc <= 0 || row.Untqty <= 0 {
		return 0
	}
	return row.Untqty / upc
}

// footprintRow is one aggregated per-SKU footprint result.
type footprintRow struct {
	Prtnum string  `gorm:"column:prtnum"`
	Lngdsc string  `gorm:"column:lngdsc"`
	Units  int     `gorm:"column:units"`
	Untcas int     `gorm:"column:untcas"`
	Untpal int     `gorm:"column:untpal"`
	Pallen float64 `gorm:"column:pallen"`
	Palwid float64 `gorm:"column:palwid"`
	Palhgt float64 `gorm:"column:palhgt"`
}

const footprintQuery = `
SELECT sl.prtnum,
       MAX(p.lngdsc)  AS lngdsc,
       SUM(sl.qty)    AS units,
       MAX(p.untcas)  AS untcas,
       MAX(f.untpal)  AS untpal,
       MAX(f.pallen)  AS pallen,
       MAX(f.palwid)  AS palwid,
       MAX(f.palhgt)  AS palhgt
  FROM shipment_line sl
  JOIN shipment s    ON s.ship_id = sl.ship_id
  LEFT JOIN prtmst p ON p.prtnum = sl.prtnum AND p.wh_id = s.wh_id
  LEFT JOIN prtftp f ON f.prtnum = sl.prtnum AND f.wh_id = s.wh_id
 WHERE sl.ship_id = ?
 GROUP BY sl.prtnum
 ORDER BY sl.prtnum`

// FindShipmentSkuFootprints aggregates per-SKU units with optional
// packaging metadata.
func (r *ShipmentRepository) FindShipmentSkuFootprints(ctx context.Context, shipID string) ([]*shipment.SkuFootprint, error) {
	id, err := shared.RequireNonEmpty("shipment id", shipID)
	if err != nil {
		return nil, err
	}

	var rows []footprintRow
	result := r.db.WithContext(ctx).Raw(footprintQuery, id).Scan(&rows)
	if result.Error != nil {
		return nil, shared.NewDbError("failed to load footprints for shipment "+id, result.Error)
	}

	footprints := make([]*shipment.SkuFootprint, 0, len(rows))
	for _, row := range rows {
		fp, err := shipment.NewSkuFootprint(row.Prtnum, row.Units)
		if err != nil {
			return nil, err
		}
		fp.ItemDescription = shared.Trim(row.Lngdsc)
		fp.UnitsPerCase = row.Untcas
		fp.UnitsPerPallet = row.Untpal
		fp.PalletLength = row.Pallen
		fp.PalletWidth = row.Palwid
		fp.PalletHeight = row.Palhgt
		footprints = append(footprints, fp)
	}
	return footprints, nil
}

// GetStagingLocation returns the shipment's uppercased destination
// location, or "" when the shipment has none.
func (r *ShipmentRepository) GetStagingLocation(ctx context.Context, shipID string) (string, error) {
	id, err := shared.RequireNonEmpty("shipment id", shipID)
	if err != nil {
		return "", err
	}
	var stgloc *string
	result := r.db.WithContext(ctx).
		Raw(`SELECT stgloc FROM shipment WHERE ship_id = ?`, id).
		Scan(&stgloc)
	if result.Error != nil {
		return "", shared.NewDbError("failed to load staging location for shipment "+id, result.Error)
	}
	if stgloc == nil {
		return "", nil
	}
	return shared.UpperTrim(*stgloc), nil
}

// stopRow is one carrier-move stop/shipment index row.
type stopRow struct {
	CarMoveID  string     `gorm:"column:car_move_id"`
	StopID     string     `gorm:"column:stop_id"`
	StopSeq    *int       `gorm:"column:stop_seq"`
	TmsStopSeq *int       `gorm:"column:tms_stop_seq"`
	ShipID     string     `gorm:"column:ship_id"`
	Shpsts     string     `gorm:"column:shpsts"`
	Adddte     *time.Time `gorm:"column:adddte"`
}

const carrierMoveStopsQuery = `
SELECT st.car_move_id, st.stop_id, st.stop_seq, st.tms_stop_seq,
       s.ship_id, s.shpsts, s.adddte
  FROM stop st
  JOIN shipment s ON s.stop_id = st.stop_id
 WHERE st.car_move_id = ?`

// FindCarrierMoveStops emits one row per shipment on the carrier move.
// The stop is the primary link; ordering is primary stop sequence
// ascending with absent sequences last, tie-broken by shipment id. The
// TMS sequence is carried but never trusted for ordering.
func (r *ShipmentRepository) FindCarrierMoveStops(ctx context.Context, carrierMoveID string) ([]*shipment.CarrierMoveStopRef, error) {
	id, err := shared.RequireNonEmpty("carrier move id", carrierMoveID)
	if err != nil {
		return nil, err
	}

	var rows []stopRow
	result := r.db.WithContext(ctx).Raw(carrierMoveStopsQuery, id).Scan(&rows)
	if result.Error != nil {
		return nil, shared.NewDbError("failed to load stops for carrier move "+id, result.Error)
	}

	refs := make([]*shipment.CarrierMoveStopRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, &shipment.CarrierMoveStopRef{
			CarrierMoveID: shared.Trim(row.CarMoveID),
			StopID:        shared.Trim(row.StopID),
			StopSeq:       row.StopSeq,
			TmsStopSeq:    row.TmsStopSeq,
			ShipmentID:    shared.Trim(row.ShipID),
			Status:        shared.UpperTrim(row.Shpsts),
			CreatedAt:     row.Adddte,
		})
	}

	// Sort here rather than in SQL so null ordering does not depend on
	// the dialect.
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		switch {
		case a.StopSeq != nil && b.StopSeq != nil && *a.StopSeq != *b.StopSeq:
			return *a.StopSeq < *b.StopSeq
		case a.StopSeq != nil && b.StopSeq == nil:
			return true
		case a.StopSeq == nil && b.StopSeq != nil:
			return false
		}
		return a.ShipmentID < b.ShipmentID
	})
	return refs, nil
}
