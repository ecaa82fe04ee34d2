// Package helpers provides the shared test database and fixture
// builders used by the repository and application tests.
package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/tbg-logistics/wms-labeler/internal/infrastructure/database"
)

// wmsSchema mirrors the subset of the WMS store the query layer reads.
// Column names match the production tables so the raw SQL runs
// unchanged against SQLite.
var wmsSchema = []string{
	`CREATE TABLE shipment (
		ship_id      TEXT PRIMARY KEY,
		host_ext_id  TEXT DEFAULT '',
		wh_id        TEXT DEFAULT '',
		shpsts       TEXT DEFAULT '',
		stgloc       TEXT,
		carcod       TEXT DEFAULT '',
		srvlvl       TEXT DEFAULT '',
		doc_num      TEXT DEFAULT '',
		track_num    TEXT DEFAULT '',
		stop_id      TEXT,
		pro_num      TEXT DEFAULT '',
		rt_adr_id    TEXT NOT NULL,
		early_shpdte DATETIME,
		late_dlvdte  DATETIME,
		adddte       DATETIME
	)`,
	`CREATE TABLE stop (
		stop_id      TEXT PRIMARY KEY,
		car_move_id  TEXT,
		stop_seq     INTEGER,
		tms_stop_seq INTEGER
	)`,
	`CREATE TABLE car_move (
		car_move_id TEXT PRIMARY KEY,
		carcod      TEXT DEFAULT ''
	)`,
	`CREATE TABLE adrmst (
		adr_id    TEXT PRIMARY KEY,
		adrnam    TEXT DEFAULT '',
		adrln1    TEXT DEFAULT '',
		adrln2    TEXT DEFAULT '',
		adrln3    TEXT DEFAULT '',
		adrcty    TEXT DEFAULT '',
		adrstc    TEXT DEFAULT '',
		adrpsz    TEXT DEFAULT '',
		ctry_name TEXT DEFAULT '',
		phnnum    TEXT DEFAULT ''
	)`,
	`CREATE TABLE ord (
		ordnum   TEXT PRIMARY KEY,
		cponum   TEXT DEFAULT '',
		loc_num  TEXT DEFAULT '',
		dept_num TEXT DEFAULT ''
	)`,
	`CREATE TABLE shipment_line (
		ship_line_id TEXT PRIMARY KEY,
		ship_id      TEXT NOT NULL,
		ordnum       TEXT DEFAULT '',
		ordlin       TEXT DEFAULT '',
		ordsln       TEXT DEFAULT '',
		prtnum       TEXT NOT NULL,
		qty          INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE prtmst (
		prtnum   TEXT NOT NULL,
		wh_id    TEXT NOT NULL,
		lngdsc   TEXT DEFAULT '',
		untcas   INTEGER DEFAULT 0,
		untmea   TEXT DEFAULT '',
		gtin_num TEXT DEFAULT '',
		upc_num  TEXT DEFAULT '',
		PRIMARY KEY (prtnum, wh_id)
	)`,
	`CREATE TABLE prtftp (
		prtnum TEXT NOT NULL,
		wh_id  TEXT NOT NULL,
		untpal INTEGER DEFAULT 0,
		pallen REAL DEFAULT 0,
		palwid REAL DEFAULT 0,
		palhgt REAL DEFAULT 0,
		PRIMARY KEY (prtnum, wh_id)
	)`,
	`CREATE TABLE pckwrk_dtl (
		wrkref       TEXT PRIMARY KEY,
		ship_line_id TEXT NOT NULL,
		dtlnum       TEXT NOT NULL
	)`,
	`CREATE TABLE invdtl (
		dtlnum     TEXT PRIMARY KEY,
		subnum     TEXT NOT NULL,
		prtnum     TEXT DEFAULT '',
		untqty     INTEGER DEFAULT 0,
		untcas     INTEGER DEFAULT 0,
		lotnum     TEXT DEFAULT '',
		sup_lotnum TEXT DEFAULT '',
		mandte     DATETIME,
		expire_dte DATETIME
	)`,
	`CREATE TABLE invsub (
		subnum TEXT PRIMARY KEY,
		lodnum TEXT NOT NULL
	)`,
	`CREATE TABLE invlod (
		lodnum TEXT PRIMARY KEY,
		stoloc TEXT DEFAULT '',
		lodwgt REAL DEFAULT 0,
		sscc   TEXT DEFAULT ''
	)`,
}

// NewTestDB creates an in-memory SQLite database carrying the WMS
// schema and cleans it up with the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	for _, ddl := range wmsSchema {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
