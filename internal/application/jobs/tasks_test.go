package jobs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/adapters/refdata"
	"github.com/tbg-logistics/wms-labeler/internal/application/jobs"
	"github.com/tbg-logistics/wms-labeler/internal/domain/label"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

const testTemplateRaw = "^XA^FD{shipToName}^FS^FD{ssccBarcode}^FS^FD{palletSeq} of {palletTotal}^FS^XZ"

func testSkuMatrix(t *testing.T) *refdata.SkuMatrix {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sku-matrix.csv")
	csv := "TBG SKU#, WALMART ITEM#, Item Description, check\n205641, 30081705, 1.36L PL 1/6 NJ STRW BAN,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	m, err := refdata.LoadSkuMatrix(path, zap.NewNop())
	require.NoError(t, err)
	return m
}

func preparedShipment(t *testing.T, shipID string, palletCount int) *jobs.PreparedJob {
	t.Helper()
	s, err := shipment.NewShipment(shipID)
	require.NoError(t, err)
	s.ShipToName = "WALMART DC CORNWALL"
	s.ShipToAddress1 = "2760 INDUSTRIAL PARK DR"
	s.ShipToCity = "CORNWALL"
	s.ShipToState = "ON"
	s.ShipToPostal = "K6H 7N1"
	s.CarrierCode = "ROSSI"

	for i := 0; i < palletCount; i++ {
		p, err := shipment.NewPallet(
			"LPN"+shipID+string(rune('A'+i)),
			"0012345678901234567"+string(rune('0'+i)))
		require.NoError(t, err)
		p.Weight = 100
		p.LineItems = []*shipment.LineItem{{Sku: "205641", Quantity: 10}}
		s.Pallets = append(s.Pallets, p)
	}

	tmpl, err := label.ParseTemplate("test", testTemplateRaw)
	require.NoError(t, err)

	return &jobs.PreparedJob{
		ShipmentID:      shipID,
		Shipment:        s,
		Footprints:      map[string]*shipment.SkuFootprint{},
		Pallets:         s.Pallets,
		StagingLocation: "STAGE-01",
		Site: jobs.Site{
			Code:                 "WMD1",
			ShipFromName:         "TBG LOGISTICS",
			ShipFromAddress:      "100 PLANT RD",
			ShipFromCityStateZip: "TORONTO, ON M1B 2K9",
		},
		Template: tmpl,
		Skus:     testSkuMatrix(t),
	}
}

func TestBuildShipmentTasks_PalletLabelsThenInfoTag(t *testing.T) {
	// Arrange
	job := preparedShipment(t, "8000141715", 2)

	// Act
	tasks, err := jobs.BuildShipmentTasks(job, zap.NewNop())

	// Assert
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, jobs.TaskPalletLabel, tasks[0].Kind)
	assert.Equal(t, jobs.TaskPalletLabel, tasks[1].Kind)
	assert.Equal(t, jobs.TaskStopInfoTag, tasks[2].Kind)

	assert.Equal(t, "8000141715_LPN8000141715A_1_of_2.zpl", tasks[0].FileName)
	assert.Equal(t, "8000141715_LPN8000141715B_2_of_2.zpl", tasks[1].FileName)
	assert.Equal(t, "info-shipment-8000141715.zpl", tasks[2].FileName)
}

func TestBuildShipmentTasks_RendersTemplate(t *testing.T) {
	job := preparedShipment(t, "8000141715", 1)

	tasks, err := jobs.BuildShipmentTasks(job, zap.NewNop())

	require.NoError(t, err)
	payload := string(tasks[0].Payload)
	assert.Contains(t, payload, "WALMART DC CORNWALL")
	assert.Contains(t, payload, "1 of 1")
	assert.True(t, label.IsValidZpl(payload))
}

func TestBuildShipmentTasks_InfoTagCarriesStaging(t *testing.T) {
	job := preparedShipment(t, "8000141715", 1)

	tasks, err := jobs.BuildShipmentTasks(job, zap.NewNop())

	require.NoError(t, err)
	info := string(tasks[len(tasks)-1].Payload)
	assert.Contains(t, info, "SHIPMENT 8000141715")
	assert.Contains(t, info, "STAGING: STAGE-01")
	assert.True(t, label.IsValidZpl(info))
}

func TestBuildCarrierMoveTasks_StopOrderWithInfoTags(t *testing.T) {
	// Arrange: two stops, one shipment each
	seq1, seq2 := 1, 2
	move := &jobs.PreparedCarrierMoveJob{
		CarrierMoveID: "205109",
		Groups: []*jobs.PreparedStopGroup{
			{
				StopID:       "STP001",
				StopSeq:      &seq1,
				StopPosition: 1,
				ShipmentIDs:  []string{"8000141715"},
				Jobs:         []*jobs.PreparedJob{preparedShipment(t, "8000141715", 2)},
			},
			{
				StopID:       "STP002",
				StopSeq:      &seq2,
				StopPosition: 2,
				ShipmentIDs:  []string{"8000141716"},
				Jobs:         []*jobs.PreparedJob{preparedShipment(t, "8000141716", 1)},
			},
		},
	}

	// Act
	tasks, err := jobs.BuildCarrierMoveTasks(move, zap.NewNop())

	// Assert
	require.NoError(t, err)
	kinds := make([]jobs.TaskKind, len(tasks))
	for i, task := range tasks {
		kinds[i] = task.Kind
	}
	assert.Equal(t, []jobs.TaskKind{
		jobs.TaskPalletLabel, jobs.TaskPalletLabel,
		jobs.TaskStopInfoTag,
		jobs.TaskPalletLabel,
		jobs.TaskStopInfoTag,
		jobs.TaskFinalInfoTag,
	}, kinds)

	assert.Equal(t, "info-stop-01-of-02.zpl", tasks[2].FileName)
	assert.Equal(t, "info-stop-02-of-02.zpl", tasks[4].FileName)
	assert.Equal(t, "info-final-cmid-205109.zpl", tasks[5].FileName)
}

func TestBuildCarrierMoveTasks_StopSequenceOverridesShipment(t *testing.T) {
	// Arrange: the shipment carries its own stop sequence, the group's
	// primary sequence must win on the label.
	job := preparedShipment(t, "8000141715", 1)
	own := 9
	job.Shipment.StopSeq = &own

	tmpl, err := label.ParseTemplate("seq", "^XA^FD{stopSequence}^FS^XZ")
	require.NoError(t, err)
	job.Template = tmpl

	groupSeq := 3
	move := &jobs.PreparedCarrierMoveJob{
		CarrierMoveID: "205109",
		Groups: []*jobs.PreparedStopGroup{{
			StopID:       "STP001",
			StopSeq:      &groupSeq,
			StopPosition: 1,
			ShipmentIDs:  []string{"8000141715"},
			Jobs:         []*jobs.PreparedJob{job},
		}},
	}

	// Act
	tasks, err := jobs.BuildCarrierMoveTasks(move, zap.NewNop())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "^XA^FD3^FS^XZ", string(tasks[0].Payload))
	assert.Contains(t, tasks[0].PayloadID, "stop 1:")
}

func TestBuildCarrierMoveTasks_FinalTagListsStops(t *testing.T) {
	move := &jobs.PreparedCarrierMoveJob{
		CarrierMoveID: "205109",
		Groups: []*jobs.PreparedStopGroup{{
			StopID:       "STP001",
			StopPosition: 1,
			ShipmentIDs:  []string{"8000141715", "8000141716"},
			Jobs:         []*jobs.PreparedJob{preparedShipment(t, "8000141715", 1)},
		}},
	}

	tasks, err := jobs.BuildCarrierMoveTasks(move, zap.NewNop())

	require.NoError(t, err)
	final := string(tasks[len(tasks)-1].Payload)
	assert.Contains(t, final, "CARRIER MOVE 205109")
	assert.Contains(t, final, "STOP 1: 8000141715, 8000141716")
}
