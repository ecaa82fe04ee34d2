package jobs

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/domain/label"
)

// TaskKind classifies a print task.
type TaskKind string

const (
	TaskPalletLabel  TaskKind = "PALLET_LABEL"
	TaskStopInfoTag  TaskKind = "STOP_INFO_TAG"
	TaskFinalInfoTag TaskKind = "FINAL_INFO_TAG"
)

// PrintTask is one pre-rendered payload with its output file name and a
// human-readable id for logs. Execution never re-renders.
type PrintTask struct {
	Kind      TaskKind `json:"kind"`
	FileName  string   `json:"fileName"`
	Payload   []byte   `json:"payload"`
	PayloadID string   `json:"payloadId"`
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// slug lowercases an identifier for use in a file name.
func slug(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = slugUnsafe.ReplaceAllString(t, "-")
	return strings.Trim(t, "-")
}

// BuildShipmentTasks expands a standalone shipment job: one pallet label
// per pallet followed by a single shipment info tag.
func BuildShipmentTasks(job *PreparedJob, logger *zap.Logger) ([]PrintTask, error) {
	tasks, err := buildPalletTasks(job, nil, 0, logger)
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, buildShipmentInfoTask(job))
	return tasks, nil
}

// BuildCarrierMoveTasks expands a carrier-move job: each stop group's
// pallet labels followed by that stop's info tag, with a single final
// info tag after all stops.
func BuildCarrierMoveTasks(move *PreparedCarrierMoveJob, logger *zap.Logger) ([]PrintTask, error) {
	var tasks []PrintTask
	total := len(move.Groups)
	for _, group := range move.Groups {
		for _, job := range group.Jobs {
			palletTasks, err := buildPalletTasks(job, group.StopSeq, group.StopPosition, logger)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, palletTasks...)
		}
		tasks = append(tasks, buildStopInfoTask(group, total))
	}
	tasks = append(tasks, buildFinalInfoTask(move))
	return tasks, nil
}

// buildPalletTasks renders one PALLET_LABEL task per pallet. For
// carrier-move jobs the group's primary stop sequence overrides the
// shipment's own and the stop position is carried in the payload id.
func buildPalletTasks(job *PreparedJob, stopSeqOverride *int, stopPosition int, logger *zap.Logger) ([]PrintTask, error) {
	total := len(job.Pallets)
	tasks := make([]PrintTask, 0, total)
	for i, pallet := range job.Pallets {
		fields, err := label.BuildFields(label.BuildRequest{
			Shipment:    job.Shipment,
			Pallet:      pallet,
			PalletIndex: i,
			LabelCount:  total,
			ShipFrom: label.ShipFrom{
				Name:         job.Site.ShipFromName,
				Address:      job.Site.ShipFromAddress,
				CityStateZip: job.Site.ShipFromCityStateZip,
			},
			Skus:            job.Skus,
			Locations:       locationResolver(job),
			Footprints:      job.Footprints,
			StagingLocation: job.StagingLocation,
			StopSeqOverride: stopSeqOverride,
		}, logger)
		if err != nil {
			return nil, err
		}
		payload, err := job.Template.Render(fields)
		if err != nil {
			return nil, err
		}

		payloadID := label.PayloadID(job.ShipmentID, pallet.ID, i+1, total)
		if stopPosition > 0 {
			payloadID = fmt.Sprintf("stop %d: %s", stopPosition, payloadID)
		}
		tasks = append(tasks, PrintTask{
			Kind:      TaskPalletLabel,
			FileName:  fmt.Sprintf("%s_%s_%d_of_%d.zpl", job.ShipmentID, pallet.ID, i+1, total),
			Payload:   payload,
			PayloadID: payloadID,
		})
	}
	return tasks, nil
}

// locationResolver keeps a nil matrix from becoming a typed non-nil
// interface value inside the build request.
func locationResolver(job *PreparedJob) label.LocationResolver {
	if job.Locs == nil {
		return nil
	}
	return job.Locs
}

// buildShipmentInfoTask composes the trailing info tag of a standalone
// shipment job.
func buildShipmentInfoTask(job *PreparedJob) PrintTask {
	lines := []string{
		"SHIPMENT " + job.ShipmentID,
		job.Shipment.ShipToName,
		job.Shipment.ShipToAddress1,
		fmt.Sprintf("%s %s %s", job.Shipment.ShipToCity, job.Shipment.ShipToState, job.Shipment.ShipToPostal),
		fmt.Sprintf("PALLET LABELS: %d", len(job.Pallets)),
	}
	if job.StagingLocation != "" {
		lines = append(lines, "STAGING: "+job.StagingLocation)
	}
	return PrintTask{
		Kind:      TaskStopInfoTag,
		FileName:  fmt.Sprintf("info-shipment-%s.zpl", slug(job.ShipmentID)),
		Payload:   renderInfoTag("SHIPMENT INFO", lines),
		PayloadID: "info tag for shipment " + job.ShipmentID,
	}
}

// buildStopInfoTask composes the sorting tag printed after one stop's
// pallet run.
func buildStopInfoTask(group *PreparedStopGroup, totalStops int) PrintTask {
	lines := []string{
		fmt.Sprintf("STOP %d OF %d", group.StopPosition, totalStops),
		"SHIPMENTS: " + strings.Join(group.ShipmentIDs, ", "),
	}
	if len(group.Jobs) > 0 {
		dest := group.Jobs[0].Shipment
		lines = append(lines,
			dest.ShipToName,
			dest.ShipToAddress1,
			fmt.Sprintf("%s %s %s", dest.ShipToCity, dest.ShipToState, dest.ShipToPostal),
		)
	}
	return PrintTask{
		Kind:      TaskStopInfoTag,
		FileName:  fmt.Sprintf("info-stop-%02d-of-%02d.zpl", group.StopPosition, totalStops),
		Payload:   renderInfoTag("STOP INFO", lines),
		PayloadID: fmt.Sprintf("info tag for stop %d of %d", group.StopPosition, totalStops),
	}
}

// buildFinalInfoTask composes the summary tag ending a carrier-move run.
func buildFinalInfoTask(move *PreparedCarrierMoveJob) PrintTask {
	lines := []string{"CARRIER MOVE " + move.CarrierMoveID}
	for _, group := range move.Groups {
		lines = append(lines, fmt.Sprintf("STOP %d: %s",
			group.StopPosition, strings.Join(group.ShipmentIDs, ", ")))
	}
	return PrintTask{
		Kind:      TaskFinalInfoTag,
		FileName:  fmt.Sprintf("info-final-cmid-%s.zpl", slug(move.CarrierMoveID)),
		Payload:   renderInfoTag("CARRIER MOVE COMPLETE", lines),
		PayloadID: "final info tag for carrier move " + move.CarrierMoveID,
	}
}

// renderInfoTag emits a self-contained ZPL document for a non-applied
// sorting tag. Values are escaped like label fields.
func renderInfoTag(title string, lines []string) []byte {
	var b strings.Builder
	b.WriteString("^XA\n^CF0,40\n")
	b.WriteString(fmt.Sprintf("^FO40,40^FD%s^FS\n", label.EscapeValue(title)))
	b.WriteString("^CF0,30\n")
	y := 110
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("^FO40,%d^FD%s^FS\n", y, label.EscapeValue(line)))
		y += 40
	}
	b.WriteString("^XZ\n")
	return []byte(b.String())
}
