// Package jobs composes the query layer, reference data, planning and
// the label builder into prepared print jobs, expands them into ordered
// task lists and executes those with durable checkpoints.
package jobs

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tbg-logistics/wms-labeler/internal/adapters/persistence"
	"github.com/tbg-logistics/wms-labeler/internal/adapters/refdata"
	"github.com/tbg-logistics/wms-labeler/internal/domain/label"
	"github.com/tbg-logistics/wms-labeler/internal/domain/planning"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shipment"
)

// Site is the active-site context stamped on every label.
type Site struct {
	Code                 string
	Name                 string
	ShipFromName         string
	ShipFromAddress      string
	ShipFromCityStateZip string
}

// PreparedJob is an immutable bundle of everything needed to print one
// shipment's pallet labels.
type PreparedJob struct {
	ShipmentID      string
	Shipment        *shipment.Shipment
	Footprints      map[string]*shipment.SkuFootprint
	Plan            planning.PlanResult
	SkuMath         []planning.SkuMath
	Pallets         []*shipment.Pallet
	VirtualLabels   bool
	StagingLocation string

	Site     Site
	Template *label.Template
	Skus     *refdata.SkuMatrix
	Locs     *refdata.LocationMatrix
}

// PreparedStopGroup is one stop's slice of a carrier-move job.
type PreparedStopGroup struct {
	StopID       string
	StopSeq      *int
	StopPosition int
	ShipmentIDs  []string
	Jobs         []*PreparedJob
}

// PreparedCarrierMoveJob fans a carrier move out into ordered stop
// groups.
type PreparedCarrierMoveJob struct {
	CarrierMoveID string
	Groups        []*PreparedStopGroup
}

// QueueItemKind tags a queue entry.
type QueueItemKind string

const (
	QueueShipment    QueueItemKind = "SHIPMENT"
	QueueCarrierMove QueueItemKind = "CARRIER_MOVE"
)

// QueueItem is one prepared entry of a batch queue.
type QueueItem struct {
	Kind        QueueItemKind
	SourceID    string
	Shipment    *PreparedJob
	CarrierMove *PreparedCarrierMoveJob
}

// PreparedQueue is an ordered batch of prepared jobs.
type PreparedQueue struct {
	Items []QueueItem
}

// QueueSpec names one requested queue entry before preparation.
type QueueSpec struct {
	Kind     QueueItemKind
	SourceID string
}

// Preparer builds prepared jobs. All collaborators are immutable or
// read-only, so one preparer serves a whole queue.
type Preparer struct {
	repo     *persistence.ShipmentRepository
	skus     *refdata.SkuMatrix
	locs     *refdata.LocationMatrix
	template *label.Template
	site     Site
	logger   *zap.Logger
}

// NewPreparer wires a preparer. locs may be nil when no location matrix
// is configured.
func NewPreparer(
	repo *persistence.ShipmentRepository,
	skus *refdata.SkuMatrix,
	locs *refdata.LocationMatrix,
	template *label.Template,
	site Site,
	logger *zap.Logger,
) *Preparer {
	return &Preparer{
		repo:     repo,
		skus:     skus,
		locs:     locs,
		template: template,
		site:     site,
		logger:   logger,
	}
}

// PrepareShipmentJob loads the shipment graph and footprints, runs the
// pallet math and synthesizes virtual pallets when the store has no
// physical ones yet.
func (p *Preparer) PrepareShipmentJob(ctx context.Context, shipmentID string) (*PreparedJob, error) {
	id, err := shared.RequireNonEmpty("shipment id", shipmentID)
	if err != nil {
		return nil, err
	}

	graph, err := p.repo.FindShipmentWithLpnsAndLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	footprints, err := p.repo.FindShipmentSkuFootprints(ctx, id)
	if err != nil {
		return nil, err
	}

	bySku := make(map[string]*shipment.SkuFootprint, len(footprints))
	for _, fp := range footprints {
		bySku[fp.Sku] = fp
	}

	plan := planning.Plan(footprints)
	job := &PreparedJob{
		ShipmentID:      id,
		Shipment:        graph,
		Footprints:      bySku,
		Plan:            plan,
		SkuMath:         planning.ComputeSkuMath(footprints),
		StagingLocation: graph.DestinationLocation,
		Site:            p.site,
		Template:        p.template,
		Skus:            p.skus,
		Locs:            p.locs,
	}

	if graph.HasPallets() {
		job.Pallets = graph.Pallets
	} else {
		seq := planning.NewSsccSequence(0)
		job.Pallets = planning.SynthesizeVirtualPallets(footprints, seq)
		job.VirtualLabels = true
		p.logger.Info("no physical pallets; planned virtual labels",
			zap.String("shipment", id),
			zap.Int("pallets", len(job.Pallets)),
			zap.Strings("skusMissingFootprint", plan.SkusMissingFootprint))
	}

	if len(job.Pallets) == 0 {
		return nil, shared.NewValidationError("shipment " + id + " has no pallets and no plannable units")
	}
	return job, nil
}

// PrepareCarrierMoveJob resolves the carrier move's stops and prepares
// every shipment, grouped by stop. Group order follows the primary stop
// sequence with absent sequences last; within a group shipment ids are
// de-duplicated and sorted ascending.
func (p *Preparer) PrepareCarrierMoveJob(ctx context.Context, carrierMoveID string) (*PreparedCarrierMoveJob, error) {
	id, err := shared.RequireNonEmpty("carrier move id", carrierMoveID)
	if err != nil {
		return nil, err
	}

	refs, err := p.repo.FindCarrierMoveStops(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, shared.NewValidationError("carrier move " + id + " has no stops")
	}

	// refs arrive ordered by primary stop sequence (absent last) then
	// shipment id; grouping by first appearance keeps that order.
	groupsByStop := make(map[string]*PreparedStopGroup)
	var groups []*PreparedStopGroup
	for _, ref := range refs {
		g, ok := groupsByStop[ref.StopID]
		if !ok {
			g = &PreparedStopGroup{StopID: ref.StopID, StopSeq: ref.StopSeq}
			groupsByStop[ref.StopID] = g
			groups = append(groups, g)
		}
		if !containsString(g.ShipmentIDs, ref.ShipmentID) {
			g.ShipmentIDs = append(g.ShipmentIDs, ref.ShipmentID)
		}
	}

	move := &PreparedCarrierMoveJob{CarrierMoveID: id}
	position := 0
	for _, g := range groups {
		if len(g.ShipmentIDs) == 0 {
			continue
		}
		sort.Strings(g.ShipmentIDs)
		position++
		g.StopPosition = position
		for _, shipID := range g.ShipmentIDs {
			job, err := p.PrepareShipmentJob(ctx, shipID)
			if err != nil {
				return nil, err
			}
			g.Jobs = append(g.Jobs, job)
		}
		move.Groups = append(move.Groups, g)
	}

	p.logger.Info("prepared carrier move job",
		zap.String("carrierMove", id),
		zap.Int("stops", len(move.Groups)))
	return move, nil
}

// PrepareQueue prepares an ordered batch. An empty spec list is invalid.
func (p *Preparer) PrepareQueue(ctx context.Context, specs []QueueSpec) (*PreparedQueue, error) {
	if len(specs) == 0 {
		return nil, shared.NewValidationError("queue must contain at least one entry")
	}
	queue := &PreparedQueue{}
	for _, spec := range specs {
		switch spec.Kind {
		case QueueShipment:
			job, err := p.PrepareShipmentJob(ctx, spec.SourceID)
			if err != nil {
				return nil, err
			}
			queue.Items = append(queue.Items, QueueItem{Kind: spec.Kind, SourceID: job.ShipmentID, Shipment: job})
		case QueueCarrierMove:
			job, err := p.PrepareCarrierMoveJob(ctx, spec.SourceID)
			if err != nil {
				return nil, err
			}
			queue.Items = append(queue.Items, QueueItem{Kind: spec.Kind, SourceID: job.CarrierMoveID, CarrierMove: job})
		default:
			return nil, shared.NewValidationError("unknown queue item kind " + strings.TrimSpace(string(spec.Kind)))
		}
	}
	return queue, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
