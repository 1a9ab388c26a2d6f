// Package stations exposes one operation per plant checkpoint: gate entry,
// QC decisions, weighments, bay work, ERP release, HOD review. Every
// operation runs the lifecycle state machine against the cached record and
// persists the resulting transition through the entity repository.
//
// Decisions that a supervisor must double-check go through a two-phase
// propose/confirm exchange; the verification flag the state machine
// requires is only ever set inside Confirm.
package stations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/logging"
	"github.com/gateflow/gateflow/internal/model"
	"github.com/gateflow/gateflow/internal/warehouse"
)

// RecordStore is the slice of the entity repository the stations use.
// Satisfied by *vehicles.Repository.
type RecordStore interface {
	Add(ctx context.Context, rec model.VehicleRecord) error
	GetByID(ctx context.Context, id string) (model.VehicleRecord, error)
	List(ctx context.Context) ([]model.VehicleRecord, error)
	Update(ctx context.Context, id string, patch model.RecordPatch, logs ...model.LogEntry) (model.VehicleRecord, error)
}

type Service struct {
	repo   RecordStore
	stock  warehouse.Adjuster
	logger logging.Logger
	nowFn  func() time.Time

	attachments AttachmentClient
	upload      func(ctx context.Context, url string, file []byte) error

	mu        sync.Mutex
	proposals map[string]proposal
}

func NewService(repo RecordStore, stock warehouse.Adjuster, logger logging.Logger) *Service {
	return &Service{
		repo:      repo,
		stock:     stock,
		logger:    logger,
		nowFn:     func() time.Time { return time.Now().UTC() },
		proposals: make(map[string]proposal),
	}
}

func (s *Service) eventCtx(actor string) lifecycle.Context {
	return lifecycle.Context{Actor: actor, Now: s.nowFn()}
}

// applyEvent runs the state machine and persists the transition. When the
// transition moves stock, the bay adjustment runs first: an over-capacity
// bay aborts the whole operation and the vehicle stays where it was. A
// failed cache write after the adjustment is compensated with the inverse
// mutation.
func (s *Service) applyEvent(ctx context.Context, id string, ev lifecycle.Event, ectx lifecycle.Context) (model.VehicleRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.VehicleRecord{}, err
	}

	tr, err := lifecycle.Decide(rec, ev, ectx)
	if err != nil {
		return model.VehicleRecord{}, err
	}

	if tr.Stock != nil {
		if err := s.stock.AdjustBayStock(ctx, *tr.Stock); err != nil {
			return model.VehicleRecord{}, fmt.Errorf("bay stock adjustment: %w", err)
		}
	}

	updated, err := s.repo.Update(ctx, id,
		model.RecordPatch{Status: model.StatusPtr(tr.Next), Data: &tr.Patch},
		tr.Log)
	if err != nil {
		if tr.Stock != nil {
			// The status never advanced, so back the bay adjustment out.
			if cerr := s.stock.AdjustBayStock(ctx, invertAdjustment(*tr.Stock)); cerr != nil && s.logger != nil {
				s.logger.Error(ctx, "failed to compensate bay stock adjustment",
					"id", id, "bay", tr.Stock.BayID, "error", cerr)
			}
		}
		return model.VehicleRecord{}, err
	}

	if s.logger != nil {
		s.logger.Info(ctx, "vehicle transition",
			"id", id, "event", string(ev), "from", string(rec.Status), "to", string(tr.Next))
	}
	return updated, nil
}

// invertAdjustment builds the compensating bay mutation for adj.
func invertAdjustment(adj lifecycle.StockAdjustment) lifecycle.StockAdjustment {
	inv := adj
	if adj.Direction == lifecycle.StockAdd {
		inv.Direction = lifecycle.StockRemove
	} else {
		inv.Direction = lifecycle.StockAdd
	}
	return inv
}

// Vehicle returns the cached record.
func (s *Service) Vehicle(ctx context.Context, id string) (model.VehicleRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Vehicles lists every cached record.
func (s *Service) Vehicles(ctx context.Context) ([]model.VehicleRecord, error) {
	return s.repo.List(ctx)
}

// VehiclesByStatus filters the cached records.
func (s *Service) VehiclesByStatus(ctx context.Context, statuses ...model.Status) ([]model.VehicleRecord, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[model.Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []model.VehicleRecord
	for _, rec := range all {
		if want[rec.Status] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func requireActor(actor string) error {
	if actor == "" {
		return fmt.Errorf("%w: actor is required", common.ErrValidationRejected)
	}
	return nil
}
