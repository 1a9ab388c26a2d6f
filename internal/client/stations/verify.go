package stations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/lifecycle"
	"github.com/gateflow/gateflow/internal/model"
)

// proposalTTL bounds how long a pending decision can wait for its
// confirmation before the operator has to start over.
const proposalTTL = 10 * time.Minute

type proposal struct {
	recordID  string
	event     lifecycle.Event
	ectx      lifecycle.Context
	createdAt time.Time
}

// Proposal is the first phase of a verified decision: the intended
// transition, validated but not applied.
type Proposal struct {
	ID         string       `json:"id"`
	RecordID   string       `json:"record_id"`
	Event      string       `json:"event"`
	NextStatus model.Status `json:"next_status"`
}

// propose dry-runs the transition so input mistakes surface immediately,
// then parks it until Confirm. The dry run sees the verified flag because
// the decision text itself must be valid; nothing is persisted here.
func (s *Service) propose(ctx context.Context, recordID string, ev lifecycle.Event, ectx lifecycle.Context) (Proposal, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return Proposal{}, err
	}

	preview := ectx
	preview.Verified = true
	tr, err := lifecycle.Decide(rec, ev, preview)
	if err != nil {
		return Proposal{}, err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.proposals[id] = proposal{
		recordID:  recordID,
		event:     ev,
		ectx:      ectx,
		createdAt: s.nowFn(),
	}
	s.mu.Unlock()

	return Proposal{
		ID:         id,
		RecordID:   recordID,
		Event:      string(ev),
		NextStatus: tr.Next,
	}, nil
}

// Confirm applies a previously proposed decision. The confirming operator
// is recorded as the actor; this is the only place the verification flag
// is set for real.
func (s *Service) Confirm(ctx context.Context, proposalID, confirmedBy string) (model.VehicleRecord, error) {
	if err := requireActor(confirmedBy); err != nil {
		return model.VehicleRecord{}, err
	}

	s.mu.Lock()
	p, ok := s.proposals[proposalID]
	if ok {
		delete(s.proposals, proposalID)
	}
	s.mu.Unlock()

	if !ok {
		return model.VehicleRecord{}, fmt.Errorf("proposal %s: %w", proposalID, common.ErrNotFound)
	}
	if s.nowFn().Sub(p.createdAt) > proposalTTL {
		return model.VehicleRecord{}, fmt.Errorf("%w: proposal expired, submit the decision again",
			common.ErrValidationRejected)
	}

	ectx := p.ectx
	ectx.Actor = confirmedBy
	ectx.Now = s.nowFn()
	ectx.Verified = true
	return s.applyEvent(ctx, p.recordID, p.event, ectx)
}

// Cancel discards a pending proposal.
func (s *Service) Cancel(proposalID string) {
	s.mu.Lock()
	delete(s.proposals, proposalID)
	s.mu.Unlock()
}
