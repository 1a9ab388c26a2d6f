package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
	"github.com/gateflow/gateflow/internal/server/feed"
)

type memRepo struct {
	recs map[string]model.VehicleRecord
}

func newMemRepo() *memRepo { return &memRepo{recs: make(map[string]model.VehicleRecord)} }

func (r *memRepo) Insert(ctx context.Context, rec model.VehicleRecord) error {
	if _, ok := r.recs[rec.ID]; ok {
		return common.ErrAlreadyExists
	}
	r.recs[rec.ID] = rec
	return nil
}

func (r *memRepo) Update(ctx context.Context, rec model.VehicleRecord) error {
	if _, ok := r.recs[rec.ID]; !ok {
		return common.ErrNotFound
	}
	r.recs[rec.ID] = rec
	return nil
}

func (r *memRepo) Upsert(ctx context.Context, rec model.VehicleRecord) error {
	r.recs[rec.ID] = rec
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.recs[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.recs, id)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (model.VehicleRecord, error) {
	rec, ok := r.recs[id]
	if !ok {
		return model.VehicleRecord{}, common.ErrNotFound
	}
	return rec, nil
}

func (r *memRepo) GetAll(ctx context.Context) ([]model.VehicleRecord, error) {
	var out []model.VehicleRecord
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	return out, nil
}

func sample(id string) model.VehicleRecord {
	return model.VehicleRecord{
		ID: id, Status: model.StatusAtQC1, VehicleNumber: "MH12AB1234",
	}
}

func TestVehicleService_InsertPublishes(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub()
	svc := NewVehicleService(newMemRepo(), hub)

	ch, cancel := hub.Subscribe()
	defer cancel()

	require.NoError(t, svc.Insert(ctx, sample("v-1")))

	select {
	case ev := <-ch:
		assert.Equal(t, model.ChangeInsert, ev.Kind)
		assert.Equal(t, "v-1", ev.Record.ID)
	case <-time.After(time.Second):
		t.Fatal("no change event published")
	}
}

func TestVehicleService_ValidationBeforePersist(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewVehicleService(repo, feed.NewHub())

	err := svc.Insert(ctx, model.VehicleRecord{ID: "v-1"})
	require.ErrorIs(t, err, common.ErrValidationRejected)
	assert.Empty(t, repo.recs)
}

func TestVehicleService_FailedWriteDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub()
	svc := NewVehicleService(newMemRepo(), hub)
	require.NoError(t, svc.Insert(ctx, sample("v-1")))

	ch, cancel := hub.Subscribe()
	defer cancel()

	err := svc.Insert(ctx, sample("v-1"))
	require.ErrorIs(t, err, common.ErrAlreadyExists)

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestVehicleService_DeletePublishesIDOnly(t *testing.T) {
	ctx := context.Background()
	hub := feed.NewHub()
	svc := NewVehicleService(newMemRepo(), hub)
	require.NoError(t, svc.Insert(ctx, sample("v-1")))

	ch, cancel := hub.Subscribe()
	defer cancel()

	require.NoError(t, svc.Delete(ctx, "v-1"))

	ev := <-ch
	assert.Equal(t, model.ChangeDelete, ev.Kind)
	assert.Equal(t, "v-1", ev.Record.ID)
}
