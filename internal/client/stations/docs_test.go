package stations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateflow/gateflow/internal/common"
)

type fakeAttachments struct {
	uploadErr   error
	requested   []string
	downloadURL string
}

func (f *fakeAttachments) RequestUploadURL(ctx context.Context, vehicleID string) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	f.requested = append(f.requested, vehicleID)
	return "vehicles/" + vehicleID + "/doc-1", "http://signed/put", nil
}

func (f *fakeAttachments) RequestDownloadURL(ctx context.Context, vehicleID, key string) (string, error) {
	return f.downloadURL, nil
}

func TestUploadSupportingDoc(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateGateEntry(ctx, entryInput("v-1", "MH12AB1234"), "gate1")
	require.NoError(t, err)

	fa := &fakeAttachments{}
	f.svc.attachments = fa

	var uploaded []byte
	f.svc.upload = func(ctx context.Context, url string, file []byte) error {
		assert.Equal(t, "http://signed/put", url)
		uploaded = file
		return nil
	}

	rec, err = f.svc.UploadSupportingDoc(ctx, rec.ID, []byte("lab report"), "qc1")
	require.NoError(t, err)
	assert.Equal(t, []byte("lab report"), uploaded)
	assert.Equal(t, "vehicles/v-1/doc-1", rec.Data.SupportingDocRef)
}

func TestUploadSupportingDoc_UploadFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateGateEntry(ctx, entryInput("v-1", "MH12AB1234"), "gate1")
	require.NoError(t, err)

	f.svc.attachments = &fakeAttachments{}
	f.svc.upload = func(ctx context.Context, url string, file []byte) error {
		return errors.New("connection reset")
	}

	_, err = f.svc.UploadSupportingDoc(ctx, rec.ID, []byte("x"), "qc1")
	require.Error(t, err)

	// Nothing was recorded on the vehicle.
	got, err := f.svc.Vehicle(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Data.SupportingDocRef)
}

func TestUploadSupportingDoc_NotConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.UploadSupportingDoc(ctx, "v-1", []byte("x"), "qc1")
	require.ErrorIs(t, err, common.ErrValidationRejected)
}

func TestSupportingDocURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateGateEntry(ctx, entryInput("v-1", "MH12AB1234"), "gate1")
	require.NoError(t, err)

	f.svc.attachments = &fakeAttachments{downloadURL: "http://signed/get"}

	// No document attached yet.
	_, err = f.svc.SupportingDocURL(ctx, rec.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.AttachSupportingDoc(ctx, rec.ID, "vehicles/v-1/doc-1", "qc1")
	require.NoError(t, err)

	url, err := f.svc.SupportingDocURL(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://signed/get", url)
}
