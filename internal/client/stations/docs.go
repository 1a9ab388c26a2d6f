package stations

import (
	"context"
	"fmt"

	"github.com/gateflow/gateflow/internal/client/netx"
	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

// AttachmentClient hands out presigned object-storage URLs. Satisfied by
// *remote.HTTPStore.
type AttachmentClient interface {
	RequestUploadURL(ctx context.Context, vehicleID string) (key, uploadURL string, err error)
	RequestDownloadURL(ctx context.Context, vehicleID, key string) (string, error)
}

// EnableAttachments turns on document upload support. Uploads need the
// server reachable; every other station operation stays offline-capable.
func (s *Service) EnableAttachments(c AttachmentClient) {
	s.attachments = c
	s.upload = netx.UploadToPresignedURL
}

// UploadSupportingDoc uploads rejection evidence to object storage and
// records the resulting key on the vehicle. The file goes straight to the
// store; only the key touches the sync path.
func (s *Service) UploadSupportingDoc(ctx context.Context, id string, doc []byte, actor string) (model.VehicleRecord, error) {
	if err := requireActor(actor); err != nil {
		return model.VehicleRecord{}, err
	}
	if s.attachments == nil {
		return model.VehicleRecord{}, fmt.Errorf("%w: attachment uploads are not configured", common.ErrValidationRejected)
	}
	if len(doc) == 0 {
		return model.VehicleRecord{}, fmt.Errorf("%w: document is empty", common.ErrValidationRejected)
	}

	key, uploadURL, err := s.attachments.RequestUploadURL(ctx, id)
	if err != nil {
		return model.VehicleRecord{}, fmt.Errorf("requesting upload url: %w", err)
	}
	if err := s.upload(ctx, uploadURL, doc); err != nil {
		return model.VehicleRecord{}, fmt.Errorf("uploading document: %w", err)
	}

	return s.AttachSupportingDoc(ctx, id, key, actor)
}

// SupportingDocURL returns a short-lived download URL for the document
// attached to the vehicle.
func (s *Service) SupportingDocURL(ctx context.Context, id string) (string, error) {
	if s.attachments == nil {
		return "", fmt.Errorf("%w: attachment uploads are not configured", common.ErrValidationRejected)
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if rec.Data.SupportingDocRef == "" {
		return "", fmt.Errorf("%w: no document attached", common.ErrNotFound)
	}
	return s.attachments.RequestDownloadURL(ctx, id, rec.Data.SupportingDocRef)
}
