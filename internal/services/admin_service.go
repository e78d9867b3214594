package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"water-service/internal/metrics"
	"water-service/internal/models"
	"water-service/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrStorageUnavailable = errors.New("document storage unavailable")
)

// AdminService backs the review dashboard. Status changes are unconstrained:
// any known status may replace any other.
type AdminService struct {
	repo          repository.IWaterServiceRequestRepository
	blobs         BlobStore
	bucket        string
	presignExpiry time.Duration
	notifier      *Notifier
}

func NewAdminService(repo repository.IWaterServiceRequestRepository, blobs BlobStore, bucket string, presignExpiry time.Duration, notifier *Notifier) *AdminService {
	return &AdminService{
		repo:          repo,
		blobs:         blobs,
		bucket:        bucket,
		presignExpiry: presignExpiry,
		notifier:      notifier,
	}
}

func (s *AdminService) Statuses() []models.RequestStatus {
	return models.AllRequestStatuses
}

func (s *AdminService) ListRequests(ctx context.Context, filter models.RequestListFilter) ([]models.WaterServiceRequestSummary, error) {
	return s.repo.List(ctx, filter)
}

func (s *AdminService) GetRequest(ctx context.Context, id uuid.UUID) (*models.WaterServiceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}

// UpdateStatus overwrites the status. The acting admin is taken from the
// session on ctx and only used for the audit log and the change event.
func (s *AdminService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown request status %q", status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	changedBy := ""
	if session, ok := models.AdminSessionFromContext(ctx); ok {
		changedBy = session.Username
	}
	slog.Info("request status updated", "id", id, "status", status, "changed_by", changedBy)
	metrics.RecordStatusUpdate(status.String())

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		slog.Warn("could not reload request for notification", "id", id, "error", err)
		return nil
	}
	s.notifier.StatusChanged(record, changedBy)
	return nil
}

// DeleteRequest removes the row. Stored documents are not deleted.
func (s *AdminService) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	changedBy := ""
	if session, ok := models.AdminSessionFromContext(ctx); ok {
		changedBy = session.Username
	}
	slog.Info("request deleted", "id", id, "deleted_by", changedBy)
	return nil
}

// DocumentURL returns a short-lived download link for a stored document.
func (s *AdminService) DocumentURL(ctx context.Context, id uuid.UUID, kind models.DocumentKind) (string, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	var objectName *string
	switch kind {
	case models.DocumentLease:
		objectName = record.LeaseDocumentPath
	case models.DocumentDeed:
		objectName = record.DeedDocumentPath
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	if objectName == nil || *objectName == "" {
		return "", ErrDocumentNotFound
	}
	if s.blobs == nil {
		return "", ErrStorageUnavailable
	}

	exists, err := s.blobs.FileExists(ctx, s.bucket, *objectName)
	if err != nil {
		return "", fmt.Errorf("failed to check document: %w", err)
	}
	if !exists {
		return "", ErrDocumentNotFound
	}

	return s.blobs.GetPresignedURL(ctx, s.bucket, *objectName, s.presignExpiry)
}
