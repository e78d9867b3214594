package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"water-service/internal/event"
	"water-service/internal/mail"
	"water-service/internal/models"
	"water-service/internal/repository"
	"water-service/internal/worker"

	"github.com/google/uuid"
)

// ============================================================================
// REPOSITORY
// ============================================================================

type fakeRequestRepository struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*models.WaterServiceRequest
	createErr error
}

func newFakeRequestRepository() *fakeRequestRepository {
	return &fakeRequestRepository{records: map[uuid.UUID]*models.WaterServiceRequest{}}
}

func (f *fakeRequestRepository) Create(_ context.Context, request *models.WaterServiceRequest) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	f.records[request.ID] = request
	return request.ID, nil
}

func (f *fakeRequestRepository) GetByID(_ context.Context, id uuid.UUID) (*models.WaterServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRequestRepository) List(_ context.Context, filter models.RequestListFilter) ([]models.WaterServiceRequestSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summaries := []models.WaterServiceRequestSummary{}
	for _, r := range f.records {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		summaries = append(summaries, models.WaterServiceRequestSummary{ID: r.ID, Status: r.Status, ApplicantName: r.ApplicantName})
	}
	return summaries, nil
}

func (f *fakeRequestRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return repository.ErrRequestNotFound
	}
	record.Status = status
	record.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRequestRepository) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return repository.ErrRequestNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRequestRepository) GetDashboardStats(_ context.Context) (*models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.DashboardStats{TotalRequests: len(f.records)}
	for _, r := range f.records {
		if r.Status == models.StatusNew {
			stats.NewRequests++
		}
	}
	return stats, nil
}

func (f *fakeRequestRepository) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	return nil, nil
}

// ============================================================================
// BLOB STORE
// ============================================================================

type fakeBlobStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	uploads    []string
	failPrefix string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) UploadFile(_ context.Context, bucketName, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, bucketName+"/"+objectName)
	if f.failPrefix != "" && bytes.HasPrefix([]byte(objectName), []byte(f.failPrefix)) {
		return "", errors.New("storage quota exceeded")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.objects[objectName] = data
	return objectName, nil
}

func (f *fakeBlobStore) GetPresignedURL(_ context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	return "https://storage.example.com/" + bucketName + "/" + objectName + "?expires=" + expiry.String(), nil
}

func (f *fakeBlobStore) FileExists(_ context.Context, _ string, objectName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectName]
	return ok, nil
}

// ============================================================================
// NOTIFICATIONS
// ============================================================================

type syncPool struct{}

func (syncPool) SubmitJob(job worker.Job) error {
	return job(context.Background())
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.RequestEvent
}

func (f *fakePublisher) Publish(_ context.Context, evt event.RequestEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

type fakeMailer struct {
	mu            sync.Mutex
	confirmations []string
	statusMails   []string
	err           error
}

func (f *fakeMailer) SendConfirmation(to string, _ mail.ConfirmationData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, to)
	return f.err
}

func (f *fakeMailer) SendStatusChanged(to, _, _, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusMails = append(f.statusMails, to+":"+status)
	return f.err
}
