package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"water-service/internal/config"
	"water-service/internal/models"
	"water-service/internal/repository"
	"water-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeRequestRepository struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*models.WaterServiceRequest
	createErr error
	lastLimit int
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
	f.lastLimit = filter.Limit
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
	return &models.DashboardStats{TotalRequests: len(f.records)}, nil
}

func (f *fakeRequestRepository) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	return nil, nil
}

func (f *fakeRequestRepository) add(record *models.WaterServiceRequest) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = uuid.New()
	f.records[record.ID] = record
	return record.ID
}

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) UploadFile(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	return objectName, nil
}

func (f *fakeBlobStore) GetPresignedURL(_ context.Context, bucketName, objectName string, _ time.Duration) (string, error) {
	return "https://storage.example.com/" + bucketName + "/" + objectName, nil
}

func (f *fakeBlobStore) FileExists(_ context.Context, _, objectName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objectName]
	return ok, nil
}

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.AdminSession
}

func (f *fakeSessionRepository) CreateSession(_ context.Context, session *models.AdminSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeSessionRepository) GetSession(_ context.Context, sessionID string) (*models.AdminSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (f *fakeSessionRepository) RevokeSession(_ context.Context, sessionID string, revokedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	session.RevokedAt = &revokedAt
	f.sessions[sessionID] = session
	return nil
}

// ============================================================================
// TEST SERVER
// ============================================================================

const (
	testAdminUser     = "admin"
	testAdminPassword = "s3cret"
)

var errDatabaseDown = errors.New("connection refused")

type testServer struct {
	router *gin.Engine
	repo   *fakeRequestRepository
	blobs  *fakeBlobStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newFakeRequestRepository()
	blobs := newFakeBlobStore()

	sessions := services.NewSessionService(&fakeSessionRepository{sessions: map[string]models.AdminSession{}}, time.Hour)
	auth, err := services.NewAuthService(config.AuthConfig{
		AdminUsername: testAdminUser,
		AdminPassword: testAdminPassword,
	}, sessions, services.NewJWTService("handler-test-secret"))
	require.NoError(t, err)

	middleware := NewMiddleware(auth)
	router := gin.New()
	router.Use(Recovery())

	NewWaterServiceRequestHandler(services.NewWaterServiceRequestService(repo, blobs, "documents", nil)).RegisterRoutes(router)
	NewAdminHandler(services.NewAdminService(repo, blobs, "documents", time.Minute, nil), middleware).RegisterRoutes(router)
	NewAuthHandler(auth, middleware, time.Hour, false).RegisterRoutes(router)

	return &testServer{router: router, repo: repo, blobs: blobs}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.do(jsonRequest(http.MethodPost, "/water/public/api/v1/admin/login",
		`{"username":"`+testAdminUser+`","password":"`+testAdminPassword+`"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withCookie(req *http.Request, cookie *http.Cookie) *http.Request {
	req.AddCookie(cookie)
	return req
}

type multipartFile struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		Count *int `json:"count"`
	} `json:"meta"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Fields  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
