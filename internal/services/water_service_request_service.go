package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"water-service/internal/metrics"
	"water-service/internal/models"
	"water-service/internal/repository"
	"water-service/shared/utils"
)

// ErrPersistFailed is returned when the record could not be saved. Transient
// and permanent database errors are reported the same way.
var ErrPersistFailed = errors.New("failed to save request")

// SubmissionValidationError carries field-level messages back to the form.
type SubmissionValidationError struct {
	Fields []utils.ValidationError
}

func (e *SubmissionValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("submission has %d invalid field(s): %s", len(e.Fields), strings.Join(names, ", "))
}

// BlobStore is the document storage the sign-up flow writes to.
type BlobStore interface {
	UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) (string, error)
	GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	FileExists(ctx context.Context, bucketName, objectName string) (bool, error)
}

type WaterServiceRequestService struct {
	repo       repository.IWaterServiceRequestRepository
	blobs      BlobStore
	bucket     string
	calculator *RateCalculator
	notifier   *Notifier
	now        func() time.Time
}

// NewWaterServiceRequestService wires the submission flow. blobs may be nil when
// object storage is unavailable; documents are then recorded as absent.
func NewWaterServiceRequestService(repo repository.IWaterServiceRequestRepository, blobs BlobStore, bucket string, notifier *Notifier) *WaterServiceRequestService {
	return &WaterServiceRequestService{
		repo:       repo,
		blobs:      blobs,
		bucket:     bucket,
		calculator: NewRateCalculator(),
		notifier:   notifier,
		now:        time.Now,
	}
}

func (s *WaterServiceRequestService) Calculator() *RateCalculator {
	return s.calculator
}

// DocumentObjectName builds the storage key {prefix}/{unixMillis}-{filename}.
func DocumentObjectName(kind models.DocumentKind, filename string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if base == "." || base == "/" {
		base = "document"
	}
	return fmt.Sprintf("%s/%d-%s", kind.PathPrefix(), at.UnixMilli(), base)
}

// uploadDocument stores one file. Failures are logged and the document is
// recorded as absent; they never fail the submission.
func (s *WaterServiceRequestService) uploadDocument(ctx context.Context, file models.UploadedFile) models.DocumentRef {
	name := file.Filename
	ref := models.DocumentRef{OriginalName: &name}

	if s.blobs == nil {
		slog.Warn("document storage unavailable, skipping upload", "kind", file.Kind, "filename", name)
		metrics.RecordDocumentUpload(string(file.Kind), metrics.ResultSkipped)
		return ref
	}

	objectName := DocumentObjectName(file.Kind, name, s.now())
	contentType := utils.ResolveContentType(name, file.ContentType)

	key, err := s.blobs.UploadFile(ctx, s.bucket, objectName, file.Content, file.Size, contentType)
	if err != nil {
		slog.Error("document upload failed", "kind", file.Kind, "object", objectName, "error", err)
		metrics.RecordDocumentUpload(string(file.Kind), metrics.ResultFailed)
		return ref
	}

	metrics.RecordDocumentUpload(string(file.Kind), metrics.ResultSuccess)
	ref.Path = &key
	return ref
}

// Submit validates the form, prices it, stores the documents one after the
// other and inserts the record. Uploads are best-effort; only validation and
// the insert can fail the call.
func (s *WaterServiceRequestService) Submit(ctx context.Context, form models.SubmissionForm, files []models.UploadedFile, submission models.SubmissionContext) (*models.SubmissionResult, error) {
	form = utils.TrimAllStringFields(form).(models.SubmissionForm)

	if fields := ValidateSubmission(form, files); len(fields) > 0 {
		metrics.RecordSubmission(metrics.ResultValidationError)
		return nil, &SubmissionValidationError{Fields: fields}
	}

	territory := models.ServiceTerritory(form.ServiceTerritory)
	trashCarts, _ := ParseCartCount(form.TrashCartsNeeded)
	recycleCarts, _ := ParseCartCount(form.RecycleCartsNeeded)

	rate := s.calculator.CalculateMonthlyRate(territory, trashCarts, recycleCarts,
		models.FormBool(form.HasPool), models.FormBool(form.HasSprinklerSystem))

	// No credit check has been run at submission time.
	deposit, err := s.calculator.CalculateDeposit(models.PropertyUseType(form.PropertyUseType), territory, nil)
	if err != nil {
		metrics.RecordSubmission(metrics.ResultValidationError)
		return nil, &SubmissionValidationError{Fields: []utils.ValidationError{{Field: "property_use_type", Message: err.Error()}}}
	}
	rate.DepositRequired = deposit

	var lease, deed models.DocumentRef
	var stored []models.DocumentKind
	for _, file := range files {
		ref := s.uploadDocument(ctx, file)
		switch file.Kind {
		case models.DocumentLease:
			lease = ref
		case models.DocumentDeed:
			deed = ref
		}
		if ref.Path != nil {
			stored = append(stored, file.Kind)
		}
	}

	record, err := AssembleRequestRecord(AssemblyInput{
		Form:       form,
		Rate:       rate,
		Deposit:    deposit,
		Lease:      lease,
		Deed:       deed,
		Submission: submission,
		Now:        s.now(),
	})
	if err != nil {
		metrics.RecordSubmission(metrics.ResultFailed)
		return nil, fmt.Errorf("failed to assemble request record: %w", err)
	}

	id, err := s.repo.Create(ctx, record)
	if err != nil {
		slog.Error("database insert failed", "error", err)
		metrics.RecordSubmission(metrics.ResultPersistError)
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	result := &models.SubmissionResult{
		ID:              id.String(),
		Status:          record.Status,
		DepositRequired: deposit.StringFixed(2),
		MonthlyEstimate: rate,
		DocumentsStored: stored,
	}
	if result.DocumentsStored == nil {
		result.DocumentsStored = []models.DocumentKind{}
	}

	slog.Info("water service request submitted",
		"id", result.ID,
		"property_use_type", record.PropertyUseType,
		"deposit", result.DepositRequired,
		"documents", len(stored),
	)
	metrics.RecordSubmission(metrics.ResultSuccess)
	s.notifier.RequestSubmitted(record, result)

	return result, nil
}

// EstimateRate is the calculator-only preview used before submission.
func (s *WaterServiceRequestService) EstimateRate(query models.RateEstimateQuery) (models.RateCalculation, []utils.ValidationError) {
	var errs fieldErrors

	territory := models.ServiceTerritory(strings.TrimSpace(query.ServiceTerritory))
	if territory != "" && !territory.IsValid() {
		errs.add("service_territory", "Service territory must be inside or outside city limits")
	}
	trashCarts, err := ParseCartCount(query.TrashCartsNeeded)
	if err != nil {
		errs.add("trash_carts_needed", err.Error())
	}
	recycleCarts, err := ParseCartCount(query.RecycleCartsNeeded)
	if err != nil {
		errs.add("recycle_carts_needed", err.Error())
	}
	if len(errs) > 0 {
		return models.RateCalculation{}, errs
	}

	return s.calculator.CalculateMonthlyRate(territory, trashCarts, recycleCarts,
		models.FormBool(query.HasPool), models.FormBool(query.HasSprinklerSystem)), nil
}

func (s *WaterServiceRequestService) EstimateDeposit(query models.DepositEstimateQuery) (string, []utils.ValidationError) {
	var errs fieldErrors

	territory := models.ServiceTerritory(strings.TrimSpace(query.ServiceTerritory))
	if territory != "" && !territory.IsValid() {
		errs.add("service_territory", "Service territory must be inside or outside city limits")
	}
	deposit, err := s.calculator.CalculateDeposit(models.PropertyUseType(strings.TrimSpace(query.PropertyUseType)), territory, query.CreditScore)
	if err != nil {
		errs.add("property_use_type", "Property use must be rent, owner_occupied, or owner_leasing")
	}
	if len(errs) > 0 {
		return "", errs
	}
	return deposit.StringFixed(2), nil
}
