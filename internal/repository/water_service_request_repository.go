package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"water-service/internal/models"
	"water-service/shared/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	waterServiceRequestTable = "water_service_requests"
	DefaultListLimit         = 50
)

var ErrRequestNotFound = errors.New("water service request not found")

var requestColumns = []string{
	"id", "created_at", "updated_at", "status",
	"service_request_date", "service_start_date", "service_stop_date",
	"applicant_name", "applicant_email", "applicant_phone", "applicant_alternate_phone", "applicant_work_phone",
	"applicant_drivers_license_number", "applicant_drivers_license_state", "applicant_date_of_birth", "applicant_ssn_last4",
	"applicant_signature_image_path", "applicant_signature_timestamp", "applicant_ip_address", "applicant_user_agent",
	"has_co_applicant", "co_applicant_name", "co_applicant_email", "co_applicant_phone",
	"co_applicant_alternate_phone", "co_applicant_work_phone",
	"co_applicant_drivers_license_number", "co_applicant_drivers_license_state", "co_applicant_date_of_birth", "co_applicant_ssn_last4",
	"co_applicant_signature_image_path", "co_applicant_signature_timestamp",
	"service_address", "service_city", "service_state", "service_postal_code",
	"mailing_address_same_as_service", "mailing_address", "mailing_city", "mailing_state", "mailing_postal_code",
	"property_use_type", "service_territory", "landlord_name", "landlord_phone", "landlord_verified", "landlord_verification_date",
	"lease_document_path", "lease_document_original_name", "lease_document_uploaded_at",
	"deed_document_path", "deed_document_original_name", "deed_document_uploaded_at",
	"trash_carts_needed", "recycle_carts_needed", "has_sprinkler_system", "has_pool", "bill_type_preference",
	"account_number", "credit_check_performed", "credit_check_score",
	"deposit_amount_required", "deposit_paid", "deposit_paid_date",
	"acknowledged_service_terms", "acknowledged_service_terms_timestamp",
	"staff_notes", "metadata",
}

var summaryColumns = []string{
	"id", "created_at", "status", "applicant_name", "applicant_email", "applicant_phone",
	"service_address", "property_use_type", "deposit_amount_required", "deposit_paid",
}

type IWaterServiceRequestRepository interface {
	Create(ctx context.Context, request *models.WaterServiceRequest) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WaterServiceRequest, error)
	List(ctx context.Context, filter models.RequestListFilter) ([]models.WaterServiceRequestSummary, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

type WaterServiceRequestRepository struct {
	db *sqlx.DB
}

func NewWaterServiceRequestRepository(db *sqlx.DB) *WaterServiceRequestRepository {
	return &WaterServiceRequestRepository{db: db}
}

func namedPlaceholders(columns []string) string {
	placeholders := make([]string, len(columns))
	for i, column := range columns {
		placeholders[i] = ":" + column
	}
	return strings.Join(placeholders, ", ")
}

// Create inserts the record and returns its id. A nil id is replaced with a
// fresh UUID and zero timestamps are set to now.
func (r *WaterServiceRequestRepository) Create(ctx context.Context, request *models.WaterServiceRequest) (uuid.UUID, error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	now := time.Now()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = request.CreatedAt
	if request.ServiceRequestDate.IsZero() {
		request.ServiceRequestDate = now
	}
	if request.Status == "" {
		request.Status = models.StatusNew
	}
	if request.Metadata == nil {
		request.Metadata = utils.JSONMap{}
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		waterServiceRequestTable, strings.Join(requestColumns, ", "), namedPlaceholders(requestColumns))

	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert water service request: %w", err)
	}
	return request.ID, nil
}

func (r *WaterServiceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WaterServiceRequest, error) {
	var request models.WaterServiceRequest
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, strings.Join(requestColumns, ", "), waterServiceRequestTable)

	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get water service request %s: %w", id, err)
	}
	return &request, nil
}

// List returns the newest requests first, optionally filtered by status. The
// limit is clamped to DefaultListLimit.
func (r *WaterServiceRequestRepository) List(ctx context.Context, filter models.RequestListFilter) ([]models.WaterServiceRequestSummary, error) {
	limit := filter.Limit
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	var (
		where string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC LIMIT $%d`,
		strings.Join(summaryColumns, ", "), waterServiceRequestTable, where, len(args))

	requests := []models.WaterServiceRequestSummary{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list water service requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus overwrites the status with no transition check.
func (r *WaterServiceRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown request status %q", status)
	}

	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3`, waterServiceRequestTable)
	err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecUpdate, status, time.Now(), id)
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update status of %s: %w", id, err)
	}
	return nil
}

// Delete removes the row only; stored documents are left in place.
func (r *WaterServiceRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, waterServiceRequestTable)
	err := utils.ExecWithCheck(ctx, r.db, query, utils.ExecDelete, id)
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete water service request %s: %w", id, err)
	}
	return nil
}

func (r *WaterServiceRequestRepository) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_requests,
			COUNT(*) FILTER (WHERE status = 'new') AS new_requests,
			COUNT(*) FILTER (WHERE status IN ('pending_documents', 'pending_landlord_verification', 'pending_credit_check')) AS pending_verification,
			COUNT(*) FILTER (WHERE status = 'pending_deposit') AS pending_deposits,
			COUNT(*) FILTER (WHERE status = 'scheduled_activation') AS scheduled_activations,
			COUNT(*) FILTER (WHERE status = 'active') AS active_accounts,
			COUNT(*) FILTER (WHERE status = 'completed' AND updated_at >= date_trunc('month', NOW())) AS completed_this_month,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM water_service_requests
	`

	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}

func (r *WaterServiceRequestRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	query := fmt.Sprintf(`SELECT status, COUNT(*) AS count FROM %s GROUP BY status ORDER BY status`, waterServiceRequestTable)

	counts := []models.StatusCount{}
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	return counts, nil
}

// TableExists reports whether the requests table has been created.
func (r *WaterServiceRequestRepository) TableExists(ctx context.Context) (bool, error) {
	var exists bool
	query := `SELECT to_regclass('public.water_service_requests') IS NOT NULL`
	if err := r.db.GetContext(ctx, &exists, query); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}
