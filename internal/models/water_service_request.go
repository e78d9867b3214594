package models

import (
	"time"

	"water-service/shared/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WaterServiceRequest is one row of water_service_requests. Only the last four
// digits of any SSN are ever held here.
type WaterServiceRequest struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
	Status    RequestStatus `json:"status" db:"status"`

	ServiceRequestDate time.Time  `json:"service_request_date" db:"service_request_date"`
	ServiceStartDate   *time.Time `json:"service_start_date" db:"service_start_date"`
	ServiceStopDate    *time.Time `json:"service_stop_date" db:"service_stop_date"`

	// Primary applicant
	ApplicantName                 string     `json:"applicant_name" db:"applicant_name"`
	ApplicantEmail                string     `json:"applicant_email" db:"applicant_email"`
	ApplicantPhone                string     `json:"applicant_phone" db:"applicant_phone"`
	ApplicantAlternatePhone       *string    `json:"applicant_alternate_phone" db:"applicant_alternate_phone"`
	ApplicantWorkPhone            *string    `json:"applicant_work_phone" db:"applicant_work_phone"`
	ApplicantDriversLicenseNumber *string    `json:"applicant_drivers_license_number" db:"applicant_drivers_license_number"`
	ApplicantDriversLicenseState  *string    `json:"applicant_drivers_license_state" db:"applicant_drivers_license_state"`
	ApplicantDateOfBirth          *time.Time `json:"applicant_date_of_birth" db:"applicant_date_of_birth"`
	ApplicantSSNLast4             *string    `json:"applicant_ssn_last4" db:"applicant_ssn_last4"`
	ApplicantSignatureImagePath   *string    `json:"applicant_signature_image_path" db:"applicant_signature_image_path"`
	ApplicantSignatureTimestamp   *time.Time `json:"applicant_signature_timestamp" db:"applicant_signature_timestamp"`
	ApplicantIPAddress            *string    `json:"applicant_ip_address" db:"applicant_ip_address"`
	ApplicantUserAgent            *string    `json:"applicant_user_agent" db:"applicant_user_agent"`

	// Co-applicant
	HasCoApplicant                  bool       `json:"has_co_applicant" db:"has_co_applicant"`
	CoApplicantName                 *string    `json:"co_applicant_name" db:"co_applicant_name"`
	CoApplicantEmail                *string    `json:"co_applicant_email" db:"co_applicant_email"`
	CoApplicantPhone                *string    `json:"co_applicant_phone" db:"co_applicant_phone"`
	CoApplicantAlternatePhone       *string    `json:"co_applicant_alternate_phone" db:"co_applicant_alternate_phone"`
	CoApplicantWorkPhone            *string    `json:"co_applicant_work_phone" db:"co_applicant_work_phone"`
	CoApplicantDriversLicenseNumber *string    `json:"co_applicant_drivers_license_number" db:"co_applicant_drivers_license_number"`
	CoApplicantDriversLicenseState  *string    `json:"co_applicant_drivers_license_state" db:"co_applicant_drivers_license_state"`
	CoApplicantDateOfBirth          *time.Time `json:"co_applicant_date_of_birth" db:"co_applicant_date_of_birth"`
	CoApplicantSSNLast4             *string    `json:"co_applicant_ssn_last4" db:"co_applicant_ssn_last4"`
	CoApplicantSignatureImagePath   *string    `json:"co_applicant_signature_image_path" db:"co_applicant_signature_image_path"`
	CoApplicantSignatureTimestamp   *time.Time `json:"co_applicant_signature_timestamp" db:"co_applicant_signature_timestamp"`

	// Addresses
	ServiceAddress              string  `json:"service_address" db:"service_address"`
	ServiceCity                 *string `json:"service_city" db:"service_city"`
	ServiceState                *string `json:"service_state" db:"service_state"`
	ServicePostalCode           *string `json:"service_postal_code" db:"service_postal_code"`
	MailingAddressSameAsService bool    `json:"mailing_address_same_as_service" db:"mailing_address_same_as_service"`
	MailingAddress              *string `json:"mailing_address" db:"mailing_address"`
	MailingCity                 *string `json:"mailing_city" db:"mailing_city"`
	MailingState                *string `json:"mailing_state" db:"mailing_state"`
	MailingPostalCode           *string `json:"mailing_postal_code" db:"mailing_postal_code"`

	// Property
	PropertyUseType          PropertyUseType   `json:"property_use_type" db:"property_use_type"`
	ServiceTerritory         *ServiceTerritory `json:"service_territory" db:"service_territory"`
	LandlordName             *string           `json:"landlord_name" db:"landlord_name"`
	LandlordPhone            *string           `json:"landlord_phone" db:"landlord_phone"`
	LandlordVerified         bool              `json:"landlord_verified" db:"landlord_verified"`
	LandlordVerificationDate *time.Time        `json:"landlord_verification_date" db:"landlord_verification_date"`

	// Documents
	LeaseDocumentPath         *string    `json:"lease_document_path" db:"lease_document_path"`
	LeaseDocumentOriginalName *string    `json:"lease_document_original_name" db:"lease_document_original_name"`
	LeaseDocumentUploadedAt   *time.Time `json:"lease_document_uploaded_at" db:"lease_document_uploaded_at"`
	DeedDocumentPath          *string    `json:"deed_document_path" db:"deed_document_path"`
	DeedDocumentOriginalName  *string    `json:"deed_document_original_name" db:"deed_document_original_name"`
	DeedDocumentUploadedAt    *time.Time `json:"deed_document_uploaded_at" db:"deed_document_uploaded_at"`

	// Sanitation and property features
	TrashCartsNeeded   int                `json:"trash_carts_needed" db:"trash_carts_needed"`
	RecycleCartsNeeded int                `json:"recycle_carts_needed" db:"recycle_carts_needed"`
	HasSprinklerSystem bool               `json:"has_sprinkler_system" db:"has_sprinkler_system"`
	HasPool            bool               `json:"has_pool" db:"has_pool"`
	BillTypePreference BillTypePreference `json:"bill_type_preference" db:"bill_type_preference"`

	// Account and financial
	AccountNumber         *string             `json:"account_number" db:"account_number"`
	CreditCheckPerformed  bool                `json:"credit_check_performed" db:"credit_check_performed"`
	CreditCheckScore      *int                `json:"credit_check_score" db:"credit_check_score"`
	DepositAmountRequired decimal.NullDecimal `json:"deposit_amount_required" db:"deposit_amount_required"`
	DepositPaid           bool                `json:"deposit_paid" db:"deposit_paid"`
	DepositPaidDate       *time.Time          `json:"deposit_paid_date" db:"deposit_paid_date"`

	// Legal
	AcknowledgedServiceTerms          bool       `json:"acknowledged_service_terms" db:"acknowledged_service_terms"`
	AcknowledgedServiceTermsTimestamp *time.Time `json:"acknowledged_service_terms_timestamp" db:"acknowledged_service_terms_timestamp"`

	StaffNotes *string       `json:"staff_notes" db:"staff_notes"`
	Metadata   utils.JSONMap `json:"metadata" db:"metadata"`
}

// WaterServiceRequestSummary is the admin list projection.
type WaterServiceRequestSummary struct {
	ID                    uuid.UUID           `json:"id" db:"id"`
	CreatedAt             time.Time           `json:"created_at" db:"created_at"`
	Status                RequestStatus       `json:"status" db:"status"`
	ApplicantName         string              `json:"applicant_name" db:"applicant_name"`
	ApplicantEmail        string              `json:"applicant_email" db:"applicant_email"`
	ApplicantPhone        string              `json:"applicant_phone" db:"applicant_phone"`
	ServiceAddress        string              `json:"service_address" db:"service_address"`
	PropertyUseType       PropertyUseType     `json:"property_use_type" db:"property_use_type"`
	DepositAmountRequired decimal.NullDecimal `json:"deposit_amount_required" db:"deposit_amount_required"`
	DepositPaid           bool                `json:"deposit_paid" db:"deposit_paid"`
}

type DashboardStats struct {
	TotalRequests        int `json:"total_requests" db:"total_requests"`
	NewRequests          int `json:"new_requests" db:"new_requests"`
	PendingVerification  int `json:"pending_verification" db:"pending_verification"`
	PendingDeposits      int `json:"pending_deposits" db:"pending_deposits"`
	ScheduledActivations int `json:"scheduled_activations" db:"scheduled_activations"`
	ActiveAccounts       int `json:"active_accounts" db:"active_accounts"`
	CompletedThisMonth   int `json:"completed_this_month" db:"completed_this_month"`
	Cancelled            int `json:"cancelled" db:"cancelled"`
}

type StatusCount struct {
	Status RequestStatus `json:"status" db:"status"`
	Count  int           `json:"count" db:"count"`
}
