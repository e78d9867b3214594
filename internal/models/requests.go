package models

import (
	"io"
	"strings"
)

// SubmissionForm holds the raw multipart values of the sign-up form. Booleans
// arrive as "true"/"false" and cart counts as decimal strings.
type SubmissionForm struct {
	ServiceStartDate string `form:"service_start_date"`
	ServiceStopDate  string `form:"service_stop_date"`

	ApplicantName                 string `form:"applicant_name"`
	ApplicantEmail                string `form:"applicant_email"`
	ApplicantPhone                string `form:"applicant_phone"`
	ApplicantAlternatePhone       string `form:"applicant_alternate_phone"`
	ApplicantWorkPhone            string `form:"applicant_work_phone"`
	ApplicantDriversLicenseNumber string `form:"applicant_drivers_license_number"`
	ApplicantDriversLicenseState  string `form:"applicant_drivers_license_state"`
	ApplicantDateOfBirth          string `form:"applicant_date_of_birth"`
	ApplicantSSN                  string `form:"applicant_ssn"`
	BillTypePreference            string `form:"bill_type_preference"`

	HasCoApplicant                  string `form:"has_co_applicant"`
	CoApplicantName                 string `form:"co_applicant_name"`
	CoApplicantEmail                string `form:"co_applicant_email"`
	CoApplicantPhone                string `form:"co_applicant_phone"`
	CoApplicantAlternatePhone       string `form:"co_applicant_alternate_phone"`
	CoApplicantWorkPhone            string `form:"co_applicant_work_phone"`
	CoApplicantDriversLicenseNumber string `form:"co_applicant_drivers_license_number"`
	CoApplicantDriversLicenseState  string `form:"co_applicant_drivers_license_state"`
	CoApplicantDateOfBirth          string `form:"co_applicant_date_of_birth"`
	CoApplicantSSN                  string `form:"co_applicant_ssn"`

	ServiceAddress              string `form:"service_address"`
	ServiceCity                 string `form:"service_city"`
	ServiceState                string `form:"service_state"`
	ServicePostalCode           string `form:"service_postal_code"`
	MailingAddressSameAsService string `form:"mailing_address_same_as_service"`
	MailingAddress              string `form:"mailing_address"`
	MailingCity                 string `form:"mailing_city"`
	MailingState                string `form:"mailing_state"`
	MailingPostalCode           string `form:"mailing_postal_code"`

	PropertyUseType    string `form:"property_use_type"`
	ServiceTerritory   string `form:"service_territory"`
	LandlordName       string `form:"landlord_name"`
	LandlordPhone      string `form:"landlord_phone"`
	TrashCartsNeeded   string `form:"trash_carts_needed"`
	RecycleCartsNeeded string `form:"recycle_carts_needed"`
	HasSprinklerSystem string `form:"has_sprinkler_system"`
	HasPool            string `form:"has_pool"`

	AcknowledgedServiceTerms string `form:"acknowledged_service_terms"`
	ApplicantSignature       string `form:"applicant_signature"`
	CoApplicantSignature     string `form:"co_applicant_signature"`
	UserAgent                string `form:"user_agent"`
}

// FormBool mirrors the form's convention: only the literal "true" is true.
func FormBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// UploadedFile is a document received with the form, before it is stored.
type UploadedFile struct {
	Kind        DocumentKind
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// SubmissionContext carries request facts that are not part of the form body.
type SubmissionContext struct {
	ClientIP  string
	UserAgent string
}

// DocumentRef is the outcome of one upload attempt. Path is nil when the
// upload was skipped or failed.
type DocumentRef struct {
	Path         *string
	OriginalName *string
}

type SubmissionResult struct {
	ID              string          `json:"id"`
	Status          RequestStatus   `json:"status"`
	DepositRequired string          `json:"deposit_required"`
	MonthlyEstimate RateCalculation `json:"monthly_estimate"`
	DocumentsStored []DocumentKind  `json:"documents_stored"`
}

type UpdateStatusRequest struct {
	Status RequestStatus `json:"status" binding:"required"`
}

type LoginRequest struct {
	Username   string `json:"username" form:"username" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
	RedirectTo string `json:"redirect_to" form:"redirect_to"`
}

type RequestListFilter struct {
	Status *RequestStatus
	Limit  int
}

type RateEstimateQuery struct {
	ServiceTerritory   string `form:"service_territory"`
	TrashCartsNeeded   string `form:"trash_carts_needed"`
	RecycleCartsNeeded string `form:"recycle_carts_needed"`
	HasPool            string `form:"has_pool"`
	HasSprinklerSystem string `form:"has_sprinkler_system"`
}

type DepositEstimateQuery struct {
	PropertyUseType  string `form:"property_use_type"`
	ServiceTerritory string `form:"service_territory"`
	CreditScore      *int   `form:"credit_score"`
}

type FieldValidationRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
	State string `json:"state"`
}

type FieldValidationResponse struct {
	Field      string `json:"field"`
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Formatted  string `json:"formatted,omitempty"`
}
