package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"water-service/internal/models"
	"water-service/shared/utils"

	"github.com/shopspring/decimal"
)

// DefaultCartCount is used when the form leaves a cart field blank. An explicit
// "0" is honoured.
const DefaultCartCount = 1

// AssemblyInput is everything needed to build a record besides the database id.
type AssemblyInput struct {
	Form       models.SubmissionForm
	Rate       models.RateCalculation
	Deposit    decimal.Decimal
	Lease      models.DocumentRef
	Deed       models.DocumentRef
	Submission models.SubmissionContext
	Now        time.Time
}

func ParseCartCount(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultCartCount, nil
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("cart count must be a whole number")
	}
	if !utils.ValidateCartCount(count) {
		return 0, fmt.Errorf("cart count must be between %d and %d", utils.MinCartCount, utils.MaxCartCount)
	}
	return count, nil
}

// ============================================================================
// VALIDATION
// ============================================================================

type fieldErrors []utils.ValidationError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, utils.ValidationError{Field: field, Message: message})
}

func (f *fieldErrors) check(field string, result utils.ValidationResult) {
	if !result.Valid {
		f.add(field, result.Message)
	}
}

func (f *fieldErrors) required(field, value, message string) bool {
	if strings.TrimSpace(value) == "" {
		f.add(field, message)
		return false
	}
	return true
}

func (f *fieldErrors) optionalPhone(field, value string) {
	if strings.TrimSpace(value) != "" {
		f.check(field, utils.ValidatePhoneDetailed(value))
	}
}

func (f *fieldErrors) optionalState(field, value string) {
	if strings.TrimSpace(value) != "" && !utils.ValidateStateCode(value) {
		f.add(field, "Please select a valid state")
	}
}

func (f *fieldErrors) identity(prefix, dob, ssn, license, licenseState string) {
	if strings.TrimSpace(dob) != "" {
		f.check(prefix+"_date_of_birth", utils.ValidateDateOfBirthDetailed(dob))
	}
	f.check(prefix+"_ssn", utils.ValidateSSNDetailed(ssn))
	if strings.TrimSpace(license) != "" {
		f.check(prefix+"_drivers_license_number", utils.ValidateDriversLicense(license, licenseState))
	}
	f.optionalState(prefix+"_drivers_license_state", licenseState)
}

// ValidateSubmission applies the input-time rules, including the conditional
// ones that depend on property use and the co-applicant flag. files holds the
// documents that actually arrived with the form.
func ValidateSubmission(form models.SubmissionForm, files []models.UploadedFile) []utils.ValidationError {
	var errs fieldErrors

	// Contact
	errs.check("applicant_name", utils.ValidateName(form.ApplicantName))
	errs.check("applicant_email", utils.ValidateEmailDetailed(form.ApplicantEmail))
	errs.check("applicant_phone", utils.ValidatePhoneDetailed(form.ApplicantPhone))
	errs.optionalPhone("applicant_alternate_phone", form.ApplicantAlternatePhone)
	errs.optionalPhone("applicant_work_phone", form.ApplicantWorkPhone)
	if pref := strings.TrimSpace(form.BillTypePreference); pref != "" && !models.BillTypePreference(pref).IsValid() {
		errs.add("bill_type_preference", "Please choose mail, email, or both")
	}

	// Addresses and dates
	errs.check("service_address", utils.ValidateAddress(form.ServiceAddress))
	errs.check("service_city", utils.ValidateCity(form.ServiceCity))
	errs.optionalState("service_state", form.ServiceState)
	errs.check("service_postal_code", utils.ValidatePostalCodeDetailed(form.ServicePostalCode))
	if !models.FormBool(form.MailingAddressSameAsService) {
		if errs.required("mailing_address", form.MailingAddress, "Mailing address is required") {
			errs.check("mailing_address", utils.ValidateAddress(form.MailingAddress))
		}
		errs.check("mailing_city", utils.ValidateCity(form.MailingCity))
		errs.optionalState("mailing_state", form.MailingState)
		errs.check("mailing_postal_code", utils.ValidatePostalCodeDetailed(form.MailingPostalCode))
	}
	if strings.TrimSpace(form.ServiceStartDate) != "" {
		errs.check("service_start_date", utils.ValidateServiceStartDate(form.ServiceStartDate))
	}
	errs.check("service_stop_date", utils.ValidateServiceDates(form.ServiceStartDate, form.ServiceStopDate))

	// Property and services
	use := models.PropertyUseType(strings.TrimSpace(form.PropertyUseType))
	if use == "" {
		errs.add("property_use_type", "Please select how the property will be used")
	} else if !use.IsValid() {
		errs.add("property_use_type", "Property use must be rent, owner_occupied, or owner_leasing")
	}
	if territory := strings.TrimSpace(form.ServiceTerritory); territory != "" && !models.ServiceTerritory(territory).IsValid() {
		errs.add("service_territory", "Service territory must be inside or outside city limits")
	}
	if _, err := ParseCartCount(form.TrashCartsNeeded); err != nil {
		errs.add("trash_carts_needed", err.Error())
	}
	if _, err := ParseCartCount(form.RecycleCartsNeeded); err != nil {
		errs.add("recycle_carts_needed", err.Error())
	}

	provided := map[models.DocumentKind]bool{}
	for _, file := range files {
		field := string(file.Kind) + "_document"
		if result := utils.ValidateFileUpload(file.Filename, file.Size, file.ContentType); !result.Valid {
			errs.add(field, result.Message)
			continue
		}
		provided[file.Kind] = true
	}

	if use.RequiresLease() {
		if errs.required("landlord_name", form.LandlordName, "Landlord name is required when renting") {
			errs.check("landlord_name", utils.ValidateName(form.LandlordName))
		}
		if errs.required("landlord_phone", form.LandlordPhone, "Landlord phone is required when renting") {
			errs.check("landlord_phone", utils.ValidatePhoneDetailed(form.LandlordPhone))
		}
		if !provided[models.DocumentLease] {
			errs.add("lease_document", "A copy of the lease is required when renting")
		}
	}
	if use.RequiresDeed() && !provided[models.DocumentDeed] {
		errs.add("deed_document", "A copy of the deed is required for owners")
	}

	// Identity
	errs.identity("applicant", form.ApplicantDateOfBirth, form.ApplicantSSN,
		form.ApplicantDriversLicenseNumber, form.ApplicantDriversLicenseState)

	if models.FormBool(form.HasCoApplicant) {
		errs.check("co_applicant_name", utils.ValidateName(form.CoApplicantName))
		errs.check("co_applicant_email", utils.ValidateEmailDetailed(form.CoApplicantEmail))
		errs.check("co_applicant_phone", utils.ValidatePhoneDetailed(form.CoApplicantPhone))
		errs.optionalPhone("co_applicant_alternate_phone", form.CoApplicantAlternatePhone)
		errs.optionalPhone("co_applicant_work_phone", form.CoApplicantWorkPhone)
		errs.identity("co_applicant", form.CoApplicantDateOfBirth, form.CoApplicantSSN,
			form.CoApplicantDriversLicenseNumber, form.CoApplicantDriversLicenseState)
	}

	// Review and signature
	if !models.FormBool(form.AcknowledgedServiceTerms) {
		errs.add("acknowledged_service_terms", "You must acknowledge the service terms")
	}
	errs.required("applicant_signature", form.ApplicantSignature, "Signature is required")

	return errs
}

// ============================================================================
// ASSEMBLY
// ============================================================================

func optionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	date, err := utils.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func optionalPhone(value string) *string {
	return utils.NilIfEmpty(utils.FormatPhoneForStorage(value))
}

func optionalText(value string) *string {
	return utils.NilIfEmpty(utils.SanitizeInput(value))
}

func optionalUpper(value string) *string {
	return utils.NilIfEmpty(strings.ToUpper(value))
}

func timestampIf(ok bool, now time.Time) *time.Time {
	if !ok {
		return nil
	}
	return &now
}

// AssembleRequestRecord maps a validated form plus calculator output and
// upload outcomes into a record ready for insertion. It performs no I/O.
func AssembleRequestRecord(in AssemblyInput) (*models.WaterServiceRequest, error) {
	form := utils.TrimAllStringFields(in.Form).(models.SubmissionForm)
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	trashCarts, err := ParseCartCount(form.TrashCartsNeeded)
	if err != nil {
		return nil, fmt.Errorf("trash_carts_needed: %w", err)
	}
	recycleCarts, err := ParseCartCount(form.RecycleCartsNeeded)
	if err != nil {
		return nil, fmt.Errorf("recycle_carts_needed: %w", err)
	}

	dates := map[string]*time.Time{}
	for field, raw := range map[string]string{
		"service_start_date":         form.ServiceStartDate,
		"service_stop_date":          form.ServiceStopDate,
		"applicant_date_of_birth":    form.ApplicantDateOfBirth,
		"co_applicant_date_of_birth": form.CoApplicantDateOfBirth,
	} {
		parsed, err := optionalDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		dates[field] = parsed
	}

	billPref := models.BillTypePreference(form.BillTypePreference)
	if billPref == "" {
		billPref = models.BillByMail
	}

	var territory *models.ServiceTerritory
	if form.ServiceTerritory != "" {
		t := models.ServiceTerritory(form.ServiceTerritory)
		territory = &t
	}

	userAgent := form.UserAgent
	if userAgent == "" {
		userAgent = in.Submission.UserAgent
	}

	hasCoApplicant := models.FormBool(form.HasCoApplicant)
	sameAsService := models.FormBool(form.MailingAddressSameAsService)

	record := &models.WaterServiceRequest{
		CreatedAt:          now,
		UpdatedAt:          now,
		Status:             models.StatusNew,
		ServiceRequestDate: now,
		ServiceStartDate:   dates["service_start_date"],
		ServiceStopDate:    dates["service_stop_date"],

		ApplicantName:                 utils.SanitizeInput(form.ApplicantName),
		ApplicantEmail:                strings.ToLower(form.ApplicantEmail),
		ApplicantPhone:                utils.FormatPhoneForStorage(form.ApplicantPhone),
		ApplicantAlternatePhone:       optionalPhone(form.ApplicantAlternatePhone),
		ApplicantWorkPhone:            optionalPhone(form.ApplicantWorkPhone),
		ApplicantDriversLicenseNumber: optionalUpper(form.ApplicantDriversLicenseNumber),
		ApplicantDriversLicenseState:  optionalUpper(form.ApplicantDriversLicenseState),
		ApplicantDateOfBirth:          dates["applicant_date_of_birth"],
		ApplicantSSNLast4:             utils.NilIfEmpty(utils.SSNLast4(form.ApplicantSSN)),
		ApplicantSignatureTimestamp:   timestampIf(form.ApplicantSignature != "", now),
		ApplicantIPAddress:            utils.NilIfEmpty(in.Submission.ClientIP),
		ApplicantUserAgent:            utils.NilIfEmpty(userAgent),

		HasCoApplicant: hasCoApplicant,

		ServiceAddress:              utils.SanitizeInput(form.ServiceAddress),
		ServiceCity:                 optionalText(form.ServiceCity),
		ServiceState:                optionalUpper(form.ServiceState),
		ServicePostalCode:           utils.NilIfEmpty(form.ServicePostalCode),
		MailingAddressSameAsService: sameAsService,

		PropertyUseType:  models.PropertyUseType(form.PropertyUseType),
		ServiceTerritory: territory,
		LandlordName:     optionalText(form.LandlordName),
		LandlordPhone:    optionalPhone(form.LandlordPhone),

		LeaseDocumentPath:         in.Lease.Path,
		LeaseDocumentOriginalName: in.Lease.OriginalName,
		LeaseDocumentUploadedAt:   timestampIf(in.Lease.Path != nil, now),
		DeedDocumentPath:          in.Deed.Path,
		DeedDocumentOriginalName:  in.Deed.OriginalName,
		DeedDocumentUploadedAt:    timestampIf(in.Deed.Path != nil, now),

		TrashCartsNeeded:   trashCarts,
		RecycleCartsNeeded: recycleCarts,
		HasSprinklerSystem: models.FormBool(form.HasSprinklerSystem),
		HasPool:            models.FormBool(form.HasPool),
		BillTypePreference: billPref,

		DepositAmountRequired: decimal.NewNullDecimal(in.Deposit.Round(2)),

		AcknowledgedServiceTerms:          models.FormBool(form.AcknowledgedServiceTerms),
		AcknowledgedServiceTermsTimestamp: &now,
	}

	if !sameAsService {
		record.MailingAddress = optionalText(form.MailingAddress)
		record.MailingCity = optionalText(form.MailingCity)
		record.MailingState = optionalUpper(form.MailingState)
		record.MailingPostalCode = utils.NilIfEmpty(form.MailingPostalCode)
	}

	if hasCoApplicant {
		record.CoApplicantName = optionalText(form.CoApplicantName)
		record.CoApplicantEmail = utils.NilIfEmpty(strings.ToLower(form.CoApplicantEmail))
		record.CoApplicantPhone = optionalPhone(form.CoApplicantPhone)
		record.CoApplicantAlternatePhone = optionalPhone(form.CoApplicantAlternatePhone)
		record.CoApplicantWorkPhone = optionalPhone(form.CoApplicantWorkPhone)
		record.CoApplicantDriversLicenseNumber = optionalUpper(form.CoApplicantDriversLicenseNumber)
		record.CoApplicantDriversLicenseState = optionalUpper(form.CoApplicantDriversLicenseState)
		record.CoApplicantDateOfBirth = dates["co_applicant_date_of_birth"]
		record.CoApplicantSSNLast4 = utils.NilIfEmpty(utils.SSNLast4(form.CoApplicantSSN))
		record.CoApplicantSignatureTimestamp = timestampIf(form.CoApplicantSignature != "", now)
	}

	record.Metadata = utils.JSONMap{
		"monthly_rate_calculation": in.Rate,
		"submission_source":        models.SubmissionSourceWebForm,
		"user_agent":               utils.NilIfEmpty(form.UserAgent),
		"applicant_signature":      utils.SanitizeInput(form.ApplicantSignature),
	}
	if hasCoApplicant && form.CoApplicantSignature != "" {
		record.Metadata["co_applicant_signature"] = utils.SanitizeInput(form.CoApplicantSignature)
	}

	return record, nil
}
