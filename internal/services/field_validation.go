package services

import (
	"strings"

	"water-service/internal/models"
	"water-service/shared/utils"
)

type fieldRule struct {
	validate func(value, state string) utils.ValidationResult
	format   func(value string) string
}

func ignoreState(fn func(string) utils.ValidationResult) func(string, string) utils.ValidationResult {
	return func(value, _ string) utils.ValidationResult { return fn(value) }
}

var (
	phoneRule   = fieldRule{validate: ignoreState(utils.ValidatePhoneDetailed), format: utils.FormatPhoneInput}
	emailRule   = fieldRule{validate: ignoreState(utils.ValidateEmailDetailed)}
	ssnRule     = fieldRule{validate: ignoreState(utils.ValidateSSNDetailed), format: utils.FormatSSNInput}
	zipRule     = fieldRule{validate: ignoreState(utils.ValidatePostalCodeDetailed), format: utils.FormatZipCodeInput}
	dobRule     = fieldRule{validate: ignoreState(utils.ValidateDateOfBirthDetailed)}
	nameRule    = fieldRule{validate: ignoreState(utils.ValidateName)}
	addressRule = fieldRule{validate: ignoreState(utils.ValidateAddress)}
	licenseRule = fieldRule{validate: utils.ValidateDriversLicense}
)

var fieldRules = map[string]fieldRule{
	"applicant_phone":                     phoneRule,
	"applicant_alternate_phone":           phoneRule,
	"applicant_work_phone":                phoneRule,
	"co_applicant_phone":                  phoneRule,
	"co_applicant_alternate_phone":        phoneRule,
	"co_applicant_work_phone":             phoneRule,
	"landlord_phone":                      phoneRule,
	"applicant_email":                     emailRule,
	"co_applicant_email":                  emailRule,
	"applicant_ssn":                       ssnRule,
	"co_applicant_ssn":                    ssnRule,
	"service_postal_code":                 zipRule,
	"mailing_postal_code":                 zipRule,
	"applicant_date_of_birth":             dobRule,
	"co_applicant_date_of_birth":          dobRule,
	"applicant_name":                      nameRule,
	"co_applicant_name":                   nameRule,
	"landlord_name":                       nameRule,
	"service_address":                     addressRule,
	"mailing_address":                     addressRule,
	"applicant_drivers_license_number":    licenseRule,
	"co_applicant_drivers_license_number": licenseRule,
	"service_start_date":                  {validate: ignoreState(utils.ValidateServiceStartDate)},
}

// ValidateField checks a single form field for real-time feedback and returns
// the value reshaped for display where a formatter exists.
func ValidateField(req models.FieldValidationRequest) models.FieldValidationResponse {
	field := strings.TrimSpace(req.Field)
	rule, ok := fieldRules[field]
	if !ok {
		return models.FieldValidationResponse{Field: field, Valid: false, Message: "Unsupported field"}
	}

	result := rule.validate(req.Value, req.State)
	resp := models.FieldValidationResponse{
		Field:      field,
		Valid:      result.Valid,
		Message:    result.Message,
		Suggestion: result.Suggestion,
	}
	if rule.format != nil {
		resp.Formatted = rule.format(req.Value)
	}
	return resp
}
