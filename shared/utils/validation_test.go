package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// PHONE
// ============================================================================

func TestValidatePhoneDetailed_AcceptsValidNumber(t *testing.T) {
	result := ValidatePhoneDetailed("5551234567")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Message)
}

func TestValidatePhoneDetailed_AcceptsPunctuation(t *testing.T) {
	assert.True(t, ValidatePhoneDetailed("(555) 123-4567").Valid)
	assert.True(t, ValidatePhoneDetailed("555.123.4567").Valid)
}

func TestValidatePhoneDetailed_RejectsAreaCodeStartingWithZeroOrOne(t *testing.T) {
	result := ValidatePhoneDetailed("0551234567")
	assert.False(t, result.Valid)
	assert.Equal(t, "Area code cannot start with 0 or 1", result.Message)

	assert.False(t, ValidatePhoneDetailed("1551234567").Valid)
}

func TestValidatePhoneDetailed_RejectsExchangeStartingWithZero(t *testing.T) {
	result := ValidatePhoneDetailed("5550123456")
	assert.False(t, result.Valid)
	assert.Equal(t, "Exchange code cannot start with 0", result.Message)
}

func TestValidatePhoneDetailed_AcceptsExchangeStartingWithOne(t *testing.T) {
	for _, phone := range []string{"5551234567", "(555) 123-4567", "555.112.3456"} {
		assert.True(t, ValidatePhoneDetailed(phone).Valid, phone)
	}
}

func TestValidatePhoneDetailed_RejectsWrongLength(t *testing.T) {
	assert.False(t, ValidatePhoneDetailed("555123456").Valid)
	assert.False(t, ValidatePhoneDetailed("15551234567").Valid)
	assert.False(t, ValidatePhoneDetailed("").Valid)
}

func TestFormatPhoneInput_Partial(t *testing.T) {
	assert.Equal(t, "555", FormatPhoneInput("555"))
	assert.Equal(t, "(555) 123", FormatPhoneInput("555123"))
	assert.Equal(t, "(555) 123-4", FormatPhoneInput("5551234"))
	assert.Equal(t, "(555) 123-4567", FormatPhoneInput("5551234567"))
}

func TestFormatPhoneInput_Idempotent(t *testing.T) {
	inputs := []string{"5", "555", "555123", "5551234", "5551234567", "555-123-4567"}
	for _, in := range inputs {
		once := FormatPhoneInput(in)
		assert.Equal(t, once, FormatPhoneInput(once), "formatting %q twice should be a no-op", in)
	}
	assert.Equal(t, "(555) 123-4567", FormatPhoneInput("(555) 123-4567"))
}

func TestFormatPhoneInput_TooManyDigitsReturnsInput(t *testing.T) {
	for _, in := range []string{"+1 (555) 123-4567", "15551234567", "555123456789"} {
		assert.Equal(t, in, FormatPhoneInput(in))
	}
}

func TestFormatPhoneInput_NoDigitsReturnsInput(t *testing.T) {
	assert.Equal(t, "", FormatPhoneInput(""))
	assert.Equal(t, "abc", FormatPhoneInput("abc"))
	assert.Equal(t, "(", FormatPhoneInput("("))
}

func TestFormatPhoneForStorageAndDisplay(t *testing.T) {
	assert.Equal(t, "5551234567", FormatPhoneForStorage("(555) 123-4567"))
	assert.Equal(t, "(555) 123-4567", FormatPhoneForDisplay("5551234567"))
	assert.Equal(t, "12345", FormatPhoneForDisplay("12345"))
}

// ============================================================================
// EMAIL
// ============================================================================

func TestValidateEmailDetailed_Valid(t *testing.T) {
	result := ValidateEmailDetailed("resident@example.com")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Suggestion)
}

func TestValidateEmailDetailed_Invalid(t *testing.T) {
	for _, email := range []string{"", "plainaddress", "@example.com", "user@", "user@@example.com", "user@.com"} {
		assert.False(t, ValidateEmailDetailed(email).Valid, "expected %q to be rejected", email)
	}
}

func TestValidateEmailDetailed_LengthLimits(t *testing.T) {
	local := strings.Repeat("a", 65)
	result := ValidateEmailDetailed(local + "@example.com")
	assert.False(t, result.Valid)
	assert.Equal(t, "The part before @ cannot exceed 64 characters", result.Message)

	assert.True(t, ValidateEmailDetailed(strings.Repeat("a", 64)+"@example.com").Valid)

	domain := strings.Repeat("b", 63) + "." + strings.Repeat("c", 63) + "." + strings.Repeat("d", 63) + ".com"
	long := strings.Repeat("a", 64) + "@" + domain
	assert.Greater(t, len(long), 254)
	assert.False(t, ValidateEmailDetailed(long).Valid)
}

func TestValidateEmailDetailed_TypoDomainSuggestsCorrection(t *testing.T) {
	result := ValidateEmailDetailed("jane@gmial.com")
	assert.True(t, result.Valid, "typo domains are flagged, not rejected")
	assert.Equal(t, "jane@gmail.com", result.Suggestion)
	assert.Contains(t, result.Message, "jane@gmail.com")

	assert.Equal(t, "bob@hotmail.com", ValidateEmailDetailed("bob@HOTMIAL.com").Suggestion)
}

// ============================================================================
// SSN
// ============================================================================

func TestValidateSSNDetailed_Optional(t *testing.T) {
	assert.True(t, ValidateSSNDetailed("").Valid)
	assert.True(t, ValidateSSNDetailed("   ").Valid)
}

func TestValidateSSNDetailed_Accepts(t *testing.T) {
	assert.True(t, ValidateSSNDetailed("123456789").Valid)
	assert.True(t, ValidateSSNDetailed("123-45-6789").Valid)
}

func TestValidateSSNDetailed_Rejects(t *testing.T) {
	cases := map[string]string{
		"000123456": "SSN area number is not valid",
		"666123456": "SSN area number is not valid",
		"900123456": "SSN area number is not valid",
		"123004567": "SSN group number cannot be 00",
		"123450000": "SSN serial number cannot be 0000",
		"111111111": "SSN cannot be all the same digit",
		"12345678":  "SSN must be 9 digits",
		"abc":       "SSN must be 9 digits",
	}
	for ssn, message := range cases {
		result := ValidateSSNDetailed(ssn)
		assert.False(t, result.Valid, "expected %q to be rejected", ssn)
		assert.Equal(t, message, result.Message, ssn)
	}
}

func TestFormatSSNInput(t *testing.T) {
	assert.Equal(t, "123", FormatSSNInput("123"))
	assert.Equal(t, "123-45", FormatSSNInput("12345"))
	assert.Equal(t, "123-45-6789", FormatSSNInput("123456789"))
	assert.Equal(t, "123-45-6789", FormatSSNInput("123-45-6789"))
	assert.Equal(t, "xx", FormatSSNInput("xx"))
	assert.Equal(t, "1234567890", FormatSSNInput("1234567890"))
}

func TestSSNLast4AndMask(t *testing.T) {
	assert.Equal(t, "6789", SSNLast4("123-45-6789"))
	assert.Equal(t, "", SSNLast4("12"))
	assert.Equal(t, "***-**-6789", MaskSSN("123456789"))
	assert.Equal(t, "", MaskSSN(""))
	assert.Equal(t, "123-45-6789", FormatSSN("123456789"))
	assert.Equal(t, "1234", FormatSSN("1234"))
}

// ============================================================================
// ZIP / STATE
// ============================================================================

func TestValidatePostalCodeDetailed(t *testing.T) {
	assert.True(t, ValidatePostalCodeDetailed("").Valid)
	assert.True(t, ValidatePostalCodeDetailed("75001").Valid)
	assert.True(t, ValidatePostalCodeDetailed("75001-1234").Valid)
	assert.True(t, ValidatePostalCodeDetailed("750011234").Valid)
	assert.False(t, ValidatePostalCodeDetailed("7500").Valid)
	assert.False(t, ValidatePostalCodeDetailed("750012").Valid)
	assert.False(t, ValidatePostalCodeDetailed("7500A").Valid)
}

func TestFormatZipCodeInput(t *testing.T) {
	assert.Equal(t, "75001", FormatZipCodeInput("75001"))
	assert.Equal(t, "75001-12", FormatZipCodeInput("7500112"))
	assert.Equal(t, "75001-1234", FormatZipCodeInput("75001-1234"))
	assert.Equal(t, "-", FormatZipCodeInput("-"))
	assert.Equal(t, "75001-12345", FormatZipCodeInput("75001-12345"))
}

func TestValidateStateCode(t *testing.T) {
	assert.True(t, ValidateStateCode("TX"))
	assert.True(t, ValidateStateCode("dc"))
	assert.False(t, ValidateStateCode("XX"))
	assert.False(t, ValidateStateCode(""))
}

// ============================================================================
// DATES
// ============================================================================

var fixedNow = time.Date(2026, time.June, 15, 10, 30, 0, 0, time.UTC)

func TestValidateDateOfBirth_Adult(t *testing.T) {
	assert.True(t, validateDateOfBirthAt("1990-01-01", fixedNow).Valid)
}

func TestValidateDateOfBirth_Future(t *testing.T) {
	result := validateDateOfBirthAt("2026-06-16", fixedNow)
	assert.False(t, result.Valid)
	assert.Equal(t, "Date of birth cannot be in the future", result.Message)
}

func TestValidateDateOfBirth_CalendarAwareEighteenthBirthday(t *testing.T) {
	// turns 18 today
	assert.True(t, validateDateOfBirthAt("2008-06-15", fixedNow).Valid)
	// turns 18 tomorrow
	result := validateDateOfBirthAt("2008-06-16", fixedNow)
	assert.False(t, result.Valid)
	assert.Equal(t, "Applicant must be at least 18 years old", result.Message)
}

func TestValidateDateOfBirth_TooOld(t *testing.T) {
	assert.True(t, validateDateOfBirthAt("1905-06-16", fixedNow).Valid)
	assert.False(t, validateDateOfBirthAt("1905-06-15", fixedNow).Valid)
}

func TestValidateDateOfBirth_Malformed(t *testing.T) {
	assert.False(t, validateDateOfBirthAt("", fixedNow).Valid)
	assert.False(t, validateDateOfBirthAt("not-a-date", fixedNow).Valid)
	assert.True(t, validateDateOfBirthAt("01/02/1980", fixedNow).Valid)
}

func TestCalendarAge_LeapDay(t *testing.T) {
	birth := time.Date(2008, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, CalendarAge(birth, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, CalendarAge(birth, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestValidateServiceStartDate(t *testing.T) {
	assert.True(t, validateServiceStartDateAt("2026-06-15", fixedNow).Valid)
	assert.True(t, validateServiceStartDateAt("2026-07-01", fixedNow).Valid)
	assert.False(t, validateServiceStartDateAt("2026-06-14", fixedNow).Valid)
}

func TestValidateServiceDates(t *testing.T) {
	assert.True(t, ValidateServiceDates("", "2026-01-01").Valid)
	assert.True(t, ValidateServiceDates("2026-01-01", "").Valid)
	assert.True(t, ValidateServiceDates("2026-01-01", "2026-02-01").Valid)
	assert.False(t, ValidateServiceDates("2026-02-01", "2026-02-01").Valid)
	assert.False(t, ValidateServiceDates("2026-02-01", "2026-01-01").Valid)
}

// ============================================================================
// IDENTITY / TEXT
// ============================================================================

func TestValidateDriversLicense_StatePatterns(t *testing.T) {
	assert.True(t, ValidateDriversLicense("12345678", "TX").Valid)
	assert.False(t, ValidateDriversLicense("1234567", "TX").Valid)

	assert.True(t, ValidateDriversLicense("a1234567", "ca").Valid)
	assert.False(t, ValidateDriversLicense("12345678", "CA").Valid)

	assert.True(t, ValidateDriversLicense("B123-456-789-012", "FL").Valid)
	assert.False(t, ValidateDriversLicense("B12345678901", "FL").Valid)

	assert.True(t, ValidateDriversLicense("123456789", "NY").Valid)
	assert.True(t, ValidateDriversLicense("A123456789012345678", "NY").Valid)
	assert.False(t, ValidateDriversLicense("A12345678", "NY").Valid)
}

func TestValidateDriversLicense_GenericFallback(t *testing.T) {
	assert.True(t, ValidateDriversLicense("AB123", "OK").Valid)
	assert.True(t, ValidateDriversLicense("AB123", "").Valid)
	assert.False(t, ValidateDriversLicense("AB12", "OK").Valid)
	assert.False(t, ValidateDriversLicense(strings.Repeat("A", 21), "OK").Valid)
	assert.False(t, ValidateDriversLicense("AB12#3", "OK").Valid)
}

func TestValidateDriversLicense_Empty(t *testing.T) {
	result := ValidateDriversLicense("  ", "TX")
	assert.False(t, result.Valid)
	assert.Equal(t, "Driver's license number is required", result.Message)
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("Jo").Valid)
	assert.True(t, ValidateName("María López").Valid)
	assert.False(t, ValidateName("J").Valid)
	assert.False(t, ValidateName("12345").Valid)
	assert.False(t, ValidateName("--").Valid)
	assert.False(t, ValidateName(strings.Repeat("a", 161)).Valid)
	assert.True(t, ValidateName(strings.Repeat("a", 160)).Valid)
}

func TestValidateAddress(t *testing.T) {
	assert.True(t, ValidateAddress("123 Main St").Valid)
	assert.False(t, ValidateAddress("Main Street").Valid)
	assert.False(t, ValidateAddress("1 A").Valid)
	assert.False(t, ValidateAddress("1"+strings.Repeat("a", 240)).Valid)
}

func TestValidateCity(t *testing.T) {
	assert.True(t, ValidateCity("").Valid)
	assert.True(t, ValidateCity("Springfield").Valid)
	assert.True(t, ValidateCity(strings.Repeat("a", 120)).Valid)

	result := ValidateCity(strings.Repeat("a", 121))
	assert.False(t, result.Valid)
	assert.Equal(t, "City cannot exceed 120 characters", result.Message)
}

func TestValidateCartCount(t *testing.T) {
	assert.True(t, ValidateCartCount(0))
	assert.True(t, ValidateCartCount(10))
	assert.False(t, ValidateCartCount(-1))
	assert.False(t, ValidateCartCount(11))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput("  <script>alert(1)</script> "))
	assert.Equal(t, "alert(1)", SanitizeInput("JavaScript:alert(1)"))
	assert.Len(t, []rune(SanitizeInput(strings.Repeat("x", 600))), MaxSanitizedLength)
}

// ============================================================================
// FILES
// ============================================================================

func TestValidateFileUpload(t *testing.T) {
	assert.True(t, ValidateFileUpload("lease.pdf", 1024, "application/pdf").Valid)
	assert.True(t, ValidateFileUpload("deed.HEIC", 1024, "application/octet-stream").Valid)
	assert.False(t, ValidateFileUpload("lease.pdf", MaxUploadSize+1, "application/pdf").Valid)
	assert.False(t, ValidateFileUpload("lease.docx", 1024, "application/msword").Valid)
	assert.False(t, ValidateFileUpload("lease.pdf", 0, "application/pdf").Valid)
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, "image/png", ResolveContentType("scan.png", ""))
	assert.Equal(t, "application/pdf", ResolveContentType("x.bin", "Application/PDF"))
}
