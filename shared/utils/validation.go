package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of a single field check. Suggestion is only
// set when the value is accepted but looks like a typo.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validResult() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalidResult(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

const (
	MaxUploadSize      int64 = 10 * 1024 * 1024
	MaxSanitizedLength       = 500
	MaxCityLength            = 120
	MinCartCount             = 0
	MaxCartCount             = 10
	dateLayout               = "2006-01-02"
)

var (
	nonDigitRegex  = regexp.MustCompile(`\D`)
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-zA-Z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	scriptRegex    = regexp.MustCompile(`(?i)javascript:`)
	genericDLRegex = regexp.MustCompile(`^[A-Z0-9]{5,20}$`)
)

// emailDomainTypos maps commonly mistyped domains to the intended one.
var emailDomainTypos = map[string]string{
	"gmial.com":   "gmail.com",
	"gmai.com":    "gmail.com",
	"gamil.com":   "gmail.com",
	"gmal.com":    "gmail.com",
	"gmail.con":   "gmail.com",
	"gmail.co":    "gmail.com",
	"hotmial.com": "hotmail.com",
	"hotmail.con": "hotmail.com",
	"yahooo.com":  "yahoo.com",
	"yaho.com":    "yahoo.com",
	"yahoo.con":   "yahoo.com",
	"outlok.com":  "outlook.com",
	"outlook.con": "outlook.com",
	"icloud.con":  "icloud.com",
}

type licenseRule struct {
	pattern     *regexp.Regexp
	description string
}

var driversLicenseRules = map[string]licenseRule{
	"TX": {regexp.MustCompile(`^\d{8}$`), "8 digits"},
	"CA": {regexp.MustCompile(`^[A-Z]\d{7}$`), "1 letter followed by 7 digits"},
	"FL": {regexp.MustCompile(`^[A-Z]\d{12}$`), "1 letter followed by 12 digits"},
	"NY": {regexp.MustCompile(`^(\d{9}|[A-Z]\d{18})$`), "9 digits, or 1 letter followed by 18 digits"},
}

var stateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"DC": {},
}

var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/heic":      {},
}

var allowedUploadExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// ============================================================================
// PHONE
// ============================================================================

func ValidatePhoneDetailed(phone string) ValidationResult {
	digits := DigitsOnly(phone)
	if digits == "" {
		return invalidResult("Phone number is required")
	}
	if len(digits) != 10 {
		return invalidResult("Phone number must be 10 digits")
	}
	if digits[0] == '0' || digits[0] == '1' {
		return invalidResult("Area code cannot start with 0 or 1")
	}
	if digits[3] == '0' {
		return invalidResult("Exchange code cannot start with 0")
	}
	return validResult()
}

// FormatPhoneInput reshapes partial keystrokes into (555) 123-4567 form.
// Input with more than 10 digits, such as a leading country code, is returned
// unchanged.
func FormatPhoneInput(input string) string {
	digits := DigitsOnly(input)
	if digits == "" || len(digits) > 10 {
		return input
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return fmt.Sprintf("(%s) %s", digits[:3], digits[3:])
	default:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
}

func FormatPhoneForStorage(phone string) string {
	return DigitsOnly(phone)
}

func FormatPhoneForDisplay(phone string) string {
	digits := DigitsOnly(phone)
	if len(digits) != 10 {
		return phone
	}
	return FormatPhoneInput(digits)
}

// ============================================================================
// EMAIL
// ============================================================================

func ValidateEmailDetailed(email string) ValidationResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalidResult("Email address is required")
	}
	if len(email) > 254 {
		return invalidResult("Email address cannot exceed 254 characters")
	}

	at := strings.LastIndex(email, "@")
	if at < 1 {
		return invalidResult("Please enter a valid email address")
	}
	local, domain := email[:at], email[at+1:]
	if len(local) > 64 {
		return invalidResult("The part before @ cannot exceed 64 characters")
	}
	if !emailRegex.MatchString(email) {
		return invalidResult("Please enter a valid email address")
	}

	if fix, ok := emailDomainTypos[strings.ToLower(domain)]; ok {
		suggestion := local + "@" + fix
		return ValidationResult{
			Valid:      true,
			Message:    fmt.Sprintf("Did you mean %s?", suggestion),
			Suggestion: suggestion,
		}
	}
	return validResult()
}

func ValidateEmail(email string) bool {
	return ValidateEmailDetailed(email).Valid
}

// ============================================================================
// SSN
// ============================================================================

// ValidateSSNDetailed accepts an empty value since the field is optional.
func ValidateSSNDetailed(ssn string) ValidationResult {
	if strings.TrimSpace(ssn) == "" {
		return validResult()
	}

	digits := DigitsOnly(ssn)
	if len(digits) != 9 {
		return invalidResult("SSN must be 9 digits")
	}
	if strings.Count(digits, digits[:1]) == 9 {
		return invalidResult("SSN cannot be all the same digit")
	}

	area, group, serial := digits[:3], digits[3:5], digits[5:]
	if area == "000" || area == "666" || area[0] == '9' {
		return invalidResult("SSN area number is not valid")
	}
	if group == "00" {
		return invalidResult("SSN group number cannot be 00")
	}
	if serial == "0000" {
		return invalidResult("SSN serial number cannot be 0000")
	}
	return validResult()
}

func FormatSSNInput(input string) string {
	digits := DigitsOnly(input)
	if digits == "" || len(digits) > 9 {
		return input
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 5:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
	}
}

func FormatSSN(ssn string) string {
	if len(DigitsOnly(ssn)) != 9 {
		return ssn
	}
	return FormatSSNInput(ssn)
}

// SSNLast4 returns the last four digits, or "" when fewer are present.
func SSNLast4(ssn string) string {
	digits := DigitsOnly(ssn)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

func MaskSSN(ssn string) string {
	last4 := SSNLast4(ssn)
	if last4 == "" {
		return ""
	}
	return "***-**-" + last4
}

// ============================================================================
// ZIP / STATE
// ============================================================================

func ValidatePostalCodeDetailed(zip string) ValidationResult {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(zip))
	if cleaned == "" {
		return validResult()
	}
	if DigitsOnly(cleaned) != cleaned || (len(cleaned) != 5 && len(cleaned) != 9) {
		return invalidResult("ZIP code must be 5 or 9 digits")
	}
	return validResult()
}

func FormatZipCodeInput(input string) string {
	digits := DigitsOnly(input)
	if digits == "" || len(digits) > 9 {
		return input
	}
	if len(digits) <= 5 {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

func ValidateStateCode(state string) bool {
	_, ok := stateCodes[strings.ToUpper(strings.TrimSpace(state))]
	return ok
}

// ============================================================================
// DATES
// ============================================================================

func ParseDate(value string) (time.Time, error) {
	for _, layout := range []string{dateLayout, "01/02/2006", time.RFC3339} {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", value)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalendarAge counts completed years between birth and now.
func CalendarAge(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func ValidateDateOfBirthDetailed(dob string) ValidationResult {
	return validateDateOfBirthAt(dob, time.Now())
}

func validateDateOfBirthAt(dob string, now time.Time) ValidationResult {
	if strings.TrimSpace(dob) == "" {
		return invalidResult("Date of birth is required")
	}
	birth, err := ParseDate(dob)
	if err != nil {
		return invalidResult("Please enter a valid date (YYYY-MM-DD)")
	}

	today := startOfDay(now)
	if birth.After(today) {
		return invalidResult("Date of birth cannot be in the future")
	}

	age := CalendarAge(birth, today)
	if age < 18 {
		return invalidResult("Applicant must be at least 18 years old")
	}
	if age > 120 {
		return invalidResult("Please enter a valid date of birth")
	}
	return validResult()
}

func ValidateServiceStartDate(date string) ValidationResult {
	return validateServiceStartDateAt(date, time.Now())
}

func validateServiceStartDateAt(date string, now time.Time) ValidationResult {
	start, err := ParseDate(date)
	if err != nil {
		return invalidResult("Please enter a valid date (YYYY-MM-DD)")
	}
	if start.Before(startOfDay(now)) {
		return invalidResult("Service start date must be today or in the future")
	}
	return validResult()
}

// ValidateServiceDates passes when either date is missing.
func ValidateServiceDates(start, stop string) ValidationResult {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(stop) == "" {
		return validResult()
	}
	startDate, err := ParseDate(start)
	if err != nil {
		return invalidResult("Please enter a valid start date (YYYY-MM-DD)")
	}
	stopDate, err := ParseDate(stop)
	if err != nil {
		return invalidResult("Please enter a valid stop date (YYYY-MM-DD)")
	}
	if !stopDate.After(startDate) {
		return invalidResult("Service stop date must be after the start date")
	}
	return validResult()
}

// ============================================================================
// IDENTITY / TEXT
// ============================================================================

func ValidateDriversLicense(number, state string) ValidationResult {
	cleaned := strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(number)))
	if cleaned == "" {
		return invalidResult("Driver's license number is required")
	}

	code := strings.ToUpper(strings.TrimSpace(state))
	if rule, ok := driversLicenseRules[code]; ok {
		if !rule.pattern.MatchString(cleaned) {
			return invalidResult(fmt.Sprintf("%s driver's license must be %s", code, rule.description))
		}
		return validResult()
	}

	if !genericDLRegex.MatchString(cleaned) {
		return invalidResult("Driver's license must be 5-20 letters or numbers")
	}
	return validResult()
}

func ValidateName(name string) ValidationResult {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < 2 {
		return invalidResult("Name must be at least 2 characters")
	}
	if length > 160 {
		return invalidResult("Name cannot exceed 160 characters")
	}
	if DigitsOnly(name) == name {
		return invalidResult("Name cannot be only numbers")
	}
	if strings.IndexFunc(name, unicode.IsLetter) < 0 {
		return invalidResult("Name must contain at least one letter")
	}
	return validResult()
}

func ValidateAddress(address string) ValidationResult {
	address = strings.TrimSpace(address)
	length := utf8.RuneCountInString(address)
	if length < 5 {
		return invalidResult("Address must be at least 5 characters")
	}
	if length > 240 {
		return invalidResult("Address cannot exceed 240 characters")
	}
	if strings.IndexFunc(address, unicode.IsDigit) < 0 {
		return invalidResult("Address must include a street number")
	}
	return validResult()
}

// ValidateCity accepts an empty value since the city is optional.
func ValidateCity(city string) ValidationResult {
	if utf8.RuneCountInString(SanitizeInput(city)) > MaxCityLength {
		return invalidResult(fmt.Sprintf("City cannot exceed %d characters", MaxCityLength))
	}
	return validResult()
}

func ValidateCartCount(count int) bool {
	return count >= MinCartCount && count <= MaxCartCount
}

// SanitizeInput trims, drops angle brackets and script URLs, and caps length.
func SanitizeInput(input string) string {
	s := strings.TrimSpace(input)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = scriptRegex.ReplaceAllString(s, "")
	if utf8.RuneCountInString(s) > MaxSanitizedLength {
		s = string([]rune(s)[:MaxSanitizedLength])
	}
	return s
}

// ============================================================================
// FILES
// ============================================================================

// ResolveContentType falls back to the file extension when the client sent a
// generic or empty content type.
func ResolveContentType(filename, contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := allowedUploadTypes[contentType]; ok {
		return contentType
	}
	if byExt, ok := allowedUploadExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return byExt
	}
	return contentType
}

func ValidateFileUpload(filename string, size int64, contentType string) ValidationResult {
	if size <= 0 {
		return invalidResult("File is empty")
	}
	if size > MaxUploadSize {
		return invalidResult("File size must be less than 10MB")
	}
	if _, ok := allowedUploadTypes[ResolveContentType(filename, contentType)]; !ok {
		return invalidResult("File must be a PDF, JPEG, PNG, or HEIC image")
	}
	return validResult()
}
