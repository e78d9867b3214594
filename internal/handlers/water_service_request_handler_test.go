package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"water-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestsPath = "/water/public/api/v1/requests"

func rentFormFields() map[string]string {
	return map[string]string{
		"applicant_name":                  "Jane Doe",
		"applicant_email":                 "jane.doe@example.com",
		"applicant_phone":                 "(555) 123-4567",
		"service_address":                 "123 Main St",
		"service_city":                    "Springfield",
		"service_state":                   "TX",
		"service_postal_code":             "75001",
		"mailing_address_same_as_service": "true",
		"property_use_type":               "rent",
		"service_territory":               "inside_city_limits",
		"landlord_name":                   "Acme Properties",
		"landlord_phone":                  "555-987-6543",
		"trash_carts_needed":              "2",
		"recycle_carts_needed":            "1",
		"acknowledged_service_terms":      "true",
		"applicant_signature":             "Jane Doe",
	}
}

var leaseUpload = multipartFile{field: "lease_document", filename: "lease.pdf", content: "%PDF-1.7"}

func fieldNames(env envelope) []string {
	names := make([]string, 0, len(env.Error.Fields))
	for _, f := range env.Error.Fields {
		names = append(names, f.Field)
	}
	return names
}

// ============================================================================
// SUBMISSION
// ============================================================================

func TestSubmitRequest_CreatesRecordAndStoresLease(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(multipartRequest(t, requestsPath, rentFormFields(), leaseUpload))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result struct {
		ID              string   `json:"id"`
		Status          string   `json:"status"`
		DepositRequired string   `json:"deposit_required"`
		DocumentsStored []string `json:"documents_stored"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))

	assert.Equal(t, "new", result.Status)
	assert.Equal(t, "300.00", result.DepositRequired)
	assert.Equal(t, []string{"lease"}, result.DocumentsStored)
	assert.Len(t, srv.repo.records, 1)
	require.Len(t, srv.blobs.objects, 1)
	for key, data := range srv.blobs.objects {
		assert.True(t, strings.HasPrefix(key, "leases/"), key)
		assert.True(t, strings.HasSuffix(key, "-lease.pdf"), key)
		assert.Equal(t, "%PDF-1.7", string(data))
	}
}

func TestSubmitRequest_ValidationErrorsListEveryField(t *testing.T) {
	srv := newTestServer(t)
	fields := rentFormFields()
	delete(fields, "applicant_email")
	delete(fields, "landlord_phone")

	rec := srv.do(multipartRequest(t, requestsPath, fields))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Subset(t, fieldNames(env), []string{"applicant_email", "landlord_phone", "lease_document"})
	assert.Empty(t, srv.repo.records)
}

func TestSubmitRequest_EmptyFileCountsAsAbsent(t *testing.T) {
	srv := newTestServer(t)
	empty := multipartFile{field: "lease_document", filename: "lease.pdf", content: ""}

	rec := srv.do(multipartRequest(t, requestsPath, rentFormFields(), empty))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fieldNames(decodeEnvelope(t, rec)), "lease_document")
}

func TestSubmitRequest_OverlongCityIsFieldError(t *testing.T) {
	srv := newTestServer(t)
	fields := rentFormFields()
	fields["service_city"] = strings.Repeat("x", 300)

	rec := srv.do(multipartRequest(t, requestsPath, fields, leaseUpload))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"service_city"}, fieldNames(decodeEnvelope(t, rec)))
	assert.Empty(t, srv.repo.records)
	assert.Empty(t, srv.blobs.objects)
}

func TestSubmitRequest_PersistFailureIsGeneric(t *testing.T) {
	srv := newTestServer(t)
	srv.repo.createErr = errDatabaseDown

	rec := srv.do(multipartRequest(t, requestsPath, rentFormFields(), leaseUpload))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Failed to save request. Please try again.", env.Error.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSubmitRequest_URLEncodedOwnerForm(t *testing.T) {
	srv := newTestServer(t)
	fields := rentFormFields()
	fields["property_use_type"] = "owner_occupied"

	values := make([]string, 0, len(fields))
	for k, v := range fields {
		values = append(values, k+"="+strings.ReplaceAll(v, " ", "+"))
	}
	req := httptest.NewRequest(http.MethodPost, requestsPath, strings.NewReader(strings.Join(values, "&")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := srv.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fieldNames(decodeEnvelope(t, rec)), "deed_document")
}

// ============================================================================
// ESTIMATES
// ============================================================================

func TestEstimateRate_OutsideCity(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet,
		"/water/public/api/v1/rates/estimate?service_territory=outside_city_limits&trash_carts_needed=2", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rate models.RateCalculation
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &rate))
	assert.True(t, decimal.RequireFromString("45").Equal(rate.WaterRate))
	assert.True(t, decimal.RequireFromString("73").Equal(rate.Subtotal), rate.Subtotal.String())
	assert.Equal(t, "Actual bill may vary based on water usage", rate.Notes[len(rate.Notes)-1])
}

func TestEstimateRate_RejectsOutOfRangeCarts(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/water/public/api/v1/rates/estimate?trash_carts_needed=11", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"trash_carts_needed"}, fieldNames(decodeEnvelope(t, rec)))
}

func TestEstimateDeposit_WithCreditScore(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet,
		"/water/public/api/v1/deposit/estimate?property_use_type=rent&service_territory=outside_city_limits&credit_score=720", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, "225.00", data["deposit_required"])
}

func TestEstimateDeposit_BadInput(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/water/public/api/v1/deposit/estimate?property_use_type=rent&credit_score=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/water/public/api/v1/deposit/estimate?property_use_type=lodger", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"property_use_type"}, fieldNames(decodeEnvelope(t, rec)))
}

func TestDepositExamples(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/water/public/api/v1/deposit/examples", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Meta.Count)
	assert.Equal(t, 4, *env.Meta.Count)
}

// ============================================================================
// FIELD VALIDATION
// ============================================================================

func TestValidateField(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name      string
		body      string
		valid     bool
		formatted string
	}{
		{"valid phone is formatted", `{"field":"applicant_phone","value":"5551234567"}`, true, "(555) 123-4567"},
		{"phone with leading one", `{"field":"applicant_phone","value":"1551234567"}`, false, "(155) 123-4567"},
		{"texas license uses state", `{"field":"applicant_drivers_license_number","value":"12345678","state":"TX"}`, true, ""},
		{"unknown field", `{"field":"favorite_color","value":"blue"}`, false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(jsonRequest(http.MethodPost, "/water/public/api/v1/validate", tc.body))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp models.FieldValidationResponse
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
			assert.Equal(t, tc.valid, resp.Valid)
			assert.Equal(t, tc.formatted, resp.Formatted)
		})
	}
}

func TestValidateField_MissingFieldName(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(jsonRequest(http.MethodPost, "/water/public/api/v1/validate", `{"value":"x"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
