package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissions.WithLabelValues(ResultSuccess))
	RecordSubmission(ResultSuccess)
	assert.Equal(t, before+1, testutil.ToFloat64(submissions.WithLabelValues(ResultSuccess)))
}

func TestRecordDocumentUpload(t *testing.T) {
	before := testutil.ToFloat64(documentUploads.WithLabelValues("lease", ResultFailed))
	RecordDocumentUpload("lease", ResultFailed)
	assert.Equal(t, before+1, testutil.ToFloat64(documentUploads.WithLabelValues("lease", ResultFailed)))
}

func TestGinMiddleware_UsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/requests/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/requests/:id", "204"))
	req := httptest.NewRequest(http.MethodGet, "/requests/abc", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/requests/:id", "204")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	RecordStatusUpdate("active")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "water_service_requests_status_updates_total"))
}
