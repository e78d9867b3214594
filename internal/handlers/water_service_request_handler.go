package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"water-service/internal/models"
	"water-service/internal/services"
	"water-service/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// MaxSubmissionBodySize leaves room for both documents plus the form fields.
const MaxSubmissionBodySize = 2*utils.MaxUploadSize + 1<<20

var documentFields = []models.DocumentKind{models.DocumentLease, models.DocumentDeed}

type WaterServiceRequestHandler struct {
	requestService *services.WaterServiceRequestService
}

func NewWaterServiceRequestHandler(requestService *services.WaterServiceRequestService) *WaterServiceRequestHandler {
	return &WaterServiceRequestHandler{
		requestService: requestService,
	}
}

func (h *WaterServiceRequestHandler) RegisterRoutes(router *gin.Engine) {
	publicGr := router.Group("/water/public/api/v1")

	publicGr.POST("/requests", h.SubmitRequest)
	publicGr.GET("/rates/estimate", h.EstimateRate)
	publicGr.GET("/deposit/estimate", h.EstimateDeposit)
	publicGr.GET("/deposit/examples", h.DepositExamples)
	publicGr.POST("/validate", h.ValidateField)
}

// openDocument returns the uploaded file for kind, or nil when the field was
// left empty. The caller closes the returned file.
func openDocument(c *gin.Context, kind models.DocumentKind) (*models.UploadedFile, multipart.File, error) {
	fileHeader, err := c.FormFile(string(kind) + "_document")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if fileHeader.Size == 0 {
		return nil, nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}

	return &models.UploadedFile{
		Kind:        kind,
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     file,
	}, file, nil
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// SubmitRequest receives the multipart sign-up form with its optional lease
// and deed documents.
func (h *WaterServiceRequestHandler) SubmitRequest(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSubmissionBodySize)

	var form models.SubmissionForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, utils.CreateErrorResponse("REQUEST_TOO_LARGE", "Uploaded files are too large"))
			return
		}
		slog.Warn("invalid submission format", "error", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	var files []models.UploadedFile
	for _, kind := range documentFields {
		uploaded, file, err := openDocument(c, kind)
		if err != nil {
			slog.Warn("failed to read uploaded document", "kind", kind, "error", err)
			c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_FILE", "Could not read uploaded "+string(kind)+" document"))
			return
		}
		if uploaded == nil {
			continue
		}
		defer func(f io.Closer) { _ = f.Close() }(file)
		files = append(files, *uploaded)
	}

	submission := models.SubmissionContext{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	result, err := h.requestService.Submit(c.Request.Context(), form, files, submission)
	if err != nil {
		var validationErr *services.SubmissionValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, utils.CreateValidationErrorResponse(validationErr.Fields))
		case errors.Is(err, services.ErrPersistFailed):
			c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("PERSIST_FAILED", "Failed to save request. Please try again."))
		default:
			slog.Error("submission failed", "error", err)
			c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("INTERNAL_ERROR", "An unexpected error occurred. Please try again."))
		}
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(result))
}

func (h *WaterServiceRequestHandler) EstimateRate(c *gin.Context) {
	var query models.RateEstimateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid query parameters"))
		return
	}

	rate, fieldErrs := h.requestService.EstimateRate(query)
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, utils.CreateValidationErrorResponse(fieldErrs))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(rate))
}

func (h *WaterServiceRequestHandler) EstimateDeposit(c *gin.Context) {
	var query models.DepositEstimateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "credit_score must be a whole number"))
		return
	}

	deposit, fieldErrs := h.requestService.EstimateDeposit(query)
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, utils.CreateValidationErrorResponse(fieldErrs))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"property_use_type": query.PropertyUseType,
		"service_territory": query.ServiceTerritory,
		"credit_score":      query.CreditScore,
		"deposit_required":  deposit,
	}))
}

func (h *WaterServiceRequestHandler) DepositExamples(c *gin.Context) {
	examples := h.requestService.Calculator().DepositExamples()
	c.JSON(http.StatusOK, utils.CreateListResponse(examples, len(examples)))
}

// ValidateField checks a single field while the applicant is typing.
func (h *WaterServiceRequestHandler) ValidateField(c *gin.Context) {
	var req models.FieldValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "field is required"))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(services.ValidateField(req)))
}
