package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"water-service/internal/models"
	"water-service/internal/repository"
	"water-service/internal/services"
	"water-service/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService *services.AdminService
	middleware   *Middleware
}

func NewAdminHandler(adminService *services.AdminService, middleware *Middleware) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		middleware:   middleware,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	protectedGr := router.Group("/water/protected/api/v1", h.middleware.RequireAdmin())

	protectedGr.GET("/statuses", h.GetStatuses)
	protectedGr.GET("/dashboard/stats", h.GetDashboardStats)

	requestGr := protectedGr.Group("/requests")
	requestGr.GET("", h.ListRequests)
	requestGr.GET("/:id", h.GetRequest)
	requestGr.PATCH("/:id/status", h.UpdateStatus)
	requestGr.DELETE("/:id", h.DeleteRequest)
	requestGr.GET("/:id/documents/:kind", h.GetDocumentURL)
}

func parseRequestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_ID", "request id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// respondRepositoryError maps lookup failures to 404 and everything else to
// the generic 500.
func respondRepositoryError(c *gin.Context, action string, err error) {
	if errors.Is(err, repository.ErrRequestNotFound) {
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("NOT_FOUND", "request not found"))
		return
	}
	slog.Error("admin operation failed", "action", action, "error", err)
	c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("INTERNAL_ERROR", "An unexpected error occurred. Please try again."))
}

func (h *AdminHandler) GetStatuses(c *gin.Context) {
	statuses := h.adminService.Statuses()
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, status.String())
	}
	c.JSON(http.StatusOK, utils.CreateListResponse(values, len(values)))
}

func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.DashboardStats(c.Request.Context())
	if err != nil {
		respondRepositoryError(c, "dashboard_stats", err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(stats))
}

// ListRequests returns the newest requests, optionally filtered by ?status=.
func (h *AdminHandler) ListRequests(c *gin.Context) {
	filter := models.RequestListFilter{}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseRequestStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_STATUS", err.Error()))
			return
		}
		filter.Status = &status
	}

	limit, err := utils.GetQueryParamAsInt(c, "limit", repository.DefaultListLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_LIMIT", err.Error()))
		return
	}
	filter.Limit = limit

	requests, err := h.adminService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondRepositoryError(c, "list_requests", err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateListResponse(requests, len(requests)))
}

func (h *AdminHandler) GetRequest(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}

	request, err := h.adminService.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondRepositoryError(c, "get_request", err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(request))
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid status update", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_STATUS", "status must be one of the known request statuses"))
		return
	}

	if err := h.adminService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondRepositoryError(c, "update_status", err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"id":     id,
		"status": req.Status,
	}))
}

func (h *AdminHandler) DeleteRequest(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteRequest(c.Request.Context(), id); err != nil {
		respondRepositoryError(c, "delete_request", err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"id":      id,
		"deleted": true,
	}))
}

// GetDocumentURL returns a presigned link to the lease or deed document.
func (h *AdminHandler) GetDocumentURL(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}

	kind := models.DocumentKind(c.Param("kind"))
	if kind != models.DocumentLease && kind != models.DocumentDeed {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_DOCUMENT_KIND", "document kind must be lease or deed"))
		return
	}

	url, err := h.adminService.DocumentURL(c.Request.Context(), id, kind)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"url": url}))
	case errors.Is(err, services.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, utils.CreateErrorResponse("DOCUMENT_NOT_FOUND", "document not found"))
	case errors.Is(err, services.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, utils.CreateErrorResponse("STORAGE_UNAVAILABLE", "document storage is unavailable"))
	default:
		respondRepositoryError(c, "document_url", err)
	}
}
