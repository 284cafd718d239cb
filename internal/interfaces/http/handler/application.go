package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	crmapp "github.com/ucrm/backend/internal/application/crm"
	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/interfaces/http/dto"
)

// ApplicationHandler handles customer application and inspection requests
type ApplicationHandler struct {
	BaseHandler
	applicationService *crmapp.ApplicationService
	inspectionService  *crmapp.InspectionService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationService *crmapp.ApplicationService, inspectionService *crmapp.InspectionService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		inspectionService:  inspectionService,
	}
}

// RegisterRoutes registers CRM routes
func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	apps := rg.Group("/crm/applications")
	apps.POST("", h.Create)
	apps.GET("", h.List)
	apps.GET("/:id", h.GetByID)
	apps.GET("/number/:number", h.GetByNumber)
	apps.GET("/:id/inspections", h.ListInspections)
	apps.POST("/:id/sign", h.SignContract)
	apps.POST("/:id/energize", h.Energize)

	inspections := rg.Group("/crm/inspections")
	inspections.POST("", h.ScheduleInspection)
	inspections.GET("/:id", h.GetInspection)
	inspections.POST("/:id/result", h.RecordInspectionResult)
}

// Create files a new service connection application. The application
// enters the CCD approval flow immediately.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req crmapp.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	app, err := h.applicationService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, app)
}

// List returns a paginated list of applications
func (h *ApplicationHandler) List(c *gin.Context) {
	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err, "Invalid query parameters")
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.OrderBy != "" {
		filter.OrderBy = query.OrderBy
	}
	if query.OrderDir != "" {
		filter.OrderDir = query.OrderDir
	}
	filter.Search = query.Search

	result, err := h.applicationService.List(c.Request.Context(), c.Query("status"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID returns one application
func (h *ApplicationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid application ID")
		return
	}

	app, err := h.applicationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, app)
}

// GetByNumber returns one application looked up by its number
func (h *ApplicationHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, nil, "Application number is required")
		return
	}

	app, err := h.applicationService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, app)
}

// SignContract records the applicant's signed service contract
func (h *ApplicationHandler) SignContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid application ID")
		return
	}

	app, err := h.applicationService.SignContract(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, app)
}

// Energize marks the connection as energized, completing the application
func (h *ApplicationHandler) Energize(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid application ID")
		return
	}

	app, err := h.applicationService.Energize(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, app)
}

// ScheduleInspection books a field inspection for an application
func (h *ApplicationHandler) ScheduleInspection(c *gin.Context) {
	var req crmapp.ScheduleInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	inspection, err := h.inspectionService.Schedule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inspection)
}

// GetInspection returns one inspection
func (h *ApplicationHandler) GetInspection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid inspection ID")
		return
	}

	inspection, err := h.inspectionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inspection)
}

// RecordInspectionResult files the inspector's findings and routes the
// inspection into its approval flow
func (h *ApplicationHandler) RecordInspectionResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid inspection ID")
		return
	}

	var req crmapp.RecordInspectionResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	inspection, err := h.inspectionService.RecordResult(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inspection)
}

// ListInspections returns an application's inspections, newest first
func (h *ApplicationHandler) ListInspections(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid application ID")
		return
	}

	inspections, err := h.inspectionService.ListByApplication(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inspections)
}
