package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	approvalapp "github.com/ucrm/backend/internal/application/approval"
	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/interfaces/http/dto"
	"github.com/ucrm/backend/internal/interfaces/http/middleware"
)

// ApprovalHandler handles approval flow administration and approval actions
type ApprovalHandler struct {
	BaseHandler
	flowService     *approvalapp.FlowService
	approvalService *approvalapp.ApprovalService
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(flowService *approvalapp.FlowService, approvalService *approvalapp.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		flowService:     flowService,
		approvalService: approvalService,
	}
}

// RegisterRoutes registers approval routes
func (h *ApprovalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	flows := rg.Group("/approval/flows")
	flows.POST("", h.CreateFlow)
	flows.GET("", h.ListFlows)
	flows.GET("/:id", h.GetFlow)
	flows.PUT("/:id/steps", h.ReplaceSteps)
	flows.DELETE("/:id", h.DeleteFlow)

	actions := rg.Group("/approval/:module/:entity_id")
	actions.POST("/approve", h.Approve)
	actions.POST("/reject", h.Reject)
	actions.POST("/reset", h.Reset)
	actions.GET("/status", h.Status)
	actions.GET("/history", h.History)
}

// CreateFlow registers a new approval flow
func (h *ApprovalHandler) CreateFlow(c *gin.Context) {
	var req approvalapp.CreateFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	flow, err := h.flowService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, flow)
}

// ListFlows returns all configured flows
func (h *ApprovalHandler) ListFlows(c *gin.Context) {
	flows, err := h.flowService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, flows)
}

// GetFlow returns one flow with its steps
func (h *ApprovalHandler) GetFlow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid flow ID")
		return
	}

	flow, err := h.flowService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, flow)
}

// ReplaceSteps swaps a flow's steps wholesale
func (h *ApprovalHandler) ReplaceSteps(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid flow ID")
		return
	}

	var req approvalapp.ReplaceStepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	flow, err := h.flowService.ReplaceSteps(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, flow)
}

// DeleteFlow removes a flow and its steps
func (h *ApprovalHandler) DeleteFlow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid flow ID")
		return
	}

	if err := h.flowService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Flow deleted"})
}

// Approve records the acting user's approval on the entity's current step
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject records the acting user's rejection of the entity
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *ApprovalHandler) decide(c *gin.Context, approve bool) {
	module, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	// Remarks are optional; an empty body is a bare decision
	var req approvalapp.DecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err, "Invalid request body")
			return
		}
	}

	var (
		state *approvalapp.StateResponse
		err   error
	)
	if approve {
		state, err = h.approvalService.Approve(c.Request.Context(), module, entityID, actor, req.Remarks)
	} else {
		state, err = h.approvalService.Reject(c.Request.Context(), module, entityID, actor, req.Remarks)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// Reset restarts a rejected entity's approval from the first step
func (h *ApprovalHandler) Reset(c *gin.Context) {
	module, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	state, err := h.approvalService.Reset(c.Request.Context(), module, entityID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// Status returns the entity's current approval progress
func (h *ApprovalHandler) Status(c *gin.Context) {
	module, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	state, err := h.approvalService.GetState(c.Request.Context(), module, entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// History returns the entity's approval audit trail
func (h *ApprovalHandler) History(c *gin.Context) {
	module, entityID, ok := h.entityParams(c)
	if !ok {
		return
	}

	records, err := h.approvalService.History(c.Request.Context(), module, entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

func (h *ApprovalHandler) entityParams(c *gin.Context) (string, uuid.UUID, bool) {
	module := c.Param("module")
	if !approval.Module(module).IsValid() {
		h.BadRequest(c, nil, "Unsupported approval module")
		return "", uuid.Nil, false
	}

	entityID, err := uuid.Parse(c.Param("entity_id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid entity ID")
		return "", uuid.Nil, false
	}

	return module, entityID, true
}
