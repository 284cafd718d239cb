package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/ucrm/backend/internal/application/billing"
	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/interfaces/http/dto"
	"github.com/ucrm/backend/internal/interfaces/http/middleware"
)

// BillingHandler handles payments, payables and receipt series requests
type BillingHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
	payableService *billingapp.PayableService
	seriesService  *billingapp.SeriesService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(
	paymentService *billingapp.PaymentService,
	payableService *billingapp.PayableService,
	seriesService *billingapp.SeriesService,
) *BillingHandler {
	return &BillingHandler{
		paymentService: paymentService,
		payableService: payableService,
		seriesService:  seriesService,
	}
}

// RegisterRoutes registers billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	billing.POST("/payments", h.Pay)
	billing.GET("/payments/:or_number", h.GetTransaction)

	billing.POST("/payables", h.CreatePayable)
	billing.GET("/payables/:id", h.GetPayable)
	billing.GET("/accounts/:account_id/payables", h.ListPayables)
	billing.GET("/accounts/:account_id/credit", h.GetCreditBalance)

	billing.POST("/series", h.CreateSeries)
	billing.GET("/series", h.ListSeries)
	billing.GET("/series/active", h.GetActiveSeries)
	billing.POST("/series/:id/activate", h.ActivateSeries)
	billing.POST("/series/:id/deactivate", h.DeactivateSeries)
}

// Pay settles selected payables and issues an official receipt. The
// authenticated user is the cashier; the receipt number comes from
// their active series.
func (h *BillingHandler) Pay(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req billingapp.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	tx, err := h.paymentService.Pay(c.Request.Context(), actor.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tx)
}

// GetTransaction returns a recorded payment looked up by OR number
func (h *BillingHandler) GetTransaction(c *gin.Context) {
	orNumber := c.Param("or_number")
	if orNumber == "" {
		h.BadRequest(c, nil, "OR number is required")
		return
	}

	tx, err := h.paymentService.GetTransaction(c.Request.Context(), orNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tx)
}

// GetCreditBalance returns an account's credit balance
func (h *BillingHandler) GetCreditBalance(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("account_id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid account ID")
		return
	}

	balance, err := h.paymentService.GetCreditBalance(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// CreatePayable books a new amount owed by an account
func (h *BillingHandler) CreatePayable(c *gin.Context) {
	var req billingapp.CreatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	payable, err := h.payableService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payable)
}

// GetPayable returns one payable
func (h *BillingHandler) GetPayable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid payable ID")
		return
	}

	payable, err := h.payableService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payable)
}

// ListPayables returns an account's payables
func (h *BillingHandler) ListPayables(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("account_id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid account ID")
		return
	}

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
	filter.Search = query.Search
	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]interface{}{"status": status}
	}

	payables, err := h.payableService.ListByAccount(c.Request.Context(), accountID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payables)
}

// CreateSeries configures a new receipt numbering series
func (h *BillingHandler) CreateSeries(c *gin.Context) {
	var req billingapp.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request body")
		return
	}

	series, err := h.seriesService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, series)
}

// ListSeries returns the series assigned to a cashier. Without a user_id
// query parameter the caller's own series are listed.
func (h *BillingHandler) ListSeries(c *gin.Context) {
	userID, ok := h.seriesUser(c)
	if !ok {
		return
	}

	series, err := h.seriesService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, series)
}

// GetActiveSeries returns the series currently issuing receipt numbers
// for a cashier
func (h *BillingHandler) GetActiveSeries(c *gin.Context) {
	userID, ok := h.seriesUser(c)
	if !ok {
		return
	}

	series, err := h.seriesService.GetActive(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, series)
}

// ActivateSeries makes a series the cashier's active one, deactivating
// any other
func (h *BillingHandler) ActivateSeries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid series ID")
		return
	}

	series, err := h.seriesService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, series)
}

// DeactivateSeries takes a series out of service
func (h *BillingHandler) DeactivateSeries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, nil, "Invalid series ID")
		return
	}

	series, err := h.seriesService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, series)
}

func (h *BillingHandler) seriesUser(c *gin.Context) (uuid.UUID, bool) {
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, nil, "Invalid user ID")
			return uuid.Nil, false
		}
		return userID, true
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return actor.ID, true
}
