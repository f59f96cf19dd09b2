package handler

import (
	"time"

	ledgerapp "github.com/backoffice/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationHandler exposes one polarity of the ledger over HTTP.
// Construct one instance for payables and one for receivables, each
// backed by a service scoped to the same polarity.
type ObligationHandler struct {
	BaseHandler
	service   *ledgerapp.ObligationService
	dailyRate decimal.Decimal
}

// NewObligationHandler creates a new ObligationHandler. dailyRate is the
// default daily interest rate applied when a preview request does not
// carry its own.
func NewObligationHandler(service *ledgerapp.ObligationService, dailyRate decimal.Decimal) *ObligationHandler {
	return &ObligationHandler{
		service:   service,
		dailyRate: dailyRate,
	}
}

// InterestPreviewResponse carries a computed late-payment projection
type InterestPreviewResponse struct {
	ObligationID uuid.UUID       `json:"obligation_id"`
	AsOf         time.Time       `json:"as_of"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	Interest     decimal.Decimal `json:"interest"`
}

// MaintenanceResultResponse reports how many obligations a maintenance
// pass touched
type MaintenanceResultResponse struct {
	Processed int `json:"processed"`
}

// List godoc
// @Summary      List obligations
// @Description  Retrieve a paginated list of obligations with filtering
// @Tags         ledger
// @Produce      json
// @Param        search query string false "Search term (sequence number, description, counterparty name)"
// @Param        counterparty_id query string false "Counterparty ID" format(uuid)
// @Param        status query string false "Status" Enums(PENDING, PARTIALLY_SETTLED, OVERDUE, SETTLED, CANCELLED)
// @Param        category query string false "Category"
// @Param        due_from query string false "Due date lower bound (RFC 3339)"
// @Param        due_to query string false "Due date upper bound (RFC 3339)"
// @Param        overdue query boolean false "Filter overdue only"
// @Param        recurring query boolean false "Filter recurring only"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]ledgerapp.ObligationResponse,meta=dto.Meta}
// @Security     BearerAuth
func (h *ObligationHandler) List(c *gin.Context) {
	var filter ledgerapp.ObligationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	obligations, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, obligations, total, filter.Page, filter.PageSize)
}

// ListAll godoc
// @Summary      List all obligations
// @Description  Retrieve every obligation of this polarity. Served from
// @Description  cache when a fresh entry exists.
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ledgerapp.ObligationResponse}
// @Security     BearerAuth
func (h *ObligationHandler) ListAll(c *gin.Context) {
	obligations, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligations)
}

// GetByID godoc
// @Summary      Get obligation by ID
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.ObligationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *ObligationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	obligation, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligation)
}

// Create godoc
// @Summary      Create an obligation
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateObligationRequest true "Obligation creation request"
// @Success      201 {object} dto.Response{data=ledgerapp.ObligationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *ObligationHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	obligation, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, obligation)
}

// Update godoc
// @Summary      Update an obligation
// @Description  Update descriptive fields. Amounts and status are managed
// @Description  through settlements and cancellation, never edited directly.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Param        request body ledgerapp.UpdateObligationRequest true "Obligation update request"
// @Success      200 {object} dto.Response{data=ledgerapp.ObligationResponse}
// @Security     BearerAuth
func (h *ObligationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	var req ledgerapp.UpdateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	obligation, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligation)
}

// Delete godoc
// @Summary      Delete an obligation
// @Tags         ledger
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *ObligationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	found, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Obligation not found")
		return
	}

	h.NoContent(c)
}

// Settle godoc
// @Summary      Settle an obligation
// @Description  Apply a full or partial settlement against an obligation
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Param        request body ledgerapp.SettleObligationRequest true "Settlement request"
// @Success      200 {object} dto.Response{data=ledgerapp.ObligationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *ObligationHandler) Settle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	var req ledgerapp.SettleObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	obligation, err := h.service.Settle(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, obligation)
}

// Cancel godoc
// @Summary      Cancel an obligation
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *ObligationHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	found, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Obligation not found")
		return
	}

	h.NoContent(c)
}

// PreviewInterest godoc
// @Summary      Preview late-payment interest
// @Description  Compute the simple interest accrued on an overdue obligation
// @Description  as of a given date without mutating it
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Param        as_of query string false "Reference date (RFC 3339, default now)"
// @Param        daily_rate query string false "Daily rate override (decimal, e.g. 0.001)"
// @Success      200 {object} dto.Response{data=InterestPreviewResponse}
// @Security     BearerAuth
func (h *ObligationHandler) PreviewInterest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		asOf, err = parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date format")
			return
		}
	}

	rate := h.dailyRate
	if raw := c.Query("daily_rate"); raw != "" {
		rate, err = decimal.NewFromString(raw)
		if err != nil {
			h.BadRequest(c, "Invalid daily_rate format")
			return
		}
	}

	interest, err := h.service.PreviewInterest(c.Request.Context(), id, asOf, rate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, InterestPreviewResponse{
		ObligationID: id,
		AsOf:         asOf,
		DailyRate:    rate,
		Interest:     interest,
	})
}

// RefreshStatuses godoc
// @Summary      Refresh overdue statuses
// @Description  Relabel every open obligation whose due date has passed as
// @Description  overdue. Normally driven by the scheduler; exposed for
// @Description  on-demand runs.
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=MaintenanceResultResponse}
// @Security     BearerAuth
func (h *ObligationHandler) RefreshStatuses(c *gin.Context) {
	changed, err := h.service.RefreshAllStatuses(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MaintenanceResultResponse{Processed: changed})
}

// ProcessRecurring godoc
// @Summary      Process recurring obligations
// @Description  Spawn the next occurrence of every recurring obligation
// @Description  whose due date has been reached
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=MaintenanceResultResponse}
// @Security     BearerAuth
func (h *ObligationHandler) ProcessRecurring(c *gin.Context) {
	spawned, err := h.service.ProcessRecurring(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MaintenanceResultResponse{Processed: spawned})
}
