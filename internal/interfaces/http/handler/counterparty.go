package handler

import (
	partnerapp "github.com/backoffice/backend/internal/application/partner"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CounterpartyHandler exposes customer and supplier records over HTTP
type CounterpartyHandler struct {
	BaseHandler
	service *partnerapp.CounterpartyService
}

// NewCounterpartyHandler creates a new CounterpartyHandler
func NewCounterpartyHandler(service *partnerapp.CounterpartyService) *CounterpartyHandler {
	return &CounterpartyHandler{service: service}
}

// List godoc
// @Summary      List counterparties by kind
// @Tags         counterparties
// @Produce      json
// @Param        kind query string true "Counterparty kind" Enums(CUSTOMER, SUPPLIER)
// @Success      200 {object} dto.Response{data=[]partnerapp.CounterpartyResponse}
// @Security     BearerAuth
func (h *CounterpartyHandler) List(c *gin.Context) {
	kind := partner.CounterpartyKind(c.Query("kind"))
	if kind != partner.CounterpartyKindCustomer && kind != partner.CounterpartyKindSupplier {
		h.BadRequest(c, "kind must be CUSTOMER or SUPPLIER")
		return
	}

	counterparties, err := h.service.ListByKind(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counterparties)
}

// GetByID godoc
// @Summary      Get counterparty by ID
// @Tags         counterparties
// @Produce      json
// @Param        id path string true "Counterparty ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.CounterpartyResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *CounterpartyHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid counterparty ID format")
		return
	}

	counterparty, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counterparty)
}

// Create godoc
// @Summary      Create a counterparty
// @Tags         counterparties
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateCounterpartyRequest true "Counterparty creation request"
// @Success      201 {object} dto.Response{data=partnerapp.CounterpartyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *CounterpartyHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	counterparty, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, counterparty)
}

// Update godoc
// @Summary      Update a counterparty
// @Tags         counterparties
// @Accept       json
// @Produce      json
// @Param        id path string true "Counterparty ID" format(uuid)
// @Param        request body partnerapp.UpdateCounterpartyRequest true "Counterparty update request"
// @Success      200 {object} dto.Response{data=partnerapp.CounterpartyResponse}
// @Security     BearerAuth
func (h *CounterpartyHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid counterparty ID format")
		return
	}

	var req partnerapp.UpdateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	counterparty, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counterparty)
}
