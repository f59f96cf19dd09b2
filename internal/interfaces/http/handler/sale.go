package handler

import (
	salesapp "github.com/backoffice/backend/internal/application/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaleHandler exposes the sales lifecycle over HTTP
type SaleHandler struct {
	BaseHandler
	service *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(service *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        search query string false "Search term (sale number, customer name)"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        status query string false "Status" Enums(DRAFT, FINALIZED, CANCELLED)
// @Param        issued_from query string false "Issue date lower bound (RFC 3339)"
// @Param        issued_to query string false "Issue date upper bound (RFC 3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse,meta=dto.Meta}
// @Security     BearerAuth
func (h *SaleHandler) List(c *gin.Context) {
	var filter salesapp.SaleListFilter
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

	sales, total, err := h.service.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get sale by ID
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.service.GetSaleByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Create godoc
// @Summary      Create a sale
// @Description  Register a sale in draft status. A matching receivable is
// @Description  created in the ledger as soon as the sale exists.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body salesapp.CreateSaleRequest true "Sale creation request"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *SaleHandler) Create(c *gin.Context) {
	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Finalize godoc
// @Summary      Finalize a sale
// @Description  Close the sale. Cash sales auto-settle their receivable;
// @Description  on-credit sales leave it open until paid.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *SaleHandler) Finalize(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.service.FinalizeSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Cancel godoc
// @Summary      Cancel a sale
// @Description  Cancel the sale and void its receivable, including
// @Description  receivables that were already partially settled
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.service.CancelSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}
