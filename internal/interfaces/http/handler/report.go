package handler

import (
	"time"

	ledgerapp "github.com/backoffice/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the ledger reporting queries over HTTP
type ReportHandler struct {
	BaseHandler
	service *ledgerapp.ReportingService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *ledgerapp.ReportingService) *ReportHandler {
	return &ReportHandler{service: service}
}

// parsePeriod reads the from/to query parameters. Missing bounds default
// to the current calendar month.
func (h *ReportHandler) parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date format")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDateTime(raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date format")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	if to.Before(from) {
		h.BadRequest(c, "to must not precede from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// GetPeriodSummary godoc
// @Summary      Get period ledger summary
// @Description  Aggregate both polarities over a period: amounts due,
// @Description  amounts settled, outstanding totals, overdue counts and
// @Description  the net position
// @Tags         reports
// @Produce      json
// @Param        from query string false "Period start (RFC 3339, default start of month)"
// @Param        to query string false "Period end (RFC 3339, default end of month)"
// @Success      200 {object} dto.Response{data=ledgerapp.LedgerSummary}
// @Security     BearerAuth
func (h *ReportHandler) GetPeriodSummary(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.service.GetPeriodSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetPayableSummary godoc
// @Summary      Get payable summary for a period
// @Tags         reports
// @Produce      json
// @Param        from query string false "Period start (RFC 3339, default start of month)"
// @Param        to query string false "Period end (RFC 3339, default end of month)"
// @Success      200 {object} dto.Response{data=ledgerapp.PolaritySummary}
// @Security     BearerAuth
func (h *ReportHandler) GetPayableSummary(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.service.GetPayableSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetReceivableSummary godoc
// @Summary      Get receivable summary for a period
// @Tags         reports
// @Produce      json
// @Param        from query string false "Period start (RFC 3339, default start of month)"
// @Param        to query string false "Period end (RFC 3339, default end of month)"
// @Success      200 {object} dto.Response{data=ledgerapp.PolaritySummary}
// @Security     BearerAuth
func (h *ReportHandler) GetReceivableSummary(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	summary, err := h.service.GetReceivableSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
