package handler

import (
	"net/http"
	"strconv"
	"time"

	reportapp "github.com/estudio/backend/internal/application/report"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles reporting API endpoints
type ReportHandler struct {
	BaseHandler
	service *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ReportRangeRequest bounds a report to a date range. An empty range
// defaults to the last 30 days.
type ReportRangeRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (r ReportRangeRequest) toFilter() reportapp.RangeFilter {
	var filter reportapp.RangeFilter
	if r.From != "" {
		t, _ := time.Parse("2006-01-02", r.From)
		filter.From = &t
	}
	if r.To != "" {
		t, _ := time.Parse("2006-01-02", r.To)
		filter.To = &t
	}
	return filter
}

// CashEvolution returns daily inflow/outflow/net totals for a date range
func (h *ReportHandler) CashEvolution(c *gin.Context) {
	var req ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	report, err := h.service.CashEvolution(c.Request.Context(), req.toFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// TopExpenseConcepts returns the highest-spend expense descriptions for
// a date range
func (h *ReportHandler) TopExpenseConcepts(c *gin.Context) {
	var req ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	rows, err := h.service.TopExpenseConcepts(c.Request.Context(), req.toFilter(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rows)
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/cash-evolution", h.CashEvolution)
		reports.GET("/top-concepts", h.TopExpenseConcepts)
	}
}
