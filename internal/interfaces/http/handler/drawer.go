package handler

import (
	"net/http"
	"time"

	cashboxapp "github.com/estudio/backend/internal/application/cashbox"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DrawerHandler handles cash drawer API endpoints
type DrawerHandler struct {
	BaseHandler
	service *cashboxapp.DrawerService
}

// NewDrawerHandler creates a new DrawerHandler
func NewDrawerHandler(service *cashboxapp.DrawerService) *DrawerHandler {
	return &DrawerHandler{service: service}
}

// OpenDrawerRequest represents a request to open the drawer for a date
type OpenDrawerRequest struct {
	Date           string          `json:"date" binding:"required,datetime=2006-01-02"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ManualMovementRequest represents a hand-entered cash adjustment
type ManualMovementRequest struct {
	Date   string          `json:"date" binding:"required,datetime=2006-01-02"`
	Kind   string          `json:"kind" binding:"required,oneof=INFLOW OUTFLOW"`
	Label  string          `json:"label" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CloseDrawerRequest optionally overrides the derived closing balance
type CloseDrawerRequest struct {
	ClosingBalance *decimal.Decimal `json:"closing_balance"`
}

// DrawerSummaryRequest selects an optional page window over the
// movement list, most-recent first
type DrawerSummaryRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// DrawerRangeRequest bounds a drawer listing to a date range
type DrawerRangeRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

// Open opens the drawer for a date. Opening twice is a no-op that
// returns the existing drawer.
func (h *DrawerHandler) Open(c *gin.Context) {
	var req OpenDrawerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	drawer, err := h.service.Open(c.Request.Context(), cashboxapp.OpenDrawerRequest{
		Date:           date,
		OpeningBalance: req.OpeningBalance,
		OpenedBy:       actorID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, drawer)
}

// Close closes the drawer for a date. The closing balance is derived
// from the movements unless the body supplies an explicit override.
func (h *DrawerHandler) Close(c *gin.Context) {
	date, err := parseDateParam(c, "date")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var req CloseDrawerRequest
	c.ShouldBindJSON(&req) // body is optional, balance defaults to the derived value

	drawer, err := h.service.Close(c.Request.Context(), date, req.ClosingBalance, actorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, drawer)
}

// Reopen reopens a previously closed drawer
func (h *DrawerHandler) Reopen(c *gin.Context) {
	date, err := parseDateParam(c, "date")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid date, expected YYYY-MM-DD")
		return
	}

	drawer, err := h.service.Reopen(c.Request.Context(), date, actorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, drawer)
}

// Summary returns the drawer for a date with its movements and derived
// balance, optionally sliced to a page window
func (h *DrawerHandler) Summary(c *gin.Context) {
	date, err := parseDateParam(c, "date")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var req DrawerSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), date, req.Page, req.Limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListRange lists drawers within an inclusive date range
func (h *DrawerHandler) ListRange(c *gin.Context) {
	var req DrawerRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	from, _ := time.Parse("2006-01-02", req.From)
	to, _ := time.Parse("2006-01-02", req.To)

	drawers, err := h.service.ListRange(c.Request.Context(), from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, drawers)
}

// AddManualMovement records a hand-entered cash adjustment on an open drawer
func (h *DrawerHandler) AddManualMovement(c *gin.Context) {
	var req ManualMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	summary, err := h.service.AddManualMovement(c.Request.Context(), cashboxapp.ManualMovementRequest{
		Date:   date,
		Kind:   req.Kind,
		Label:  req.Label,
		Amount: req.Amount,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, summary)
}

// AutoCloseStale closes every stale open drawer older than the current
// business day. The scheduler runs the same sweep nightly; this
// endpoint exists for manual catch-up.
func (h *DrawerHandler) AutoCloseStale(c *gin.Context) {
	result, err := h.service.AutoCloseStale(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListStale reports the drawers still open on past dates — the same
// candidates the sweep would close — without closing them.
func (h *DrawerHandler) ListStale(c *gin.Context) {
	drawers, err := h.service.ListOpenBefore(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, drawers)
}

// RegisterRoutes registers all drawer routes
func (h *DrawerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	drawers := rg.Group("/drawers")
	{
		drawers.GET("", h.ListRange)
		drawers.POST("", h.Open)
		drawers.POST("/movements", h.AddManualMovement)
		drawers.GET("/stale", h.ListStale)
		drawers.POST("/auto-close", h.AutoCloseStale)
		drawers.GET("/:date", h.Summary)
		drawers.POST("/:date/close", h.Close)
		drawers.POST("/:date/reopen", h.Reopen)
	}
}
