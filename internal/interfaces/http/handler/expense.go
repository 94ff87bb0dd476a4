package handler

import (
	"net/http"
	"time"

	expenseapp "github.com/estudio/backend/internal/application/expense"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense API endpoints
type ExpenseHandler struct {
	BaseHandler
	service *expenseapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service *expenseapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Description      string                    `json:"description" binding:"required"`
	Amount           decimal.Decimal           `json:"amount" binding:"required"`
	Date             string                    `json:"date" binding:"required,datetime=2006-01-02"`
	Splits           []expenseapp.SplitRequest `json:"splits" binding:"required,min=1,dive"`
	AutoOpenIfClosed bool                      `json:"auto_open_if_closed"`
}

// UpdateExpenseRequest represents a request to update an expense
type UpdateExpenseRequest struct {
	Description string                    `json:"description" binding:"required"`
	Amount      decimal.Decimal           `json:"amount" binding:"required"`
	Splits      []expenseapp.SplitRequest `json:"splits" binding:"required,min=1,dive"`
}

// ListExpensesRequest represents filter parameters for the expense list
type ListExpensesRequest struct {
	Search   string `form:"search"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Create records a new expense. A missing drawer for the expense date
// is opened on the fly with a zero opening balance; a closed drawer
// rejects the expense unless the request asked to reopen it.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	expense, err := h.service.Create(c.Request.Context(), expenseapp.CreateExpenseRequest{
		Description:      req.Description,
		Amount:           req.Amount,
		Date:             date,
		Splits:           req.Splits,
		AutoOpenIfClosed: req.AutoOpenIfClosed,
		CreatedBy:        actorID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, expense)
}

// Update rewrites an expense's description, amount and payment splits.
// Splits are replaced wholesale; cash movements are left untouched.
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid expense ID")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	expense, err := h.service.Update(c.Request.Context(), id, expenseapp.UpdateExpenseRequest{
		Description: req.Description,
		Amount:      req.Amount,
		Splits:      req.Splits,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// Delete removes an expense together with its cash movements
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid expense ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Get returns an expense by ID
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid expense ID")
		return
	}

	expense, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// List returns a paginated list of expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := expenseapp.ListFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if req.FromDate != "" {
		t, _ := time.Parse("2006-01-02", req.FromDate)
		filter.FromDate = &t
	}
	if req.ToDate != "" {
		t, _ := time.Parse("2006-01-02", req.ToDate)
		filter.ToDate = &t
	}

	expenses, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, expenses, total, req.Page, req.PageSize)
}

// RegisterRoutes registers all expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.List)
		expenses.POST("", h.Create)
		expenses.GET("/:id", h.Get)
		expenses.PUT("/:id", h.Update)
		expenses.DELETE("/:id", h.Delete)
	}
}
