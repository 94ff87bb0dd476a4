package handler

import (
	"net/http"
	"time"

	receiptapp "github.com/estudio/backend/internal/application/receipt"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader carries the client-chosen key that makes receipt
// submission retry-safe. A retried request with the same key is rejected
// instead of consuming a second document number.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReceiptHandler handles receipt API endpoints
type ReceiptHandler struct {
	BaseHandler
	service     *receiptapp.ReceiptService
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(service *receiptapp.ReceiptService, store shared.IdempotencyStore, cfg shared.IdempotencyConfig) *ReceiptHandler {
	return &ReceiptHandler{
		service:     service,
		idempotency: store,
		idemConfig:  cfg,
	}
}

// CreateReceiptRequest represents a request to issue a receipt. An
// omitted issue date defaults to the current business day.
type CreateReceiptRequest struct {
	ClientID uuid.UUID                   `json:"client_id" binding:"required"`
	IssuedAt string                      `json:"issued_at" binding:"omitempty,datetime=2006-01-02"`
	Items    []receiptapp.ItemRequest    `json:"items" binding:"required,min=1,dive"`
	Payments []receiptapp.PaymentRequest `json:"payments" binding:"required,min=1,dive"`
}

// VoidLastRequest represents a request to void the latest receipt
type VoidLastRequest struct {
	Reason string `json:"reason"`
}

// ListReceiptsRequest represents filter parameters for the receipt list
type ListReceiptsRequest struct {
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Create issues a new receipt. The drawer for the issue date must be
// open; issuing never opens one. When an Idempotency-Key header is
// present the key is claimed before the service runs, so a retry of an
// already-processed request gets a 409 instead of a second number.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	if key := c.GetHeader(IdempotencyKeyHeader); key != "" && h.idempotency != nil && h.idemConfig.Enabled {
		fresh, err := h.idempotency.MarkProcessed(c.Request.Context(), key, h.idemConfig.TTL)
		if err != nil {
			h.InternalError(c, "Could not verify idempotency key")
			return
		}
		if !fresh {
			h.Conflict(c, "A request with this idempotency key was already processed")
			return
		}
	}

	var issuedAt time.Time
	if req.IssuedAt != "" {
		issuedAt, _ = time.Parse("2006-01-02", req.IssuedAt)
	}

	receipt, err := h.service.Create(c.Request.Context(), receiptapp.CreateReceiptRequest{
		ClientID:  req.ClientID,
		IssuedAt:  issuedAt,
		Items:     req.Items,
		Payments:  req.Payments,
		CreatedBy: actorID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, receipt)
}

// VoidLast voids the receipt holding the highest document number and
// hands its number back to the counter
func (h *ReceiptHandler) VoidLast(c *gin.Context) {
	var req VoidLastRequest
	c.ShouldBindJSON(&req) // body is optional, reason defaults to empty

	receipt, err := h.service.VoidLast(c.Request.Context(), receiptapp.VoidLastRequest{
		Reason:   req.Reason,
		VoidedBy: actorID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}

// Delete removes a receipt by ID. The counter is left untouched, so the
// deleted document number becomes a permanent gap in the sequence.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid receipt ID")
		return
	}

	if err := h.service.DeleteByID(c.Request.Context(), id, actorID(c)); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// FindUltimate returns the receipt with the highest document number
func (h *ReceiptHandler) FindUltimate(c *gin.Context) {
	receipt, err := h.service.FindUltimate(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}

// Get returns a receipt by ID
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid receipt ID")
		return
	}

	receipt, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}

// List returns a paginated list of receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	var req ListReceiptsRequest
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

	filter := receiptapp.ListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}
	if req.ClientID != "" {
		id, _ := uuid.Parse(req.ClientID)
		filter.ClientID = &id
	}
	if req.FromDate != "" {
		t, _ := time.Parse("2006-01-02", req.FromDate)
		filter.FromDate = &t
	}
	if req.ToDate != "" {
		t, _ := time.Parse("2006-01-02", req.ToDate)
		filter.ToDate = &t
	}

	receipts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, receipts, total, req.Page, req.PageSize)
}

// RegisterRoutes registers all receipt routes
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	{
		receipts.GET("", h.List)
		receipts.POST("", h.Create)
		receipts.GET("/ultimate", h.FindUltimate)
		receipts.POST("/void-last", h.VoidLast)
		receipts.GET("/:id", h.Get)
		receipts.DELETE("/:id", h.Delete)
	}
}
