package handler

import (
	"net/http"

	catalogapp "github.com/estudio/backend/internal/application/catalog"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler handles client, payment method and concept API endpoints
type CatalogHandler struct {
	BaseHandler
	service *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) bindListFilter(c *gin.Context) (catalogapp.ListFilter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return catalogapp.ListFilter{}, false
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	return catalogapp.ListFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	}, true
}

func (h *CatalogHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// ===================== Clients =====================

// CreateClient creates a new client
func (h *CatalogHandler) CreateClient(c *gin.Context) {
	var req catalogapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	client, err := h.service.CreateClient(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, client)
}

// UpdateClient updates an existing client
func (h *CatalogHandler) UpdateClient(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req catalogapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	client, err := h.service.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// GetClient returns a client by ID
func (h *CatalogHandler) GetClient(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	client, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// ListClients returns a paginated list of clients
func (h *CatalogHandler) ListClients(c *gin.Context) {
	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	clients, total, err := h.service.ListClients(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// DeleteClient removes a client
func (h *CatalogHandler) DeleteClient(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteClient(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ===================== Payment Methods =====================

// CreatePaymentMethod creates a new payment method
func (h *CatalogHandler) CreatePaymentMethod(c *gin.Context) {
	var req catalogapp.CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	method, err := h.service.CreatePaymentMethod(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, method)
}

// ListPaymentMethods returns all payment methods
func (h *CatalogHandler) ListPaymentMethods(c *gin.Context) {
	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	methods, err := h.service.ListPaymentMethods(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, methods)
}

// DeletePaymentMethod removes a payment method
func (h *CatalogHandler) DeletePaymentMethod(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePaymentMethod(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ===================== Concepts =====================

// CreateConcept creates a new billing concept
func (h *CatalogHandler) CreateConcept(c *gin.Context) {
	var req catalogapp.CreateConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	concept, err := h.service.CreateConcept(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, concept)
}

// ListConcepts returns all billing concepts
func (h *CatalogHandler) ListConcepts(c *gin.Context) {
	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	concepts, err := h.service.ListConcepts(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, concepts)
}

// DeleteConcept removes a billing concept
func (h *CatalogHandler) DeleteConcept(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteConcept(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients")
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}

	methods := rg.Group("/payment-methods")
	{
		methods.GET("", h.ListPaymentMethods)
		methods.POST("", h.CreatePaymentMethod)
		methods.DELETE("/:id", h.DeletePaymentMethod)
	}

	concepts := rg.Group("/concepts")
	{
		concepts.GET("", h.ListConcepts)
		concepts.POST("", h.CreateConcept)
		concepts.DELETE("/:id", h.DeleteConcept)
	}
}
