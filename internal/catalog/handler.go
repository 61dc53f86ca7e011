package catalog

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
	"github.com/sahalat/booking-engine/pkg/pagination"
)

// Handler handles HTTP requests for the product catalog
type Handler struct {
	service *Service
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers public catalog routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/rates", h.GetTierRates)
	}
}

// RegisterAdminRoutes registers catalog management routes
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.PUT("/:id/rates", h.PutTierRates)
		products.GET("/:id/discounts", h.ListDiscounts)
		products.POST("/:id/discounts", h.CreateDiscount)
	}
	discounts := router.Group("/discounts")
	{
		discounts.PUT("/:id", h.UpdateDiscount)
		discounts.DELETE("/:id", h.DeactivateDiscount)
	}
}

// ListProducts handles GET /products
func (h *Handler) ListProducts(c *gin.Context) {
	params := pagination.ParseParams(c)

	products, total, err := h.service.ListProducts(c.Request.Context(), params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list products") {
		return
	}

	common.SuccessResponseWithMeta(c, products, pagination.BuildMeta(params.Limit, params.Offset, int64(total)))
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), productID)
	if common.HandleServiceError(c, err, "failed to get product") {
		return
	}

	common.SuccessResponse(c, product)
}

type createProductRequest struct {
	Type          ProductType  `json:"product_type" binding:"required"`
	Name          string       `json:"name" binding:"required"`
	RatePerPerson *money.Money `json:"rate_per_person"`
	DurationDays  *int         `json:"duration_days"`
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if !common.BindJSON(c, &req) {
		return
	}

	product := &Product{
		Type:          req.Type,
		Name:          req.Name,
		RatePerPerson: req.RatePerPerson,
		DurationDays:  req.DurationDays,
		IsActive:      true,
	}

	if common.HandleServiceError(c, h.service.CreateProduct(c.Request.Context(), product), "failed to create product") {
		return
	}

	common.CreatedResponse(c, product)
}

// GetTierRates handles GET /products/:id/rates
func (h *Handler) GetTierRates(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	rates, err := h.service.GetTierRates(c.Request.Context(), productID)
	if common.HandleServiceError(c, err, "failed to get rate card") {
		return
	}
	if rates == nil {
		common.ErrorResponse(c, http.StatusNotFound, "no rate card for product")
		return
	}

	common.SuccessResponse(c, rates)
}

type putTierRatesRequest struct {
	PerDay             *money.Money `json:"per_day"`
	PerWeek            *money.Money `json:"per_week"`
	PerMonth           *money.Money `json:"per_month"`
	PerDayWithDriver   *money.Money `json:"per_day_with_driver"`
	PerWeekWithDriver  *money.Money `json:"per_week_with_driver"`
	PerMonthWithDriver *money.Money `json:"per_month_with_driver"`
}

// PutTierRates handles PUT /products/:id/rates
func (h *Handler) PutTierRates(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	var req putTierRatesRequest
	if !common.BindJSON(c, &req) {
		return
	}

	rates := &TierRates{
		ProductID:          productID,
		PerDay:             req.PerDay,
		PerWeek:            req.PerWeek,
		PerMonth:           req.PerMonth,
		PerDayWithDriver:   req.PerDayWithDriver,
		PerWeekWithDriver:  req.PerWeekWithDriver,
		PerMonthWithDriver: req.PerMonthWithDriver,
	}

	if common.HandleServiceError(c, h.service.PutTierRates(c.Request.Context(), rates), "failed to save rate card") {
		return
	}

	common.SuccessResponse(c, rates)
}

type discountRequest struct {
	Type      DiscountType   `json:"discount_type" binding:"required"`
	Percent   *money.Percent `json:"percent"`
	Amount    *money.Money   `json:"amount"`
	ValidFrom time.Time      `json:"valid_from" binding:"required"`
	ValidTo   time.Time      `json:"valid_to" binding:"required"`
}

// ListDiscounts handles GET /products/:id/discounts
func (h *Handler) ListDiscounts(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	discounts, err := h.service.ListDiscounts(c.Request.Context(), productID)
	if common.HandleServiceError(c, err, "failed to list discounts") {
		return
	}

	common.SuccessResponse(c, discounts)
}

// CreateDiscount handles POST /products/:id/discounts
func (h *Handler) CreateDiscount(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	var req discountRequest
	if !common.BindJSON(c, &req) {
		return
	}

	discount := &Discount{
		ProductID: productID,
		Type:      req.Type,
		Percent:   req.Percent,
		Amount:    req.Amount,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		IsActive:  true,
	}

	if common.HandleServiceError(c, h.service.CreateDiscount(c.Request.Context(), discount), "failed to create discount") {
		return
	}

	common.CreatedResponse(c, discount)
}

type updateDiscountRequest struct {
	ProductID uuid.UUID      `json:"product_id" binding:"required"`
	Type      DiscountType   `json:"discount_type" binding:"required"`
	Percent   *money.Percent `json:"percent"`
	Amount    *money.Money   `json:"amount"`
	ValidFrom time.Time      `json:"valid_from" binding:"required"`
	ValidTo   time.Time      `json:"valid_to" binding:"required"`
	IsActive  *bool          `json:"is_active"`
}

// UpdateDiscount handles PUT /discounts/:id
func (h *Handler) UpdateDiscount(c *gin.Context) {
	discountID, ok := common.ParseUUIDParam(c, "id", "discount ID")
	if !ok {
		return
	}

	var req updateDiscountRequest
	if !common.BindJSON(c, &req) {
		return
	}

	discount := &Discount{
		ID:        discountID,
		ProductID: req.ProductID,
		Type:      req.Type,
		Percent:   req.Percent,
		Amount:    req.Amount,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		IsActive:  true,
	}
	if req.IsActive != nil {
		discount.IsActive = *req.IsActive
	}

	if common.HandleServiceError(c, h.service.UpdateDiscount(c.Request.Context(), discount), "failed to update discount") {
		return
	}

	common.SuccessResponse(c, discount)
}

// DeactivateDiscount handles DELETE /discounts/:id
func (h *Handler) DeactivateDiscount(c *gin.Context) {
	discountID, ok := common.ParseUUIDParam(c, "id", "discount ID")
	if !ok {
		return
	}

	if common.HandleServiceError(c, h.service.DeactivateDiscount(c.Request.Context(), discountID), "failed to deactivate discount") {
		return
	}

	common.SuccessResponse(c, gin.H{"deactivated": true})
}
