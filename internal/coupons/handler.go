package coupons

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
	"github.com/sahalat/booking-engine/pkg/pagination"
)

// Handler handles HTTP requests for coupons
type Handler struct {
	service *Service
}

// NewHandler creates a new coupons handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers user-facing coupon routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/coupons/validate", h.ValidateCoupon)
}

// RegisterAdminRoutes registers coupon management routes
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	coupons := router.Group("/coupons")
	{
		coupons.GET("", h.ListCoupons)
		coupons.POST("", h.CreateCoupon)
		coupons.GET("/:id", h.GetCoupon)
		coupons.PUT("/:id", h.UpdateCoupon)
		coupons.DELETE("/:id", h.DeactivateCoupon)
		coupons.GET("/:id/stats", h.GetCouponStats)
	}
}

type validateCouponRequest struct {
	Code   string      `json:"code" binding:"required"`
	Amount money.Money `json:"amount" binding:"required"`
}

// ValidateCoupon handles POST /coupons/validate
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if !common.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Validate(c.Request.Context(), req.Code, req.Amount)
	if common.HandleServiceError(c, err, "failed to validate coupon") {
		return
	}

	common.SuccessResponse(c, result)
}

type couponRequest struct {
	Code             string         `json:"code"`
	Type             CouponType     `json:"coupon_type" binding:"required"`
	Percent          *money.Percent `json:"percent"`
	Amount           *money.Money   `json:"amount"`
	MinBookingAmount *money.Money   `json:"min_booking_amount"`
	MaxUsages        *int           `json:"max_usages"`
	ExpiresAt        *time.Time     `json:"expires_at"`
	IsActive         *bool          `json:"is_active"`
}

// CreateCoupon handles POST /coupons
func (h *Handler) CreateCoupon(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req couponRequest
	if !common.BindJSON(c, &req) {
		return
	}

	coupon := &Coupon{
		Code:             req.Code,
		CreatedBy:        &userID,
		Type:             req.Type,
		Percent:          req.Percent,
		Amount:           req.Amount,
		MinBookingAmount: req.MinBookingAmount,
		MaxUsages:        req.MaxUsages,
		ExpiresAt:        req.ExpiresAt,
		IsActive:         true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if common.HandleServiceError(c, h.service.Create(c.Request.Context(), coupon), "failed to create coupon") {
		return
	}

	common.CreatedResponse(c, coupon)
}

// GetCoupon handles GET /coupons/:id
func (h *Handler) GetCoupon(c *gin.Context) {
	couponID, ok := common.ParseUUIDParam(c, "id", "coupon ID")
	if !ok {
		return
	}

	coupon, err := h.service.GetByID(c.Request.Context(), couponID)
	if common.HandleServiceError(c, err, "failed to get coupon") {
		return
	}

	common.SuccessResponse(c, coupon)
}

// UpdateCoupon handles PUT /coupons/:id
func (h *Handler) UpdateCoupon(c *gin.Context) {
	couponID, ok := common.ParseUUIDParam(c, "id", "coupon ID")
	if !ok {
		return
	}

	var req couponRequest
	if !common.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), couponID)
	if common.HandleServiceError(c, err, "failed to get coupon") {
		return
	}

	existing.Type = req.Type
	existing.Percent = req.Percent
	existing.Amount = req.Amount
	existing.MinBookingAmount = req.MinBookingAmount
	existing.MaxUsages = req.MaxUsages
	existing.ExpiresAt = req.ExpiresAt
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if common.HandleServiceError(c, h.service.Update(c.Request.Context(), existing), "failed to update coupon") {
		return
	}

	common.SuccessResponse(c, existing)
}

// DeactivateCoupon handles DELETE /coupons/:id
func (h *Handler) DeactivateCoupon(c *gin.Context) {
	couponID, ok := common.ParseUUIDParam(c, "id", "coupon ID")
	if !ok {
		return
	}

	if common.HandleServiceError(c, h.service.Deactivate(c.Request.Context(), couponID), "failed to deactivate coupon") {
		return
	}

	common.SuccessResponse(c, gin.H{"deactivated": true})
}

// GetCouponStats handles GET /coupons/:id/stats
func (h *Handler) GetCouponStats(c *gin.Context) {
	couponID, ok := common.ParseUUIDParam(c, "id", "coupon ID")
	if !ok {
		return
	}

	stats, err := h.service.GetUsageStats(c.Request.Context(), couponID)
	if common.HandleServiceError(c, err, "failed to get coupon stats") {
		return
	}

	common.SuccessResponse(c, stats)
}

// ListCoupons handles GET /coupons
func (h *Handler) ListCoupons(c *gin.Context) {
	params := pagination.ParseParams(c)

	coupons, total, err := h.service.List(c.Request.Context(), params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list coupons") {
		return
	}

	common.SuccessResponseWithMeta(c, coupons, pagination.BuildMeta(params.Limit, params.Offset, int64(total)))
}
