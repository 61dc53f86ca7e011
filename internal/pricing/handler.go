package pricing

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/common"
)

// Handler handles HTTP requests for pricing
type Handler struct {
	service *Service
}

// NewHandler creates a new pricing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers pricing routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/pricing/preview", h.Preview)
}

type previewRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date"`
	WithDriver   bool      `json:"with_driver"`
	Participants int       `json:"participants"`
	CouponCode   string    `json:"coupon_code"`
}

// Preview handles POST /pricing/preview
func (h *Handler) Preview(c *gin.Context) {
	var req previewRequest
	if !common.BindJSON(c, &req) {
		return
	}

	breakdown, err := h.service.Preview(c.Request.Context(), &Request{
		ProductID:    req.ProductID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		WithDriver:   req.WithDriver,
		Participants: req.Participants,
		CouponCode:   req.CouponCode,
	})
	if common.HandleServiceError(c, err, "failed to price booking") {
		return
	}

	common.SuccessResponse(c, breakdown)
}
