package bookings

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/internal/pricing"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/middleware"
	"github.com/sahalat/booking-engine/pkg/pagination"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers user-facing booking routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}

// RegisterAdminRoutes registers booking management routes
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	{
		bookings.GET("", h.ListAllBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/complete", h.CompleteBooking)
	}
	router.POST("/bookings/sweep-completed", h.SweepCompleted)
}

// RegisterInternalRoutes registers payment callback routes, reachable only
// with the internal API key.
func (h *Handler) RegisterInternalRoutes(router *gin.RouterGroup) {
	router.POST("/bookings/:id/payment-succeeded", h.PaymentSucceeded)
	router.POST("/bookings/:id/payment-failed", h.PaymentFailed)
}

type createBookingRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date"`
	WithDriver   bool      `json:"with_driver"`
	Participants int       `json:"participants"`
	CouponCode   string    `json:"coupon_code"`
}

// CreateBooking handles POST /bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if !common.BindJSON(c, &req) {
		return
	}

	booking, session, err := h.service.Create(c.Request.Context(), userID, &pricing.Request{
		ProductID:    req.ProductID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		WithDriver:   req.WithDriver,
		Participants: req.Participants,
		CouponCode:   req.CouponCode,
	})
	if common.HandleServiceError(c, err, "failed to create booking") {
		return
	}

	payload := gin.H{"booking": booking}
	if session != nil {
		payload["payment"] = gin.H{
			"ref":           session.Ref,
			"client_secret": session.ClientSecret,
		}
	}

	common.CreatedResponse(c, payload)
}

// GetBooking handles GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	booking, err := h.service.GetByID(c.Request.Context(), bookingID, userID, isAdmin(c))
	if common.HandleServiceError(c, err, "failed to get booking") {
		return
	}

	common.SuccessResponse(c, booking)
}

// ListMyBookings handles GET /bookings
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	params := pagination.ParseParams(c)

	bookings, total, err := h.service.ListByUser(c.Request.Context(), userID, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list bookings") {
		return
	}

	common.SuccessResponseWithMeta(c, bookings, pagination.BuildMeta(params.Limit, params.Offset, int64(total)))
}

// ListAllBookings handles GET /admin/bookings
func (h *Handler) ListAllBookings(c *gin.Context) {
	params := pagination.ParseParams(c)
	status := Status(c.Query("status"))

	bookings, total, err := h.service.ListAll(c.Request.Context(), status, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list bookings") {
		return
	}

	common.SuccessResponseWithMeta(c, bookings, pagination.BuildMeta(params.Limit, params.Offset, int64(total)))
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	booking, err := h.service.Cancel(c.Request.Context(), bookingID, userID, isAdmin(c))
	if common.HandleServiceError(c, err, "failed to cancel booking") {
		return
	}

	common.SuccessResponse(c, booking)
}

// CompleteBooking handles POST /admin/bookings/:id/complete
func (h *Handler) CompleteBooking(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	booking, err := h.service.Complete(c.Request.Context(), bookingID)
	if common.HandleServiceError(c, err, "failed to complete booking") {
		return
	}

	common.SuccessResponse(c, booking)
}

// SweepCompleted handles POST /admin/bookings/sweep-completed
func (h *Handler) SweepCompleted(c *gin.Context) {
	swept, err := h.service.SweepCompleted(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to sweep bookings") {
		return
	}

	common.SuccessResponse(c, gin.H{"completed": swept})
}

type paymentSucceededRequest struct {
	PaymentRef string `json:"payment_ref"`
}

// PaymentSucceeded handles the gateway success callback
func (h *Handler) PaymentSucceeded(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	var req paymentSucceededRequest
	if !common.BindJSON(c, &req) {
		return
	}

	booking, err := h.service.ConfirmPayment(c.Request.Context(), bookingID, req.PaymentRef)
	if common.HandleServiceError(c, err, "failed to confirm payment") {
		return
	}

	common.SuccessResponse(c, booking)
}

type paymentFailedRequest struct {
	Message string `json:"message" binding:"required"`
}

// PaymentFailed handles the gateway failure callback
func (h *Handler) PaymentFailed(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "id", "booking ID")
	if !ok {
		return
	}

	var req paymentFailedRequest
	if !common.BindJSON(c, &req) {
		return
	}

	if common.HandleServiceError(c, h.service.FailPayment(c.Request.Context(), bookingID, req.Message), "failed to record payment failure") {
		return
	}

	common.SuccessResponse(c, gin.H{"recorded": true})
}

func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("user_role")
	return exists && role == middleware.RoleAdmin
}
