package reviews

import (
	"github.com/gin-gonic/gin"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/pagination"
)

// Handler handles HTTP requests for reviews
type Handler struct {
	service *Service
}

// NewHandler creates a new reviews handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes registers routes that need no authentication
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/reviews", h.ListReviews)
	router.GET("/products/:id/reviews/summary", h.GetSummary)
}

// RegisterRoutes registers authenticated review routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/reviews/eligibility", h.CheckEligibility)
	router.POST("/products/:id/reviews", h.SubmitReview)
}

// ListReviews handles GET /products/:id/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}
	params := pagination.ParseParams(c)

	reviews, total, err := h.service.ListByProduct(c.Request.Context(), productID, params.Limit, params.Offset)
	if common.HandleServiceError(c, err, "failed to list reviews") {
		return
	}

	common.SuccessResponseWithMeta(c, reviews, pagination.BuildMeta(params.Limit, params.Offset, int64(total)))
}

// GetSummary handles GET /products/:id/reviews/summary
func (h *Handler) GetSummary(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), productID)
	if common.HandleServiceError(c, err, "failed to get review summary") {
		return
	}

	common.SuccessResponse(c, summary)
}

// CheckEligibility handles GET /products/:id/reviews/eligibility
func (h *Handler) CheckEligibility(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	canReview, err := h.service.CanReview(c.Request.Context(), productID, userID)
	if common.HandleServiceError(c, err, "failed to check review eligibility") {
		return
	}

	common.SuccessResponse(c, gin.H{"can_review": canReview})
}

type submitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SubmitReview handles POST /products/:id/reviews
func (h *Handler) SubmitReview(c *gin.Context) {
	productID, ok := common.ParseUUIDParam(c, "id", "product ID")
	if !ok {
		return
	}
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req submitReviewRequest
	if !common.BindJSON(c, &req) {
		return
	}

	review, err := h.service.Submit(c.Request.Context(), productID, userID, req.Rating, req.Comment)
	if common.HandleServiceError(c, err, "failed to submit review") {
		return
	}

	common.CreatedResponse(c, review)
}
