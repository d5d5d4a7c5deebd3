package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/middleware"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// RestReviewHandler handles REST requests related to reviews.
type RestReviewHandler struct {
	reviewService services.IReviewService
}

// NewRestReviewHandler creates a new RestReviewHandler.
func NewRestReviewHandler(reviewService services.IReviewService) *RestReviewHandler {
	return &RestReviewHandler{reviewService: reviewService}
}

// ListReviews handles GET /review (optionally ?property_id=...).
func (h *RestReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), c.Query("property_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// CreateReview handles POST /review
func (h *RestReviewHandler) CreateReview(c *gin.Context) {
	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	created, err := h.reviewService.CreateReview(c.Request.Context(), middleware.CallerEmail(c), &review)
	if err != nil {
		respondError(c, err, "Failed to create review")
		return
	}
	c.JSON(http.StatusOK, insertedResponse(created.ID.Hex()))
}

// DeleteReview handles DELETE /review/:id. Needs the identity resolved by
// middleware.RequireRole.
func (h *RestReviewHandler) DeleteReview(c *gin.Context) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	n, err := h.reviewService.DeleteReview(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete review")
		return
	}
	c.JSON(http.StatusOK, deletedResponse(n))
}
