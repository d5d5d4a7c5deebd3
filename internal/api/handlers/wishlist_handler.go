package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/middleware"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// RestWishlistHandler handles REST requests related to wishlists.
type RestWishlistHandler struct {
	wishlistService services.IWishlistService
}

// NewRestWishlistHandler creates a new RestWishlistHandler.
func NewRestWishlistHandler(wishlistService services.IWishlistService) *RestWishlistHandler {
	return &RestWishlistHandler{wishlistService: wishlistService}
}

// ListWishlist handles GET /wishlist (optionally ?email=...).
func (h *RestWishlistHandler) ListWishlist(c *gin.Context) {
	items, err := h.wishlistService.ListWishlist(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, err, "Failed to retrieve wishlist")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetWishlistItem handles GET /wishlist/:id
func (h *RestWishlistHandler) GetWishlistItem(c *gin.Context) {
	item, err := h.wishlistService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve wishlist item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// AddToWishlist handles POST /wishlist
func (h *RestWishlistHandler) AddToWishlist(c *gin.Context) {
	var item models.WishlistItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	created, err := h.wishlistService.AddToWishlist(c.Request.Context(), middleware.CallerEmail(c), &item)
	if err != nil {
		respondError(c, err, "Failed to add to wishlist")
		return
	}
	c.JSON(http.StatusOK, insertedResponse(created.ID.Hex()))
}

// RemoveFromWishlist handles DELETE /wishlist/:id
func (h *RestWishlistHandler) RemoveFromWishlist(c *gin.Context) {
	n, err := h.wishlistService.RemoveFromWishlist(c.Request.Context(), middleware.CallerEmail(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to remove from wishlist")
		return
	}
	c.JSON(http.StatusOK, deletedResponse(n))
}
