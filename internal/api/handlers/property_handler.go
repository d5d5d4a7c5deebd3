package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/middleware"
	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
	"github.com/zunayedTheCreator/property-prospect-server/internal/storage"
)

// RestPropertyHandler handles REST requests related to listings.
type RestPropertyHandler struct {
	cfg             *config.Config
	propertyService services.IPropertyService
	userService     services.IUserService
	storage         storage.IS3Storage
}

// NewRestPropertyHandler creates a new RestPropertyHandler.
func NewRestPropertyHandler(
	cfg *config.Config,
	propertyService services.IPropertyService,
	userService services.IUserService,
	storage storage.IS3Storage,
) *RestPropertyHandler {
	return &RestPropertyHandler{
		cfg:             cfg,
		propertyService: propertyService,
		userService:     userService,
		storage:         storage,
	}
}

// ListProperties handles GET /property. ?verified=true limits the result to
// listings an admin has verified.
func (h *RestPropertyHandler) ListProperties(c *gin.Context) {
	verifiedOnly := c.Query("verified") == "true"
	properties, err := h.propertyService.ListProperties(c.Request.Context(), verifiedOnly)
	if err != nil {
		respondError(c, err, "Failed to retrieve properties")
		return
	}
	c.JSON(http.StatusOK, properties)
}

// ListAdvertised handles GET /advertisement
func (h *RestPropertyHandler) ListAdvertised(c *gin.Context) {
	properties, err := h.propertyService.ListAdvertised(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve advertisements")
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetProperty handles GET /property/:id
func (h *RestPropertyHandler) GetProperty(c *gin.Context) {
	property, err := h.propertyService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve property")
		return
	}
	c.JSON(http.StatusOK, property)
}

// ListByAgent handles GET /property/agent/:email
func (h *RestPropertyHandler) ListByAgent(c *gin.Context) {
	caller := middleware.CallerEmail(c)
	if !strings.EqualFold(c.Param("email"), caller) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
		return
	}
	properties, err := h.propertyService.ListByAgent(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to retrieve properties")
		return
	}
	c.JSON(http.StatusOK, properties)
}

// CreatePropertyRequest is the body of POST /property.
type CreatePropertyRequest struct {
	Title       string            `json:"title"`
	Location    string            `json:"location"`
	Image       string            `json:"image"`
	Description string            `json:"description"`
	PriceRange  models.PriceRange `json:"price_range"`
}

// CreateProperty handles POST /property. The listing is attributed to the
// calling agent; new listings always start unverified.
func (h *RestPropertyHandler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	agent, err := h.userService.FindByEmail(c.Request.Context(), middleware.CallerEmail(c))
	if err != nil {
		respondError(c, err, "Failed to load agent")
		return
	}

	property := &models.Property{
		Title:       req.Title,
		Location:    req.Location,
		Image:       req.Image,
		Description: req.Description,
		PriceRange:  req.PriceRange,
	}
	created, err := h.propertyService.CreateProperty(c.Request.Context(), agent, property)
	if err != nil {
		respondError(c, err, "Failed to create property")
		return
	}
	c.JSON(http.StatusOK, insertedResponse(created.ID.Hex()))
}

func (h *RestPropertyHandler) setVerification(c *gin.Context, status models.VerificationStatus) {
	wc, err := h.propertyService.SetVerification(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err, "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, updatedResponse(wc))
}

// VerifyProperty handles PATCH /property/verify/:id
func (h *RestPropertyHandler) VerifyProperty(c *gin.Context) {
	h.setVerification(c, models.VerificationVerified)
}

// RejectProperty handles PATCH /property/reject/:id
func (h *RestPropertyHandler) RejectProperty(c *gin.Context) {
	h.setVerification(c, models.VerificationRejected)
}

// AdvertiseProperty handles PATCH /property/advertise/:id
func (h *RestPropertyHandler) AdvertiseProperty(c *gin.Context) {
	wc, err := h.propertyService.Advertise(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to advertise property")
		return
	}
	c.JSON(http.StatusOK, updatedResponse(wc))
}

// DeleteProperty handles DELETE /property/:id
func (h *RestPropertyHandler) DeleteProperty(c *gin.Context) {
	n, err := h.propertyService.DeleteProperty(c.Request.Context(), middleware.CallerEmail(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete property")
		return
	}
	c.JSON(http.StatusOK, deletedResponse(n))
}

// UploadImage handles POST /property/:id/image (multipart field "image").
func (h *RestPropertyHandler) UploadImage(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CallerEmail(c)
	id := c.Param("id")

	property, err := h.propertyService.FindByID(ctx, id)
	if err != nil {
		respondError(c, err, "Failed to retrieve property")
		return
	}
	if !strings.EqualFold(property.AgentEmail, caller) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	maxBytes := int64(h.cfg.ImageMaxSizeMB) << 20
	if fileHeader.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err, "Failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respondError(c, err, "Failed to read upload")
		return
	}

	url, _, err := h.storage.PutImage(ctx, caller, id, data)
	if err != nil {
		respondError(c, err, "Failed to store image")
		return
	}
	wc, err := h.propertyService.AddImage(ctx, caller, id, url)
	if err != nil {
		respondError(c, err, "Failed to attach image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "matchedCount": wc.Matched, "modifiedCount": wc.Modified})
}
