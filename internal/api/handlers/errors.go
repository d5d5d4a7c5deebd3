package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
	"github.com/zunayedTheCreator/property-prospect-server/internal/storage"
)

// respondError maps service errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a 500 with the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, storage.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStoreTimeout):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store timed out, retry later"})
	default:
		log.Printf("%s: %v", fallback, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// Write results are reported in the shape the web client already parses.

func insertedResponse(id string) gin.H {
	return gin.H{"acknowledged": true, "insertedId": id}
}

func updatedResponse(wc services.WriteCount) gin.H {
	return gin.H{"acknowledged": true, "matchedCount": wc.Matched, "modifiedCount": wc.Modified}
}

func deletedResponse(n int64) gin.H {
	return gin.H{"acknowledged": true, "deletedCount": n}
}
