package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/middleware"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// RestPurchaseHandler serves the purchase request ("brought property") routes.
type RestPurchaseHandler struct {
	ledger services.IPurchaseLedger
}

// NewRestPurchaseHandler creates a new RestPurchaseHandler.
func NewRestPurchaseHandler(ledger services.IPurchaseLedger) *RestPurchaseHandler {
	return &RestPurchaseHandler{ledger: ledger}
}

// ListAll handles GET /brought-property
func (h *RestPurchaseHandler) ListAll(c *gin.Context) {
	requests, err := h.ledger.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve purchase requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Get handles GET /brought-property/:id
func (h *RestPurchaseHandler) Get(c *gin.Context) {
	pr, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve purchase request")
		return
	}
	c.JSON(http.StatusOK, pr)
}

// Create handles POST /brought-property
func (h *RestPurchaseHandler) Create(c *gin.Context) {
	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.ledger.Create(c.Request.Context(), middleware.CallerEmail(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create purchase request")
		return
	}
	c.JSON(http.StatusOK, insertedResponse(created.ID.Hex()))
}

// ListByAgent handles GET /brought-property/normal/:email. Agents may only
// read the requests addressed to themselves.
func (h *RestPurchaseHandler) ListByAgent(c *gin.Context) {
	caller := middleware.CallerEmail(c)
	if !strings.EqualFold(c.Param("email"), caller) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
		return
	}

	requests, err := h.ledger.ListByAgent(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to retrieve purchase requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Accept handles PATCH /brought-property/accepted/:id/:main_id
func (h *RestPurchaseHandler) Accept(c *gin.Context) {
	result, err := h.ledger.Accept(c.Request.Context(), middleware.CallerEmail(c), c.Param("id"), c.Param("main_id"))
	if err != nil && result != nil {
		// The write phase failed. Without a transaction some writes may have
		// landed, so the counts are reported with the error.
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrStoreTimeout) {
			c.Header("Retry-After", "1")
			status = http.StatusServiceUnavailable
		}
		log.Printf("Accept of %s failed: %v", c.Param("id"), err)
		c.JSON(status, gin.H{
			"error":    "Failed to accept purchase request",
			"accepted": result.Accepted,
			"rejected": result.Rejected,
		})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to accept purchase request")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reject handles PATCH /brought-property/rejected/:id
func (h *RestPurchaseHandler) Reject(c *gin.Context) {
	wc, err := h.ledger.Reject(c.Request.Context(), middleware.CallerEmail(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to reject purchase request")
		return
	}
	c.JSON(http.StatusOK, updatedResponse(wc))
}

// MarkBoughtRequest carries the payment reference. The web client sends it as
// transactionId; payment_id is accepted too.
type MarkBoughtRequest struct {
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transactionId"`
}

// MarkBought handles PATCH /brought-property/bought/:id
func (h *RestPurchaseHandler) MarkBought(c *gin.Context) {
	var req MarkBoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ref := req.PaymentID
	if ref == "" {
		ref = req.TransactionID
	}

	result, err := h.ledger.MarkBought(c.Request.Context(), c.Param("id"), ref)
	if err != nil {
		respondError(c, err, "Failed to mark purchase request as bought")
		return
	}
	c.JSON(http.StatusOK, result)
}

// PurgeByAgent handles DELETE /brought-property/fraud/:agent_email
func (h *RestPurchaseHandler) PurgeByAgent(c *gin.Context) {
	n, err := h.ledger.PurgeByAgent(c.Request.Context(), c.Param("agent_email"))
	if err != nil {
		respondError(c, err, "Failed to delete purchase requests")
		return
	}
	c.JSON(http.StatusOK, deletedResponse(n))
}
