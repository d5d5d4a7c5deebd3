package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// RestPaymentHandler issues payment handles for the checkout page.
type RestPaymentHandler struct {
	paymentService services.IPaymentService
}

// NewRestPaymentHandler creates a new RestPaymentHandler.
func NewRestPaymentHandler(paymentService services.IPaymentService) *RestPaymentHandler {
	return &RestPaymentHandler{paymentService: paymentService}
}

// PaymentIntentRequest is the body of POST /create-payment-intent. price may
// be a JSON number or a numeric string.
type PaymentIntentRequest struct {
	Price decimal.Decimal `json:"price"`
}

// CreatePaymentIntent handles POST /create-payment-intent
func (h *RestPaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	handle, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), req.Price)
	if err != nil {
		respondError(c, err, "Failed to create payment intent")
		return
	}
	c.JSON(http.StatusOK, handle)
}
