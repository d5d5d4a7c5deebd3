package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/zunayedTheCreator/property-prospect-server/internal/email"
)

// MockMailbox is the part of the Redis client used to read mocked emails.
type MockMailbox interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// EmailScheduler queues a templated email.
type EmailScheduler interface {
	SendEmail(ctx context.Context, to, templateID string, data map[string]interface{}) error
}

// ServiceApiRequest is the body of POST /api on the service port.
type ServiceApiRequest struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments"`
}

// ServiceApiHandler serves the internal service API used by operators and
// end-to-end tests.
type ServiceApiHandler struct {
	mailbox      MockMailbox
	emails       EmailScheduler
	shutdownChan chan<- struct{}

	// PollAttempts and PollInterval bound how long getTestEmail waits for a
	// message the worker has not delivered yet.
	PollAttempts int
	PollInterval time.Duration
}

// NewServiceApiHandler creates a new ServiceApiHandler.
func NewServiceApiHandler(mailbox MockMailbox, emails EmailScheduler, shutdownChan chan<- struct{}) *ServiceApiHandler {
	return &ServiceApiHandler{
		mailbox:      mailbox,
		emails:       emails,
		shutdownChan: shutdownChan,
		PollAttempts: 10,
		PollInterval: 200 * time.Millisecond,
	}
}

// HandleRequest handles POST /api
func (h *ServiceApiHandler) HandleRequest(c *gin.Context) {
	var req ServiceApiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
		return
	}

	switch req.Method {
	case "shutdown":
		h.shutdown(c)
	case "getTestEmail":
		h.getTestEmail(c, req.Arguments)
	case "sendTestEmail":
		h.sendTestEmail(c, req.Arguments)
	default:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
	}
}

func (h *ServiceApiHandler) shutdown(c *gin.Context) {
	log.Println("Received shutdown command via Service API")
	c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
	select {
	case h.shutdownChan <- struct{}{}:
		log.Println("Shutdown signal sent successfully.")
	default:
		log.Println("Shutdown channel already signaled or blocked.")
	}
}

// getTestEmail expects ["template_id", "email"] and returns the last mocked
// message of that template sent to that address. The message is consumed.
func (h *ServiceApiHandler) getTestEmail(c *gin.Context, raw json.RawMessage) {
	var args []string
	if err := json.Unmarshal(raw, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateId, email]"})
		return
	}
	if h.mailbox == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Mock mailbox not configured"})
		return
	}
	redisKey := email.MockEmailKey(args[1], args[0])

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var stored string
	found := false
	for i := 0; i < h.PollAttempts; i++ {
		val, err := h.mailbox.Get(ctx, redisKey).Result()
		if err == nil {
			stored = val
			found = true
			h.mailbox.Del(ctx, redisKey)
			break
		}
		if err != redis.Nil {
			log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(h.PollInterval)
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(stored), &emailData); err != nil {
		log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}

// sendTestEmail expects ["email", "template_id", {data}] and queues the email
// through the worker, exercising the same path as domain notifications.
func (h *ServiceApiHandler) sendTestEmail(c *gin.Context, raw json.RawMessage) {
	var args []json.RawMessage
	if err := json.Unmarshal(raw, &args); err != nil || len(args) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [email, templateId, data?]"})
		return
	}
	var to, templateID string
	data := map[string]interface{}{}
	if err := json.Unmarshal(args[0], &to); err != nil || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid email argument"})
		return
	}
	if err := json.Unmarshal(args[1], &templateID); err != nil || templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid templateId argument"})
		return
	}
	if len(args) > 2 {
		if err := json.Unmarshal(args[2], &data); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid data argument"})
			return
		}
	}

	if err := h.emails.SendEmail(c.Request.Context(), to, templateID, data); err != nil {
		log.Printf("Service API: Failed to queue %s email to %s: %v", templateID, to, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to queue email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": "queued"})
}
