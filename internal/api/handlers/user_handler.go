package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/auth"
	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// FraudPurgeScheduler queues the removal of everything a fraud agent owns.
type FraudPurgeScheduler interface {
	ScheduleFraudPurge(ctx context.Context, agentEmail string) (string, error)
}

// RestUserHandler handles REST requests related to users and tokens.
type RestUserHandler struct {
	cfg         *config.Config
	userService services.IUserService
	purge       FraudPurgeScheduler
}

// NewRestUserHandler creates a new RestUserHandler.
func NewRestUserHandler(cfg *config.Config, userService services.IUserService, purge FraudPurgeScheduler) *RestUserHandler {
	return &RestUserHandler{cfg: cfg, userService: userService, purge: purge}
}

// TokenRequest is the body of POST /jwt.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IssueToken handles POST /jwt
func (h *RestUserHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	if err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err, "Failed to authenticate")
		return
	}

	token, err := auth.GenerateJWT(strings.TrimSpace(req.Email), h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		respondError(c, err, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListUsers handles GET /user
func (h *RestUserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUserRequest is the body of POST /user.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Photo    string `json:"photo"`
	Password string `json:"password"`
}

// CreateUser handles POST /user. Signing in with an email that already has a
// record is not an error.
func (h *RestUserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user := &models.User{Name: req.Name, Email: req.Email, Photo: req.Photo}
	created, err := h.userService.CreateIfAbsent(c.Request.Context(), user, req.Password)
	if errors.Is(err, services.ErrUserExists) {
		c.JSON(http.StatusOK, gin.H{"message": services.ErrUserExists.Error(), "insertedId": nil})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusOK, insertedResponse(created.ID.Hex()))
}

// GetRole handles GET /user/role/:email
func (h *RestUserHandler) GetRole(c *gin.Context) {
	user, err := h.userService.FindByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": user.EffectiveRole(), "fraud": user.IsFraud()})
}

func (h *RestUserHandler) setRole(c *gin.Context, role models.Role) {
	wc, err := h.userService.SetRole(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		respondError(c, err, "Failed to update user role")
		return
	}
	c.JSON(http.StatusOK, updatedResponse(wc))
}

// MakeAdmin handles PATCH /user/admin/:id
func (h *RestUserHandler) MakeAdmin(c *gin.Context) {
	h.setRole(c, models.RoleAdmin)
}

// MakeAgent handles PATCH /user/agent/:id
func (h *RestUserHandler) MakeAgent(c *gin.Context) {
	h.setRole(c, models.RoleAgent)
}

// MarkFraud handles PATCH /user/fraud/:id. The agent's listings and purchase
// requests are removed by a background task.
func (h *RestUserHandler) MarkFraud(c *gin.Context) {
	user, err := h.userService.MarkFraud(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to flag user")
		return
	}

	taskID, err := h.purge.ScheduleFraudPurge(c.Request.Context(), user.Email)
	if err != nil {
		log.Printf("User %s flagged as fraud but purge was not scheduled: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User flagged but purge could not be scheduled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "modifiedCount": 1, "purgeTaskId": taskID})
}

// DeleteUser handles DELETE /user/:id
func (h *RestUserHandler) DeleteUser(c *gin.Context) {
	n, err := h.userService.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, deletedResponse(n))
}
