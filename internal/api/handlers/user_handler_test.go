package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/handlers"
	"github.com/zunayedTheCreator/property-prospect-server/internal/auth"
	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

const testSecret = "test-secret"

func setupUserRouter(users *MockUserService, purge *MockPurgeScheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JwtSecret: testSecret, JwtTTL: time.Hour}
	h := handlers.NewRestUserHandler(cfg, users, purge)
	r := gin.New()
	r.POST("/jwt", h.IssueToken)
	r.POST("/user", h.CreateUser)
	authed := r.Group("/", withCaller("admin@example.com"))
	authed.GET("/user", h.ListUsers)
	authed.GET("/user/role/:email", h.GetRole)
	authed.PATCH("/user/admin/:id", h.MakeAdmin)
	authed.PATCH("/user/agent/:id", h.MakeAgent)
	authed.PATCH("/user/fraud/:id", h.MarkFraud)
	authed.DELETE("/user/:id", h.DeleteUser)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRestUserHandler_IssueToken_Success(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("Authenticate", mock.Anything, testBuyer, "").Return(nil)

	w := postJSON(r, "/jwt", `{"email":"buyer@example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeBody(t, w)["token"].(string)
	claims, err := auth.ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, testBuyer, claims.Email)
}

func TestRestUserHandler_IssueToken_BadPassword(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("Authenticate", mock.Anything, testBuyer, "wrong").Return(services.ErrInvalidCredentials)

	w := postJSON(r, "/jwt", `{"email":"buyer@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, decodeBody(t, w)["token"])
}

func TestRestUserHandler_IssueToken_MissingEmail(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)

	w := postJSON(r, "/jwt", `{"email":"  "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestUserHandler_CreateUser_New(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	id := primitive.NewObjectID()
	users.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == testBuyer && u.Name == "Buyer"
	}), "pw").Return(&models.User{Base: models.Base{ID: id}, Email: testBuyer}, nil)

	w := postJSON(r, "/user", `{"name":"Buyer","email":"buyer@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.Hex(), decodeBody(t, w)["insertedId"])
}

func TestRestUserHandler_CreateUser_AlreadyExists(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("CreateIfAbsent", mock.Anything, mock.Anything, "").Return(nil, services.ErrUserExists)

	w := postJSON(r, "/user", `{"email":"buyer@example.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"user already exist","insertedId":null}`, w.Body.String())
}

func TestRestUserHandler_GetRole(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("FindByEmail", mock.Anything, testAgent).
		Return(&models.User{Email: testAgent, Role: models.RoleAgent, Status: models.UserStatusFraud}, nil)
	users.On("FindByEmail", mock.Anything, testBuyer).Return(&models.User{Email: testBuyer}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/user/role/"+testAgent, nil)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"role":"agent","fraud":true}`, w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/user/role/"+testBuyer, nil)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"role":"normal","fraud":false}`, w.Body.String())
}

func TestRestUserHandler_SetRole(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("SetRole", mock.Anything, "u1", models.RoleAgent).Return(services.WriteCount{Matched: 1, Modified: 1}, nil)
	users.On("SetRole", mock.Anything, "u2", models.RoleAdmin).Return(services.WriteCount{}, services.ErrInvalidID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/user/agent/u1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["modifiedCount"])

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPatch, "/user/admin/u2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertExpectations(t)
}

func TestRestUserHandler_MarkFraud_SchedulesPurge(t *testing.T) {
	users := new(MockUserService)
	purge := new(MockPurgeScheduler)
	r := setupUserRouter(users, purge)
	users.On("MarkFraud", mock.Anything, "u1").Return(&models.User{Email: testAgent, Role: models.RoleAgent}, nil)
	purge.On("ScheduleFraudPurge", mock.Anything, testAgent).Return("task-1", nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/user/fraud/u1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "task-1", decodeBody(t, w)["purgeTaskId"])
	purge.AssertExpectations(t)
}

func TestRestUserHandler_MarkFraud_NotAnAgent(t *testing.T) {
	users := new(MockUserService)
	purge := new(MockPurgeScheduler)
	r := setupUserRouter(users, purge)
	users.On("MarkFraud", mock.Anything, "u1").Return(nil, services.ErrInvalidArgument)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/user/fraud/u1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	purge.AssertNotCalled(t, "ScheduleFraudPurge", mock.Anything, mock.Anything)
}

func TestRestUserHandler_MarkFraud_ScheduleFails(t *testing.T) {
	users := new(MockUserService)
	purge := new(MockPurgeScheduler)
	r := setupUserRouter(users, purge)
	users.On("MarkFraud", mock.Anything, "u1").Return(&models.User{Email: testAgent}, nil)
	purge.On("ScheduleFraudPurge", mock.Anything, testAgent).Return("", errors.New("redis down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/user/fraud/u1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRestUserHandler_DeleteUser(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("DeleteUser", mock.Anything, "u1").Return(int64(1), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/user/u1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["deletedCount"])
}

func TestRestUserHandler_ListUsers(t *testing.T) {
	users := new(MockUserService)
	r := setupUserRouter(users, nil)
	users.On("ListUsers", mock.Anything).Return([]models.User{{Email: testBuyer, PasswordHash: "secret-hash"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/user", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}
