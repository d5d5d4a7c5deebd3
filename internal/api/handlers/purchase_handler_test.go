package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/handlers"
	"github.com/zunayedTheCreator/property-prospect-server/internal/api/middleware"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

const (
	testAgent = "agent@example.com"
	testBuyer = "buyer@example.com"
)

// withCaller stands in for AuthMiddleware.
func withCaller(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyEmail, email)
		c.Next()
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func setupPurchaseRouter(ledger *MockLedger, caller string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRestPurchaseHandler(ledger)
	r := gin.New()
	r.GET("/brought-property", h.ListAll)
	r.GET("/brought-property/:id", h.Get)
	authed := r.Group("/", withCaller(caller))
	authed.POST("/brought-property", h.Create)
	authed.GET("/brought-property/normal/:email", h.ListByAgent)
	authed.PATCH("/brought-property/accepted/:id/:main_id", h.Accept)
	authed.PATCH("/brought-property/rejected/:id", h.Reject)
	authed.PATCH("/brought-property/bought/:id", h.MarkBought)
	authed.DELETE("/brought-property/fraud/:agent_email", h.PurgeByAgent)
	return r
}

func TestRestPurchaseHandler_Create_Success(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testBuyer)

	listingID := primitive.NewObjectID().Hex()
	createdID := primitive.NewObjectID()
	ledger.On("Create", mock.Anything, testBuyer, mock.MatchedBy(func(pr *models.PurchaseRequest) bool {
		return pr.ListingID == listingID && pr.AgentEmail == testAgent
	})).Return(&models.PurchaseRequest{Base: models.Base{ID: createdID}}, nil)

	payload := fmt.Sprintf(`{"main_id":%q,"agent_email":%q,"title":"Lake House"}`, listingID, testAgent)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/brought-property", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["acknowledged"])
	assert.Equal(t, createdID.Hex(), body["insertedId"])
	ledger.AssertExpectations(t)
}

func TestRestPurchaseHandler_Create_InvalidArgument(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testBuyer)

	ledger.On("Create", mock.Anything, testBuyer, mock.Anything).
		Return(nil, fmt.Errorf("%w: main_id is required", services.ErrInvalidArgument))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/brought-property", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "main_id is required")
}

func TestRestPurchaseHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("find purchase request: %w", services.ErrNotFound), http.StatusNotFound},
		{"invalid id", services.ErrInvalidID, http.StatusBadRequest},
		{"timeout", services.ErrStoreTimeout, http.StatusServiceUnavailable},
		{"store failure", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(MockLedger)
			r := setupPurchaseRouter(ledger, "")
			ledger.On("Get", mock.Anything, "abc").Return(nil, tt.err)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/brought-property/abc", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusServiceUnavailable {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRestPurchaseHandler_ListAll(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, "")
	ledger.On("ListAll", mock.Anything).Return([]models.PurchaseRequest{
		{Status: models.StatusRequested}, {Status: models.StatusAccepted},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/brought-property", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var list []models.PurchaseRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestRestPurchaseHandler_ListByAgent_OtherAgentForbidden(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testAgent)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/brought-property/normal/someone@example.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	ledger.AssertNotCalled(t, "ListByAgent", mock.Anything, mock.Anything)
}

func TestRestPurchaseHandler_ListByAgent_QueriesWithCallerEmail(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testAgent)
	ledger.On("ListByAgent", mock.Anything, testAgent).Return([]models.PurchaseRequest{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/brought-property/normal/Agent@Example.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	ledger.AssertExpectations(t)
}

func TestRestPurchaseHandler_Accept_Success(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testAgent)
	ledger.On("Accept", mock.Anything, testAgent, "r2", "l1").Return(&services.AcceptResult{
		Accepted: services.WriteCount{Matched: 1, Modified: 1},
		Rejected: services.WriteCount{Matched: 2, Modified: 2},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/brought-property/accepted/r2/l1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"accepted":{"matchedCount":1,"modifiedCount":1},"rejected":{"matchedCount":2,"modifiedCount":2}}`,
		w.Body.String())
	ledger.AssertExpectations(t)
}

func TestRestPurchaseHandler_Accept_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not owner", fmt.Errorf("%w: not your listing", services.ErrForbidden), http.StatusForbidden},
		{"already bought", fmt.Errorf("%w: listing already bought", services.ErrConflict), http.StatusConflict},
		{"listing mismatch", fmt.Errorf("%w: wrong listing", services.ErrInvalidArgument), http.StatusBadRequest},
		{"timeout", fmt.Errorf("accept: %w", services.ErrStoreTimeout), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := new(MockLedger)
			r := setupPurchaseRouter(ledger, testAgent)
			ledger.On("Accept", mock.Anything, testAgent, "r1", "l1").Return(nil, tt.err)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPatch, "/brought-property/accepted/r1/l1", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRestPurchaseHandler_Reject(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testAgent)
	ledger.On("Reject", mock.Anything, testAgent, "r1").Return(services.WriteCount{Matched: 1, Modified: 0}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/brought-property/rejected/r1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["matchedCount"])
	assert.Equal(t, float64(0), body["modifiedCount"])
}

func TestRestPurchaseHandler_MarkBought_TransactionID(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testBuyer)
	ledger.On("MarkBought", mock.Anything, "r1", "pi_123").Return(&services.BoughtResult{
		Bought: services.WriteCount{Matched: 1, Modified: 1},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/brought-property/bought/r1", bytes.NewBufferString(`{"transactionId":"pi_123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	ledger.AssertExpectations(t)
}

func TestRestPurchaseHandler_MarkBought_PaymentIDWins(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testBuyer)
	ledger.On("MarkBought", mock.Anything, "r1", "pay_1").Return(&services.BoughtResult{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/brought-property/bought/r1",
		bytes.NewBufferString(`{"payment_id":"pay_1","transactionId":"pi_123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	ledger.AssertExpectations(t)
}

func TestRestPurchaseHandler_MarkBought_BadBody(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testBuyer)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/brought-property/bought/r1", bytes.NewBufferString(`not json`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	ledger.AssertNotCalled(t, "MarkBought", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestPurchaseHandler_PurgeByAgent(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, "admin@example.com")
	ledger.On("PurgeByAgent", mock.Anything, testAgent).Return(int64(3), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/brought-property/fraud/"+testAgent, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decodeBody(t, w)["deletedCount"])
}

func TestRestPurchaseHandler_Accept_PartialFailureReportsCounts(t *testing.T) {
	ledger := new(MockLedger)
	r := setupPurchaseRouter(ledger, testAgent)
	ledger.On("Accept", mock.Anything, testAgent, "r1", "l1").Return(&services.AcceptResult{
		Accepted: services.WriteCount{Matched: 1, Modified: 1},
	}, fmt.Errorf("reject siblings of r1: %w", errors.New("connection reset")))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/brought-property/accepted/r1/l1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["accepted"].(map[string]interface{})["modifiedCount"])
	assert.Equal(t, float64(0), body["rejected"].(map[string]interface{})["modifiedCount"])
}
