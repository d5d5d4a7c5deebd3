package handlers_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/zunayedTheCreator/property-prospect-server/internal/auth"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
)

// --- Mocks ---

// MockLedger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Create(ctx context.Context, caller string, pr *models.PurchaseRequest) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, caller, pr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockLedger) ListAll(ctx context.Context) ([]models.PurchaseRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseRequest), args.Error(1)
}

func (m *MockLedger) Get(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockLedger) ListByAgent(ctx context.Context, agentEmail string) ([]models.PurchaseRequest, error) {
	args := m.Called(ctx, agentEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseRequest), args.Error(1)
}

func (m *MockLedger) Accept(ctx context.Context, caller, id, listingID string) (*services.AcceptResult, error) {
	args := m.Called(ctx, caller, id, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AcceptResult), args.Error(1)
}

func (m *MockLedger) Reject(ctx context.Context, caller, id string) (services.WriteCount, error) {
	args := m.Called(ctx, caller, id)
	return args.Get(0).(services.WriteCount), args.Error(1)
}

func (m *MockLedger) MarkBought(ctx context.Context, id, paymentRef string) (*services.BoughtResult, error) {
	args := m.Called(ctx, id, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BoughtResult), args.Error(1)
}

func (m *MockLedger) PurgeByAgent(ctx context.Context, agentEmail string) (int64, error) {
	args := m.Called(ctx, agentEmail)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreateIfAbsent(ctx context.Context, u *models.User, password string) (*models.User, error) {
	args := m.Called(ctx, u, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SetRole(ctx context.Context, id string, role models.Role) (services.WriteCount, error) {
	args := m.Called(ctx, id, role)
	return args.Get(0).(services.WriteCount), args.Error(1)
}

func (m *MockUserService) MarkFraud(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserService) ResolveIdentity(ctx context.Context, email string) (auth.Identity, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// MockPropertyService
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) ListProperties(ctx context.Context, verifiedOnly bool) ([]models.Property, error) {
	args := m.Called(ctx, verifiedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) ListAdvertised(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) FindByID(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error) {
	args := m.Called(ctx, agentEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, agent *models.User, p *models.Property) (*models.Property, error) {
	args := m.Called(ctx, agent, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) SetVerification(ctx context.Context, id string, status models.VerificationStatus) (services.WriteCount, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(services.WriteCount), args.Error(1)
}

func (m *MockPropertyService) Advertise(ctx context.Context, id string) (services.WriteCount, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(services.WriteCount), args.Error(1)
}

func (m *MockPropertyService) AddImage(ctx context.Context, agentEmail, id, imageURL string) (services.WriteCount, error) {
	args := m.Called(ctx, agentEmail, id, imageURL)
	return args.Get(0).(services.WriteCount), args.Error(1)
}

func (m *MockPropertyService) DeleteProperty(ctx context.Context, agentEmail, id string) (int64, error) {
	args := m.Called(ctx, agentEmail, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyService) DeleteByAgent(ctx context.Context, agentEmail string) (int64, error) {
	args := m.Called(ctx, agentEmail)
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListReviews(ctx context.Context, propertyID string) ([]models.Review, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewService) CreateReview(ctx context.Context, reviewer string, r *models.Review) (*models.Review, error) {
	args := m.Called(ctx, reviewer, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, caller auth.Identity, id string) (int64, error) {
	args := m.Called(ctx, caller, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockWishlistService
type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistItem, error) {
	args := m.Called(ctx, userEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockWishlistService) FindByID(ctx context.Context, id string) (*models.WishlistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WishlistItem), args.Error(1)
}

func (m *MockWishlistService) AddToWishlist(ctx context.Context, userEmail string, item *models.WishlistItem) (*models.WishlistItem, error) {
	args := m.Called(ctx, userEmail, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WishlistItem), args.Error(1)
}

func (m *MockWishlistService) RemoveFromWishlist(ctx context.Context, userEmail, id string) (int64, error) {
	args := m.Called(ctx, userEmail, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*services.PaymentHandle, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentHandle), args.Error(1)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PutImage(ctx context.Context, agentEmail, propertyID string, data []byte) (string, string, error) {
	args := m.Called(ctx, agentEmail, propertyID, data)
	return args.String(0), args.String(1), args.Error(2)
}

// MockPurgeScheduler
type MockPurgeScheduler struct {
	mock.Mock
}

func (m *MockPurgeScheduler) ScheduleFraudPurge(ctx context.Context, agentEmail string) (string, error) {
	args := m.Called(ctx, agentEmail)
	return args.String(0), args.Error(1)
}
