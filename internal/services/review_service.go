package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zunayedTheCreator/property-prospect-server/internal/auth"
	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/db"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// IReviewService defines the interface for property reviews.
type IReviewService interface {
	ListReviews(ctx context.Context, propertyID string) ([]models.Review, error)
	CreateReview(ctx context.Context, reviewer string, r *models.Review) (*models.Review, error)
	DeleteReview(ctx context.Context, caller auth.Identity, id string) (int64, error)
}

const reviewsCollection = "reviews"

type reviewService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db *mongo.Database, cfg *config.Config) IReviewService {
	return &reviewService{db: db, cfg: cfg}
}

func (s *reviewService) coll() *mongo.Collection {
	return s.db.Collection(reviewsCollection)
}

// ListReviews returns every review, or those of one property when propertyID is set.
func (s *reviewService) ListReviews(ctx context.Context, propertyID string) ([]models.Review, error) {
	filter := bson.M{}
	if propertyID != "" {
		if _, err := db.ParseID(propertyID); err != nil {
			return nil, err
		}
		filter["property_id"] = propertyID
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	cursor, err := s.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, storeErr("list reviews", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, storeErr("list reviews", err)
	}
	return reviews, nil
}

func (s *reviewService) CreateReview(ctx context.Context, reviewer string, r *models.Review) (*models.Review, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty review", ErrInvalidArgument)
	}
	if _, err := db.ParseID(r.PropertyID); err != nil {
		return nil, err
	}
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		return nil, fmt.Errorf("%w: review text is required", ErrInvalidArgument)
	}
	if r.Rating < 0 || r.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidArgument)
	}
	r.ID = primitive.NilObjectID
	r.ReviewerEmail = reviewer
	r.CreatedAt = time.Now().UTC()

	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()
	if _, err := db.InsertOne(ctx, s.coll(), r); err != nil {
		return nil, storeErr("insert review", err)
	}
	return r, nil
}

// DeleteReview removes a review. Admins may remove any review, others only their own.
func (s *reviewService) DeleteReview(ctx context.Context, caller auth.Identity, id string) (int64, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return 0, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	var r models.Review
	if err := s.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&r); err != nil {
		return 0, storeErr("find review "+id, err)
	}
	if !auth.Authorize(caller, models.RoleAdmin) && !(caller.Email != "" && strings.EqualFold(r.ReviewerEmail, caller.Email)) {
		return 0, fmt.Errorf("%w: review %s was not written by %s", ErrForbidden, id, caller.Email)
	}

	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, storeErr("delete review", err)
	}
	return res.DeletedCount, nil
}
