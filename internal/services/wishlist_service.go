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

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/db"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// IWishlistService defines the interface for saved listings.
type IWishlistService interface {
	ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistItem, error)
	FindByID(ctx context.Context, id string) (*models.WishlistItem, error)
	AddToWishlist(ctx context.Context, userEmail string, item *models.WishlistItem) (*models.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, userEmail, id string) (int64, error)
}

const wishlistsCollection = "wishlists"

type wishlistService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(db *mongo.Database, cfg *config.Config) IWishlistService {
	return &wishlistService{db: db, cfg: cfg}
}

func (s *wishlistService) coll() *mongo.Collection {
	return s.db.Collection(wishlistsCollection)
}

// ListWishlist returns all saved items, or one user's when userEmail is set.
func (s *wishlistService) ListWishlist(ctx context.Context, userEmail string) ([]models.WishlistItem, error) {
	filter := bson.M{}
	if userEmail != "" {
		filter["user_email"] = userEmail
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	cursor, err := s.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, storeErr("list wishlist", err)
	}
	defer cursor.Close(ctx)

	items := []models.WishlistItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, storeErr("list wishlist", err)
	}
	return items, nil
}

func (s *wishlistService) FindByID(ctx context.Context, id string) (*models.WishlistItem, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	var item models.WishlistItem
	if err := s.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		return nil, storeErr("find wishlist item "+id, err)
	}
	return &item, nil
}

func (s *wishlistService) AddToWishlist(ctx context.Context, userEmail string, item *models.WishlistItem) (*models.WishlistItem, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: empty wishlist item", ErrInvalidArgument)
	}
	if _, err := db.ParseID(item.PropertyID); err != nil {
		return nil, err
	}
	item.ID = primitive.NilObjectID
	item.UserEmail = userEmail
	item.CreatedAt = time.Now().UTC()

	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()
	if _, err := db.InsertOne(ctx, s.coll(), item); err != nil {
		return nil, storeErr("insert wishlist item", err)
	}
	return item, nil
}

func (s *wishlistService) RemoveFromWishlist(ctx context.Context, userEmail, id string) (int64, error) {
	item, err := s.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !strings.EqualFold(item.UserEmail, userEmail) {
		return 0, fmt.Errorf("%w: wishlist item %s belongs to another user", ErrForbidden, id)
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": item.ID})
	if err != nil {
		return 0, storeErr("delete wishlist item", err)
	}
	return res.DeletedCount, nil
}
