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

// IPropertyService defines the interface for listing-related operations.
type IPropertyService interface {
	ListProperties(ctx context.Context, verifiedOnly bool) ([]models.Property, error)
	ListAdvertised(ctx context.Context) ([]models.Property, error)
	FindByID(ctx context.Context, id string) (*models.Property, error)
	ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error)
	CreateProperty(ctx context.Context, agent *models.User, p *models.Property) (*models.Property, error)
	SetVerification(ctx context.Context, id string, status models.VerificationStatus) (WriteCount, error)
	Advertise(ctx context.Context, id string) (WriteCount, error)
	AddImage(ctx context.Context, agentEmail, id, imageURL string) (WriteCount, error)
	DeleteProperty(ctx context.Context, agentEmail, id string) (int64, error)
	DeleteByAgent(ctx context.Context, agentEmail string) (int64, error)
}

const propertiesCollection = "properties"

// propertyService implements IPropertyService.
type propertyService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(db *mongo.Database, cfg *config.Config) IPropertyService {
	return &propertyService{db: db, cfg: cfg}
}

func (s *propertyService) coll() *mongo.Collection {
	return s.db.Collection(propertiesCollection)
}

func (s *propertyService) find(ctx context.Context, op string, filter bson.M) ([]models.Property, error) {
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	cursor, err := s.coll().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer cursor.Close(ctx)

	props := []models.Property{}
	if err := cursor.All(ctx, &props); err != nil {
		return nil, storeErr(op, err)
	}
	return props, nil
}

func (s *propertyService) ListProperties(ctx context.Context, verifiedOnly bool) ([]models.Property, error) {
	filter := bson.M{}
	if verifiedOnly {
		filter["verification_status"] = models.VerificationVerified
	}
	return s.find(ctx, "list properties", filter)
}

// ListAdvertised returns the listings shown on the landing page.
func (s *propertyService) ListAdvertised(ctx context.Context) ([]models.Property, error) {
	return s.find(ctx, "list advertised properties", bson.M{"advertised": true, "verification_status": models.VerificationVerified})
}

func (s *propertyService) ListByAgent(ctx context.Context, agentEmail string) ([]models.Property, error) {
	if strings.TrimSpace(agentEmail) == "" {
		return nil, fmt.Errorf("%w: agent email is required", ErrInvalidArgument)
	}
	return s.find(ctx, "list properties by agent", bson.M{"agent_email": agentEmail})
}

func (s *propertyService) FindByID(ctx context.Context, id string) (*models.Property, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	var p models.Property
	if err := s.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, storeErr("find property "+id, err)
	}
	return &p, nil
}

// CreateProperty inserts a listing owned by agent. New listings await admin review.
func (s *propertyService) CreateProperty(ctx context.Context, agent *models.User, p *models.Property) (*models.Property, error) {
	if agent == nil || p == nil {
		return nil, fmt.Errorf("%w: agent and property are required", ErrInvalidArgument)
	}
	p.Title = strings.TrimSpace(p.Title)
	p.Location = strings.TrimSpace(p.Location)
	if p.Title == "" || p.Location == "" {
		return nil, fmt.Errorf("%w: title and location are required", ErrInvalidArgument)
	}
	if p.PriceRange.Min < 0 || p.PriceRange.Max < p.PriceRange.Min {
		return nil, fmt.Errorf("%w: price range %v-%v", ErrInvalidArgument, p.PriceRange.Min, p.PriceRange.Max)
	}

	now := time.Now().UTC()
	p.ID = primitive.NilObjectID
	p.AgentEmail = agent.Email
	p.AgentName = agent.Name
	if p.AgentImage == "" {
		p.AgentImage = agent.Photo
	}
	p.VerificationStatus = models.VerificationUnverified
	p.Advertised = false
	p.CreatedAt = now
	p.UpdatedAt = now

	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()
	if _, err := db.InsertOne(ctx, s.coll(), p); err != nil {
		return nil, storeErr("insert property", err)
	}
	return p, nil
}

func (s *propertyService) update(ctx context.Context, op string, filter, set bson.M, push bson.M) (WriteCount, error) {
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if push != nil {
		update["$push"] = push
	}
	res, err := s.coll().UpdateOne(ctx, filter, update)
	if err != nil {
		return WriteCount{}, storeErr(op, err)
	}
	if res.MatchedCount == 0 {
		return WriteCount{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return WriteCount{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *propertyService) SetVerification(ctx context.Context, id string, status models.VerificationStatus) (WriteCount, error) {
	oid, err := db.ParseID(id)
	if err != nil {
		return WriteCount{}, err
	}
	set := bson.M{"verification_status": status}
	switch status {
	case models.VerificationVerified:
	case models.VerificationRejected, models.VerificationUnverified:
		// Only verified listings may stay on the landing page.
		set["advertised"] = false
	default:
		return WriteCount{}, fmt.Errorf("%w: unknown verification status %q", ErrInvalidArgument, status)
	}
	return s.update(ctx, "set property verification", bson.M{"_id": oid}, set, nil)
}

// Advertise puts a verified listing on the landing page.
func (s *propertyService) Advertise(ctx context.Context, id string) (WriteCount, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return WriteCount{}, err
	}
	if p.VerificationStatus != models.VerificationVerified {
		return WriteCount{}, fmt.Errorf("%w: property %s is %s", ErrConflict, id, p.VerificationStatus)
	}
	return s.update(ctx, "advertise property", bson.M{"_id": p.ID}, bson.M{"advertised": true}, nil)
}

func (s *propertyService) owned(ctx context.Context, agentEmail, id string) (*models.Property, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agentEmail == "" || !strings.EqualFold(p.AgentEmail, agentEmail) {
		return nil, fmt.Errorf("%w: property %s is not listed by %s", ErrForbidden, id, agentEmail)
	}
	return p, nil
}

// AddImage appends an uploaded image to a listing. The first image also becomes the cover.
func (s *propertyService) AddImage(ctx context.Context, agentEmail, id, imageURL string) (WriteCount, error) {
	p, err := s.owned(ctx, agentEmail, id)
	if err != nil {
		return WriteCount{}, err
	}
	set := bson.M{}
	if p.Image == "" {
		set["image"] = imageURL
	}
	return s.update(ctx, "add property image", bson.M{"_id": p.ID}, set, bson.M{"images": imageURL})
}

func (s *propertyService) DeleteProperty(ctx context.Context, agentEmail, id string) (int64, error) {
	p, err := s.owned(ctx, agentEmail, id)
	if err != nil {
		return 0, err
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": p.ID})
	if err != nil {
		return 0, storeErr("delete property", err)
	}
	return res.DeletedCount, nil
}

func (s *propertyService) DeleteByAgent(ctx context.Context, agentEmail string) (int64, error) {
	if strings.TrimSpace(agentEmail) == "" {
		return 0, fmt.Errorf("%w: agent email is required", ErrInvalidArgument)
	}
	ctx, cancel := db.WithTimeout(ctx, s.cfg.StoreCallTimeout)
	defer cancel()

	res, err := s.coll().DeleteMany(ctx, bson.M{"agent_email": agentEmail})
	if err != nil {
		return 0, storeErr("purge properties", err)
	}
	return res.DeletedCount, nil
}
