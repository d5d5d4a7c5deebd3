package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zunayedTheCreator/property-prospect-server/internal/db"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

const purchaseRequestsCollection = "broughtProperties"

// WriteCount reports what a single update touched.
type WriteCount struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

// PurchaseRequestStore is the persistence the ledger needs. Writes issued with
// the context handed to WithTransaction's fn join that transaction.
type PurchaseRequestStore interface {
	db.Transactor
	Insert(ctx context.Context, pr *models.PurchaseRequest) error
	FindAll(ctx context.Context) ([]models.PurchaseRequest, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PurchaseRequest, error)
	FindByAgent(ctx context.Context, agentEmail string) ([]models.PurchaseRequest, error)
	FindByListing(ctx context.Context, listingID string) ([]models.PurchaseRequest, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.PurchaseStatus) (WriteCount, error)
	RejectSiblings(ctx context.Context, listingID string, except primitive.ObjectID) (WriteCount, error)
	SetBought(ctx context.Context, id primitive.ObjectID, paymentRef string) (WriteCount, error)
	DeleteByAgent(ctx context.Context, agentEmail string) (int64, error)
}

type mongoPurchaseStore struct {
	db.Transactor
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoPurchaseStore returns a PurchaseRequestStore over the broughtProperties collection.
// Every call is bounded by timeout.
func NewMongoPurchaseStore(database *mongo.Database, tx db.Transactor, timeout time.Duration) PurchaseRequestStore {
	if tx == nil {
		tx = db.NoopTransactor{}
	}
	return &mongoPurchaseStore{
		Transactor: tx,
		coll:       database.Collection(purchaseRequestsCollection),
		timeout:    timeout,
	}
}

func (s *mongoPurchaseStore) Insert(ctx context.Context, pr *models.PurchaseRequest) error {
	ctx, cancel := db.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := db.InsertOne(ctx, s.coll, pr)
	return storeErr("insert purchase request", err)
}

func (s *mongoPurchaseStore) find(ctx context.Context, op string, filter bson.M) ([]models.PurchaseRequest, error) {
	ctx, cancel := db.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer cursor.Close(ctx)

	results := []models.PurchaseRequest{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, storeErr(op, err)
	}
	return results, nil
}

func (s *mongoPurchaseStore) FindAll(ctx context.Context) ([]models.PurchaseRequest, error) {
	return s.find(ctx, "list purchase requests", bson.M{})
}

func (s *mongoPurchaseStore) FindByAgent(ctx context.Context, agentEmail string) ([]models.PurchaseRequest, error) {
	return s.find(ctx, "list purchase requests by agent", bson.M{"agent_email": agentEmail})
}

func (s *mongoPurchaseStore) FindByListing(ctx context.Context, listingID string) ([]models.PurchaseRequest, error) {
	return s.find(ctx, "list purchase requests by listing", bson.M{"main_id": listingID})
}

func (s *mongoPurchaseStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PurchaseRequest, error) {
	ctx, cancel := db.WithTimeout(ctx, s.timeout)
	defer cancel()

	var pr models.PurchaseRequest
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&pr); err != nil {
		return nil, storeErr("find purchase request "+id.Hex(), err)
	}
	return &pr, nil
}

func (s *mongoPurchaseStore) update(ctx context.Context, op string, filter, set bson.M, many bool) (WriteCount, error) {
	ctx, cancel := db.WithTimeout(ctx, s.timeout)
	defer cancel()

	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}

	var res *mongo.UpdateResult
	var err error
	if many {
		res, err = s.coll.UpdateMany(ctx, filter, update)
	} else {
		res, err = s.coll.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return WriteCount{}, storeErr(op, err)
	}
	return WriteCount{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *mongoPurchaseStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PurchaseStatus) (WriteCount, error) {
	return s.update(ctx, "set purchase request status", bson.M{"_id": id}, bson.M{"status": status}, false)
}

func (s *mongoPurchaseStore) RejectSiblings(ctx context.Context, listingID string, except primitive.ObjectID) (WriteCount, error) {
	filter := bson.M{"main_id": listingID, "_id": bson.M{"$ne": except}}
	return s.update(ctx, "reject sibling purchase requests", filter, bson.M{"status": models.StatusRejected}, true)
}

func (s *mongoPurchaseStore) SetBought(ctx context.Context, id primitive.ObjectID, paymentRef string) (WriteCount, error) {
	set := bson.M{"status": models.StatusBought, "payment_id": paymentRef}
	return s.update(ctx, "mark purchase request bought", bson.M{"_id": id}, set, false)
}

func (s *mongoPurchaseStore) DeleteByAgent(ctx context.Context, agentEmail string) (int64, error) {
	ctx, cancel := db.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.coll.DeleteMany(ctx, bson.M{"agent_email": agentEmail})
	if err != nil {
		return 0, storeErr("purge purchase requests", err)
	}
	return res.DeletedCount, nil
}
