package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// ErrInvalidID is returned when a path or body identifier is not a valid ObjectID.
var ErrInvalidID = errors.New("invalid identifier")

// ParseID converts a hex string into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

// WithTimeout bounds a single store call. A non-positive timeout leaves ctx untouched.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// InsertOne assigns an _id when missing and inserts the document.
func InsertOne(ctx context.Context, collection *mongo.Collection, doc models.IBase) (models.IBase, error) {
	doc.GenIDIfEmpty()
	if _, err := collection.InsertOne(ctx, doc); err != nil {
		return doc, fmt.Errorf("failed to insert into %s: %w", collection.Name(), err)
	}
	return doc, nil
}
