package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IBase interface {
	GenIDIfEmpty()
	GetID() primitive.ObjectID
}

// Base carries the document _id. It is serialised as "_id" on the wire as well,
// which is what the web client reads.
type Base struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
}

func (m *Base) GetID() primitive.ObjectID {
	return m.ID
}
