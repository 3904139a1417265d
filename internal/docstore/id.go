package docstore

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is the store-assigned identity of a document. Callers only ever see its
// string form; the native representation stays inside the store layer.
type ID struct {
	oid primitive.ObjectID
}

// NewID allocates a fresh identity.
func NewID() ID {
	return ID{oid: primitive.NewObjectID()}
}

// ParseID parses a 24-hex-character identity token.
func ParseID(token string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return ID{}, &InvalidIdentityError{Token: token}
	}
	return ID{oid: oid}, nil
}

// IDFromObjectID wraps a native identity.
func IDFromObjectID(oid primitive.ObjectID) ID {
	return ID{oid: oid}
}

// ObjectID returns the native identity. Only backends should need it.
func (id ID) ObjectID() primitive.ObjectID {
	return id.oid
}

func (id ID) String() string {
	return id.oid.Hex()
}

func (id ID) IsZero() bool {
	return id.oid.IsZero()
}
