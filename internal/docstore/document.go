package docstore

import (
	"fmt"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// NativeIDField is the backend identity field. It never leaves the store.
	NativeIDField = "_id"
	// IDField carries the translated identity in caller-facing documents.
	IDField = "id"
)

// Document is a caller-facing document: the identity is a string under "id"
// and there is no "_id" key.
type Document map[string]any

// ID returns the translated identity.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Filter is an equality filter: every field must equal its value. An empty
// filter matches all documents.
type Filter map[string]any

// encode turns an entity into a native document without an identity field.
func encode(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	delete(doc, NativeIDField)
	delete(doc, IDField)
	return doc, nil
}

// translate converts a native document into a caller-facing one.
func translate(native bson.M) (Document, error) {
	raw, ok := native[NativeIDField]
	if !ok {
		return nil, errors.New("document has no identity")
	}

	var id string
	switch v := raw.(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	default:
		id = fmt.Sprint(v)
	}

	doc := make(Document, len(native))
	for k, v := range native {
		if k == NativeIDField {
			continue
		}
		doc[k] = v
	}
	doc[IDField] = id
	return doc, nil
}

// Decode coerces a caller-facing document into out, a pointer to a struct
// with bson tags. Fields absent from the document keep their current value in
// out, so callers can pre-populate defaults.
func Decode(doc Document, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode document")
	}
	return nil
}
