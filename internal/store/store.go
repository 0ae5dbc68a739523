package store

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound 文档不存在（按 ID 查询或集合为空）
var ErrNotFound = errors.New("document not found")

// Collection is the document-store contract used by the repositories.
// Documents are addressed by opaque ids; generated ids are 24 hex characters.
// "out" arguments follow encoding/json conventions: a pointer to a struct for
// single reads and a pointer to a slice for list reads.
type Collection interface {
	// Get loads the document with the given id.
	Get(ctx context.Context, id string, out any) error
	// Latest loads the most recently inserted document.
	Latest(ctx context.Context, out any) error
	// Recent loads up to limit documents, newest first.
	Recent(ctx context.Context, limit int, out any) error
	// List loads up to limit documents in insertion order.
	List(ctx context.Context, limit int, out any) error
	// Insert stores doc under a freshly generated id and returns it.
	Insert(ctx context.Context, doc any) (string, error)
	// Update applies $set semantics and returns the number of matched documents.
	Update(ctx context.Context, id string, fields map[string]any) (int64, error)
	// Upsert applies $set semantics, creating the document when absent.
	Upsert(ctx context.Context, id string, fields map[string]any) error
	// Delete removes one document and returns the number deleted.
	Delete(ctx context.Context, id string) (int64, error)
	// DeleteExcept removes every document except id.
	DeleteExcept(ctx context.Context, id string) (int64, error)
}

// Store hands out named collections.
type Store interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

var hexID = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID generates a mongo-compatible object id in hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsObjectID reports whether id looks like a generated document id.
func IsObjectID(id string) bool {
	return hexID.MatchString(id)
}
