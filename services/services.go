// Package services wraps the Mongo collections. Each service owns one
// collection and returns models or sentinel errors; nothing here writes HTTP
// responses or logs.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
	ErrDuplicate = errors.New("duplicate")
)

// Page sizes for listings.
const (
	PackagePageSize = 12
	PostPageSize    = 9
	AdminPageSize   = 20

	// MaxPage bounds the skip so it cannot overflow.
	MaxPage = 10000
)

// Collection is the part of *mongo.Collection the services use.
type Collection interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
}

// Outcome of a single-document update.
type Outcome int

const (
	NotFound Outcome = iota
	Unchanged
	Updated
)

// Changed is the plain boolean view: not found and unchanged both read false.
func (o Outcome) Changed() bool {
	return o == Updated
}

// Reason is the machine readable form used in action responses.
func (o Outcome) Reason() string {
	switch o {
	case NotFound:
		return "not_found"
	case Unchanged:
		return "unchanged"
	default:
		return ""
	}
}

func (o Outcome) String() string {
	if o == Updated {
		return "updated"
	}
	return o.Reason()
}

// Page is one slice of a listing plus the total the pager needs.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// OrderItem assigns a display position to one document.
type OrderItem struct {
	ID    string
	Order int
}

var now = func() time.Time { return time.Now().UTC() }

// ParseID converts a hex id, reporting ErrInvalidID for anything malformed.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = AdminPageSize
	}
	return page, size
}

// findPage runs the page query and, separately, the count. The two are not
// read from the same snapshot.
func findPage[T any](ctx context.Context, coll Collection, filter bson.M, sort bson.D, page, size int) (*Page[T], error) {
	page, size = normalizePage(page, size)

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

func findAll[T any](ctx context.Context, coll Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return items, nil
}

func findByID[T any](ctx context.Context, coll Collection, id string) (*T, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return findOne[T](ctx, coll, bson.M{"_id": oid})
}

func findOne[T any](ctx context.Context, coll Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find one: %w", err)
	}
	return &out, nil
}

// updateFields applies set to the document with id. The filter only matches
// when at least one field differs, so a zero match means the document is
// either missing or already holds these values; a second lookup tells the
// two apart.
func updateFields(ctx context.Context, coll Collection, id string, set bson.M) (Outcome, error) {
	oid, err := ParseID(id)
	if err != nil {
		return NotFound, err
	}
	if len(set) == 0 {
		return existsOutcome(ctx, coll, oid)
	}

	differs := make(bson.A, 0, len(set))
	for field, value := range set {
		differs = append(differs, bson.M{field: bson.M{"$ne": value}})
	}
	filter := bson.M{"_id": oid, "$or": differs}

	update := bson.M{"$set": withUpdatedAt(set)}
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return NotFound, fmt.Errorf("update: %w", err)
	}
	if res.ModifiedCount > 0 {
		return Updated, nil
	}
	return existsOutcome(ctx, coll, oid)
}

// setVisibility writes isVisible. A missing flag already reads as visible, so
// showing a document only touches ones explicitly hidden.
func setVisibility(ctx context.Context, coll Collection, id string, visible bool) (Outcome, error) {
	oid, err := ParseID(id)
	if err != nil {
		return NotFound, err
	}

	filter := bson.M{"_id": oid, "isVisible": false}
	if !visible {
		filter = bson.M{"_id": oid, "isVisible": bson.M{"$ne": false}}
	}
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isVisible": visible, "updatedAt": now()}})
	if err != nil {
		return NotFound, fmt.Errorf("set visibility: %w", err)
	}
	if res.ModifiedCount > 0 {
		return Updated, nil
	}
	return existsOutcome(ctx, coll, oid)
}

// updateOrder sets order on each listed document with its own update. There
// is no transaction: earlier writes stay applied when a later one fails, and
// ids that are malformed or missing are skipped.
func updateOrder(ctx context.Context, coll Collection, items []OrderItem) (int64, error) {
	var modified int64
	for _, item := range items {
		oid, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			continue
		}
		res, err := coll.UpdateOne(ctx,
			bson.M{"_id": oid, "order": bson.M{"$ne": item.Order}},
			bson.M{"$set": bson.M{"order": item.Order, "updatedAt": now()}},
		)
		if err != nil {
			return modified, fmt.Errorf("update order of %s: %w", item.ID, err)
		}
		modified += res.ModifiedCount
	}
	return modified, nil
}

func deleteByID(ctx context.Context, coll Collection, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func existsOutcome(ctx context.Context, coll Collection, oid primitive.ObjectID) (Outcome, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return NotFound, fmt.Errorf("count: %w", err)
	}
	if n == 0 {
		return NotFound, nil
	}
	return Unchanged, nil
}

func withUpdatedAt(set bson.M) bson.M {
	out := make(bson.M, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	out["updatedAt"] = now()
	return out
}

func insert(ctx context.Context, coll Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}
