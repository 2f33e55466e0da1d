package services

import (
	"context"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memColl is an in-memory Collection that understands the filter and update
// shapes the services build. Documents are round-tripped through BSON so
// stored values have the same types Mongo would return.
type memColl struct {
	docs   []bson.M
	unique []string
	// updates records every UpdateOne filter for assertions
	updates []bson.M
	failOn  func(filter bson.M) error
}

func newMemColl(unique ...string) *memColl {
	return &memColl{unique: unique}
}

func roundTrip(v any) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func normValue(v any) any {
	return normBSON(roundTrip(bson.M{"v": v})["v"])
}

func normBSON(v any) any {
	switch x := v.(type) {
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case primitive.A:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normBSON(x[i])
		}
		return out
	case primitive.D:
		return normBSON(bson.M(x.Map()))
	case bson.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normBSON(e)
		}
		return out
	default:
		return v
	}
}

func (c *memColl) seed(docs ...any) {
	for _, d := range docs {
		c.docs = append(c.docs, roundTrip(d))
	}
}

func (c *memColl) byID(id primitive.ObjectID) bson.M {
	for _, d := range c.docs {
		if d["_id"] == id {
			return d
		}
	}
	return nil
}

func (c *memColl) InsertOne(_ context.Context, document any, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	doc := roundTrip(document)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	for _, field := range c.unique {
		for _, d := range c.docs {
			if reflect.DeepEqual(normBSON(d[field]), normBSON(doc[field])) {
				return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
			}
		}
	}
	c.docs = append(c.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc["_id"]}, nil
}

func (c *memColl) FindOne(_ context.Context, filter any, _ ...*options.FindOneOptions) *mongo.SingleResult {
	for _, d := range c.docs {
		if matches(d, filter.(bson.M)) {
			return mongo.NewSingleResultFromDocument(d, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *memColl) Find(_ context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	var found []bson.M
	for _, d := range c.docs {
		if matches(d, filter.(bson.M)) {
			found = append(found, d)
		}
	}

	var skip, limit int64
	if len(opts) > 0 && opts[0] != nil {
		o := opts[0]
		if keys, ok := o.Sort.(bson.D); ok {
			sort.SliceStable(found, func(i, j int) bool {
				for _, k := range keys {
					c := compare(normBSON(found[i][k.Key]), normBSON(found[j][k.Key]))
					if c == 0 {
						continue
					}
					if k.Value.(int) < 0 {
						return c > 0
					}
					return c < 0
				}
				return false
			})
		}
		if o.Skip != nil {
			skip = *o.Skip
		}
		if o.Limit != nil {
			limit = *o.Limit
		}
	}

	if skip > int64(len(found)) {
		skip = int64(len(found))
	}
	found = found[skip:]
	if limit > 0 && limit < int64(len(found)) {
		found = found[:limit]
	}

	docs := make([]any, len(found))
	for i := range found {
		docs[i] = found[i]
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (c *memColl) UpdateOne(_ context.Context, filter any, update any, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f := filter.(bson.M)
	c.updates = append(c.updates, f)
	if c.failOn != nil {
		if err := c.failOn(f); err != nil {
			return nil, err
		}
	}
	for i, d := range c.docs {
		if !matches(d, f) {
			continue
		}
		before := normBSON(d)
		next := applyUpdate(d, update.(bson.M))
		c.docs[i] = next
		res := &mongo.UpdateResult{MatchedCount: 1}
		if !reflect.DeepEqual(before, normBSON(next)) {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return &mongo.UpdateResult{}, nil
}

func (c *memColl) DeleteOne(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	for i, d := range c.docs {
		if matches(d, filter.(bson.M)) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

func (c *memColl) CountDocuments(_ context.Context, filter any, _ ...*options.CountOptions) (int64, error) {
	var n int64
	for _, d := range c.docs {
		if matches(d, filter.(bson.M)) {
			n++
		}
	}
	return n, nil
}

func applyUpdate(doc, update bson.M) bson.M {
	out := bson.M{}
	for k, v := range doc {
		out[k] = v
	}
	for op, arg := range update {
		for field, v := range arg.(bson.M) {
			switch op {
			case "$set":
				out[field] = v
			case "$addToSet":
				list, _ := out[field].(primitive.A)
				if !containsValue(list, v) {
					out[field] = append(append(primitive.A{}, list...), v)
				}
			case "$pull":
				list, _ := out[field].(primitive.A)
				kept := primitive.A{}
				for _, e := range list {
					if !reflect.DeepEqual(normBSON(e), normValue(v)) {
						kept = append(kept, e)
					}
				}
				out[field] = kept
			default:
				panic("memColl: unsupported update operator " + op)
			}
		}
	}
	return roundTrip(out)
}

func containsValue(list primitive.A, v any) bool {
	want := normValue(v)
	for _, e := range list {
		if reflect.DeepEqual(normBSON(e), want) {
			return true
		}
	}
	return false
}

func matches(doc, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$or" {
			hit := false
			for _, sub := range cond.(bson.A) {
				if matches(doc, sub.(bson.M)) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
			continue
		}
		val, present := doc[key]
		if !matchField(val, present, cond) {
			return false
		}
	}
	return true
}

func matchField(val any, present bool, cond any) bool {
	ops, isOps := cond.(bson.M)
	if !isOps || !hasOperator(ops) {
		return equals(val, present, cond)
	}
	for op, arg := range ops {
		switch op {
		case "$ne":
			if equals(val, present, arg) {
				return false
			}
		case "$exists":
			if present != arg.(bool) {
				return false
			}
		case "$in":
			hit := false
			for _, a := range arg.(bson.A) {
				if equals(val, present, a) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !present || val == nil {
				return false
			}
			c := compare(normBSON(val), normValue(arg))
			ok := map[string]bool{"$gt": c > 0, "$gte": c >= 0, "$lt": c < 0, "$lte": c <= 0}[op]
			if !ok {
				return false
			}
		default:
			panic("memColl: unsupported query operator " + op)
		}
	}
	return true
}

func hasOperator(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func equals(val any, present bool, want any) bool {
	if want == nil {
		return !present || val == nil
	}
	if re, ok := want.(primitive.Regex); ok {
		s, isString := val.(string)
		return isString && regexp.MustCompile("(?"+re.Options+")"+re.Pattern).MatchString(s)
	}
	if !present {
		return false
	}
	w := normValue(want)
	v := normBSON(val)
	if reflect.DeepEqual(v, w) {
		return true
	}
	if list, ok := v.([]any); ok {
		for _, e := range list {
			if reflect.DeepEqual(e, w) {
				return true
			}
		}
	}
	return false
}

func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case primitive.DateTime:
		y := b.(primitive.DateTime)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	panic("memColl: cannot compare values")
}
