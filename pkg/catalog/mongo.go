package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.trai.ch/zerr"
)

// DefaultMongoCollection is the collection used when none is configured.
const DefaultMongoCollection = "catalog"

// Mongo stores a snapshot as one document per entry:
//
//	{_id: <id>, entry: <entry>}
//
// Entries pass through relaxed Extended JSON on the way in and out, so the
// entry's json tags decide the stored field names.
type Mongo[E any] struct {
	coll *mongo.Collection
}

// NewMongo returns a store backed by coll.
func NewMongo[E any](coll *mongo.Collection) *Mongo[E] {
	return &Mongo[E]{coll: coll}
}

type mongoDoc struct {
	ID    string   `bson:"_id"`
	Entry bson.Raw `bson:"entry"`
}

// Load reads every document of the collection.
func (m *Mongo[E]) Load(ctx context.Context) (map[string]E, error) {
	cur, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, m.wrap(err, "query catalog")
	}
	defer cur.Close(ctx)

	entries := map[string]E{}
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, m.wrap(err, "decode catalog document")
		}
		data, err := bson.MarshalExtJSON(doc.Entry, false, false)
		if err != nil {
			return nil, zerr.With(m.wrap(err, "convert catalog document"), "id", doc.ID)
		}
		var e E
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, zerr.With(m.wrap(err, "decode catalog entry"), "id", doc.ID)
		}
		entries[doc.ID] = e
	}
	if err := cur.Err(); err != nil {
		return nil, m.wrap(err, "read catalog")
	}
	return entries, nil
}

// Save upserts every entry and then deletes documents whose id is no longer
// part of the snapshot.
func (m *Mongo[E]) Save(ctx context.Context, entries map[string]E) error {
	ids := make([]string, 0, len(entries))
	models := make([]mongo.WriteModel, 0, len(entries))
	for id, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return zerr.With(m.wrap(err, "encode catalog entry"), "id", id)
		}
		var doc bson.D
		if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
			return zerr.With(m.wrap(err, "convert catalog entry"), "id", id)
		}
		ids = append(ids, id)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: id}}).
			SetReplacement(bson.D{{Key: "_id", Value: id}, {Key: "entry", Value: doc}}).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := m.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return m.wrap(err, "write catalog")
		}
	}
	stale := bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}}}
	if _, err := m.coll.DeleteMany(ctx, stale); err != nil {
		return m.wrap(err, "prune catalog")
	}
	return nil
}

func (m *Mongo[E]) wrap(err error, msg string) error {
	return zerr.With(zerr.Wrap(errors.Join(ErrPersistence, err), msg), "collection", m.coll.Name())
}

// Ensure Mongo implements Store.
var _ Store[any] = (*Mongo[any])(nil)
