// Package mongostore provides the MongoDB data source.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	apperrors "github.com/apper-canvas/holodevboard/internal/common/errors"
)

const (
	boardsCollection   = "boards"
	columnsCollection  = "columns"
	labelsCollection   = "labels"
	tasksCollection    = "tasks"
	countersCollection = "counters"
)

// Repository stores each entity kind in its own collection. Ids come from a
// counters collection that only moves forward.
type Repository struct {
	client  *mongo.Client
	db      *mongo.Database
	ownsCli bool
}

var (
	_ store.Repository = (*Repository)(nil)
	_ store.Seeder     = (*Repository)(nil)
)

// Connect dials uri, verifies the connection and opens database.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	repo := &Repository{client: client, db: client.Database(database), ownsCli: true}
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return repo, nil
}

// NewWithDatabase wraps an existing database handle.
func NewWithDatabase(db *mongo.Database) *Repository {
	return &Repository{client: db.Client(), db: db}
}

// Close disconnects the client when the repository created it.
func (r *Repository) Close() error {
	if !r.ownsCli {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Drop removes every collection. Used by tests.
func (r *Repository) Drop(ctx context.Context) error {
	return r.db.Drop(ctx)
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(columnsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "board_id", Value: 1}, {Key: "position", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create column index: %w", err)
	}
	_, err = r.db.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "board_id", Value: 1}}},
		{Keys: bson.D{{Key: "column_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	return nil
}

// nextID increments the counter of collection and returns the new value.
func (r *Repository) nextID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next id for %s: %w", collection, err)
	}
	return counter.Seq, nil
}

// raiseCounter moves the counter of collection up to at least id.
func (r *Repository) raiseCounter(ctx context.Context, collection string, id int64) error {
	_, err := r.db.Collection(countersCollection).UpdateOne(ctx,
		bson.M{"_id": collection},
		bson.M{"$max": bson.M{"seq": id}},
		options.Update().SetUpsert(true),
	)
	return err
}

// IsEmpty reports whether no board is stored.
func (r *Repository) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.db.Collection(boardsCollection).CountDocuments(ctx, bson.M{}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Import inserts seed records with their ids and advances the counters.
func (r *Repository) Import(ctx context.Context, seed *store.Seed) error {
	if err := importAll(ctx, r, boardsCollection, seed.Boards, func(b *models.Board) int64 { return b.ID }); err != nil {
		return err
	}
	if err := importAll(ctx, r, columnsCollection, seed.Columns, func(c *models.Column) int64 { return c.ID }); err != nil {
		return err
	}
	if err := importAll(ctx, r, labelsCollection, seed.Labels, func(l *models.Label) int64 { return l.ID }); err != nil {
		return err
	}
	for _, t := range seed.Tasks {
		if t.LabelIDs == nil {
			t.LabelIDs = []int64{}
		}
	}
	return importAll(ctx, r, tasksCollection, seed.Tasks, func(t *models.Task) int64 { return t.ID })
}

func importAll[T any](ctx context.Context, r *Repository, collection string, items []*T, id func(*T) int64) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	var maxID int64
	for _, item := range items {
		docs = append(docs, item)
		maxID = max(maxID, id(item))
	}
	if _, err := r.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("import %s: %w", collection, err)
	}
	return r.raiseCounter(ctx, collection, maxID)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	out := []*T{}
	for cursor.Next(ctx) {
		item := new(T)
		if err := cursor.Decode(item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
		}
		out = append(out, item)
	}
	return out, cursor.Err()
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, resource string, id int64) (*T, error) {
	item := new(T)
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound(resource, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func replaceOne(ctx context.Context, coll *mongo.Collection, resource string, id int64, doc interface{}) error {
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, resource string, id int64) error {
	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}

func (r *Repository) exists(ctx context.Context, collection string, id int64) (bool, error) {
	n, err := r.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func byID() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}
