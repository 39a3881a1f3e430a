package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thicketlab/thicket/pkg/resolve"
)

// MongoStore persists graphs in a MongoDB collection, one document per
// graph, keyed by graph ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and pings the server before returning.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Save upserts the graph under its ID.
func (s *MongoStore) Save(ctx context.Context, g *resolve.Graph) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": g.ID}, g,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save graph %s: %w", g.ID, err)
	}
	return nil
}

// Graph loads the graph stored under id, or [ErrNotFound].
func (s *MongoStore) Graph(ctx context.Context, id string) (*resolve.Graph, error) {
	var g resolve.Graph
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", id, err)
	}
	return &g, nil
}

// List returns summaries of stored graphs, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]GraphSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "resolved_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer cur.Close(ctx)

	var out []GraphSummary
	for cur.Next(ctx) {
		var g resolve.Graph
		if err := cur.Decode(&g); err != nil {
			return nil, fmt.Errorf("decode graph: %w", err)
		}
		out = append(out, summarize(&g))
	}
	return out, cur.Err()
}

// Close disconnects from the server.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
