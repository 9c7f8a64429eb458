package services

import (
	"cafe-server/models"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CafeStore is where the cafe dataset lives. Implementations return the full
// list on every call; callers snapshot it.
type CafeStore interface {
	LoadCafes(ctx context.Context) ([]models.Cafe, error)
}

// DecodeCafes reads a JSON array of cafes.
func DecodeCafes(r io.Reader) ([]models.Cafe, error) {
	var cafes []models.Cafe
	if err := json.NewDecoder(r).Decode(&cafes); err != nil {
		return nil, fmt.Errorf("decode cafes: %w", err)
	}
	return cafes, nil
}

// FileCafeStore reads cafes from a JSON file on every load.
type FileCafeStore struct {
	path string
}

func NewFileCafeStore(path string) *FileCafeStore {
	return &FileCafeStore{path: path}
}

func (s *FileCafeStore) LoadCafes(ctx context.Context) ([]models.Cafe, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open cafe file: %w", err)
	}
	defer file.Close()

	return DecodeCafes(file)
}

// MemoryCafeStore serves a fixed list. Used for tests and embedded datasets.
type MemoryCafeStore struct {
	cafes []models.Cafe
}

func NewMemoryCafeStore(cafes []models.Cafe) *MemoryCafeStore {
	return &MemoryCafeStore{cafes: cafes}
}

func (s *MemoryCafeStore) LoadCafes(ctx context.Context) ([]models.Cafe, error) {
	out := make([]models.Cafe, len(s.cafes))
	copy(out, s.cafes)
	return out, nil
}

// MongoCafeStore keeps cafes in a MongoDB collection, seeded from a file the
// first time the collection is found empty.
type MongoCafeStore struct {
	collection *mongo.Collection
	seed       CafeStore
}

// NewMongoCafeStore connects to MongoDB and makes sure the cafes collection
// has data, seeding it from seed when empty.
func NewMongoCafeStore(ctx context.Context, uri, database string, seed CafeStore) (*MongoCafeStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Println("Connected to MongoDB")

	store := &MongoCafeStore{
		collection: client.Database(database).Collection("cafes"),
		seed:       seed,
	}
	if err := store.seedIfEmpty(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MongoCafeStore) seedIfEmpty(ctx context.Context) error {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count cafes: %w", err)
	}
	if count > 0 || s.seed == nil {
		return nil
	}

	log.Println("No cafes found in MongoDB, seeding sample data...")
	cafes, err := s.seed.LoadCafes(ctx)
	if err != nil {
		return err
	}
	if len(cafes) == 0 {
		return nil
	}

	docs := make([]any, 0, len(cafes))
	for _, cafe := range cafes {
		docs = append(docs, cafe)
	}
	result, err := s.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("seed cafes: %w", err)
	}
	log.Printf("Inserted %d cafes into MongoDB", len(result.InsertedIDs))
	return nil
}

func (s *MongoCafeStore) LoadCafes(ctx context.Context) ([]models.Cafe, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find cafes: %w", err)
	}
	defer cursor.Close(ctx)

	var cafes []models.Cafe
	if err := cursor.All(ctx, &cafes); err != nil {
		return nil, fmt.Errorf("decode cafes: %w", err)
	}
	return cafes, nil
}

// Disconnect closes the underlying client.
func (s *MongoCafeStore) Disconnect(ctx context.Context) error {
	return s.collection.Database().Client().Disconnect(ctx)
}
