package services

import (
	"cafe-server/models"
	"cafe-server/utils/geo"
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// GeoIndex answers "which cafes are within r km of this point".
type GeoIndex interface {
	Index(ctx context.Context, cafes []models.Cafe) error
	NearbyIDs(ctx context.Context, center models.LngLat, radiusKm float64) ([]int, error)
}

const cafesGeoKey = "cafes:geo"

// Redis GEO measures with its own Earth radius and stores positions as 52-bit
// geohashes, so its distances run slightly long. Searches are widened by the
// radius ratio plus a meter of slack; callers trim with geo.Distance.
const (
	redisEarthRadiusKm   = 6372.7976
	geohashErrorMarginKm = 0.001
)

// redisSearchRadius is the GEOSEARCH radius that covers every cafe within
// radiusKm by haversine distance.
func redisSearchRadius(radiusKm float64) float64 {
	return radiusKm*redisEarthRadiusKm/geo.EarthRadiusKm + geohashErrorMarginKm
}

// RedisGeoIndex stores cafe positions in a Redis GEO set.
type RedisGeoIndex struct {
	client *redis.Client
	key    string
}

func NewRedisGeoIndex(client *redis.Client) *RedisGeoIndex {
	return &RedisGeoIndex{client: client, key: cafesGeoKey}
}

// Index replaces the GEO set with the given cafes.
func (g *RedisGeoIndex) Index(ctx context.Context, cafes []models.Cafe) error {
	log.Println("Seeding cafes into Redis...")

	locations := make([]*redis.GeoLocation, 0, len(cafes))
	for _, cafe := range cafes {
		locations = append(locations, &redis.GeoLocation{
			Name:      strconv.Itoa(cafe.ID),
			Longitude: cafe.Coordinates.Lng(),
			Latitude:  cafe.Coordinates.Lat(),
		})
	}

	pipe := g.client.TxPipeline()
	pipe.Del(ctx, g.key)
	if len(locations) > 0 {
		pipe.GeoAdd(ctx, g.key, locations...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis geo index: %w", err)
	}

	log.Printf("Seeded %d cafes into Redis", len(locations))
	return nil
}

func (g *RedisGeoIndex) NearbyIDs(ctx context.Context, center models.LngLat, radiusKm float64) ([]int, error) {
	results, err := g.client.GeoSearchLocation(ctx, g.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Lng(),
			Latitude:   center.Lat(),
			Radius:     redisSearchRadius(radiusKm),
			RadiusUnit: "km",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		log.Printf("Redis GeoSearch error: %v", err)
		return nil, err
	}

	ids := make([]int, 0, len(results))
	for _, loc := range results {
		id, err := strconv.Atoi(loc.Name)
		if err != nil {
			log.Printf("Skipping malformed cafe member %q in %s", loc.Name, g.key)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MemoryGeoIndex scans every cafe with the haversine distance. Fine for a
// city-sized dataset and used when Redis is not configured.
type MemoryGeoIndex struct {
	mu    sync.RWMutex
	cafes []models.Cafe
}

func NewMemoryGeoIndex() *MemoryGeoIndex {
	return &MemoryGeoIndex{}
}

func (g *MemoryGeoIndex) Index(ctx context.Context, cafes []models.Cafe) error {
	snapshot := make([]models.Cafe, len(cafes))
	copy(snapshot, cafes)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.cafes = snapshot
	return nil
}

func (g *MemoryGeoIndex) NearbyIDs(ctx context.Context, center models.LngLat, radiusKm float64) ([]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ids []int
	for _, cafe := range g.cafes {
		d := geo.Distance(center.Lat(), center.Lng(), cafe.Coordinates.Lat(), cafe.Coordinates.Lng())
		if d <= radiusKm {
			ids = append(ids, cafe.ID)
		}
	}
	return ids, nil
}
