package services

import (
	"cafe-server/models"
	"cafe-server/utils/geo"
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const testSecret = "test-secret"

func TestSessionService_Start(t *testing.T) {
	service := NewSessionService(NewMemorySessionStore(), testSecret, time.Hour)

	session, tokenString, err := service.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.ID == "" {
		t.Error("Expected session ID to be set")
	}
	if session.Location != nil {
		t.Error("Expected a new session to have no location")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("Expected a valid token, got %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sessionID"] != session.ID {
		t.Errorf("Expected sessionID claim %s, got %v", session.ID, claims["sessionID"])
	}
}

func TestSessionService_SetLocationOnce(t *testing.T) {
	service := NewSessionService(NewMemorySessionStore(), testSecret, time.Hour)
	ctx := context.Background()
	session, _, _ := service.Start(ctx)

	loc, err := service.Location(ctx, session.ID)
	if err != nil {
		t.Fatalf("Location failed: %v", err)
	}
	if loc != nil {
		t.Errorf("Expected no location yet, got %v", *loc)
	}

	updated, err := service.SetLocation(ctx, session.ID, models.LngLat{73.8567, 18.5204})
	if err != nil {
		t.Fatalf("SetLocation failed: %v", err)
	}
	if updated.Location == nil || *updated.Location != (models.LngLat{73.8567, 18.5204}) {
		t.Errorf("Unexpected location: %v", updated.Location)
	}

	_, err = service.SetLocation(ctx, session.ID, models.LngLat{0, 0})
	if !stderrors.Is(err, ErrLocationAlreadySet) {
		t.Errorf("Expected ErrLocationAlreadySet, got %v", err)
	}

	loc, _ = service.Location(ctx, session.ID)
	if loc == nil || *loc != (models.LngLat{73.8567, 18.5204}) {
		t.Errorf("Expected the first location to stick, got %v", loc)
	}
}

func TestSessionService_UnknownSession(t *testing.T) {
	service := NewSessionService(NewMemorySessionStore(), testSecret, time.Hour)
	ctx := context.Background()

	if _, err := service.Get(ctx, "missing"); !stderrors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := service.SetLocation(ctx, "missing", models.LngLat{1, 2}); !stderrors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Save(ctx, models.Session{ID: "s1", CreatedAt: now, ExpiresAt: now.Add(time.Minute)})

	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("Expected session to be found: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !stderrors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected expired session to be gone, got %v", err)
	}
}

func TestMemorySessionStore_ConcurrentSetLocation(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	store.Save(ctx, models.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)})

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.SetLocationOnce(ctx, "s1", models.LngLat{float64(i), 0}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("Expected exactly one successful set, got %d", successes)
	}
}

// TestRedisSessionStore requires a Redis instance on localhost:6379 and is
// skipped otherwise.
func TestRedisSessionStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	defer client.Close()

	store := NewRedisSessionStore(client)
	ctx = context.Background()
	id := "test-session-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer client.Del(ctx, sessionKey(id))

	if err := store.Save(ctx, models.Session{ID: id, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	session, err := store.SetLocationOnce(ctx, id, models.LngLat{73.8567, 18.5204})
	if err != nil {
		t.Fatalf("SetLocationOnce failed: %v", err)
	}
	if session.Location == nil {
		t.Fatal("Expected location to be set")
	}

	if _, err := store.SetLocationOnce(ctx, id, models.LngLat{0, 0}); !stderrors.Is(err, ErrLocationAlreadySet) {
		t.Errorf("Expected ErrLocationAlreadySet, got %v", err)
	}

	if ttl := client.TTL(ctx, sessionKey(id)).Val(); ttl <= 0 {
		t.Errorf("Expected TTL to survive the update, got %v", ttl)
	}

	if _, err := store.Get(ctx, "missing-"+id); !stderrors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

// TestRedisGeoIndex requires a Redis instance on localhost:6379.
func TestRedisGeoIndex(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	defer client.Close()

	index := NewRedisGeoIndex(client)
	index.key = "test-cafes-geo-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	ctx = context.Background()
	defer client.Del(ctx, index.key)

	if err := index.Index(ctx, sampleCafes()); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	ids, err := index.NearbyIDs(ctx, models.LngLat{73.8860, 18.5360}, 2.0)
	if err != nil {
		t.Fatalf("NearbyIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("Expected [3 1], got %v", ids)
	}

	// A cafe exactly on the haversine radius must still come back.
	center := models.LngLat{73.8860, 18.5360}
	edge := sampleCafes()[0].Coordinates
	radius := geo.Distance(center.Lat(), center.Lng(), edge.Lat(), edge.Lng())
	ids, err = index.NearbyIDs(ctx, center, radius)
	if err != nil {
		t.Fatalf("NearbyIDs failed: %v", err)
	}
	found := false
	for _, id := range ids {
		if id == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected cafe 1 at %.6f km to be included, got %v", radius, ids)
	}
}

func TestRedisSearchRadiusCoversHaversine(t *testing.T) {
	for _, km := range []float64{0, 0.25, 1, 3, 50, 500} {
		redisDistance := km * redisEarthRadiusKm / geo.EarthRadiusKm
		if got := redisSearchRadius(km); got <= redisDistance {
			t.Errorf("redisSearchRadius(%v) = %v, want more than %v", km, got, redisDistance)
		}
	}
}
