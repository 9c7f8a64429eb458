package services

import (
	"cafe-server/models"
	"cafe-server/utils/errors"
	"context"
	"log"
	"net/http"
	"sync"
)

var ErrCafeNotFound = errors.NewAPIError("CAFE_NOT_FOUND", "Cafe not found", http.StatusNotFound)

// CafeService owns the in-memory cafe catalog. The catalog is loaded once
// from a CafeStore and only replaced wholesale by Reload.
type CafeService struct {
	store CafeStore
	index GeoIndex

	// reloadMu keeps load, index and swap of one reload together.
	reloadMu sync.Mutex

	mu    sync.RWMutex
	cafes []models.Cafe
	byID  map[int]models.Cafe
}

// DiscoveryResult is a filtered, optionally ranked page of the catalog.
type DiscoveryResult struct {
	Cafes []models.RankedCafe
	Total int
}

// NewCafeService loads the catalog and indexes it for radius queries.
func NewCafeService(ctx context.Context, store CafeStore, index GeoIndex) (*CafeService, error) {
	service := &CafeService{store: store, index: index}
	if _, err := service.Reload(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

// Reload reads the dataset again and swaps the catalog in one step.
func (s *CafeService) Reload(ctx context.Context) (int, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	cafes, err := s.store.LoadCafes(ctx)
	if err != nil {
		log.Printf("Failed to load cafes: %v", err)
		return 0, errors.Wrap(err, "CATALOG_LOAD_FAILED", "Failed to load cafes", http.StatusInternalServerError)
	}

	byID := make(map[int]models.Cafe, len(cafes))
	unique := make([]models.Cafe, 0, len(cafes))
	for _, cafe := range cafes {
		if _, dup := byID[cafe.ID]; dup {
			log.Printf("Duplicate cafe id %d (%s), keeping the first", cafe.ID, cafe.Name)
			continue
		}
		byID[cafe.ID] = cafe
		unique = append(unique, cafe)
	}
	cafes = unique

	if err := s.index.Index(ctx, cafes); err != nil {
		log.Printf("Failed to index cafes: %v", err)
		return 0, errors.Wrap(err, "GEO_INDEX_FAILED", "Failed to index cafes", http.StatusInternalServerError)
	}

	s.mu.Lock()
	s.cafes = cafes
	s.byID = byID
	s.mu.Unlock()

	log.Printf("Loaded %d cafes", len(cafes))
	return len(cafes), nil
}

// Cafes returns the current catalog. The slice is shared and must not be modified.
func (s *CafeService) Cafes() []models.Cafe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cafes
}

// Discover filters the catalog and ranks the matches around q.Reference.
func (s *CafeService) Discover(q DiscoveryQuery) DiscoveryResult {
	cafes := s.Cafes()
	return DiscoveryResult{
		Cafes: Discover(cafes, q),
		Total: len(cafes),
	}
}

// GetCafe returns one cafe, with its distance when ref is known.
func (s *CafeService) GetCafe(id int, ref *models.LngLat) (models.RankedCafe, error) {
	s.mu.RLock()
	cafe, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return models.RankedCafe{}, ErrCafeNotFound
	}
	return RankByDistance([]models.Cafe{cafe}, ref)[0], nil
}

// Nearby returns the cafes within radiusKm of center whose category matches,
// nearest first.
func (s *CafeService) Nearby(ctx context.Context, center models.LngLat, radiusKm float64, category string) ([]models.RankedCafe, error) {
	ids, err := s.index.NearbyIDs(ctx, center, radiusKm)
	if err != nil {
		return nil, errors.Wrap(err, "GEO_QUERY_FAILED", "Failed to query nearby cafes", http.StatusInternalServerError)
	}

	s.mu.RLock()
	candidates := make([]models.Cafe, 0, len(ids))
	for _, id := range ids {
		if cafe, ok := s.byID[id]; ok {
			candidates = append(candidates, cafe)
		}
	}
	s.mu.RUnlock()

	if category == "" {
		category = string(models.CategoryAll)
	}
	ranked := RankByDistance(FilterCafes(candidates, "", category), &center)

	// The index may use a slightly different Earth model; trim on our own distance.
	within := ranked[:0]
	for _, r := range ranked {
		if *r.Distance <= radiusKm {
			within = append(within, r)
		}
	}
	log.Printf("Found %d cafes within %.2f km", len(within), radiusKm)
	return within, nil
}
