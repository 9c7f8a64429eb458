package handlers

import (
	"cafe-server/middleware"
	"cafe-server/models"
	"cafe-server/services"
	"cafe-server/utils/errors"
	"cafe-server/utils/geo"
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type CafeHandler struct {
	cafeService    *services.CafeService
	sessionService *services.SessionService
	metrics        *middleware.Metrics
	defaultCenter  models.LngLat
	nearbyRadiusKm float64
}

// CafeEntry is one cafe as shown in the list and on the map. The distance
// fields are only present when the list is ranked.
type CafeEntry struct {
	models.RankedCafe
	DistanceLabel string `json:"distance_label,omitempty"`
	WalkMinutes   *int   `json:"walk_minutes,omitempty"`
	DirectionsURL string `json:"directions_url,omitempty"`
}

type CafeListResponse struct {
	Cafes            []CafeEntry    `json:"cafes"`
	Count            int            `json:"count"`
	Total            int            `json:"total"`
	SortedByDistance bool           `json:"sorted_by_distance"`
	Reference        *models.LngLat `json:"reference"`
	Center           models.LngLat  `json:"center"`
	Search           string         `json:"search"`
	Type             string         `json:"type"`
	TypeLabel        string         `json:"type_label"`
}

type NearbyCafesResponse struct {
	Cafes  []CafeEntry `json:"cafes"`
	Count  int         `json:"count"`
	Lat    float64     `json:"lat"`
	Lon    float64     `json:"lon"`
	Radius float64     `json:"radius"`
	Type   string      `json:"type"`
}

type CategoriesResponse struct {
	Categories []models.CategoryOption `json:"categories"`
}

func NewCafeHandler(
	cafeService *services.CafeService,
	sessionService *services.SessionService,
	metrics *middleware.Metrics,
	defaultCenter models.LngLat,
	nearbyRadiusKm float64,
) *CafeHandler {
	return &CafeHandler{
		cafeService:    cafeService,
		sessionService: sessionService,
		metrics:        metrics,
		defaultCenter:  defaultCenter,
		nearbyRadiusKm: nearbyRadiusKm,
	}
}

func newCafeEntry(r models.RankedCafe) CafeEntry {
	entry := CafeEntry{RankedCafe: r}
	if r.Distance != nil {
		minutes := geo.WalkingMinutes(*r.Distance)
		entry.DistanceLabel = geo.FormatDistance(*r.Distance)
		entry.WalkMinutes = &minutes
		entry.DirectionsURL = geo.DirectionsURL(r.Coordinates.Lat(), r.Coordinates.Lng())
	}
	return entry
}

func newCafeEntries(ranked []models.RankedCafe) []CafeEntry {
	entries := make([]CafeEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = newCafeEntry(r)
	}
	return entries
}

// parseLngLat reads lat/lon query parameters. Both absent yields nil; only
// one of them, or a non-numeric value, is an input error.
func parseLngLat(r *http.Request) (*models.LngLat, error) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.ErrInvalidInput.WithDetails("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, errors.ErrInvalidInput.WithDetails("lon must be a number")
	}
	return &models.LngLat{lon, lat}, nil
}

// referenceLocation picks the session's location when the request carries a
// session, and the lat/lon parameters otherwise. A token whose session has
// expired or was lost on restart counts as having no location.
func (h *CafeHandler) referenceLocation(ctx context.Context, r *http.Request) (*models.LngLat, error) {
	if sessionID, ok := middleware.SessionID(ctx); ok {
		loc, err := h.sessionService.Location(ctx, sessionID)
		if err != nil && !stderrors.Is(err, services.ErrSessionNotFound) {
			return nil, err
		}
		if loc != nil {
			return loc, nil
		}
	}
	return parseLngLat(r)
}

// ListCafes handles GET /cafes?q=&type=&lat=&lon=
func (h *CafeHandler) ListCafes(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	category := r.URL.Query().Get("type")
	if category == "" {
		category = string(models.CategoryAll)
	}

	ref, err := h.referenceLocation(r.Context(), r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	result := h.cafeService.Discover(services.DiscoveryQuery{
		Search:    search,
		Category:  category,
		Reference: ref,
	})
	h.metrics.ObserveDiscovery(len(result.Cafes), ref != nil)

	center := h.defaultCenter
	if ref != nil {
		center = *ref
	}

	middleware.WriteJSON(w, http.StatusOK, CafeListResponse{
		Cafes:            newCafeEntries(result.Cafes),
		Count:            len(result.Cafes),
		Total:            result.Total,
		SortedByDistance: ref != nil,
		Reference:        ref,
		Center:           center,
		Search:           search,
		Type:             category,
		TypeLabel:        models.Category(category).Label(),
	})
}

// GetCafe handles GET /cafes/{id}
func (h *CafeHandler) GetCafe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput.WithDetails("id must be an integer"))
		return
	}

	ref, err := h.referenceLocation(r.Context(), r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	cafe, err := h.cafeService.GetCafe(id, ref)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, newCafeEntry(cafe))
}

// NearbyCafes handles GET /cafes/nearby?lat=&lon=&radius=&type=
func (h *CafeHandler) NearbyCafes(w http.ResponseWriter, r *http.Request) {
	center, err := parseLngLat(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if center == nil {
		middleware.WriteError(w, errors.ErrInvalidInput.WithDetails("lat and lon are required"))
		return
	}

	radius := h.nearbyRadiusKm
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, errors.ErrInvalidInput.WithDetails("radius must be a number of kilometers"))
			return
		}
		if radius <= 0 {
			radius = h.nearbyRadiusKm
		}
	}
	category := r.URL.Query().Get("type")
	if category == "" {
		category = string(models.CategoryAll)
	}

	cafes, err := h.cafeService.Nearby(r.Context(), *center, radius, category)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	h.metrics.ObserveDiscovery(len(cafes), true)

	middleware.WriteJSON(w, http.StatusOK, NearbyCafesResponse{
		Cafes:  newCafeEntries(cafes),
		Count:  len(cafes),
		Lat:    center.Lat(),
		Lon:    center.Lng(),
		Radius: radius,
		Type:   category,
	})
}

// ListCategories handles GET /categories
func (h *CafeHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: models.CategoryOptions})
}

// Health handles GET /health
func (h *CafeHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cafes":  len(h.cafeService.Cafes()),
	})
}
