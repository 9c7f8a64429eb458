package services

import (
	"cafe-server/models"
	"cafe-server/utils/geo"
	"sort"
	"strings"
)

// DiscoveryQuery is the full set of inputs for one discovery pass.
type DiscoveryQuery struct {
	Search    string
	Category  string
	Reference *models.LngLat
}

// FilterCafes keeps cafes whose name, description or address contains search,
// and whose category contains category. Both checks ignore case. An empty
// search or the "all" category skips the corresponding check. The input slice
// is never modified.
func FilterCafes(cafes []models.Cafe, search, category string) []models.Cafe {
	filtered := make([]models.Cafe, 0, len(cafes))

	needle := strings.ToLower(search)
	wantCategory := category != string(models.CategoryAll)
	categoryNeedle := strings.ToLower(category)

	for _, cafe := range cafes {
		if search != "" && !matchesSearch(cafe, needle) {
			continue
		}
		// Substring, not equality: "art" also matches any tag containing it.
		if wantCategory && !strings.Contains(strings.ToLower(string(cafe.Type)), categoryNeedle) {
			continue
		}
		filtered = append(filtered, cafe)
	}
	return filtered
}

func matchesSearch(cafe models.Cafe, needle string) bool {
	return strings.Contains(strings.ToLower(cafe.Name), needle) ||
		strings.Contains(strings.ToLower(cafe.Description), needle) ||
		strings.Contains(strings.ToLower(cafe.Address), needle)
}

// RankByDistance pairs every cafe with its distance from ref and sorts nearest
// first, keeping input order for equal distances. With a nil ref the cafes
// come back in input order without distances.
func RankByDistance(cafes []models.Cafe, ref *models.LngLat) []models.RankedCafe {
	ranked := make([]models.RankedCafe, len(cafes))
	for i, cafe := range cafes {
		ranked[i] = models.RankedCafe{Cafe: cafe}
	}
	if ref == nil {
		return ranked
	}

	for i := range ranked {
		d := geo.Distance(ref.Lat(), ref.Lng(), ranked[i].Coordinates.Lat(), ranked[i].Coordinates.Lng())
		ranked[i].Distance = &d
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Distance < *ranked[j].Distance
	})
	return ranked
}

// Discover filters the full set first and ranks what is left. Filtering never
// depends on the reference location.
func Discover(cafes []models.Cafe, q DiscoveryQuery) []models.RankedCafe {
	category := q.Category
	if category == "" {
		category = string(models.CategoryAll)
	}
	return RankByDistance(FilterCafes(cafes, q.Search, category), q.Reference)
}
