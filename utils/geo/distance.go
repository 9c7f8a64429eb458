// Package geo holds the great-circle math used to rank cafes by distance.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// WalkingMinutesPerKm is the pace used for walking estimates.
const WalkingMinutesPerKm = 12

// Distance returns the haversine great-circle distance in kilometers between
// two points given in degrees. Inputs are not range-checked.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// FormatDistance renders a distance in kilometers for display:
// whole meters below 1 km ("500m"), one decimal otherwise ("2.3km").
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int64(math.Round(km*1000)))
	}
	tenths := roundTenthsHalfUp(km)
	return fmt.Sprintf("%d.%dkm", tenths/10, tenths%10)
}

// roundTenthsHalfUp rounds a non-negative km to tenths using the exact decimal
// value of the float, with halves going up: 1.25 gives 13 while 1.15 (stored
// as 1.1499...) gives 11.
func roundTenthsHalfUp(km float64) int64 {
	// A float64 >= 1 has at most 52 fractional decimal digits, so this is exact.
	exact := strconv.FormatFloat(km, 'f', 64, 64)
	whole, frac, _ := strings.Cut(exact, ".")
	tenths, err := strconv.ParseInt(whole+frac[:1], 10, 64)
	if err != nil {
		return int64(math.Round(km * 10))
	}
	if frac[1] >= '5' {
		tenths++
	}
	return tenths
}

// WalkingMinutes estimates the walk time for a distance, rounded up to the minute.
func WalkingMinutes(km float64) int {
	return int(math.Ceil(km * WalkingMinutesPerKm))
}

// DirectionsURL builds a Google Maps directions link to the given point.
func DirectionsURL(lat, lng float64) string {
	return "https://www.google.com/maps/dir/?api=1&destination=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
