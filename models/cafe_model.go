package models

// LngLat is a coordinate pair in GeoJSON order: longitude first, latitude second.
type LngLat [2]float64

func (p LngLat) Lng() float64 { return p[0] }
func (p LngLat) Lat() float64 { return p[1] }

type Cafe struct {
	ID          int      `json:"id" bson:"_id"`
	Name        string   `json:"name" bson:"name"`
	Coordinates LngLat   `json:"coordinates" bson:"coordinates"`
	Address     string   `json:"address" bson:"address"`
	Description string   `json:"description" bson:"description"`
	Rating      float64  `json:"rating" bson:"rating"`
	Type        Category `json:"type" bson:"type"`
}

// RankedCafe is a Cafe with its distance in kilometers from a reference location.
// Distance is nil when no reference location was known.
type RankedCafe struct {
	Cafe
	Distance *float64 `json:"distance,omitempty"`
}
