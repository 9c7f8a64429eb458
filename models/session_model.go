package models

import "time"

// Session is one viewer's visit. Location stays nil until the viewer's position
// is resolved, and is never changed after that.
type Session struct {
	ID        string    `json:"session_id"`
	Location  *LngLat   `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
