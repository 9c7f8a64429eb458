package services

import (
	"cafe-server/models"
	"cafe-server/utils/errors"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = errors.NewAPIError("SESSION_NOT_FOUND", "Session not found or expired", http.StatusNotFound)
	ErrLocationAlreadySet = errors.NewAPIError("LOCATION_ALREADY_SET", "Session location is already set", http.StatusConflict)
)

// SessionService hands out viewer sessions and keeps each session's
// reference location.
type SessionService struct {
	store     SessionStore
	jwtSecret string
	ttl       time.Duration
	now       func() time.Time
}

func NewSessionService(store SessionStore, jwtSecret string, ttl time.Duration) *SessionService {
	return &SessionService{
		store:     store,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Start creates a session without a location and returns it with a signed token.
func (s *SessionService) Start(ctx context.Context) (models.Session, string, error) {
	now := s.now()
	session := models.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, session); err != nil {
		return models.Session{}, "", errors.Wrap(err, "SESSION_STORE_ERROR", "Failed to create session", http.StatusInternalServerError)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sessionID": session.ID,
		"iat":       now.Unix(),
		"exp":       session.ExpiresAt.Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return models.Session{}, "", errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}

	log.Printf("Started session %s", session.ID)
	return session, tokenString, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (models.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Session{}, errors.Wrap(err, "SESSION_STORE_ERROR", "Failed to read session", http.StatusInternalServerError)
	}
	return session, nil
}

// SetLocation records the viewer position for the session. It succeeds once;
// later calls fail with ErrLocationAlreadySet. Coordinates are stored as given.
func (s *SessionService) SetLocation(ctx context.Context, id string, loc models.LngLat) (models.Session, error) {
	session, err := s.store.SetLocationOnce(ctx, id, loc)
	if err != nil {
		return models.Session{}, errors.Wrap(err, "SESSION_STORE_ERROR", "Failed to update session", http.StatusInternalServerError)
	}
	log.Printf("Set location for session %s: lng=%f, lat=%f", id, loc.Lng(), loc.Lat())
	return session, nil
}

// Location returns the session's reference location, nil if not yet known.
func (s *SessionService) Location(ctx context.Context, id string) (*models.LngLat, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Location, nil
}
