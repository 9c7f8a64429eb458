package handlers

import (
	"cafe-server/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// Routes bundles what NewRouter needs to mount the API.
type Routes struct {
	Cafes    *CafeHandler
	Sessions *SessionHandler
	Admin    *AdminHandler

	Metrics        *middleware.Metrics
	MetricsHandler http.Handler

	JWTSecret      string
	AdminKeyHash   string
	AllowedOrigins []string
}

func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if rt.Metrics != nil {
		r.Use(rt.Metrics.Middleware)
	}
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CORSMiddleware(rt.AllowedOrigins))

	optionalSession := middleware.SessionMiddleware(rt.JWTSecret, false)
	requiredSession := middleware.SessionMiddleware(rt.JWTSecret, true)

	r.HandleFunc("/health", rt.Cafes.Health).Methods("GET")
	if rt.MetricsHandler != nil {
		r.Handle("/metrics", rt.MetricsHandler).Methods("GET")
	}
	r.HandleFunc("/categories", rt.Cafes.ListCategories).Methods("GET", "OPTIONS")

	// Cafe routes
	r.Handle("/cafes", optionalSession(http.HandlerFunc(rt.Cafes.ListCafes))).Methods("GET", "OPTIONS")
	r.Handle("/cafes/nearby", http.HandlerFunc(rt.Cafes.NearbyCafes)).Methods("GET", "OPTIONS")
	r.Handle("/cafes/{id:[0-9]+}", optionalSession(http.HandlerFunc(rt.Cafes.GetCafe))).Methods("GET", "OPTIONS")

	// Session routes
	r.HandleFunc("/session", rt.Sessions.StartSession).Methods("POST")
	r.Handle("/session", requiredSession(http.HandlerFunc(rt.Sessions.GetSession))).Methods("GET", "OPTIONS")
	r.Handle("/session/location", requiredSession(http.HandlerFunc(rt.Sessions.SetLocation))).Methods("PUT", "OPTIONS")

	// Admin routes
	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminKeyMiddleware(rt.AdminKeyHash))
	adminRouter.HandleFunc("/reload", rt.Admin.ReloadCafes).Methods("POST", "OPTIONS")

	return r
}
