// Package httpserver exposes the SmartFit REST API.
package httpserver

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/and161185/smartfit/internal/convert"
	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/service"
)

const maxBodyBytes = 1 << 20

// Server wires services into HTTP handlers.
type Server struct {
	checkins service.CheckinService
	settings service.SettingsService
	auth     service.AuthService
	parser   *convert.EntryParser
	loc      *time.Location
	log      *zap.Logger
}

// Options control routing concerns that come from configuration.
type Options struct {
	BasePath    string
	CORSOrigins []string
	// Location interprets date-time query parameters without an offset.
	Location *time.Location
}

// New constructs a server with injected services.
func New(
	checkins service.CheckinService,
	settings service.SettingsService,
	auth service.AuthService,
	log *zap.Logger,
	opts Options,
) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Server{
		checkins: checkins,
		settings: settings,
		auth:     auth,
		parser:   convert.NewEntryParser(log, opts.Location, nil),
		loc:      opts.Location,
		log:      log,
	}
}

// Routes builds the router mounted under opts.BasePath.
func (s *Server) Routes(opts Options) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.log))
	r.Use(Recover(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	base := "/" + strings.Trim(opts.BasePath, "/")
	if base == "/" {
		base = ""
	}
	api := chi.NewRouter()
	api.Route("/auth", func(r chi.Router) {
		r.Post("/verify", s.verifyToken)
		r.Get("/health", s.health)
	})
	api.Group(func(r chi.Router) {
		r.Use(Authenticate(s.auth, s.log))
		r.Route("/checkin", func(r chi.Router) {
			r.Get("/", s.listEntries)
			r.Post("/", s.createEntry)
			r.Get("/type/{type}", s.listEntriesByType)
			r.Get("/date-range", s.listEntriesByRange)
			r.Get("/stats", s.stats)
			r.Get("/{id}", s.getEntry)
			r.Put("/{id}", s.updateEntry)
			r.Delete("/{id}", s.deleteEntry)
		})
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.getSettings)
			r.Post("/", s.saveSettings)
			r.Put("/", s.saveSettings)
		})
	})
	if base == "" {
		r.Mount("/", api)
	} else {
		r.Mount(base, api)
	}
	return r
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewValidation("Malformed request body: " + err.Error())
	}
	return body, nil
}

// callerID returns the authenticated user; the auth middleware guarantees it.
func callerID(r *http.Request) string {
	id, _ := UserIDFromCtx(r.Context())
	return id
}
