// Package mockapi is an in-memory stand-in for the accident and obstacle
// services, used for local development and integration tests.
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// BasePath is where the API is mounted, matching the production deployment.
const BasePath = "/api/v1"

// Failure codes carried in the envelope.
const (
	codeBadRequest   = 400
	codeUnauthorized = 401
	codeNotFound     = 404
	codeConflict     = 409
)

type account struct {
	user         domain.User
	passwordHash []byte
}

// Server holds the mock backend state.
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu         sync.Mutex
	accounts   map[int64]*account
	accidents  []domain.Accident
	obstacles  []domain.Obstacle
	detections []domain.Detection
	nextID     int64
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HMAC key used to sign tokens.
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithLogger sets the request logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New creates an empty mock backend.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("intellidetect-dev-secret"),
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
		log:      zerolog.Nop(),
		accounts: make(map[int64]*account),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with every route mounted under BasePath.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/users/login", s.handleLogin)
		r.Post("/users/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/info/{username}", s.handleGetUserByUsername)
			r.Put("/users/update", s.handleUpdateUser)
			r.Put("/users/updatePassword", s.handleUpdatePassword)
			r.Delete("/users/delete", s.handleDeleteUser)
			r.Get("/users/{id}", s.handleGetUser)

			r.Route("/accidents", func(r chi.Router) {
				r.Get("/", s.handleListAccidents)
				r.Post("/", s.handleCreateAccident)
				r.Get("/stats", s.handleAccidentStats)
				r.Get("/{id}", s.handleGetAccident)
				r.Put("/{id}/display", s.handleAccidentDisplay)
			})

			r.Route("/obstacles", func(r chi.Router) {
				r.Get("/", s.handleListObstacles)
				r.Post("/", s.handleCreateObstacle)
				r.Get("/stats", s.handleObstacleStats)
				r.Get("/high-risk", s.handleHighRisk)
				r.Get("/{id}", s.handleGetObstacle)
				r.Put("/{id}/display", s.handleObstacleDisplay)
			})

			r.Route("/detections", func(r chi.Router) {
				r.Get("/realtime", s.handleRealtime)
				r.Get("/history", s.handleHistory)
				r.Post("/manual", s.handleManual)
			})
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("request")
	})
}

func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func writeOK(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, domain.CodeOK, "success", data)
}

func writeFail(w http.ResponseWriter, status, code int, message string) {
	writeEnvelope(w, status, code, message, nil)
}

func writeEnvelope(w http.ResponseWriter, status, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.Envelope[any]{Code: code, Message: message, Data: data}) //nolint:errcheck // best-effort write
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}
