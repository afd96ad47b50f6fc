package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const healthPath = "/api/health"

// Options configures the API.
type Options struct {
	// FrontendURL is the web app origin. Empty derives it from each request.
	FrontendURL string

	// Region is reported by the health check.
	Region string
}

// API holds the HTTP handlers.
type API struct {
	ports       *Ports
	frontendURL string
	region      string
	validator   *requestValidator
	now         func() time.Time
}

// New creates the API for the given ports.
func New(ports *Ports, opts Options) (*API, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	region := opts.Region
	if region == "" {
		region = "unknown"
	}

	return &API{
		ports:       ports,
		frontendURL: opts.FrontendURL,
		region:      region,
		validator:   newRequestValidator(),
		now:         time.Now,
	}, nil
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(allowOrigins(a.frontendURL))
	r.Use(preflight)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get(healthPath, a.health)

	r.Route("/api/auth", func(r chi.Router) {
		r.HandleFunc("/google", a.startAuthorization)
		r.Get("/google/callback", a.completeAuthorization)
		r.Get("/status", a.status)
		r.Post("/disconnect", a.disconnect)
	})

	r.Post("/api/append-log", a.appendLog)
	r.Get("/api/get-logs", a.getLogs)
	r.Post("/api/sync-logs", a.syncLogs)

	r.Get("/api/state/get", a.getState)
	r.Post("/api/state/set", a.setState)

	return r
}
