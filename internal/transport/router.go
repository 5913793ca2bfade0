package transport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/groundworks/estimator/internal/observability"
	"github.com/groundworks/estimator/model"
)

// ConfigResolver is the cache-or-load read path for resolved configs.
type ConfigResolver interface {
	Resolve(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error)
}

// ConfigService is the read/write path for persisted configs.
type ConfigService interface {
	Get(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error)
	Save(ctx context.Context, serviceID, companyID string, cfg model.ServiceConfig, actor string) error
}

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Cache      ConfigResolver
	Configs    ConfigService
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	ReadyCheck func(ctx context.Context) error

	// Auth, when set, guards the config write path with JWT verification.
	Auth *AuthConfig
	// Tracing enables the per-request span middleware.
	Tracing bool
}

type handlers struct {
	cache   ConfigResolver
	configs ConfigService
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRouter creates a chi.Router with the middleware pipeline and all route
// registrations. Health, readiness, and metrics bypass request logging.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handlers{
		cache:   deps.Cache,
		configs: deps.Configs,
		logger:  logger,
		metrics: deps.Metrics,
	}

	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if deps.ReadyCheck != nil {
			if err := deps.ReadyCheck(req.Context()); err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": err.Error(),
				})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler())
	}

	r.Group(func(r chi.Router) {
		if deps.Tracing {
			r.Use(observability.TracingMiddleware)
		}
		r.Use(RequestLogging(logger))
		if deps.Metrics != nil {
			r.Use(deps.Metrics.MetricsMiddleware)
		}

		r.Post("/v1/services/{serviceID}/calculate", h.handleCalculate)
		r.Get("/v1/services/{serviceID}/config", h.handleGetConfig)

		r.Group(func(r chi.Router) {
			if deps.Auth != nil {
				r.Use(JWTAuthenticator(*deps.Auth))
			}
			r.Put("/v1/services/{serviceID}/config", h.handleSaveConfig)
		})
	})

	return r
}
