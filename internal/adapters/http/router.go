package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kirillkom/doc-lifecycle/internal/config"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
	"github.com/kirillkom/doc-lifecycle/internal/observability/metrics"
)

const maxRequestBodyBytes = 8 << 20

// Services bundles the inbound ports served over HTTP.
type Services struct {
	Lifecycle ports.LifecycleService
	Locks     ports.LockService
	Reader    ports.DocumentReader
	Favorites ports.FavoriteService
	History   ports.EventHistory
}

type Router struct {
	lifecycle ports.LifecycleService
	locks     ports.LockService
	reader    ports.DocumentReader
	favorites ports.FavoriteService
	history   ports.EventHistory

	metrics *metrics.HTTPServerMetrics

	adminAPIKey         string
	rateLimitRPS        float64
	rateLimitBurst      int
	maxInFlight         int
	backpressureMaxWait time.Duration
}

func NewRouter(cfg config.Config, services Services, httpMetrics *metrics.HTTPServerMetrics) *Router {
	if httpMetrics == nil {
		httpMetrics = metrics.NewHTTPServerMetrics("doc-lifecycle-api")
	}
	return &Router{
		lifecycle: services.Lifecycle,
		locks:     services.Locks,
		reader:    services.Reader,
		favorites: services.Favorites,
		history:   services.History,

		metrics: httpMetrics,

		adminAPIKey:         cfg.AdminAPIKey,
		rateLimitRPS:        cfg.APIRateLimitRPS,
		rateLimitBurst:      cfg.APIRateLimitBurst,
		maxInFlight:         cfg.APIMaxInFlight,
		backpressureMaxWait: cfg.APIBackpressureWait,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(rt.metrics.Middleware)
	r.Use(func(next http.Handler) http.Handler {
		return rateLimitMiddleware(next, rt.rateLimitRPS, rt.rateLimitBurst)
	})
	r.Use(func(next http.Handler) http.Handler {
		return backpressureMiddleware(next, rt.maxInFlight, rt.backpressureMaxWait)
	})
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", rt.healthz)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", rt.createDocument)
			r.Get("/", rt.listDocuments)

			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", rt.viewDocument)
				r.Get("/versions", rt.listVersions)
				r.Get("/events", rt.listEvents)

				r.Post("/request-translation", rt.requestTranslation)
				r.Post("/start", rt.startTranslation)
				r.Post("/resume", rt.resumeTranslation)
				r.Post("/draft", rt.saveDraft)
				r.Post("/progress", rt.recordProgress)
				r.Post("/submit", rt.submitForReview)
				r.Post("/handover", rt.handOver)
				r.Post("/approve", rt.approve)
				r.Post("/reject", rt.reject)
				r.Post("/publish", rt.publish)

				r.Get("/lock", rt.queryLock)
				r.Delete("/lock", rt.releaseLock)

				r.Put("/favorite", rt.addFavorite)
				r.Delete("/favorite", rt.removeFavorite)
			})
		})

		r.Get("/favorites", rt.listFavorites)

		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.adminAuthMiddleware)
			r.Get("/locks", rt.listLocks)
			r.Post("/documents/{documentID}/lock/reclaim", rt.reclaimLock)
			r.Post("/documents/{documentID}/convert-to-pending", rt.convertToPending)
		})
	})

	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func documentIDParam(r *http.Request) string {
	return chi.URLParam(r, "documentID")
}

// decodeBody accepts an empty body as the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
