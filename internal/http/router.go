package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/pulse-reader/internal/http/handlers"
	"github.com/pribylovaa/pulse-reader/internal/http/middleware"
)

// BasePath — префикс REST API.
const BasePath = "/api/v1"

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// IngestTimeout — бюджет ручного цикла ингеста. Цикл не ограничен общим Timeout:
	// медленная лента не должна превращать весь цикл в 504.
	IngestTimeout time.Duration
	// AdminRole — роль из токена, открывающая /admin/*.
	AdminRole string
	// ReclassifyBatch — limit по умолчанию для POST /admin/reclassify.
	ReclassifyBatch int
	// Pinger — проверка хранилища для /healthz. nil — /healthz всегда 200.
	Pinger handlers.Pinger
	// Gatherer — источник метрик для /metrics. nil — prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewRouter собирает http.Handler с chi: служебные эндпойнты на корне,
// REST API под BasePath.
func NewRouter(svc handlers.Service, verifier middleware.TokenVerifier, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)

	root.Get("/livez", handlers.Livez)
	if opts.Pinger != nil {
		root.Get("/healthz", handlers.Healthz(opts.Pinger))
	} else {
		root.Get("/healthz", handlers.Livez)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	root.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	h := handlers.New(svc, opts.ReclassifyBatch)

	root.Route(BasePath, func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeout))
		r.Use(middleware.Authenticate(verifier))
		registerRoutes(r, h, opts)
	})

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	// articles
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{id}", h.GetArticle)

	// topics
	r.Get("/topics", h.ListTopics)

	// profile
	r.Post("/profile", h.CreateProfile)
	r.Get("/profile", h.GetProfile)
	r.Patch("/profile", h.UpdateProfile)

	// admin
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(opts.AdminRole))

		r.With(middleware.Detach(opts.IngestTimeout)).Post("/ingest", h.RunIngestion)
		r.Post("/reclassify", h.Reclassify)
		r.Post("/retention", h.RunRetention)

		r.Delete("/articles/{id}", h.DeleteArticle)

		r.Get("/sources", h.ListSources)
		r.Post("/sources", h.CreateSource)
		r.Patch("/sources/{id}", h.UpdateSource)
		r.Delete("/sources/{id}", h.DeleteSource)
	})
}
