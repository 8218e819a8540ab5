package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kbchat/internal/handlers"
	"kbchat/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService     service.ChatService
	UsageReporter   handlers.UsageReporter
	DocumentToggler handlers.DocumentToggler
	VectorHealth    handlers.VectorHealth
	DB              handlers.Pinger
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	usageHandler := handlers.NewUsageHandler(deps.UsageReporter)
	documentHandler := handlers.NewDocumentHandler(deps.DocumentToggler)
	healthHandler := handlers.NewHealthHandler(deps.VectorHealth, deps.DB)

	r.Method(http.MethodGet, "/api/health", healthHandler)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Identity)

		r.Get("/chats", chatHandler.List)
		r.Post("/chats", chatHandler.Create)
		r.Delete("/chats/{chatID}", chatHandler.Delete)
		r.Get("/chats/{chatID}/messages", chatHandler.ListMessages)
		r.Post("/chats/{chatID}/messages", chatHandler.SendMessage)
		r.Get("/chats/{chatID}/usage", usageHandler.ChatUsage)

		r.Method(http.MethodPatch, "/documents/{documentID}", documentHandler)
		r.Method(http.MethodGet, "/usage/tokens", usageHandler)
	})

	return r
}
