package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kannou1/PFE/internal/auth"
)

// RouterOptions configures NewRouter. A nil RateLimit disables limiting.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimit      func(http.Handler) http.Handler
}

// NewRouter mounts the assistant routes.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(auth.RequestIDMiddleware)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(auth.CredentialMiddleware)
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}
		r.Post("/chat", h.Chat)
		r.Post("/chat/upload", h.Upload)
		r.Get("/chat/conversations/{conversationID}", h.Conversation)
	})

	return r
}
