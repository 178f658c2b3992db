package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/lngkit/internal/langservice"
	"github.com/starford/lngkit/internal/translator"
)

// RouterOption configures optional routes.
type RouterOption func(*routerOptions)

type routerOptions struct {
	tr *translator.Translator
}

// WithTranslator mounts the /active routes backed by tr.
func WithTranslator(tr *translator.Translator) RouterOption {
	return func(o *routerOptions) { o.tr = tr }
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *langservice.Service, authEnabled bool, token string, sseHandler http.Handler, opts ...RouterOption) chi.Router {
	h := NewHandler(svc)
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/languages", func(r chi.Router) {
		r.Get("/", h.ListLanguages)
		r.Post("/upload", h.Upload)
		r.Get("/{code}", h.GetLanguage)
		r.Put("/{code}", h.PutLanguage)
		r.Delete("/{code}", h.DeleteLanguage)
		r.Get("/{code}/raw", h.ServeRaw)
		r.Get("/{code}/keys", h.ListKeys)
		r.Get("/{code}/keys/*", h.Translate)
	})

	r.Get("/search", h.Search)
	r.Post("/check", h.Check)

	if o.tr != nil {
		sh := &sessionHandler{tr: o.tr}
		r.Route("/active", func(r chi.Router) {
			r.Get("/", sh.Get)
			r.Put("/", sh.Set)
			r.Get("/available", sh.Available)
			r.Get("/known", sh.Known)
			r.Get("/keys/*", sh.Translate)
		})
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
