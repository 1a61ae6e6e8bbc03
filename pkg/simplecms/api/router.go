package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/rs/zerolog"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// NewRouter assembles the full HTTP surface: JWT-protected owner routes under
// /api and the API-key public read surface under /public.
func NewRouter(service simplecms.Service, tokenAuth *jwtauth.JWTAuth, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator)
		r.Use(UserResolver)

		r.Mount("/contents", NewContentHandler(service, logger).Routes())
		r.Mount("/", NewTaxonomyHandler(service).Routes())
		r.Mount("/api-keys", NewAPIKeyHandler(service).Routes())
	})

	r.Mount("/public/contents", NewPublicHandler(service, logger).Routes())

	return r
}
