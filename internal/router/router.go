// Package router sets up the HTTP routes and middleware chain for the
// product catalog API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"productcatalog/internal/handlers"
	"productcatalog/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(categories *handlers.Categories, health http.Handler) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request. RequestID runs first so
	// the recoverer and logger can tag their lines with it.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Method(http.MethodGet, "/health", health)

	r.Route("/categories", func(r chi.Router) {
		r.Post("/", categories.Create)

		// Static segments before {categoryId}.
		r.Get("/parent", categories.Roots)
		r.Get("/all", categories.All)

		r.Route("/{categoryId}", func(r chi.Router) {
			r.Put("/", categories.Update)
			r.Delete("/", categories.Delete)
			r.Get("/details", categories.Details)
		})
	})

	// Rebuild of the cached hierarchy snapshot.
	r.Post("/product/categories", categories.Rebuild)

	return r
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusNotFound, `{"status":false,"message":"Not found"}`)
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusMethodNotAllowed, `{"status":false,"message":"Method not allowed"}`)
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
