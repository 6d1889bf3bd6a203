package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.Error(w, r, http.StatusNotFound, "Page not found", "")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.Http.Error(w, r, http.StatusMethodNotAllowed, "", "")
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.CORS)
	router.Use(app.RateLimiter)

	router.Get("/healthcheck", app.healthcheck)
	router.Route("/movie", func(r chi.Router) {
		r.Get("/", app.listMovies)
		r.Get("/{id}", app.getMovie)
		r.Get("/{id}/reviews", app.listMovieReviews)
	})
	router.Route("/user", func(r chi.Router) {
		r.Post("/login", app.login)
		r.Post("/register", app.register)
		r.Get("/{id}", app.getUser)
		r.Get("/{id}/reviews", app.listUserReviews)
		r.With(app.Authenticate, app.requireAuthenticatedUser).Delete("/{id}", app.deleteUser)
	})
	router.Route("/review", func(r chi.Router) {
		r.Get("/{id}", app.getReview)
		r.Group(func(r chi.Router) {
			r.Use(app.Authenticate)
			r.Use(app.requireAuthenticatedUser)
			r.Post("/", app.createReview)
			r.Put("/{id}", app.updateReview)
			r.Delete("/{id}", app.deleteReview)
		})
	})
	return router
}
