package main

import (
	"errors"
	"fmt"
	"net/http"

	"amdb/proj/internal/domain/filters"
	"amdb/proj/internal/services/movies"
)

const errMsgMovieQuery = "Could not fetch on query"

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	var query filters.MovieQuery
	if err := app.decoder.Decode(&query, r.URL.Query()); err != nil {
		app.Http.BadRequest(w, r, errMsgMovieQuery, err.Error())
		return
	}
	page, err := app.Services.Movies.List(r.Context(), query)
	if err != nil {
		app.Http.BadRequest(w, r, errMsgMovieQuery, "")
		return
	}
	app.Http.Ok(w, r, page)
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	detail, err := app.Services.Movies.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, movies.ErrMovieNotFound) {
			app.Http.NotFound(w, r, movieNotFoundMsg(id), err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, detail)
}

func (app *Application) listMovieReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	reviews, err := app.Services.Reviews.ListForMovie(r.Context(), id)
	if err != nil {
		app.Http.BadRequest(w, r, "Could not get reviews for movie "+id, "")
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": reviews})
}

func movieNotFoundMsg(id string) string {
	return fmt.Sprintf("Movie with id %s doesn't exist", id)
}
