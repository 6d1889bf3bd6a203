package main

import (
	"errors"
	"fmt"
	"net/http"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/lib/validator"
	"amdb/proj/internal/services/reviews"
)

const errMsgInvalidReview = "Not a valid review"

type createReviewRequest struct {
	MovieID string   `json:"movieID" validate:"required,notblank"`
	Rating  *float64 `json:"rating"`
	Text    *string  `json:"text"`
}

type updateReviewRequest struct {
	Rating *float64 `json:"rating"`
	Text   *string  `json:"text"`
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	review, err := app.Services.Reviews.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, reviews.ErrReviewNotFound) {
			app.Http.NotFound(w, r, reviewNotFoundMsg(id), err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, review)
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, errMsgInvalidReview, err.Error())
		return
	}
	if errs := validator.ValidateStruct(app.validator, req); errs != nil {
		app.Http.ValidationError(w, r, errs)
		return
	}
	review, err := app.Services.Reviews.Create(r.Context(), reviews.CreateInput{
		Rating:  req.Rating,
		Text:    req.Text,
		MovieID: req.MovieID,
	}, contextUser(r).ID)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrInvalidReview):
			app.Http.BadRequest(w, r, errMsgInvalidReview, "")
		case errors.Is(err, reviews.ErrReviewAlreadyExists):
			app.Http.Conflict(w, r, "You have already reviewed this movie")
		case errors.Is(err, reviews.ErrMovieNotFound):
			app.Http.NotFound(w, r, movieNotFoundMsg(req.MovieID), err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Created(w, r, review)
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, errMsgInvalidReview, err.Error())
		return
	}
	_, err := app.Services.Reviews.Update(r.Context(), id, contextUser(r).ID, models.ReviewPatch{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		app.handleReviewWriteError(w, r, id, err)
		return
	}
	app.Http.Message(w, r, "Review updated")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	deleted, err := app.Services.Reviews.Delete(r.Context(), id, contextUser(r).ID)
	if err != nil {
		app.handleReviewWriteError(w, r, id, err)
		return
	}
	app.Http.Message(w, r, fmt.Sprintf("Review %s deleted", deleted.ID))
}

func (app *Application) handleReviewWriteError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, reviews.ErrReviewNotFound):
		app.Http.NotFound(w, r, reviewNotFoundMsg(id), err.Error())
	case errors.Is(err, reviews.ErrNotOwner):
		app.Http.Forbidden(w, r, "Not your review")
	case errors.Is(err, reviews.ErrInvalidReview):
		app.Http.BadRequest(w, r, errMsgInvalidReview, "")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}

func reviewNotFoundMsg(id string) string {
	return fmt.Sprintf("Review with id: %s doesn't exist", id)
}
