package main

import (
	"errors"
	"fmt"
	"net/http"

	"amdb/proj/internal/lib/validator"
	"amdb/proj/internal/services/auth"
	"amdb/proj/internal/services/users"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

func (app *Application) readCredentials(w http.ResponseWriter, r *http.Request) (*credentialsRequest, bool) {
	var req credentialsRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.Http.BadRequest(w, r, "", err.Error())
		return nil, false
	}
	if errs := validator.ValidateStruct(app.validator, req); errs != nil {
		app.Http.ValidationError(w, r, errs)
		return nil, false
	}
	return &req, true
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	req, ok := app.readCredentials(w, r)
	if !ok {
		return
	}
	token, err := app.Services.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			app.Http.Unauthorized(w, r, "Wrong username or password", "")
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, token)
}

func (app *Application) register(w http.ResponseWriter, r *http.Request) {
	req, ok := app.readCredentials(w, r)
	if !ok {
		return
	}
	token, err := app.Services.Auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			app.Http.Unauthorized(w, r, "Username already taken", "")
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, token)
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	user, err := app.Services.Users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			app.Http.NotFound(w, r, userNotFoundMsg(id), err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, user)
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	deleted, err := app.Services.Users.Delete(r.Context(), id, contextUser(r).ID)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			app.Http.NotFound(w, r, userNotFoundMsg(id), err.Error())
		case errors.Is(err, users.ErrForbidden):
			app.Http.Forbidden(w, r, "Not your user")
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Message(w, r, fmt.Sprintf("User %s deleted", deleted.Username))
}

func (app *Application) listUserReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	reviews, err := app.Services.Reviews.ListForUser(r.Context(), id)
	if err != nil {
		app.Http.BadRequest(w, r, "Could not get reviews for user "+id, "")
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": reviews})
}

func userNotFoundMsg(id string) string {
	return fmt.Sprintf("User with id: %s doesn't exist", id)
}
