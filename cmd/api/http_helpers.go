package main

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"amdb/proj/internal/config"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Http struct {
	log *slog.Logger
	cfg *config.Config
}

type envelop map[string]any

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func processMsg(status int, msg string) string {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}

func (h *Http) setupLogPerReq(r *http.Request) *slog.Logger {
	return h.log.With(
		"request_id",
		middleware.GetReqID(r.Context()),
		"method",
		r.Method,
		"path",
		r.URL.Path,
	)
}

func (h *Http) Response(w http.ResponseWriter, r *http.Request, data any, status int) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func (h *Http) Ok(w http.ResponseWriter, r *http.Request, data any) {
	h.Response(w, r, data, http.StatusOK)
}

func (h *Http) Created(w http.ResponseWriter, r *http.Request, data any) {
	h.Response(w, r, data, http.StatusCreated)
}

// Message answers 200 with {"message": msg}.
func (h *Http) Message(w http.ResponseWriter, r *http.Request, msg string) {
	h.Ok(w, r, envelop{"message": msg})
}

// Error writes {"error": title, "message": msg}. An empty title uses the status text.
func (h *Http) Error(w http.ResponseWriter, r *http.Request, status int, title, msg string) {
	h.Response(w, r, ErrorResponse{Error: processMsg(status, title), Message: msg}, status)
}

func (h *Http) BadRequest(w http.ResponseWriter, r *http.Request, title, msg string) {
	h.Error(w, r, http.StatusBadRequest, title, msg)
}

func (h *Http) Unauthorized(w http.ResponseWriter, r *http.Request, title, msg string) {
	h.Error(w, r, http.StatusUnauthorized, title, msg)
}

func (h *Http) Forbidden(w http.ResponseWriter, r *http.Request, title string) {
	h.Error(w, r, http.StatusForbidden, title, "")
}

func (h *Http) Conflict(w http.ResponseWriter, r *http.Request, title string) {
	h.Error(w, r, http.StatusConflict, title, "")
}

// NotFound answers 404, or 400 when the compatibility switch is on.
func (h *Http) NotFound(w http.ResponseWriter, r *http.Request, title, msg string) {
	status := http.StatusNotFound
	if h.cfg.Compat.NotFoundAsBadRequest {
		status = http.StatusBadRequest
	}
	h.Error(w, r, status, title, msg)
}

func (h *Http) ValidationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	h.Response(w, r, ErrorResponse{Error: "Validation failed", Fields: fields}, http.StatusBadRequest)
}

func (h *Http) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := http.StatusInternalServerError
	defaultErrMsg := "Sorry! Can't process your request. Please try again later."
	log := h.setupLogPerReq(r)
	if err != nil {
		log.Error(err.Error())
	}
	if msg == "" {
		msg = defaultErrMsg
	}
	if h.cfg.Debug && err != nil {
		msg = err.Error() + "\n" + string(debug.Stack())
	}
	h.Response(w, r, ErrorResponse{Error: http.StatusText(status), Message: msg}, status)
}
