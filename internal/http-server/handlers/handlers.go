// Package handlers holds what every endpoint package shares: the caller
// lookup, request validation and the error to status mapping.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"reschedule-service/internal/identity"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"
	"reschedule-service/pkg/sl"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Actor returns the authenticated caller or writes 401 and reports false.
func Actor(w http.ResponseWriter, r *http.Request, log *slog.Logger) (models.Actor, bool) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		log.Error("request reached handler without identity")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(string(response.UNAUTHENTICATED), "authentication required"))
		return models.Actor{}, false
	}

	return actor, true
}

// Decode reads a JSON body into dst and validates it. On failure it writes
// the 400 response and reports false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		log.Error("Failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			log.Error("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return false
		}

		log.Error("Failed to validate request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to validate request"))
		return false
	}

	return true
}

// Fail writes the response for a service error. Unmapped errors become 500
// with fallback as the message.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	status, code := response.FromError(err)

	if status == http.StatusInternalServerError {
		log.Error(fallback, sl.Err(err))
	} else {
		log.Info("request rejected", slog.String("code", string(code)), sl.Err(err))
	}

	w.WriteHeader(status)
	render.JSON(w, r, response.Error(string(code), response.Message(err, fallback)))
}

// BadRequest writes a 400 for malformed path or query input.
func BadRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string) {
	log.Error(msg)
	w.WriteHeader(http.StatusBadRequest)
	render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), msg))
}
