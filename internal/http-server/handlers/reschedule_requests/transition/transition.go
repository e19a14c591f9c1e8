// Package transition serves the accept, decline and cancel endpoints of a
// reschedule request. They differ only in the service call.
package transition

import (
	"context"
	"log/slog"
	"net/http"

	"reschedule-service/api"
	"reschedule-service/internal/http-server/handlers"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Transitioner interface {
	Accept(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error)
	Decline(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error)
	Cancel(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error)
}

type Response struct {
	response.Response
	Request *api.RescheduleRequestResponse `json:"reschedule_request,omitempty"`
}

type action func(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error)

func NewAccept(log *slog.Logger, t Transitioner) http.HandlerFunc {
	return newHandler(log, "handlers.reschedule_requests.accept.New", "accept", t.Accept)
}

func NewDecline(log *slog.Logger, t Transitioner) http.HandlerFunc {
	return newHandler(log, "handlers.reschedule_requests.decline.New", "decline", t.Decline)
}

func NewCancel(log *slog.Logger, t Transitioner) http.HandlerFunc {
	return newHandler(log, "handlers.reschedule_requests.cancel.New", "cancel", t.Cancel)
}

func newHandler(log *slog.Logger, op, verb string, do action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := handlers.Actor(w, r, log)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			handlers.BadRequest(w, r, log, "id is required")
			return
		}

		updated, err := do(r.Context(), actor, id)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to "+verb+" reschedule request")
			return
		}

		log.Info("Reschedule request updated",
			slog.String("reschedule_request_id", updated.ID),
			slog.String("status", updated.Status),
		)
		render.JSON(w, r, Response{Request: updated})
	}
}
