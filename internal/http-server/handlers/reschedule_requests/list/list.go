package list

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

type RequestLister interface {
	ListRequests(ctx context.Context, actor models.Actor, bookingID string) ([]*api.RescheduleRequestResponse, error)
}

type Response struct {
	response.Response
	Requests []*api.RescheduleRequestResponse `json:"reschedule_requests"`
}

func New(log *slog.Logger, lister RequestLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reschedule_requests.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := handlers.Actor(w, r, log)
		if !ok {
			return
		}

		bookingID := chi.URLParam(r, "id")
		if bookingID == "" {
			handlers.BadRequest(w, r, log, "booking id is required")
			return
		}

		requests, err := lister.ListRequests(r.Context(), actor, bookingID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list reschedule requests")
			return
		}

		render.JSON(w, r, Response{Requests: requests})
	}
}
