package propose

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"reschedule-service/api"
	"reschedule-service/internal/http-server/handlers"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Proposer interface {
	Propose(ctx context.Context, actor models.Actor, bookingID string, proposedTime time.Time) (*api.RescheduleRequestResponse, error)
}

type Request struct {
	api.RescheduleProposeRequest
}

type Response struct {
	response.Response
	Request *api.RescheduleRequestResponse `json:"reschedule_request,omitempty"`
}

func New(log *slog.Logger, proposer Proposer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reschedule_requests.propose.New"

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

		var req Request
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		proposed, err := time.Parse(time.RFC3339, req.ProposedTime)
		if err != nil {
			handlers.BadRequest(w, r, log, "proposed_time must be RFC3339")
			return
		}

		created, err := proposer.Propose(r.Context(), actor, bookingID, proposed)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to propose reschedule")
			return
		}

		log.Info("Reschedule proposed", slog.String("reschedule_request_id", created.ID))
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Request: created})
	}
}
