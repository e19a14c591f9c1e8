package create

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

type TimeOffCreator interface {
	CreateTimeOff(ctx context.Context, actor models.Actor, tutorID string, req *api.TimeOffRequest) (*api.TimeOffResponse, error)
}

type Request struct {
	api.TimeOffRequest
}

type Response struct {
	response.Response
	TimeOff *api.TimeOffResponse `json:"time_off,omitempty"`
}

func New(log *slog.Logger, creator TimeOffCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_off.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := handlers.Actor(w, r, log)
		if !ok {
			return
		}

		tutorID := chi.URLParam(r, "tutorID")
		if tutorID == "" {
			handlers.BadRequest(w, r, log, "tutor id is required")
			return
		}

		var req Request
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		off, err := creator.CreateTimeOff(r.Context(), actor, tutorID, &req.TimeOffRequest)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create time off")
			return
		}

		log.Info("Time off created", slog.String("id", off.ID))
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{TimeOff: off})
	}
}
