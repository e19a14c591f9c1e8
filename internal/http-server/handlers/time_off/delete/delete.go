package delete

import (
	"context"
	"log/slog"
	"net/http"

	"reschedule-service/internal/http-server/handlers"
	"reschedule-service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type TimeOffDeleter interface {
	DeleteTimeOff(ctx context.Context, actor models.Actor, id string) error
}

func New(log *slog.Logger, deleter TimeOffDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_off.delete.New"

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

		if err := deleter.DeleteTimeOff(r.Context(), actor, id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete time off")
			return
		}

		log.Info("Time off deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
