package get

import (
	"context"
	"log/slog"
	"net/http"

	"reschedule-service/api"
	"reschedule-service/internal/http-server/handlers"
	"reschedule-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type RulesGetter interface {
	GetAvailabilityRules(ctx context.Context, tutorID string) (*api.AvailabilityResponse, error)
}

type Response struct {
	response.Response
	*api.AvailabilityResponse
}

func New(log *slog.Logger, getter RulesGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		tutorID := chi.URLParam(r, "tutorID")
		if tutorID == "" {
			handlers.BadRequest(w, r, log, "tutor id is required")
			return
		}

		rules, err := getter.GetAvailabilityRules(r.Context(), tutorID)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to get availability")
			return
		}

		render.JSON(w, r, Response{AvailabilityResponse: rules})
	}
}
