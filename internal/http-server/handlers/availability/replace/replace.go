package replace

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

type RulesReplacer interface {
	ReplaceAvailabilityRules(ctx context.Context, actor models.Actor, tutorID string, req *api.AvailabilityReplaceRequest) (*api.AvailabilityResponse, error)
}

type Request struct {
	api.AvailabilityReplaceRequest
}

type Response struct {
	response.Response
	*api.AvailabilityResponse
}

func New(log *slog.Logger, replacer RulesReplacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.replace.New"

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

		rules, err := replacer.ReplaceAvailabilityRules(r.Context(), actor, tutorID, &req.AvailabilityReplaceRequest)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to replace availability")
			return
		}

		log.Info("Availability replaced", slog.String("tutor_id", tutorID), slog.Int("rules", len(rules.Rules)))
		render.JSON(w, r, Response{AvailabilityResponse: rules})
	}
}
