package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"reschedule-service/api"
	"reschedule-service/internal/availability"
	"reschedule-service/internal/http-server/handlers"
	"reschedule-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type SlotResolver interface {
	ResolveSlots(ctx context.Context, tutorID string, date time.Time) ([]api.SlotResponse, error)
}

type Response struct {
	response.Response
	TutorID string             `json:"tutor_id,omitempty"`
	Date    string             `json:"date,omitempty"`
	Slots   []api.SlotResponse `json:"slots"`
}

func New(log *slog.Logger, resolver SlotResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		tutorID := chi.URLParam(r, "tutorID")
		if tutorID == "" {
			handlers.BadRequest(w, r, log, "tutor id is required")
			return
		}

		dateStr := r.URL.Query().Get("date")
		date, err := availability.ParseDate(dateStr)
		if err != nil {
			handlers.BadRequest(w, r, log, "date must be YYYY-MM-DD")
			return
		}

		slots, err := resolver.ResolveSlots(r.Context(), tutorID, date)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to resolve slots")
			return
		}

		log.Debug("Slots resolved", slog.String("tutor_id", tutorID), slog.Int("count", len(slots)))
		render.JSON(w, r, Response{
			TutorID: tutorID,
			Date:    dateStr,
			Slots:   slots,
		})
	}
}
