package cancel

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

type BookingCanceller interface {
	CancelBooking(ctx context.Context, actor models.Actor, id string) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

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

		booking, err := canceller.CancelBooking(r.Context(), actor, id)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to cancel booking")
			return
		}

		log.Info("Booking cancelled", slog.String("booking_id", booking.ID))
		render.JSON(w, r, Response{Booking: booking})
	}
}
