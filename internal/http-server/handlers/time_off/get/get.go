package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"reschedule-service/api"
	"reschedule-service/internal/http-server/handlers"
	"reschedule-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type TimeOffLister interface {
	ListTimeOff(ctx context.Context, tutorID string, from, to time.Time) ([]*api.TimeOffResponse, error)
}

type Response struct {
	response.Response
	TimeOff []*api.TimeOffResponse `json:"time_off"`
}

// defaultWindow is used when the query leaves "to" open.
const defaultWindow = 90 * 24 * time.Hour

func New(log *slog.Logger, lister TimeOffLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.time_off.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		tutorID := chi.URLParam(r, "tutorID")
		if tutorID == "" {
			handlers.BadRequest(w, r, log, "tutor id is required")
			return
		}

		from := time.Now().UTC().Truncate(24 * time.Hour)
		if s := r.URL.Query().Get("from"); s != "" {
			t, err := parseBound(s)
			if err != nil {
				handlers.BadRequest(w, r, log, "from must be YYYY-MM-DD or RFC3339")
				return
			}
			from = t
		}

		to := from.Add(defaultWindow)
		if s := r.URL.Query().Get("to"); s != "" {
			t, err := parseBound(s)
			if err != nil {
				handlers.BadRequest(w, r, log, "to must be YYYY-MM-DD or RFC3339")
				return
			}
			to = t
		}

		if !to.After(from) {
			handlers.BadRequest(w, r, log, "to must be after from")
			return
		}

		offs, err := lister.ListTimeOff(r.Context(), tutorID, from, to)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list time off")
			return
		}

		render.JSON(w, r, Response{TimeOff: offs})
	}
}

func parseBound(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
