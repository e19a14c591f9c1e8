package router

import (
	"log/slog"
	"net/http"

	availGet "reschedule-service/internal/http-server/handlers/availability/get"
	availReplace "reschedule-service/internal/http-server/handlers/availability/replace"
	bookingCancel "reschedule-service/internal/http-server/handlers/bookings/cancel"
	bookingGet "reschedule-service/internal/http-server/handlers/bookings/get"
	requestList "reschedule-service/internal/http-server/handlers/reschedule_requests/list"
	requestPropose "reschedule-service/internal/http-server/handlers/reschedule_requests/propose"
	"reschedule-service/internal/http-server/handlers/reschedule_requests/transition"
	slotGet "reschedule-service/internal/http-server/handlers/slots/get"
	timeOffCreate "reschedule-service/internal/http-server/handlers/time_off/create"
	timeOffGet "reschedule-service/internal/http-server/handlers/time_off/get"
	timeOffDelete "reschedule-service/internal/http-server/handlers/time_off/delete"
	"reschedule-service/internal/identity"
	"reschedule-service/pkg/middleware/mwLogger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

// Service is everything the HTTP layer calls.
type Service interface {
	availGet.RulesGetter
	availReplace.RulesReplacer
	slotGet.SlotResolver
	timeOffCreate.TimeOffCreator
	timeOffGet.TimeOffLister
	timeOffDelete.TimeOffDeleter
	bookingGet.BookingGetter
	bookingCancel.BookingCanceller
	requestPropose.Proposer
	requestList.RequestLister
	transition.Transitioner
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func New(log *slog.Logger, service Service, auth *identity.Authenticator) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(CORS)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(log))

		// Availability
		r.Get("/tutors/{tutorID}/availability", availGet.New(log, service))
		r.Put("/tutors/{tutorID}/availability", availReplace.New(log, service))
		r.Get("/tutors/{tutorID}/slots", slotGet.New(log, service))

		// Time Off
		r.Post("/tutors/{tutorID}/time_off", timeOffCreate.New(log, service))
		r.Get("/tutors/{tutorID}/time_off", timeOffGet.New(log, service))
		r.Delete("/time_off/{id}", timeOffDelete.New(log, service))

		// Bookings
		r.Get("/bookings/{id}", bookingGet.New(log, service))
		r.Put("/bookings/{id}/cancel", bookingCancel.New(log, service))

		// Reschedule Requests
		r.Post("/bookings/{id}/reschedule_requests", requestPropose.New(log, service))
		r.Get("/bookings/{id}/reschedule_requests", requestList.New(log, service))
		r.Post("/reschedule_requests/{id}/accept", transition.NewAccept(log, service))
		r.Post("/reschedule_requests/{id}/decline", transition.NewDecline(log, service))
		r.Post("/reschedule_requests/{id}/cancel", transition.NewCancel(log, service))
	})

	return router
}
