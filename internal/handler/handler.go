// Package handler exposes the REST JSON surface: auth, meetings, bookings
// and the open availability endpoint.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"booking-api/internal/middleware"
	"booking-api/internal/service"
	"booking-api/internal/store"
)

type Handler struct {
	store    store.Store
	meetings *service.MeetingService
	bookings *service.BookingService
	secret   string
}

func New(st store.Store, meetings *service.MeetingService, bookings *service.BookingService, secret string) *Handler {
	return &Handler{store: st, meetings: meetings, bookings: bookings, secret: secret}
}

// Routes wires all endpoints onto a mux. Auth endpoints are rate limited
// per IP; /api/* requires a token except /api/slots, which is open to
// anonymous callers.
func (h *Handler) Routes(rl *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	limited := middleware.RateLimit(rl)
	requireAuth := middleware.Auth(h.secret)
	optionalAuth := middleware.OptionalAuth(h.secret)

	mux.Handle("/auth/register", limited(http.HandlerFunc(h.Register)))
	mux.Handle("/auth/login", limited(http.HandlerFunc(h.Login)))
	mux.Handle("/auth/refresh", limited(http.HandlerFunc(h.Refresh)))
	mux.Handle("/auth/logout", requireAuth(http.HandlerFunc(h.Logout)))

	meetingHandler := &MeetingHandler{meetings: h.meetings}
	mux.Handle("/api/meetings", requireAuth(meetingHandler))
	mux.Handle("/api/meetings/", requireAuth(meetingHandler))

	bookingHandler := &BookingHandler{bookings: h.bookings}
	mux.Handle("/api/bookings", requireAuth(bookingHandler))
	mux.Handle("/api/bookings/", requireAuth(bookingHandler))

	mux.Handle("/api/slots", optionalAuth(http.HandlerFunc(h.ListSlots)))

	return mux
}

// ListSlots handles GET /api/slots: every future meeting the caller hasn't
// booked. Anonymous callers see all future meetings.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	meetings, err := h.meetings.Available(r.Context(), middleware.UserID(r.Context()), timeNow())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meetings)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, not found 404, provider failure 502, anything else 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	var pe *service.ProviderError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &pe):
		log.Printf("provider error: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "scheduling provider error"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
