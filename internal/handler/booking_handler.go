package handler

import (
	"net/http"
	"strings"

	"booking-api/internal/middleware"
	"booking-api/internal/service"
)

// BookingHandler handles /api/bookings and /api/bookings/{id}.
type BookingHandler struct {
	bookings *service.BookingService
}

func (h *BookingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var id string
	if rest := strings.TrimPrefix(r.URL.Path, "/api/bookings"); rest != "" && rest != "/" {
		id = strings.Trim(rest, "/")
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		h.list(w, r)
	case r.Method == http.MethodPost && id == "":
		h.create(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodPut:
		h.update(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type bookingRequest struct {
	MeetingID string `json:"meeting_id"`
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListBookings(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil || req.MeetingID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meeting_id required"})
		return
	}

	b, err := h.bookings.CreateBooking(r.Context(), middleware.UserID(r.Context()), req.MeetingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.bookings.GetBooking(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil || req.MeetingID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meeting_id required"})
		return
	}

	b, err := h.bookings.UpdateBooking(r.Context(), middleware.UserID(r.Context()), id, req.MeetingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.bookings.DeleteBooking(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
