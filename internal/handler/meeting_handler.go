package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"booking-api/internal/middleware"
	"booking-api/internal/service"
)

// test seam for the availability cutoff
var timeNow = time.Now

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// MeetingHandler handles /api/meetings and /api/meetings/{id}.
type MeetingHandler struct {
	meetings *service.MeetingService
}

func (h *MeetingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Path format: /api/meetings/{id}
	var id string
	if rest := strings.TrimPrefix(r.URL.Path, "/api/meetings"); rest != "" && rest != "/" {
		id = strings.Trim(rest, "/")
	}

	switch {
	case r.Method == http.MethodGet && id == "":
		h.list(w, r)
	case r.Method == http.MethodPost && id == "":
		h.create(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	case r.Method == http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type createMeetingRequest struct {
	Topic     string    `json:"topic"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (h *MeetingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createMeetingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	m, err := h.meetings.CreateMeeting(r.Context(), middleware.UserID(r.Context()), req.Topic, req.StartTime, req.EndTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MeetingHandler) list(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.meetings.ListMeetings(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meetings)
}

func (h *MeetingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.meetings.GetMeeting(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.meetings.DeleteMeeting(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
