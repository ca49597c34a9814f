package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/handsphere/internal/store"
)

// Event listing limits.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

type listEventsResponse struct {
	Events []*store.GestureEvent `json:"events"`
}

// EventHandler serves the gesture event journal.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// ServeHTTP handles GET /api/events?limit=N and GET /api/events?session=ID.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()

	var (
		events []*store.GestureEvent
		err    error
	)
	if session := q.Get("session"); session != "" {
		events, err = h.store.Events().ListBySession(session)
	} else {
		limit := DefaultEventLimit
		if s := q.Get("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(limit, MaxEventLimit)
		}
		events, err = h.store.Events().Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	if events == nil {
		events = []*store.GestureEvent{}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}
