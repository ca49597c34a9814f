package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/handsphere/internal/detector"
)

const (
	writeWait = 5 * time.Second
	// maxLandmarkMessage bounds one inbound landmark frame.
	maxLandmarkMessage = 16 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// MotionHandler pushes every rendered transform to WebSocket clients.
// Slow clients skip frames rather than queueing them.
type MotionHandler struct {
	app Controller
	log zerolog.Logger
}

// NewMotionHandler creates a new MotionHandler.
func NewMotionHandler(app Controller, log zerolog.Logger) *MotionHandler {
	return &MotionHandler{app: app, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *MotionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	transforms, cancel := h.app.Subscribe()
	defer cancel()

	// Drain client messages so close frames are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case tr := <-transforms:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(tr); err != nil {
				return
			}
		}
	}
}

// landmarkMessage is one frame from a browser-side hand tracker. Points is
// null when no hand is visible.
type landmarkMessage struct {
	Points    []detector.Point3D `json:"points"`
	Timestamp int64              `json:"timestamp"`
}

// LandmarksHandler accepts hand landmark frames from a browser tracker and
// feeds them to the gesture mapper.
type LandmarksHandler struct {
	app Controller
	log zerolog.Logger
}

// NewLandmarksHandler creates a new LandmarksHandler.
func NewLandmarksHandler(app Controller, log zerolog.Logger) *LandmarksHandler {
	return &LandmarksHandler{app: app, log: log}
}

// ServeHTTP handles WebSocket upgrade requests. Frames are stamped with the
// receive time; the client timestamp only orders frames within a connection.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxLandmarkMessage)

	log := h.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Debug().Msg("landmark tracker connected")

	var last int64
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("landmark stream ended")
			}
			break
		}
		var msg landmarkMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Msg("malformed landmark frame")
			continue
		}
		if msg.Timestamp != 0 && msg.Timestamp < last {
			continue
		}
		last = msg.Timestamp

		var frame detector.Frame
		if len(msg.Points) > 0 {
			frame = detector.Frame(msg.Points)
		}
		h.app.Submit(frame, time.Now())
	}

	// The tracker is gone, so is the hand.
	h.app.Submit(nil, time.Now())
	log.Debug().Msg("landmark tracker disconnected")
}
