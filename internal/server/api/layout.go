package api

import (
	"math"
	"net/http"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/handsphere/internal/sphere"
)

// MaxLayoutPoints bounds the n accepted by the layout endpoint.
const MaxLayoutPoints = 10000

type layoutResponse struct {
	N         int      `json:"n"`
	Radius    float64  `json:"radius"`
	Positions []r3.Vec `json:"positions"`
}

// LayoutHandler serves GET /api/layout?n=&radius= with Fibonacci sphere
// positions.
type LayoutHandler struct {
	radius float64
}

// NewLayoutHandler creates a LayoutHandler that uses radius when the query
// omits one.
func NewLayoutHandler(radius float64) *LayoutHandler {
	return &LayoutHandler{radius: radius}
}

// ServeHTTP implements the http.Handler interface.
func (h *LayoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	n, err := strconv.Atoi(q.Get("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "n must be an integer")
		return
	}
	if n > MaxLayoutPoints {
		writeError(w, http.StatusBadRequest, "n is too large")
		return
	}

	radius := h.radius
	if s := q.Get("radius"); s != "" {
		radius, err = strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) {
			writeError(w, http.StatusBadRequest, "radius must be a finite number")
			return
		}
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		N:         n,
		Radius:    radius,
		Positions: sphere.Layout(n, radius),
	})
}
