package aiming

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/followspot/followspot/internal/fixture"
	"github.com/followspot/followspot/internal/httputil"
	"github.com/followspot/followspot/internal/panresolve"
)

// aimRequest is the POST /aim request body, e.g.
// {"channel":"1","x":10,"y":7.5,"stage_max_y":15,"sensor_coords":{...}}.
type aimRequest struct {
	Channel      string                 `json:"channel"`
	X            float64                `json:"x"`
	Y            float64                `json:"y"`
	StageMaxY    float64                `json:"stage_max_y"`
	SensorCoords map[string]SensorCoord `json:"sensor_coords"`
}

// aimResponse is the POST /aim response body.
type aimResponse struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
}

// Handler exposes Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler wraps svc as an http.Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the aiming routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/aim", h.handleAim)
}

func (h *Handler) handleAim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req aimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Channel == "" {
		httputil.BadRequest(w, "channel is required")
		return
	}

	pan, tilt, err := h.svc.Aim(req.Channel, req.X, req.Y, req.StageMaxY, req.SensorCoords)
	if err != nil {
		writeAimError(w, err)
		return
	}

	httputil.WriteJSONOK(w, aimResponse{Pan: pan, Tilt: tilt})
}

// writeAimError maps a domain error from Aim to an HTTP status:
// NotCalibrated means the channel simply hasn't been through a
// Navigator run yet (409 Conflict); Unreachable and RangeError mean
// the target is outside what the mechanism can reach (422); anything
// else, including a non-converging solver, is a server-side fault
// (500).
func writeAimError(w http.ResponseWriter, err error) {
	var notCalibrated *NotCalibratedError
	var unreachable *panresolve.UnreachableError
	var rangeErr *fixture.RangeError

	switch {
	case errors.As(err, &notCalibrated):
		httputil.WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.As(err, &unreachable), errors.As(err, &rangeErr):
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		httputil.InternalServerError(w, err.Error())
	}
}
