// Package ingress implements Sensor Ingress (C3): a websocket server
// accepting concurrent connections from wireless sensor nodes, each
// streaming intensity samples as JSON text frames. One handler goroutine
// runs per connection; every buffer mutation goes through the shared
// sensorstate.Store under its single intensity mutex.
package ingress

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coder/websocket"

	"github.com/followspot/followspot/internal/monitoring"
	"github.com/followspot/followspot/internal/sensorstate"
)

// frame is the inbound sensor telemetry shape: {"sensorId": int, "value": number}.
type frame struct {
	SensorID *int     `json:"sensorId"`
	Value    *float64 `json:"value"`
}

// errorReply is sent back on a malformed frame; the connection stays open.
type errorReply struct {
	Error string `json:"error"`
}

// Server accepts websocket connections at "/ws" and "/" and feeds valid
// samples into a sensorstate.Store.
type Server struct {
	store *sensorstate.Store
}

// New returns a Server publishing samples into store.
func New(store *sensorstate.Store) *Server {
	return &Server{store: store}
}

// ServeHTTP implements http.Handler, accepted on both "/ws" and "/".
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		monitoring.Logf("ingress: accept failed from %s: %v", r.RemoteAddr, err)
		return
	}
	go s.handleConnection(conn, r.RemoteAddr)
}

func (s *Server) handleConnection(conn *websocket.Conn, remoteAddr string) {
	defer conn.CloseNow()
	ctx := context.Background()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			monitoring.Debugf("ingress: connection from %s closed: %v", remoteAddr, err)
			return
		}
		s.handleFrame(ctx, conn, data)
	}
}

func (s *Server) handleFrame(ctx context.Context, conn *websocket.Conn, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		s.replyError(ctx, conn, "Invalid JSON format")
		return
	}
	if f.SensorID == nil || f.Value == nil {
		s.replyError(ctx, conn, "missing sensorId or value")
		return
	}
	if *f.Value < 0 {
		s.replyError(ctx, conn, "value must be non-negative")
		return
	}

	sensorID := strconv.Itoa(*f.SensorID)
	if !s.store.Append(sensorID, *f.Value) {
		s.replyError(ctx, conn, "unknown sensorId")
	}
}

func (s *Server) replyError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, err := json.Marshal(errorReply{Error: message})
	if err != nil {
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		monitoring.Debugf("ingress: failed to send error reply: %v", err)
	}
}

