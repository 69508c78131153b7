package telemetry

import (
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/followspot/followspot/internal/monitoring"
)

// RegisterService registers server with grpcServer under the
// NavigatorTelemetry service descriptor.
func RegisterService(grpcServer *grpc.Server, server *Server) {
	grpcServer.RegisterService(&ServiceDesc, server)
}

// Server fans Frame publications out to every connected StreamScan
// client, mirroring the teacher's visualiser Publisher/client-channel
// pattern.
type Server struct {
	mu      sync.RWMutex
	clients map[string]chan Frame
	nextID  int
}

// NewServer returns a Server with no subscribers.
func NewServer() *Server {
	return &Server{clients: make(map[string]chan Frame)}
}

var _ TelemetryServer = (*Server)(nil)

// Publish fans frame out to every currently connected client,
// non-blocking: a client whose buffer is full simply misses this
// frame rather than stalling the Navigator run.
func (s *Server) Publish(frame Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, ch := range s.clients {
		select {
		case ch <- frame:
		default:
			monitoring.Logf("telemetry: client %s buffer full, dropping frame", id)
		}
	}
}

// NavigatorAdapter satisfies navigator.TelemetryPublisher (one
// positional call per sample) by wrapping a *Server. Navigator depends
// only on that small structural interface, never on this package, so
// the adapter lives here instead.
type NavigatorAdapter struct {
	Server *Server
}

// Publish implements navigator.TelemetryPublisher.
func (a NavigatorAdapter) Publish(runID, phase string, pan, tilt float64, intensityBySensor map[string]float64) {
	a.Server.Publish(Frame{RunID: runID, Phase: phase, Pan: pan, Tilt: tilt, IntensityBySensor: intensityBySensor})
}

func (s *Server) subscribe() (string, chan Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("client-%d", s.nextID)
	ch := make(chan Frame, 16)
	s.clients[id] = ch
	return id, ch
}

func (s *Server) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.clients[id]; ok {
		close(ch)
		delete(s.clients, id)
	}
}

// StreamScan implements TelemetryServer: it registers a subscriber and
// forwards published frames until the client disconnects. req is
// unused — every subscriber receives every frame; per-run filtering is
// left to the client.
func (s *Server) StreamScan(req *structpb.Struct, stream TelemetryStreamScanServer) error {
	id, ch := s.subscribe()
	defer s.unsubscribe(id)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-ch:
			if !ok {
				return nil
			}
			pb, err := frame.toStruct()
			if err != nil {
				return err
			}
			if err := stream.Send(pb); err != nil {
				return err
			}
		}
	}
}
