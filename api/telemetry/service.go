// Package telemetry is the wire service an out-of-scope operator GUI
// would attach to for live calibration progress: a single
// server-streaming RPC that publishes {run_id, phase, pan, tilt,
// intensity_by_sensor} frames as a Navigator run advances. No GUI
// client is built here, only the service it would consume.
package telemetry

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Frame is one telemetry sample, converted to a structpb.Struct for the
// wire (see Server.StreamScan).
type Frame struct {
	RunID             string
	Phase             string
	Pan               float64
	Tilt              float64
	IntensityBySensor map[string]float64
}

func (f Frame) toStruct() (*structpb.Struct, error) {
	intensity := make(map[string]interface{}, len(f.IntensityBySensor))
	for sensorID, v := range f.IntensityBySensor {
		intensity[sensorID] = v
	}
	return structpb.NewStruct(map[string]interface{}{
		"run_id":              f.RunID,
		"phase":               f.Phase,
		"pan":                 f.Pan,
		"tilt":                f.Tilt,
		"intensity_by_sensor": intensity,
	})
}

// TelemetryServer is the hand-written server interface StreamScan
// dispatches to; there is no protoc-generated stub, so the interface
// and its streaming wrapper are written directly against grpc's
// low-level ServiceDesc API.
type TelemetryServer interface {
	StreamScan(req *structpb.Struct, stream TelemetryStreamScanServer) error
}

// TelemetryStreamScanServer is the server-side handle for one
// StreamScan call.
type TelemetryStreamScanServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type telemetryStreamScanServer struct {
	grpc.ServerStream
}

func (s *telemetryStreamScanServer) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func streamScanHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(TelemetryServer).StreamScan(req, &telemetryStreamScanServer{ServerStream: stream})
}

// ServiceDesc is registered on a *grpc.Server via
// grpcServer.RegisterService(&ServiceDesc, server).
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "followspot.telemetry.NavigatorTelemetry",
	HandlerType: (*TelemetryServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamScan",
			Handler:       streamScanHandler,
			ServerStreams: true,
		},
	},
	Metadata: "api/telemetry/service.go",
}
