// Package aiming implements the Aiming Service (C8): given an operator's
// target stage coordinate and a fixture channel, fetch the channel's
// four calibrated anchors, solve for the light's physical position,
// resolve the mechanically nearest pan, and command the fixture.
package aiming

import (
	"fmt"

	"github.com/followspot/followspot/internal/fixture"
	"github.com/followspot/followspot/internal/panresolve"
	"github.com/followspot/followspot/internal/predictor"
	"github.com/followspot/followspot/internal/registry"
)

// SensorCoord is a sensor's known stage placement, supplied by the
// operator's ground-plan surface (out of scope here; placement is an
// external collaborator).
type SensorCoord struct {
	X, Y float64
}

// Service ties the registry, predictor, pan resolver, and fixture
// sender together to answer "aim channel C at stage point (x, y)".
type Service struct {
	reg          *registry.Registry
	sender       fixture.Sender
	predictorCfg predictor.Config
}

// New constructs a Service.
func New(reg *registry.Registry, sender fixture.Sender, predictorCfg predictor.Config) *Service {
	return &Service{reg: reg, sender: sender, predictorCfg: predictorCfg}
}

// Aim resolves and commands the pan/tilt to illuminate stage point
// (targetX, targetY) on channel. targetY is inverted relative to
// stageMaxY before solving, since the operator's on-screen y grows
// downward while the stage coordinate system grows upward. No command
// is sent to the fixture if the anchor lookup, the solve, the pan
// resolution or the pan/tilt range checks fail; pan is sent before tilt.
func (s *Service) Aim(channel string, targetX, targetY, stageMaxY float64, sensorCoords map[string]SensorCoord) (pan, tilt float64, err error) {
	anchors := s.reg.ChannelAnchors(channel)
	if len(anchors) < 4 {
		return 0, 0, &NotCalibratedError{Channel: channel, Count: len(anchors)}
	}

	points := make([]predictor.Anchor, 0, len(anchors))
	for sensorID, rec := range anchors {
		coord, ok := sensorCoords[sensorID]
		if !ok {
			return 0, 0, fmt.Errorf("aiming: missing stage coordinate for sensor %s", sensorID)
		}
		points = append(points, predictor.Anchor{X: coord.X, Y: coord.Y, Pan: rec.Pan, Tilt: rec.Tilt})
	}

	invertedY := stageMaxY - targetY

	pos, err := predictor.Solve(points, s.predictorCfg)
	if err != nil {
		return 0, 0, err
	}

	rawPan, rawTilt := predictor.Predict(pos, targetX, invertedY)

	panRange, err := s.reg.PanRange(channel)
	if err != nil {
		return 0, 0, err
	}
	tiltRange, err := s.reg.TiltRange(channel)
	if err != nil {
		return 0, 0, err
	}

	currentPose := s.sender.Pose(channel)
	resolvedPan, err := panresolve.NearestPan(rawPan, currentPose.Pan, panRange)
	if err != nil {
		return 0, 0, err
	}
	if !tiltRange.Contains(rawTilt) {
		return 0, 0, &fixture.RangeError{Channel: channel, Param: "tilt", Value: rawTilt, Min: tiltRange.Min, Max: tiltRange.Max}
	}

	if _, err := s.sender.SetPan(channel, currentPose.Pan, resolvedPan-currentPose.Pan, true, panRange); err != nil {
		return 0, 0, err
	}
	if _, err := s.sender.SetTilt(channel, currentPose.Tilt, rawTilt-currentPose.Tilt, true, tiltRange); err != nil {
		return 0, 0, err
	}

	return resolvedPan, rawTilt, nil
}
