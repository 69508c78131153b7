// Package predictor implements PanTiltPredictor (C6): given four
// calibrated (stage-x, stage-y, pan, tilt) reference anchors, solve for
// the fixture's physical light position (Lx, Ly, h>0) by bound-penalized
// nonlinear least-squares, then forward-project arbitrary stage
// coordinates to (pan, tilt).
package predictor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Anchor is one calibrated reference point: stage coordinates and the
// pan/tilt at which the fixture illuminated it. Pan may arrive in
// [-270°, 270°]; Solve normalizes it internally.
type Anchor struct {
	X, Y float64
	Pan  float64
	Tilt float64
}

// LightPosition is the solved physical position of the fixture in stage
// space, feet.
type LightPosition struct {
	Lx, Ly, H float64
}

// SolverFailedError reports that the optimizer did not converge, or
// converged to a physically invalid height.
type SolverFailedError struct {
	Reason string
}

func (e *SolverFailedError) Error() string {
	return fmt.Sprintf("predictor: solver failed: %s", e.Reason)
}

// Config tunes the optimizer.
type Config struct {
	Tolerance   float64
	MaxIters    int
	HeightGuess float64
}

const boundPenaltyWeight = 1e6

// Solve fits a LightPosition to the given anchors. It requires at least
// one anchor and fails with SolverFailedError if the optimizer does not
// converge or returns h <= 0.
func Solve(anchors []Anchor, cfg Config) (LightPosition, error) {
	if len(anchors) == 0 {
		return LightPosition{}, &SolverFailedError{Reason: "no anchors supplied"}
	}

	normalized := make([]Anchor, len(anchors))
	var sumX, sumY, minX, maxX, minY, maxY float64
	for i, a := range anchors {
		pan := a.Pan
		if pan < 0 {
			pan += 360
		}
		normalized[i] = Anchor{X: a.X, Y: a.Y, Pan: pan, Tilt: a.Tilt}
		sumX += a.X
		sumY += a.Y
		if i == 0 || a.X < minX {
			minX = a.X
		}
		if i == 0 || a.X > maxX {
			maxX = a.X
		}
		if i == 0 || a.Y < minY {
			minY = a.Y
		}
		if i == 0 || a.Y > maxY {
			maxY = a.Y
		}
	}
	n := float64(len(anchors))
	initLx, initLy := sumX/n, sumY/n
	initH := cfg.HeightGuess
	if initH <= 0 {
		initH = 10.0
	}

	bounds := [3][2]float64{
		{minX - 10, maxX + 10},
		{minY - 10, maxY + 10},
		{1, 100},
	}

	objective := func(params []float64) float64 {
		lx, ly, h := params[0], params[1], params[2]

		penalty := 0.0
		for i, v := range params {
			if v < bounds[i][0] {
				d := bounds[i][0] - v
				penalty += boundPenaltyWeight * d * d
			} else if v > bounds[i][1] {
				d := v - bounds[i][1]
				penalty += boundPenaltyWeight * d * d
			}
		}
		if h <= 0 {
			return penalty + boundPenaltyWeight
		}

		sum := 0.0
		for _, a := range normalized {
			panCalc, tiltCalc := forwardProject(lx, ly, h, a.X, a.Y)
			panObsRad := a.Pan * math.Pi / 180
			panCalcRad := panCalc * math.Pi / 180
			dCos := math.Cos(panCalcRad) - math.Cos(panObsRad)
			dSin := math.Sin(panCalcRad) - math.Sin(panObsRad)
			dTilt := tiltCalc - a.Tilt
			sum += dCos*dCos + dSin*dSin + dTilt*dTilt
		}
		return sum + penalty
	}

	problem := optimize.Problem{Func: objective}

	tol := cfg.Tolerance
	if tol <= 0 {
		tol = 1e-10
	}
	maxIters := cfg.MaxIters
	if maxIters <= 0 {
		maxIters = 10000
	}

	result, err := optimize.Minimize(problem, []float64{initLx, initLy, initH}, &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   tol,
			Iterations: 200,
		},
		MajorIterations: maxIters,
	}, &optimize.NelderMead{})
	if err != nil {
		return LightPosition{}, &SolverFailedError{Reason: err.Error()}
	}
	if result == nil {
		return LightPosition{}, &SolverFailedError{Reason: "optimizer returned no result"}
	}
	switch result.Status {
	case optimize.Success, optimize.FunctionConvergence:
		// converged
	default:
		return LightPosition{}, &SolverFailedError{Reason: fmt.Sprintf("optimizer status: %s", result.Status)}
	}

	lx, ly, h := result.X[0], result.X[1], result.X[2]
	if h <= 0 {
		return LightPosition{}, &SolverFailedError{Reason: "converged to non-positive height"}
	}

	return LightPosition{Lx: lx, Ly: ly, H: h}, nil
}

// forwardProject computes (pan, tilt) in degrees for stage point (x, y)
// as seen from light position (lx, ly, h). pan is mapped to [0°, 360°);
// tilt to [0°, 90°].
func forwardProject(lx, ly, h, x, y float64) (pan, tilt float64) {
	dx := x - lx
	dy := y - ly
	dist := math.Hypot(dx, dy)

	panRad := math.Atan2(dy, dx)
	pan = panRad * 180 / math.Pi
	if pan < 0 {
		pan += 360
	}

	tiltRad := math.Atan2(dist, h)
	tilt = tiltRad * 180 / math.Pi

	return pan, tilt
}

// Predict forward-projects stage coordinates (x, y) through a solved
// LightPosition, then remaps pan into [-270°, 270°] by subtracting 360°
// when it exceeds 270°.
func Predict(pos LightPosition, x, y float64) (pan, tilt float64) {
	pan, tilt = forwardProject(pos.Lx, pos.Ly, pos.H, x, y)
	if pan > 270 {
		pan -= 360
	}
	return pan, tilt
}
