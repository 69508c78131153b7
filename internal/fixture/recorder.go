package fixture

import "sync"

// sentMessage records one successful send, for tests asserting on what
// was actually commanded.
type sentMessage struct {
	Channel string
	Param   string
	Value   float64
}

// Recorder is an in-memory Sender used by tests that need to substitute
// for the real UDP transport — Navigator and Aiming Service tests in
// particular.
type Recorder struct {
	mu       sync.Mutex
	poses    map[string]Pose
	sent     []sentMessage
	intensity map[string]float64
}

// NewRecorder returns a Recorder with no commanded poses.
func NewRecorder() *Recorder {
	return &Recorder{
		poses:     make(map[string]Pose),
		intensity: make(map[string]float64),
	}
}

// SetIntensity implements Sender.
func (r *Recorder) SetIntensity(channel string, pct float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intensity[channel] = pct
	r.sent = append(r.sent, sentMessage{Channel: channel, Param: "intensity", Value: pct})
	return nil
}

// SetParameter implements Sender.
func (r *Recorder) SetParameter(channel string, param string, deg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{Channel: channel, Param: param, Value: deg})
	return nil
}

// SetPan implements Sender.
func (r *Recorder) SetPan(channel string, current, delta float64, useDegrees bool, panRange Range) (float64, error) {
	return r.setAxis(channel, "pan", current, delta, useDegrees, panRange)
}

// SetTilt implements Sender.
func (r *Recorder) SetTilt(channel string, current, delta float64, useDegrees bool, tiltRange Range) (float64, error) {
	return r.setAxis(channel, "tilt", current, delta, useDegrees, tiltRange)
}

func (r *Recorder) setAxis(channel, param string, current, delta float64, useDegrees bool, rng Range) (float64, error) {
	newVal := current + delta
	if !useDegrees {
		newVal = current + (delta/100)*(rng.Max-rng.Min)
	}
	if !rng.Contains(newVal) {
		return 0, &RangeError{Channel: channel, Param: param, Value: newVal, Min: rng.Min, Max: rng.Max}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.poses[channel]
	if param == "pan" {
		p.Pan = newVal
	} else {
		p.Tilt = newVal
	}
	r.poses[channel] = p
	r.sent = append(r.sent, sentMessage{Channel: channel, Param: param, Value: newVal})
	return newVal, nil
}

// Pose implements Sender.
func (r *Recorder) Pose(channel string) Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poses[channel]
}

// Sent returns a copy of every message recorded so far, in send order.
func (r *Recorder) Sent() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

var _ Sender = (*Recorder)(nil)
