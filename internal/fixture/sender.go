// Package fixture implements Fixture I/O: a stateless sender over an
// unreliable unicast UDP channel to a fixture controller, plus the
// commanded-pose table that is the only authoritative notion of where
// the light is currently pointing. Messages are fire-and-forget — no
// reply, no retry, no acknowledgement — because the controller accepts
// updates at well above the sweep rate and coalesces duplicates.
package fixture

import (
	"fmt"
	"net"
	"sync"
)

// Range is an inclusive [Min, Max] mechanical bound for a single axis.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range, inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Pose is the last commanded pan/tilt for a channel.
type Pose struct {
	Pan  float64
	Tilt float64
}

// Sender is the fixture I/O abstraction: set_pan, set_tilt, set_intensity
// and pose(channel). Tests substitute an in-memory recorder in place of
// the real UDP transport.
type Sender interface {
	// SetIntensity fire-and-forgets an intensity level in [0,100] for channel.
	SetIntensity(channel string, pct float64) error

	// SetParameter fire-and-forgets an absolute degree value for "pan" or
	// "tilt" on channel. Callers are responsible for clamping into range;
	// SetParameter itself performs no range check.
	SetParameter(channel string, param string, deg float64) error

	// SetPan moves the channel's pan by delta from current, in degrees if
	// useDegrees, else as a percentage of panRange's span. Fails with
	// RangeError (pose unmutated) if the resulting angle falls outside
	// panRange; otherwise sends the new angle and updates the commanded
	// pose.
	SetPan(channel string, current, delta float64, useDegrees bool, panRange Range) (float64, error)

	// SetTilt mirrors SetPan for the tilt axis.
	SetTilt(channel string, current, delta float64, useDegrees bool, tiltRange Range) (float64, error)

	// Pose returns the channel's last commanded (pan, tilt), (0, 0) if
	// nothing has been commanded yet.
	Pose(channel string) Pose
}

// UDPSender sends OSC-style messages to a fixture controller over UDP and
// tracks the commanded pose for every channel it has addressed.
type UDPSender struct {
	conn net.PacketConn
	addr net.Addr

	mu    sync.Mutex
	poses map[string]Pose
}

// NewUDPSender dials a UDP socket to host:port. The socket is never read
// from; writes are best-effort.
func NewUDPSender(host string, port int) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("fixture: resolve %s:%d: %w", host, port, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("fixture: dial %s:%d: %w", host, port, err)
	}
	return &UDPSender{
		conn:  conn,
		addr:  addr,
		poses: make(map[string]Pose),
	}, nil
}

// Close releases the underlying socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

// SetIntensity implements Sender.
func (s *UDPSender) SetIntensity(channel string, pct float64) error {
	msg := encodeOSCMessage(fmt.Sprintf("/eos/chan/%s/intensity", channel), float32(pct))
	_, err := s.conn.WriteTo(msg, s.addr)
	if err != nil {
		return fmt.Errorf("fixture: send intensity to channel %s: %w", channel, err)
	}
	return nil
}

// SetParameter implements Sender.
func (s *UDPSender) SetParameter(channel string, param string, deg float64) error {
	msg := encodeOSCMessage(fmt.Sprintf("/eos/chan/%s/param/%s", channel, param), float32(deg))
	_, err := s.conn.WriteTo(msg, s.addr)
	if err != nil {
		return fmt.Errorf("fixture: send %s to channel %s: %w", param, channel, err)
	}
	return nil
}

// SetPan implements Sender.
func (s *UDPSender) SetPan(channel string, current, delta float64, useDegrees bool, panRange Range) (float64, error) {
	return s.setAxis(channel, "pan", current, delta, useDegrees, panRange, s.setPanPose)
}

// SetTilt implements Sender.
func (s *UDPSender) SetTilt(channel string, current, delta float64, useDegrees bool, tiltRange Range) (float64, error) {
	return s.setAxis(channel, "tilt", current, delta, useDegrees, tiltRange, s.setTiltPose)
}

func (s *UDPSender) setAxis(channel, param string, current, delta float64, useDegrees bool, r Range, store func(channel string, v float64)) (float64, error) {
	newVal := current + delta
	if !useDegrees {
		newVal = current + (delta/100)*(r.Max-r.Min)
	}
	if !r.Contains(newVal) {
		return 0, &RangeError{Channel: channel, Param: param, Value: newVal, Min: r.Min, Max: r.Max}
	}
	if err := s.SetParameter(channel, param, newVal); err != nil {
		return 0, err
	}
	store(channel, newVal)
	return newVal, nil
}

func (s *UDPSender) setPanPose(channel string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.poses[channel]
	p.Pan = v
	s.poses[channel] = p
}

func (s *UDPSender) setTiltPose(channel string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.poses[channel]
	p.Tilt = v
	s.poses[channel] = p
}

// Pose implements Sender.
func (s *UDPSender) Pose(channel string) Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poses[channel]
}

var _ Sender = (*UDPSender)(nil)
