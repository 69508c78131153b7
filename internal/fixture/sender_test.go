package fixture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_SetPan_Degrees(t *testing.T) {
	r := NewRecorder()
	panRange := Range{Min: -270, Max: 270}

	got, err := r.SetPan("1", 10, 5, true, panRange)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got)
	assert.Equal(t, Pose{Pan: 15, Tilt: 0}, r.Pose("1"))
}

func TestRecorder_SetPan_Percent(t *testing.T) {
	r := NewRecorder()
	panRange := Range{Min: -270, Max: 270}

	// 10% of the 540° span is 54°.
	got, err := r.SetPan("1", 0, 10, false, panRange)
	require.NoError(t, err)
	assert.InDelta(t, 54.0, got, 1e-9)
}

func TestRecorder_SetPan_RangeErrorLeavesPoseUnmutated(t *testing.T) {
	r := NewRecorder()
	panRange := Range{Min: -270, Max: 270}

	_, err := r.SetPan("1", 10, 5, true, panRange)
	require.NoError(t, err)

	_, err = r.SetPan("1", 265, 20, true, panRange)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "pan", rangeErr.Param)

	// Pose must be unchanged from the first successful call.
	assert.Equal(t, Pose{Pan: 15, Tilt: 0}, r.Pose("1"))
}

func TestRecorder_SetTilt_RangeError(t *testing.T) {
	r := NewRecorder()
	tiltRange := Range{Min: 0, Max: 85}

	_, err := r.SetTilt("2", 80, 10, true, tiltRange)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, Pose{}, r.Pose("2"))
}

// Property 2 (range safety): for any sequence of set_pan/set_tilt calls,
// the stored commanded pose always lies within the channel's ranges.
func TestRecorder_RangeSafety_Sequence(t *testing.T) {
	r := NewRecorder()
	panRange := Range{Min: -270, Max: 270}
	tiltRange := Range{Min: 0, Max: 85}

	deltas := []float64{50, 100, -30, 200, -400, 75, -500}
	pan := 0.0
	for _, d := range deltas {
		next := pan + d
		got, err := r.SetPan("3", pan, d, true, panRange)
		if !panRange.Contains(next) {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		pan = got
		assert.True(t, panRange.Contains(r.Pose("3").Pan))
	}

	tilt := 0.0
	tiltDeltas := []float64{20, 40, 30, -10, 60}
	for _, d := range tiltDeltas {
		next := tilt + d
		got, err := r.SetTilt("3", tilt, d, true, tiltRange)
		if !tiltRange.Contains(next) {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		tilt = got
		assert.True(t, tiltRange.Contains(r.Pose("3").Tilt))
	}
}

func TestRecorder_SetIntensity(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.SetIntensity("1", 100))

	sent := r.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, sentMessage{Channel: "1", Param: "intensity", Value: 100}, sent[0])
}

func TestSetParameter_NoRangeCheck(t *testing.T) {
	r := NewRecorder()
	// SetParameter itself performs no range validation; out-of-range
	// values for a fixture's nominal range are still sent verbatim.
	require.NoError(t, r.SetParameter("1", "pan", 9999))
}

func TestEncodeOSCMessage_PadsToFourByteBoundary(t *testing.T) {
	msg := encodeOSCMessage("/eos/chan/1/intensity", 100)
	assert.Equal(t, 0, len(msg)%4, "OSC messages must be 4-byte aligned")

	// Address is 21 bytes + null terminator = 22, padded to 24.
	assert.Equal(t, byte(0), msg[21])
	assert.Equal(t, byte('/'), msg[0])
}

func TestOSCPadString(t *testing.T) {
	cases := map[string]int{
		"":      4, // null terminator alone still pads to 4
		"ab":    4,
		"abc":   4,
		"abcd":  8,
		"abcde": 8,
	}
	for s, wantLen := range cases {
		got := oscPadString(s)
		assert.Equal(t, wantLen, len(got), "input %q", s)
		assert.Equal(t, byte(0), got[len(s)], "must be null-terminated")
	}
}
