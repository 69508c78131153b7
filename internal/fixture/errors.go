package fixture

import "fmt"

// RangeError reports that a commanded angle would exceed a channel's
// mechanical range. The pose is left unmutated when this is returned.
type RangeError struct {
	Channel string
	Param   string
	Value   float64
	Min     float64
	Max     float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("fixture: channel %s %s=%.3f outside range [%.3f, %.3f]",
		e.Channel, e.Param, e.Value, e.Min, e.Max)
}
