package aiming

import "fmt"

// NotCalibratedError reports that a channel has fewer than four
// calibrated sensor anchors, the minimum PanTiltPredictor needs to
// solve for a light position.
type NotCalibratedError struct {
	Channel string
	Count   int
}

func (e *NotCalibratedError) Error() string {
	return fmt.Sprintf("aiming: channel %s has %d calibrated anchors, need 4", e.Channel, e.Count)
}
