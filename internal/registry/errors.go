package registry

import "fmt"

// NotFoundError reports that a requested channel or sensor anchor does
// not exist in the registry.
type NotFoundError struct {
	Channel string
	Sensor  string // empty when the channel itself is missing
}

func (e *NotFoundError) Error() string {
	if e.Sensor == "" {
		return fmt.Sprintf("registry: channel %q not found", e.Channel)
	}
	return fmt.Sprintf("registry: channel %q sensor %q not found", e.Channel, e.Sensor)
}
