package telemetry

// Capture is an Events implementation for tests; it records every tracked
// event in order.
type Capture struct {
	Events []CapturedEvent
}

type CapturedEvent struct {
	Name  string
	Props map[string]string
}

func (c *Capture) Track(name string, props map[string]string) {
	c.Events = append(c.Events, CapturedEvent{Name: name, Props: props})
}

// Count returns how many events with the given name were tracked.
func (c *Capture) Count(name string) int {
	n := 0
	for _, e := range c.Events {
		if e.Name == name {
			n++
		}
	}
	return n
}
