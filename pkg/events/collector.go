package events

// EventCollector accumulates domain events raised while handling one request
// so they can be published together.
type EventCollector struct {
	events []DomainEvent
}

func (c *EventCollector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the collected events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// Len reports how many events are pending.
func (c *EventCollector) Len() int {
	return len(c.events)
}

// ClearEvents returns the collected events and empties the collector.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
