package watcher

import "sync"

// Channel is a Source fed by hand.
type Channel struct {
	events chan Event
	errs   chan error
	once   sync.Once
}

// NewChannel creates a source with the given buffer size for both streams.
func NewChannel(buffer int) *Channel {
	return &Channel{events: make(chan Event, buffer), errs: make(chan error, buffer)}
}

// Send queues an event. It blocks when the buffer is full.
func (c *Channel) Send(ev Event) { c.events <- ev }

// Fail queues a watcher error.
func (c *Channel) Fail(err error) { c.errs <- err }

func (c *Channel) Events() <-chan Event { return c.events }
func (c *Channel) Errors() <-chan error { return c.errs }

// Close ends both streams. Calling it more than once is safe.
func (c *Channel) Close() error {
	c.once.Do(func() {
		close(c.events)
		close(c.errs)
	})
	return nil
}
