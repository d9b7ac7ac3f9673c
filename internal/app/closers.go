package app

import (
	"sync"

	"service-dispatch/internal/logx"
)

// Closers collects shutdown hooks of the resources opened while building the container.
type Closers struct {
	mu   sync.Mutex
	list []namedCloser
}

type namedCloser struct {
	name string
	fn   func() error
}

func newClosers() *Closers { return &Closers{} }

// Add registers fn; hooks run in reverse order.
func (c *Closers) Add(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append(c.list, namedCloser{name: name, fn: fn})
}

// CloseAll runs every hook once and logs failures.
func (c *Closers) CloseAll(logger logx.Logger) {
	c.mu.Lock()
	list := c.list
	c.list = nil
	c.mu.Unlock()

	for i := len(list) - 1; i >= 0; i-- {
		if err := list[i].fn(); err != nil {
			logger.Error("close error", logx.String("resource", list[i].name), logx.Err(err))
		}
	}
}
