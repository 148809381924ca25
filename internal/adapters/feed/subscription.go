// internal/adapters/feed/subscription.go
package feed

import (
	"sync"
)

const eventBuffer = 16

// stream is the Subscription shared by the transports. A reader goroutine
// pushes frames with send and calls finish when the connection ends.
type stream struct {
	opened  chan struct{}
	events  chan []byte
	done    chan struct{}
	once    sync.Once
	closeFn func() error
}

func newStream(closeFn func() error) *stream {
	return &stream{
		opened:  make(chan struct{}),
		events:  make(chan []byte, eventBuffer),
		done:    make(chan struct{}),
		closeFn: closeFn,
	}
}

func (s *stream) Opened() <-chan struct{} { return s.opened }

func (s *stream) Events() <-chan []byte { return s.events }

// Close stops delivery and releases the connection. It is safe to call more
// than once.
func (s *stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.closeFn()
	})
	return err
}

// send delivers a frame unless the stream was closed
func (s *stream) send(frame []byte) bool {
	select {
	case s.events <- frame:
		return true
	case <-s.done:
		return false
	}
}

func (s *stream) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
