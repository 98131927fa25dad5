// Package linkio adapts a blocking byte stream (serial port, stdio) to the
// non-blocking halcore.Link the control loop polls.
package linkio

import (
	"io"
	"sync"

	"bikesmart-go/x/ring"
)

const readChunk = 64

// Link buffers inbound bytes in an SPSC ring filled by a reader goroutine.
// TryRead is the consumer side and must only be called from one goroutine.
type Link struct {
	rw   io.ReadWriter
	ring *ring.Ring

	stop chan struct{}
	done chan struct{}
	once sync.Once

	mu  sync.Mutex
	err error
}

// New starts the reader. size is the ring capacity (power of two).
func New(rw io.ReadWriter, size int) *Link {
	l := &Link{
		rw:   rw,
		ring: ring.New(size),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.pump()
	return l
}

func (l *Link) TryRead(p []byte) int { return l.ring.Read(p) }

func (l *Link) Write(p []byte) (int, error) { return l.rw.Write(p) }

// Err returns the error that ended the reader, if any.
func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close stops the reader. If the stream is an io.Closer it is closed too and
// Close waits for the reader to exit; otherwise the reader exits after its
// current Read returns.
func (l *Link) Close() error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		if c, ok := l.rw.(io.Closer); ok {
			err = c.Close()
			<-l.done
		}
	})
	return err
}

func (l *Link) pump() {
	defer close(l.done)
	buf := make([]byte, readChunk)
	for {
		n, err := l.rw.Read(buf)
		// A full ring holds the reader until the loop drains it; bytes are
		// never dropped.
		if !l.ring.WriteAll(buf[:n], l.stop) {
			return
		}
		if err != nil {
			l.mu.Lock()
			l.err = err
			l.mu.Unlock()
			return
		}
		select {
		case <-l.stop:
			return
		default:
		}
	}
}
