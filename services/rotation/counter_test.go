package rotation

import (
	"errors"
	"sync"
	"testing"

	"bikesmart-go/errcode"
	"bikesmart-go/services/hal/fakes"
	"bikesmart-go/services/hal/halcore"
)

func TestAttachConfiguresPullUpAndFallingEdge(t *testing.T) {
	var c Counter
	pin := fakes.NewPin(2, false)

	detach, err := c.Attach(pin)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if pull, n := pin.Pull(); pull != halcore.PullUp || n != 1 {
		t.Fatalf("pull = %v (configured %d times), want PullUp once", pull, n)
	}
	if pin.Edge() != halcore.EdgeFalling {
		t.Fatalf("edge = %v, want falling", pin.Edge())
	}
	if !pin.Get() {
		t.Fatalf("pulled-up line should idle high")
	}

	detach()
	if pin.Edge() != halcore.EdgeNone {
		t.Fatalf("detach left edge %v registered", pin.Edge())
	}
	pin.Pulse()
	if got := c.Load(); got != 0 {
		t.Fatalf("count after detach = %d, want 0", got)
	}
}

func TestOnlyFallingEdgesCount(t *testing.T) {
	var c Counter
	pin := fakes.NewPin(2, false)
	if _, err := c.Attach(pin); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	pin.Set(true)  // no change (already high)
	pin.Set(false) // falling
	pin.Set(false) // no change
	pin.Set(true)  // rising
	pin.Set(false) // falling
	if got := c.Load(); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
}

func TestConcurrentEdgesAreNeverLost(t *testing.T) {
	var c Counter
	const edges = 50000

	done := make(chan struct{})
	var last uint32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		// Polling side: reads must be monotonic.
		defer wg.Done()
		for {
			v := c.Load()
			if v < last {
				t.Errorf("count went backwards: %d -> %d", last, v)
				return
			}
			last = v
			select {
			case <-done:
				return
			default:
			}
		}
	}()

	var prod sync.WaitGroup
	for w := 0; w < 4; w++ {
		prod.Add(1)
		go func() {
			defer prod.Done()
			for i := 0; i < edges/4; i++ {
				c.Increment()
			}
		}()
	}
	prod.Wait()
	close(done)
	wg.Wait()

	if got := c.Load(); got != edges {
		t.Fatalf("count = %d, want %d", got, edges)
	}
}

func TestCounterWraps(t *testing.T) {
	var c Counter
	c.n.Store(^uint32(0))
	c.Increment()
	if got := c.Load(); got != 0 {
		t.Fatalf("count after wrap = %d, want 0", got)
	}
}

type failingPin struct{ *fakes.Pin }

func (failingPin) SetIRQ(halcore.Edge, func()) error { return errors.New("no irq") }

func TestAttachErrors(t *testing.T) {
	var c Counter
	if _, err := c.Attach(nil); errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("nil pin err = %v", err)
	}
	_, err := c.Attach(failingPin{fakes.NewPin(3, true)})
	if errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("irq failure err = %v, want unsupported", err)
	}
}
