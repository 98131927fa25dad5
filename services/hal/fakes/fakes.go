// Package fakes provides host-side stand-ins for the board capabilities.
// They back the unit tests and the simulated board.
package fakes

import (
	"bytes"
	"context"
	"sync"
	"time"

	"bikesmart-go/services/hal/halcore"
)

// ----------------------------- GPIO ------------------------------------------

// Pin implements halcore.IRQPin. Set drives the level and fires the handler
// synchronously when the transition matches the configured edge.
type Pin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	pull    halcore.Pull
	inputs  int
	irqEdge halcore.Edge
	irqFunc func()
}

// NewPin returns a pin that idles at level.
func NewPin(number int, level bool) *Pin { return &Pin{number: number, level: level} }

func (p *Pin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	p.pull = pull
	p.inputs++
	if pull == halcore.PullUp {
		p.level = true
	}
	p.mu.Unlock()
	return nil
}

func (p *Pin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	want := irqWanted(p.irqEdge, edgeFrom(old, level))
	irq := p.irqFunc
	p.mu.Unlock()
	if want && irq != nil {
		irq() // ISR-style callback
	}
}

func (p *Pin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

func (p *Pin) Number() int { return p.number }

func (p *Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *Pin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = halcore.EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

// Pulse drives one low-going pulse (high -> low -> high), i.e. one magnet pass.
func (p *Pin) Pulse() {
	p.Set(false)
	p.Set(true)
}

// Pull reports the last configured pull and how many times ConfigureInput ran.
func (p *Pin) Pull() (halcore.Pull, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pull, p.inputs
}

// Edge reports the registered IRQ edge (EdgeNone when cleared).
func (p *Pin) Edge() halcore.Edge {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.irqEdge
}

func edgeFrom(old, new bool) halcore.Edge {
	switch {
	case !old && new:
		return halcore.EdgeRising
	case old && !new:
		return halcore.EdgeFalling
	default:
		return halcore.EdgeNone
	}
}

func irqWanted(cfg, seen halcore.Edge) bool {
	switch cfg {
	case halcore.EdgeBoth:
		return seen == halcore.EdgeRising || seen == halcore.EdgeFalling
	case halcore.EdgeNone:
		return false
	default:
		return cfg == seen
	}
}

// Pedal pulses pin at rpm until ctx is done. rpm <= 0 returns immediately.
func Pedal(ctx context.Context, pin *Pin, rpm int) {
	if rpm <= 0 {
		return
	}
	tick := time.NewTicker(time.Minute / time.Duration(rpm))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			pin.Pulse()
		}
	}
}

// ----------------------------- Serial ----------------------------------------

// Link is an in-memory halcore.Link. Inject queues host->device bytes;
// everything the device writes is kept for inspection.
type Link struct {
	mu  sync.Mutex
	rx  []byte
	tx  bytes.Buffer
	err error
}

func (l *Link) Inject(s string) {
	l.mu.Lock()
	l.rx = append(l.rx, s...)
	l.mu.Unlock()
}

func (l *Link) TryRead(p []byte) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := copy(p, l.rx)
	l.rx = l.rx[n:]
	return n
}

func (l *Link) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	return l.tx.Write(p)
}

// FailWrites makes subsequent writes return err (nil restores).
func (l *Link) FailWrites(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Pending is the number of injected bytes not yet read.
func (l *Link) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rx)
}

// Lines returns and clears the complete lines written so far (LF stripped).
func (l *Link) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for {
		line, err := l.tx.ReadString('\n')
		if err != nil {
			// keep a partial line for the next call
			rest := []byte(line)
			l.tx.Reset()
			l.tx.Write(rest)
			return out
		}
		out = append(out, line[:len(line)-1])
	}
}

// ----------------------------- Actuator --------------------------------------

// Servo records every commanded angle.
type Servo struct {
	mu     sync.Mutex
	angles []int
	err    error
}

func (s *Servo) SetAngle(deg int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.angles = append(s.angles, deg)
	return nil
}

// Fail makes subsequent SetAngle calls return err (nil restores).
func (s *Servo) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Angle is the last commanded angle; ok is false if never commanded.
func (s *Servo) Angle() (deg int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.angles) == 0 {
		return 0, false
	}
	return s.angles[len(s.angles)-1], true
}

// Moves returns every commanded angle in order.
func (s *Servo) Moves() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.angles...)
}
