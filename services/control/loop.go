// Package control runs the firmware main loop: report new rotation counts
// to the host and apply resistance commands read back from it.
//
// A count is reported whenever it differs from the last one sent, not only
// when it is greater, so after 2^32 edges "CYCLE COUNT:0" follows
// "CYCLE COUNT:4294967295" and reporting carries on from the wrapped value.
package control

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"bikesmart-go/errcode"
	"bikesmart-go/services/hal/halcore"
	"bikesmart-go/types"
	"bikesmart-go/x/mathx"
)

const (
	DefaultTick      = 5 * time.Millisecond
	DefaultTokenIdle = time.Second
)

// CountSource is the read side of the rotation counter.
type CountSource interface {
	Load() uint32
}

type Config struct {
	Counter  CountSource
	Link     halcore.Link
	Actuator halcore.Actuator

	Tick      time.Duration // pause after each Step; DefaultTick if zero
	TokenIdle time.Duration // idle gap that completes a pending token; DefaultTokenIdle if zero

	Clock clock.Clock // real clock if nil
}

// Stats counts loop outcomes since New.
type Stats struct {
	Reports        uint32 // CYCLE COUNT lines written
	Accepted       uint32 // commands applied and acknowledged
	Rejected       uint32 // integer commands outside 0..180
	Malformed      uint32 // a sign with no digits
	ActuatorErrors uint32
	WriteErrors    uint32
}

// Loop owns LastReported, the resistance level and the token scanner. It is
// driven by a single goroutine; only the counter is shared with the
// interrupt side.
type Loop struct {
	cfg Config
	clk clock.Clock

	lastReported uint32
	level        int

	scan   Scanner
	lastRx time.Time

	rx    [1]byte
	out   [32]byte
	stats Stats
}

func New(cfg Config) *Loop {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.TokenIdle <= 0 {
		cfg.TokenIdle = DefaultTokenIdle
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{cfg: cfg, clk: clk}
}

// Setup parks the actuator at minimum resistance. Call once before Run.
func (l *Loop) Setup() error {
	if l.cfg.Counter == nil || l.cfg.Link == nil || l.cfg.Actuator == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "control.setup", Msg: "counter, link and actuator are required"}
	}
	if err := l.cfg.Actuator.SetAngle(types.MinResistance); err != nil {
		return errcode.Wrap(errcode.Error, "control.setup", err)
	}
	l.level = types.MinResistance
	return nil
}

// Step runs one iteration: report the count if it moved, then apply at most
// one inbound token.
func (l *Loop) Step() {
	l.report()
	if tok, ok := l.nextToken(); ok {
		l.apply(tok)
	}
}

// Run calls Step every Tick until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	t := l.clk.Timer(l.cfg.Tick)
	defer t.Stop()
	for {
		l.Step()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			t.Reset(l.cfg.Tick)
		}
	}
}

// Level is the last accepted resistance.
func (l *Loop) Level() int { return l.level }

// LastReported is the count most recently written to the host.
func (l *Loop) LastReported() uint32 { return l.lastReported }

func (l *Loop) Stats() Stats { return l.stats }

func (l *Loop) report() {
	n := l.cfg.Counter.Load()
	// Inequality, not greater-than, so reporting continues across wrap.
	if n == l.lastReported {
		return
	}
	l.lastReported = n
	l.stats.Reports++
	l.write(AppendCycleCount(l.out[:0], n))
}

func (l *Loop) nextToken() (Token, bool) {
	for l.cfg.Link.TryRead(l.rx[:]) == 1 {
		l.lastRx = l.clk.Now()
		if tok, ok := l.scan.Feed(l.rx[0]); ok {
			return tok, true
		}
	}
	if l.scan.Pending() && l.clk.Since(l.lastRx) >= l.cfg.TokenIdle {
		return l.scan.Flush()
	}
	return Token{}, false
}

func (l *Loop) apply(tok Token) {
	switch {
	case tok.Malformed:
		l.stats.Malformed++
		return
	case !mathx.Between(tok.Value, types.MinResistance, types.MaxResistance):
		l.stats.Rejected++
		return
	}
	if err := l.cfg.Actuator.SetAngle(tok.Value); err != nil {
		l.stats.ActuatorErrors++
		println("[loop] actuator:", err.Error())
		return
	}
	l.level = tok.Value
	l.stats.Accepted++
	l.write(AppendNewResistance(l.out[:0], l.level))
}

func (l *Loop) write(p []byte) {
	if _, err := l.cfg.Link.Write(p); err != nil {
		l.stats.WriteErrors++
	}
}
