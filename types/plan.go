package types

import (
	"time"

	"bikesmart-go/errcode"
)

// Resistance levels accepted from the host; the level is the servo angle.
const (
	MinResistance = 0
	MaxResistance = 180
)

// Plan is the compile-time wiring of one board build. It is chosen by build
// tag (see services/hal/platform/setups) and is never changed at run time.
type Plan struct {
	Name      string
	SensorPin int // Hall sensor, falling edge, internal pull-up
	ServoPin  int // resistance servo PWM output
	UART      UARTPlan

	// SerialDevice is the tty used by hosted (Linux) builds.
	SerialDevice string

	Tick      time.Duration // pause at the end of each loop iteration
	TokenIdle time.Duration // idle gap that completes a pending integer token

	// SimCadenceRPM drives the simulated sensor on host builds.
	SimCadenceRPM int
}

type UARTPlan struct {
	ID   string // "uart0" | "uart1"
	TX   int    // GPIO number
	RX   int    // GPIO number
	Baud uint32
}

// Validate rejects plans that could never be brought up.
func (p Plan) Validate() error {
	const op = "plan.validate"
	if p.SensorPin < 0 || p.ServoPin < 0 {
		return &errcode.E{C: errcode.UnknownPin, Op: op, Msg: "negative pin"}
	}
	used := map[int]string{p.SensorPin: "sensor"}
	for _, c := range []struct {
		pin  int
		name string
	}{{p.ServoPin, "servo"}, {p.UART.TX, "uart tx"}, {p.UART.RX, "uart rx"}} {
		if c.pin < 0 {
			continue // not wired on this build
		}
		if other, ok := used[c.pin]; ok {
			return &errcode.E{C: errcode.PinInUse, Op: op, Msg: c.name + " clashes with " + other}
		}
		used[c.pin] = c.name
	}
	if p.UART.Baud == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "baud must be > 0"}
	}
	if p.Tick <= 0 || p.TokenIdle <= 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "tick and token idle must be > 0"}
	}
	return nil
}
