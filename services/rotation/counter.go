// Package rotation counts flywheel/pedal rotations from a Hall-effect sensor.
//
// The sensor line idles high (internal pull-up) and a passing magnet pulls it
// low, so each rotation is one falling edge. The count is a single 32-bit
// word updated with sync/atomic: the interrupt side only adds, the control
// loop only loads, and neither can observe a torn value. No debounce is
// applied; a bouncing sensor over-counts.
package rotation

import (
	"sync/atomic"

	"bikesmart-go/errcode"
	"bikesmart-go/services/hal/halcore"
)

// Counter is the cycle counter shared between interrupt and loop context.
// The zero value is ready to use. It must not be copied after first use.
type Counter struct {
	n atomic.Uint32
}

// Increment records one edge. It is the interrupt entry point: one atomic
// add, no calls, no allocation. The count wraps modulo 2^32.
func (c *Counter) Increment() { c.n.Add(1) }

// Load returns the current count.
func (c *Counter) Load() uint32 { return c.n.Load() }

// Attach configures pin as a pulled-up input and registers Increment on its
// falling edge. The returned func detaches the handler.
func (c *Counter) Attach(pin halcore.IRQPin) (func(), error) {
	if pin == nil {
		return nil, errcode.UnknownPin
	}
	if err := pin.ConfigureInput(halcore.PullUp); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "rotation.attach", err)
	}
	if err := pin.SetIRQ(halcore.EdgeFalling, c.Increment); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "rotation.attach", err)
	}
	return func() { _ = pin.ClearIRQ() }, nil
}
