// Package platform brings up the board for a wiring plan. The backend is
// chosen at build time: rp2 (TinyGo on RP2040/RP2350), linux (periph.io on
// arm64 single-board computers) or sim (everything else).
package platform

import (
	"context"

	"bikesmart-go/services/hal/halcore"
	"bikesmart-go/types"
)

// Board is the set of capabilities the firmware needs.
type Board struct {
	Backend string
	Sensor  halcore.IRQPin
	Link    halcore.Link
	Servo   halcore.Actuator

	closeFn func() error
}

// Close releases the board's resources. Safe on a nil closer.
func (b *Board) Close() error {
	if b == nil || b.closeFn == nil {
		return nil
	}
	fn := b.closeFn
	b.closeFn = nil
	return fn()
}

// Open validates plan and brings up the backend. On hosted builds ctx bounds
// the lifetime of helper goroutines (edge watcher, simulated pedal).
func Open(ctx context.Context, plan types.Plan) (*Board, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return open(ctx, plan)
}
