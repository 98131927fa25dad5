// Package servo maps resistance angles onto hobby-servo pulse widths.
package servo

import (
	"bikesmart-go/types"
	"bikesmart-go/x/mathx"
	"bikesmart-go/x/timex"
)

const (
	// FrameHz is the standard hobby-servo refresh rate.
	FrameHz = 50

	// Pulse bounds for 0 and 180 degrees (Arduino Servo library defaults).
	MinPulseMicros = 544
	MaxPulseMicros = 2400
)

// PulseMicros returns the high time for angle. Angles outside 0..180 clamp.
func PulseMicros(angle int) int {
	return mathx.MapInt(angle, types.MinResistance, types.MaxResistance, MinPulseMicros, MaxPulseMicros)
}

// Duty converts angle to a PWM compare value for a counter that wraps at top
// once per 50 Hz frame.
func Duty(angle int, top uint32) uint32 {
	pulse := uint64(PulseMicros(angle))
	period := uint64(timex.PeriodMicros(FrameHz))
	return uint32(mathx.RoundDiv(pulse*uint64(top), period))
}
