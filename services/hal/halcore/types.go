// services/hal/halcore/types.go
package halcore

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// IRQPin is a digital input that can deliver edge interrupts.
//
// The handler passed to SetIRQ runs in interrupt context on MCU targets (and
// on a dedicated goroutine elsewhere). It must not block, allocate or print.
type IRQPin interface {
	ConfigureInput(pull Pull) error
	Get() bool
	Number() int
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// ---------------- Serial link ----------------

// Link is the byte-stream transport to the host.
// TryRead never blocks: it returns 0 when no bytes are buffered.
type Link interface {
	TryRead(p []byte) int
	Write(p []byte) (int, error)
}

// ---------------- Actuator ----------------

// Actuator is a position-controlled device commanded in whole degrees.
// Implementations are attached (pin configured, PWM running) on construction.
type Actuator interface {
	SetAngle(deg int) error
}
