//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"io"
	"os"

	"bikesmart-go/services/hal/fakes"
	"bikesmart-go/services/hal/linkio"
	"bikesmart-go/services/hal/servo"
	"bikesmart-go/types"
)

const simLinkBuffer = 256

// SimConfig customises the simulated board.
type SimConfig struct {
	// Link carries the protocol. Stdin/stdout when nil. OpenSim owns it: an
	// io.Closer is closed by Board.Close, or before OpenSim returns an error.
	Link io.ReadWriter
	// OnMove observes each servo command. Prints to stderr when nil.
	OnMove func(deg, pulseMicros int)
}

// OpenSim brings up a board with no hardware: a pedal generator pulses the
// sensor pin at plan.SimCadenceRPM until ctx is done or the board is closed.
func OpenSim(ctx context.Context, plan types.Plan, cfg SimConfig) (*Board, error) {
	if err := plan.Validate(); err != nil {
		if c, ok := cfg.Link.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	rw := cfg.Link
	if rw == nil {
		rw = stdio{}
	}
	onMove := cfg.OnMove
	if onMove == nil {
		onMove = func(deg, us int) { println("[sim] servo", deg, "deg", us, "us") }
	}

	pin := fakes.NewPin(plan.SensorPin, true)
	pctx, cancel := context.WithCancel(ctx)
	go fakes.Pedal(pctx, pin, plan.SimCadenceRPM)

	link := linkio.New(rw, simLinkBuffer)
	return &Board{
		Backend: "sim",
		Sensor:  pin,
		Link:    link,
		Servo:   &simServo{onMove: onMove},
		closeFn: func() error {
			cancel()
			_ = pin.ClearIRQ()
			return link.Close()
		},
	}, nil
}

type simServo struct {
	fakes.Servo
	onMove func(deg, pulseMicros int)
}

func (s *simServo) SetAngle(deg int) error {
	if err := s.Servo.SetAngle(deg); err != nil {
		return err
	}
	s.onMove(deg, servo.PulseMicros(deg))
	return nil
}

// stdio has no Close so linkio never closes the process's stdin.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
