//go:build linux && arm64 && !baremetal

package platform

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"bikesmart-go/errcode"
	"bikesmart-go/services/hal/halcore"
	"bikesmart-go/services/hal/linkio"
	"bikesmart-go/services/hal/servo"
	"bikesmart-go/types"
)

const (
	backend = "linux"

	linkBuffer = 256
	// Bounds a blocking port read so Close is noticed promptly.
	serialReadTimeout = 100 * time.Millisecond
	// Bounds WaitForEdge so ClearIRQ is noticed promptly.
	edgePoll = 100 * time.Millisecond
)

func open(ctx context.Context, plan types.Plan) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "linux.open", errors.Wrap(err, "periph host init"))
	}
	sensor, err := linuxPinByNumber(ctx, plan.SensorPin)
	if err != nil {
		return nil, err
	}
	servoPin, err := linuxPinByNumber(ctx, plan.ServoPin)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(plan.SerialDevice, &serial.Mode{BaudRate: int(plan.UART.Baud)})
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "linux.open", errors.Wrapf(err, "open %s", plan.SerialDevice))
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		_ = port.Close()
		return nil, errcode.Wrap(errcode.InvalidParams, "linux.open", errors.Wrap(err, "read timeout"))
	}
	link := linkio.New(port, linkBuffer)

	return &Board{
		Backend: backend,
		Sensor:  sensor,
		Link:    link,
		Servo:   &pwmServo{pin: servoPin.p},
		closeFn: func() error {
			return multierr.Combine(
				sensor.ClearIRQ(),
				servoPin.p.Halt(),
				link.Close(),
			)
		},
	}, nil
}

// ---------------- GPIO ----------------

// linuxPin delivers edges from a watcher goroutine blocked in WaitForEdge.
type linuxPin struct {
	ctx  context.Context
	p    gpio.PinIO
	n    int
	pull gpio.Pull

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func linuxPinByNumber(ctx context.Context, n int) (*linuxPin, error) {
	p := gpioreg.ByName(strconv.Itoa(n))
	if p == nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "linux.gpio", Msg: "GPIO" + strconv.Itoa(n)}
	}
	return &linuxPin{ctx: ctx, p: p, n: n, pull: gpio.Float}, nil
}

func (l *linuxPin) Number() int { return l.n }
func (l *linuxPin) Get() bool   { return l.p.Read() == gpio.High }

func (l *linuxPin) ConfigureInput(pull halcore.Pull) error {
	switch pull {
	case halcore.PullUp:
		l.pull = gpio.PullUp
	case halcore.PullDown:
		l.pull = gpio.PullDown
	default:
		l.pull = gpio.Float
	}
	if err := l.p.In(l.pull, gpio.NoEdge); err != nil {
		return errors.Wrapf(err, "%s: input", l.p.Name())
	}
	return nil
}

func (l *linuxPin) SetIRQ(edge halcore.Edge, handler func()) error {
	var e gpio.Edge
	switch edge {
	case halcore.EdgeRising:
		e = gpio.RisingEdge
	case halcore.EdgeFalling:
		e = gpio.FallingEdge
	case halcore.EdgeBoth:
		e = gpio.BothEdges
	default:
		return l.ClearIRQ()
	}
	if err := l.ClearIRQ(); err != nil {
		return err
	}
	if err := l.p.In(l.pull, e); err != nil {
		return errcode.Wrap(errcode.Unsupported, "linux.irq", errors.Wrapf(err, "%s: edge %s", l.p.Name(), edge))
	}

	l.mu.Lock()
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	stop, done := l.stop, l.done
	l.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-l.ctx.Done():
				return
			default:
			}
			if l.p.WaitForEdge(edgePoll) {
				handler()
			}
		}
	}()
	return nil
}

func (l *linuxPin) ClearIRQ() error {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	if err := l.p.In(l.pull, gpio.NoEdge); err != nil {
		return errors.Wrapf(err, "%s: clear edge", l.p.Name())
	}
	return nil
}

// ---------------- Servo ----------------

type pwmServo struct{ pin gpio.PinIO }

func (s *pwmServo) SetAngle(deg int) error {
	if deg < types.MinResistance || deg > types.MaxResistance {
		return &errcode.E{C: errcode.OutOfRange, Op: "linux.servo"}
	}
	d := gpio.Duty(servo.Duty(deg, uint32(gpio.DutyMax)))
	if err := s.pin.PWM(d, servo.FrameHz*physic.Hertz); err != nil {
		return errors.Wrapf(err, "%s: pwm", s.pin.Name())
	}
	return nil
}
