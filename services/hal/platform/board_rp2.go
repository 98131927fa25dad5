//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	drvservo "tinygo.org/x/drivers/servo"

	"bikesmart-go/errcode"
	"bikesmart-go/services/hal/halcore"
	"bikesmart-go/services/hal/servo"
	"bikesmart-go/types"
)

const backend = "rp2"

func open(_ context.Context, plan types.Plan) (*Board, error) {
	link, err := openUART(plan.UART)
	if err != nil {
		return nil, err
	}
	act, err := openServo(plan.ServoPin)
	if err != nil {
		return nil, err
	}
	sensor := &rp2Pin{p: machine.Pin(plan.SensorPin), n: plan.SensorPin}
	return &Board{
		Backend: backend,
		Sensor:  sensor,
		Link:    link,
		Servo:   act,
		closeFn: sensor.ClearIRQ,
	}, nil
}

// ---------------- GPIO ----------------

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Number() int { return r.n }
func (r *rp2Pin) Get() bool   { return r.p.Get() }

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	var mode machine.PinMode
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

// SetIRQ runs handler in interrupt context.
func (r *rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	var ch machine.PinChange
	switch edge {
	case halcore.EdgeRising:
		ch = machine.PinRising
	case halcore.EdgeFalling:
		ch = machine.PinFalling
	case halcore.EdgeBoth:
		ch = machine.PinRising | machine.PinFalling
	default:
		return r.ClearIRQ()
	}
	if err := r.p.SetInterrupt(ch, func(machine.Pin) { handler() }); err != nil {
		return errcode.Wrap(errcode.Unsupported, "rp2.irq", err)
	}
	return nil
}

func (r *rp2Pin) ClearIRQ() error {
	return r.p.SetInterrupt(0, nil)
}

// ---------------- UART ----------------

// *uartx.UART already provides TryRead and Write.
func openUART(u types.UARTPlan) (halcore.Link, error) {
	var hw *uartx.UART
	switch u.ID {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "rp2.uart", Msg: u.ID}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: u.Baud,
		TX:       machine.Pin(u.TX),
		RX:       machine.Pin(u.RX),
	}); err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "rp2.uart", err)
	}
	return hw, nil
}

// ---------------- Servo ----------------

// pwmFor returns the controller for a PWM slice (RP2040 has 8).
func pwmFor(slice uint8) drvservo.PWM {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type rp2Servo struct{ s drvservo.Servo }

func openServo(pin int) (*rp2Servo, error) {
	p := machine.Pin(pin)
	slice, err := machine.PWMPeripheral(p)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnknownPin, "rp2.servo", err)
	}
	s, err := drvservo.New(pwmFor(slice), p)
	if err != nil {
		return nil, errcode.Wrap(errcode.PinInUse, "rp2.servo", err)
	}
	return &rp2Servo{s: s}, nil
}

// SetAngle uses the 544..2400 us range rather than the driver's default.
func (r *rp2Servo) SetAngle(deg int) error {
	if deg < types.MinResistance || deg > types.MaxResistance {
		return &errcode.E{C: errcode.OutOfRange, Op: "rp2.servo"}
	}
	r.s.SetMicroseconds(int16(servo.PulseMicros(deg)))
	return nil
}
