//go:build !pico_uart1

package setups

import (
	"time"

	"bikesmart-go/types"
)

// Selected is the reference bench wiring: Hall sensor on GP2, servo on GP15,
// host link on uart0 (GP0/GP1) at 115200 baud.
var Selected = types.Plan{
	Name:      "pico_default",
	SensorPin: 2,
	ServoPin:  15,
	UART:      types.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115200},

	SerialDevice: "/dev/ttyAMA0",

	Tick:      5 * time.Millisecond,
	TokenIdle: time.Second,

	SimCadenceRPM: 60,
}
