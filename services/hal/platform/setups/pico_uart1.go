//go:build pico_uart1

package setups

import (
	"time"

	"bikesmart-go/types"
)

// Selected moves the host link to uart1 (GP8/GP9) for boards where uart0
// carries the debug console.
var Selected = types.Plan{
	Name:      "pico_uart1",
	SensorPin: 2,
	ServoPin:  15,
	UART:      types.UARTPlan{ID: "uart1", TX: 8, RX: 9, Baud: 115200},

	SerialDevice: "/dev/ttyAMA1",

	Tick:      5 * time.Millisecond,
	TokenIdle: time.Second,

	SimCadenceRPM: 60,
}
