package main

import (
	"context"
	"time"

	"bikesmart-go/services/control"
	"bikesmart-go/services/heartbeat"
	"bikesmart-go/services/hal/platform"
	"bikesmart-go/services/hal/platform/setups"
	"bikesmart-go/services/rotation"
)

// Diagnostics go to the console with println; the protocol link only ever
// carries protocol lines.
func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	ctx := context.Background()
	plan := setups.Selected

	println("[boot] plan", plan.Name)
	board, err := platform.Open(ctx, plan)
	if err != nil {
		fatal("platform", err)
	}
	println("[boot] backend", board.Backend)

	var count rotation.Counter
	if _, err := count.Attach(board.Sensor); err != nil {
		fatal("sensor", err)
	}

	loop := control.New(control.Config{
		Counter:   &count,
		Link:      board.Link,
		Actuator:  board.Servo,
		Tick:      plan.Tick,
		TokenIdle: plan.TokenIdle,
	})
	if err := loop.Setup(); err != nil {
		fatal("servo", err)
	}
	println("[boot] sensor GP", plan.SensorPin, "servo GP", plan.ServoPin, "ready")

	hb := &heartbeat.Service{Count: count.Load}
	if err := hb.Start(ctx); err != nil {
		println("[boot] heartbeat:", err.Error())
	}

	_ = loop.Run(ctx)
}

func fatal(what string, err error) {
	println("[boot]", what, "failed:", err.Error())
	for {
		time.Sleep(time.Second)
	}
}
