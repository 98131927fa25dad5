// Command bikesim runs the resistance firmware loop on a development host
// and probes real devices over a serial port.
//
//	bikesim run [--port /dev/ttyUSB0] [--cadence 90]
//	bikesim probe --port /dev/ttyACM0 --level 90
//
// Logs go to stderr; in run mode without --port, stdin/stdout carry the
// device protocol so middleware can be piped straight in.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"bikesmart-go/services/control"
	"bikesmart-go/services/hal/platform"
	"bikesmart-go/services/hal/platform/setups"
	"bikesmart-go/services/rotation"
)

const (
	flagDebug   = "debug"
	flagPort    = "port"
	flagBaud    = "baud"
	flagCadence = "cadence"
	flagTick    = "tick"
	flagLevel   = "level"
	flagTimeout = "timeout"

	portReadTimeout = 100 * time.Millisecond
)

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:  "bikesim",
		Usage: "simulate or probe the resistance controller",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			var l *zap.Logger
			var err error
			if c.Bool(flagDebug) {
				l, err = zap.NewDevelopment()
			} else {
				l, err = zap.NewProduction()
			}
			if err != nil {
				return err
			}
			logger = l.Sugar()
			return nil
		},
		After: func(*cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the firmware loop against a simulated pedal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagPort,
						Usage: "serial `DEVICE` carrying the protocol (stdin/stdout if empty)",
					},
					&cli.IntFlag{
						Name:  flagBaud,
						Value: int(setups.Selected.UART.Baud),
						Usage: "baud rate for --port",
					},
					&cli.IntFlag{
						Name:  flagCadence,
						Value: setups.Selected.SimCadenceRPM,
						Usage: "simulated cadence in rotations per minute",
					},
					&cli.DurationFlag{
						Name:  flagTick,
						Value: setups.Selected.Tick,
						Usage: "loop delay",
					},
				},
				Action: func(c *cli.Context) error {
					return runSim(c, logger)
				},
			},
			{
				Name:  "probe",
				Usage: "send one resistance command to a device and wait for the acknowledgement",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagPort,
						Required: true,
						Usage:    "serial `DEVICE` of the controller",
					},
					&cli.IntFlag{
						Name:  flagBaud,
						Value: int(setups.Selected.UART.Baud),
						Usage: "baud rate",
					},
					&cli.IntFlag{
						Name:     flagLevel,
						Required: true,
						Usage:    "resistance level 0..180",
					},
					&cli.DurationFlag{
						Name:  flagTimeout,
						Value: 3 * time.Second,
						Usage: "how long to wait for the acknowledgement",
					},
				},
				Action: func(c *cli.Context) error {
					port, err := openPort(c.String(flagPort), c.Int(flagBaud))
					if err != nil {
						return err
					}
					defer port.Close()
					res, err := probe(c.Context, port, c.Int(flagLevel), c.Duration(flagTimeout), logger)
					logger.Infow("probe finished", "acked", res.Acked, "counts", res.Counts)
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bikesim:", err)
		os.Exit(1)
	}
}

func openPort(name string, baud int) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	if err := port.SetReadTimeout(portReadTimeout); err != nil {
		_ = port.Close()
		return nil, errors.Wrap(err, "set read timeout")
	}
	return port, nil
}

func runSim(c *cli.Context, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan := setups.Selected
	plan.SimCadenceRPM = c.Int(flagCadence)
	plan.Tick = c.Duration(flagTick)

	cfg := platform.SimConfig{
		OnMove: func(deg, us int) {
			logger.Infow("servo moved", "angle", deg, "pulse_us", us)
		},
	}
	if name := c.String(flagPort); name != "" {
		port, err := openPort(name, c.Int(flagBaud))
		if err != nil {
			return err
		}
		cfg.Link = port // OpenSim closes it, also on error
	}

	board, err := platform.OpenSim(ctx, plan, cfg)
	if err != nil {
		return err
	}
	defer board.Close()

	var count rotation.Counter
	if _, err := count.Attach(board.Sensor); err != nil {
		return err
	}
	loop := control.New(control.Config{
		Counter:   &count,
		Link:      board.Link,
		Actuator:  board.Servo,
		Tick:      plan.Tick,
		TokenIdle: plan.TokenIdle,
	})
	if err := loop.Setup(); err != nil {
		return err
	}
	logger.Infow("simulation running", "plan", plan.Name, "cadence_rpm", plan.SimCadenceRPM, "tick", plan.Tick)

	err = loop.Run(ctx)
	st := loop.Stats()
	logger.Infow("simulation stopped",
		"count", count.Load(),
		"level", loop.Level(),
		"reports", st.Reports,
		"accepted", st.Accepted,
		"rejected", st.Rejected,
		"malformed", st.Malformed,
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
