package main

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bikesmart-go/errcode"
	"bikesmart-go/services/control"
	"bikesmart-go/types"
	"bikesmart-go/x/mathx"
)

type probeResult struct {
	Acked  bool
	Counts []uint32 // CYCLE COUNT values seen while waiting
}

// probe writes a resistance command and reads device lines until the
// matching NEW RESISTANCE arrives. rw.Read may return (0, nil) on a read
// timeout; that is treated as "nothing yet".
func probe(ctx context.Context, rw io.ReadWriter, level int, timeout time.Duration, log *zap.SugaredLogger) (probeResult, error) {
	var res probeResult
	if !mathx.Between(level, types.MinResistance, types.MaxResistance) {
		return res, &errcode.E{C: errcode.OutOfRange, Op: "probe", Msg: "level must be 0..180"}
	}
	if _, err := rw.Write(control.AppendCommand(nil, level)); err != nil {
		return res, errors.Wrap(err, "write command")
	}
	log.Debugw("command sent", "level", level)

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 64)
	var line []byte
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n, err := rw.Read(buf)
		for _, b := range buf[:n] {
			if b != '\n' {
				line = append(line, b)
				continue
			}
			msg, perr := control.ParseLine(line)
			line = line[:0]
			if perr != nil {
				log.Debugw("ignoring device line", "error", perr)
				continue
			}
			switch msg.Kind {
			case control.KindCycleCount:
				res.Counts = append(res.Counts, msg.Value)
				log.Infow("cycle count", "count", msg.Value)
			case control.KindNewResistance:
				if int(msg.Value) == level {
					res.Acked = true
					return res, nil
				}
				log.Warnw("unexpected acknowledgement", "level", msg.Value)
			}
		}
		if err != nil {
			return res, errors.Wrap(err, "read")
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	return res, &errcode.E{C: errcode.Timeout, Op: "probe", Msg: "no acknowledgement"}
}
