// Package heartbeat prints a periodic liveness line on the debug console.
package heartbeat

import (
	"context"
	"time"

	"bikesmart-go/errcode"
)

const DefaultInterval = 10 * time.Second

type Service struct {
	Interval time.Duration
	// Count reads the rotation counter.
	Count func() uint32
	// Print emits one line; println when nil.
	Print func(uptime time.Duration, count uint32)
}

func (s *Service) serviceLoop(ctx context.Context) {
	start := time.Now()
	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick.C:
			s.Print(t.Sub(start), s.Count())
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context) error {
	if s.Count == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "heartbeat.start", Msg: "no counter"}
	}
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}
	if s.Print == nil {
		s.Print = func(up time.Duration, n uint32) {
			println("[hb] up", int(up/time.Second), "s count", n)
		}
	}
	go s.serviceLoop(ctx)
	return nil
}
