package main

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"bikesmart-go/errcode"
	"bikesmart-go/services/control"
	"bikesmart-go/services/hal/fakes"
	"bikesmart-go/services/rotation"
)

// device runs a real control loop behind an io.ReadWriter: writes feed the
// loop's link, reads return what the loop wrote.
type device struct {
	link  *fakes.Link
	count *rotation.Counter
	loop  *control.Loop

	mu  sync.Mutex
	out bytes.Buffer
}

func newDevice(t *testing.T, ackable bool) *device {
	d := &device{link: &fakes.Link{}, count: &rotation.Counter{}}
	servo := &fakes.Servo{}
	d.loop = control.New(control.Config{Counter: d.count, Link: d.link, Actuator: servo})
	if err := d.loop.Setup(); err != nil {
		t.Fatal(err)
	}
	if !ackable {
		servo.Fail(errcode.Unsupported)
	}
	return d
}

func (d *device) Write(p []byte) (int, error) {
	d.link.Inject(string(p))
	return len(p), nil
}

// Read steps the loop once and returns whatever it produced.
func (d *device) Read(p []byte) (int, error) {
	d.loop.Step()
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.link.Lines() {
		d.out.WriteString(l)
		d.out.WriteByte('\n')
	}
	if d.out.Len() == 0 {
		return 0, nil // like a serial read timeout
	}
	return d.out.Read(p)
}

func TestProbeAcknowledged(t *testing.T) {
	d := newDevice(t, true)
	d.count.Increment()
	d.count.Increment()

	res, err := probe(context.Background(), d, 90, time.Second, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Acked || len(res.Counts) != 1 || res.Counts[0] != 2 {
		t.Fatalf("res = %+v", res)
	}
}

func TestProbeTimesOutWithoutAck(t *testing.T) {
	d := newDevice(t, false)
	_, err := probe(context.Background(), d, 45, 50*time.Millisecond, zaptest.NewLogger(t).Sugar())
	if errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestProbeRejectsOutOfRangeLevel(t *testing.T) {
	d := newDevice(t, true)
	_, err := probe(context.Background(), d, 200, time.Second, zaptest.NewLogger(t).Sugar())
	if errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("err = %v", err)
	}
	if d.link.Pending() != 0 {
		t.Fatal("out-of-range level was sent")
	}
}
