package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":              OK,
		"unsupported":     Unsupported,
		"invalid_params":  InvalidParams,
		"invalid_payload": InvalidPayload,
		"out_of_range":    OutOfRange,
		"malformed":       Malformed,
		"unknown_bus":     UnknownBus,
		"unknown_pin":     UnknownPin,
		"pin_in_use":      PinInUse,
		"timeout":         Timeout,
		"closed":          Closed,
		"error":           Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", UnknownPin, UnknownPin},
		{"wrapped", Wrap(Timeout, "probe", cause), Timeout},
		{"foreign", cause, Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Fatalf("%s: Of = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(UnknownBus, "open", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is lost the cause")
	}
	if got, want := err.Error(), "open: unknown_bus: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
