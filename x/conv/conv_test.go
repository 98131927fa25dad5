package conv

import (
	"math"
	"testing"
)

func TestAppendUint(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{180, "180"},
		{math.MaxUint32, "4294967295"},
		{math.MaxUint64, "18446744073709551615"},
	}
	for _, c := range cases {
		if got := string(AppendUint([]byte("x="), c.n)); got != "x="+c.want {
			t.Fatalf("AppendUint(%d) = %q, want %q", c.n, got, "x="+c.want)
		}
	}
}

func TestAppendInt(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{-1, "-1"},
		{90, "90"},
		{math.MinInt64, "-9223372036854775808"},
	}
	for _, c := range cases {
		if got := string(AppendInt(nil, c.n)); got != c.want {
			t.Fatalf("AppendInt(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestAppendUintNoAllocWithCapacity(t *testing.T) {
	buf := make([]byte, 0, 32)
	allocs := testing.AllocsPerRun(100, func() {
		_ = AppendUint(buf[:0], 123456789)
	})
	if allocs != 0 {
		t.Fatalf("AppendUint allocated %v times", allocs)
	}
}

func TestParseUint(t *testing.T) {
	good := map[string]uint64{"0": 0, "42": 42, "18446744073709551615": math.MaxUint64}
	for s, want := range good {
		got, ok := ParseUint([]byte(s))
		if !ok || got != want {
			t.Fatalf("ParseUint(%q) = %d,%v want %d", s, got, ok, want)
		}
	}
	for _, s := range []string{"", "-1", "1a", "18446744073709551616"} {
		if _, ok := ParseUint([]byte(s)); ok {
			t.Fatalf("ParseUint(%q) expected failure", s)
		}
	}
}
