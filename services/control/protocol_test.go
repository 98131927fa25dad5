package control

import (
	"testing"

	"bikesmart-go/errcode"
)

func TestAppendLines(t *testing.T) {
	if got := string(AppendCycleCount(nil, 5)); got != "CYCLE COUNT:5\n" {
		t.Fatalf("cycle count = %q", got)
	}
	if got := string(AppendCycleCount(nil, 4294967295)); got != "CYCLE COUNT:4294967295\n" {
		t.Fatalf("max cycle count = %q", got)
	}
	if got := string(AppendNewResistance(nil, 90)); got != "NEW RESISTANCE:90\n" {
		t.Fatalf("new resistance = %q", got)
	}
	if got := string(AppendCommand(nil, 180)); got != "180\n" {
		t.Fatalf("command = %q", got)
	}
}

func TestAppendDoesNotAllocate(t *testing.T) {
	var buf [32]byte
	allocs := testing.AllocsPerRun(100, func() {
		_ = AppendCycleCount(buf[:0], 123456)
		_ = AppendNewResistance(buf[:0], 180)
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v", allocs)
	}
}

// scanAll feeds s and flushes at the end, like an idle link would.
func scanAll(s string) []Token {
	var sc Scanner
	var out []Token
	for i := 0; i < len(s); i++ {
		if tok, ok := sc.Feed(s[i]); ok {
			out = append(out, tok)
		}
	}
	if tok, ok := sc.Flush(); ok {
		out = append(out, tok)
	}
	return out
}

func TestScanner(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []Token
	}{
		{"plain", "90\n", []Token{{Value: 90}}},
		{"idle terminated", "90", []Token{{Value: 90}}},
		{"leading junk", "abc 42\r\n", []Token{{Value: 42}}},
		{"negative", "-5\n", []Token{{Value: -5}}},
		{"several", "1 2,3\n", []Token{{Value: 1}, {Value: 2}, {Value: 3}}},
		{"minus starts next token", "12-3\n", []Token{{Value: 12}, {Value: -3}}},
		{"lone sign", "-\n", []Token{{Malformed: true}}},
		{"sign then junk", "-x7\n", []Token{{Malformed: true}, {Value: 7}}},
		{"saturates", "99999999999\n", []Token{{Value: tokenLimit}}},
		{"saturates negative", "-99999999999\n", []Token{{Value: -tokenLimit}}},
		{"leading zeros", "007\n", []Token{{Value: 7}}},
		{"only junk", "hello\r\n", nil},
		{"empty", "", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := scanAll(c.in)
			if len(got) != len(c.want) {
				t.Fatalf("tokens = %+v, want %+v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("token %d = %+v, want %+v", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestScannerPendingAndReset(t *testing.T) {
	var sc Scanner
	if sc.Pending() {
		t.Fatal("fresh scanner pending")
	}
	sc.Feed('4')
	if !sc.Pending() {
		t.Fatal("digit did not start a token")
	}
	sc.Reset()
	if sc.Pending() {
		t.Fatal("Reset kept token")
	}
	if _, ok := sc.Flush(); ok {
		t.Fatal("Flush after Reset produced a token")
	}
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		in   string
		want Message
		err  bool
	}{
		{in: "CYCLE COUNT:5\n", want: Message{Kind: KindCycleCount, Value: 5}},
		{in: "NEW RESISTANCE:90\r\n", want: Message{Kind: KindNewResistance, Value: 90}},
		{in: "CYCLE COUNT:4294967295", want: Message{Kind: KindCycleCount, Value: 4294967295}},
		{in: "CYCLE COUNT:4294967296", err: true},
		{in: "CYCLE COUNT:", err: true},
		{in: "NEW RESISTANCE:-1", err: true},
		{in: "hello", err: true},
	}
	for _, c := range cases {
		got, err := ParseLine([]byte(c.in))
		if c.err {
			if errcode.Of(err) != errcode.InvalidPayload {
				t.Fatalf("ParseLine(%q) err = %v, want invalid_payload", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("ParseLine(%q) = %+v, %v; want %+v", c.in, got, err, c.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindCycleCount.String() != "cycle_count" || KindNewResistance.String() != "new_resistance" || Kind(0).String() != "unknown" {
		t.Fatal("kind names changed")
	}
}
