package control

import (
	"bytes"

	"bikesmart-go/errcode"
	"bikesmart-go/x/conv"
)

// Line prefixes of the device->host protocol. Lines end in a single LF.
const (
	prefixCycleCount    = "CYCLE COUNT:"
	prefixNewResistance = "NEW RESISTANCE:"
)

// AppendCycleCount appends "CYCLE COUNT:<n>\n".
func AppendCycleCount(dst []byte, n uint32) []byte {
	dst = append(dst, prefixCycleCount...)
	dst = conv.AppendUint(dst, uint64(n))
	return append(dst, '\n')
}

// AppendNewResistance appends "NEW RESISTANCE:<level>\n".
func AppendNewResistance(dst []byte, level int) []byte {
	dst = append(dst, prefixNewResistance...)
	dst = conv.AppendInt(dst, int64(level))
	return append(dst, '\n')
}

// AppendCommand appends a host->device resistance command.
func AppendCommand(dst []byte, level int) []byte {
	dst = conv.AppendInt(dst, int64(level))
	return append(dst, '\n')
}

// ---------------- host -> device tokens ----------------

// tokenLimit bounds accumulated magnitudes; anything this large is already
// out of range, so saturating loses nothing.
const tokenLimit = 1_000_000

// Token is one integer scanned from the host stream.
type Token struct {
	Value     int
	Malformed bool // a sign with no digits
}

// Scanner extracts integer tokens from a byte stream, one byte at a time.
//
// Between tokens every byte other than a digit or '-' is skipped. A '-'
// directly before digits negates the token. A token ends at the first
// non-digit byte, which is then examined again as a possible token start,
// or when the caller calls Flush after the link has gone idle.
type Scanner struct {
	active bool
	neg    bool
	digits int
	v      int
}

// Feed consumes b and reports a token when b terminates one.
func (s *Scanner) Feed(b byte) (tok Token, done bool) {
	if s.active {
		if isDigit(b) {
			s.push(b)
			return Token{}, false
		}
		tok, done = s.finish(), true
	}
	switch {
	case isDigit(b):
		s.active = true
		s.push(b)
	case b == '-':
		s.active = true
		s.neg = true
	}
	return tok, done
}

// Pending reports whether a token has been started but not terminated.
func (s *Scanner) Pending() bool { return s.active }

// Flush terminates a pending token.
func (s *Scanner) Flush() (Token, bool) {
	if !s.active {
		return Token{}, false
	}
	return s.finish(), true
}

// Reset drops any pending token.
func (s *Scanner) Reset() { *s = Scanner{} }

func (s *Scanner) push(b byte) {
	s.digits++
	if s.v < tokenLimit {
		s.v = s.v*10 + int(b-'0')
		if s.v > tokenLimit {
			s.v = tokenLimit
		}
	}
}

func (s *Scanner) finish() Token {
	t := Token{Value: s.v, Malformed: s.digits == 0}
	if s.neg {
		t.Value = -t.Value
	}
	s.Reset()
	return t
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ---------------- device -> host decoding ----------------

type Kind uint8

const (
	KindCycleCount Kind = iota + 1
	KindNewResistance
)

func (k Kind) String() string {
	switch k {
	case KindCycleCount:
		return "cycle_count"
	case KindNewResistance:
		return "new_resistance"
	default:
		return "unknown"
	}
}

// Message is one decoded device line.
type Message struct {
	Kind  Kind
	Value uint32
}

// ParseLine decodes a device line. A trailing LF or CRLF is tolerated.
func ParseLine(line []byte) (Message, error) {
	line = bytes.TrimRight(line, "\r\n")
	var m Message
	switch {
	case bytes.HasPrefix(line, []byte(prefixCycleCount)):
		m.Kind = KindCycleCount
		line = line[len(prefixCycleCount):]
	case bytes.HasPrefix(line, []byte(prefixNewResistance)):
		m.Kind = KindNewResistance
		line = line[len(prefixNewResistance):]
	default:
		return Message{}, &errcode.E{C: errcode.InvalidPayload, Op: "control.parse", Msg: "unknown line"}
	}
	v, ok := conv.ParseUint(line)
	if !ok || v > uint64(^uint32(0)) {
		return Message{}, &errcode.E{C: errcode.InvalidPayload, Op: "control.parse", Msg: "bad value"}
	}
	m.Value = uint32(v)
	return m, nil
}
