package conv

// AppendUint appends the base-10 representation of n to dst.
// No fmt/strconv dependency; allocates only if dst has no spare capacity.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 representation of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// Two's complement negation is exact for MinInt64 once widened to uint64.
		return AppendUint(dst, uint64(-(n + 1))+1)
	}
	return AppendUint(dst, uint64(n))
}

// ParseUint parses an unsigned decimal. ok is false on empty input, any
// non-digit, or overflow.
func ParseUint(b []byte) (n uint64, ok bool) {
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if n > (^uint64(0)-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}
