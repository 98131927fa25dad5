package timex

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// PeriodMicros is PeriodFromHz in microseconds.
func PeriodMicros(freqHz uint32) uint32 {
	return uint32(PeriodFromHz(freqHz) / 1000)
}
