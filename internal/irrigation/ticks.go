package irrigation

import "math"

// Tick values are milliseconds read from a free running uint32 counter that
// wraps at 2^32 (roughly every 49.7 days).
const (
	MillisPerSecond uint32 = 1000
	MillisPerMinute uint32 = 60 * MillisPerSecond
	MillisPerHour   uint32 = 60 * MillisPerMinute
	MillisPerDay    uint32 = 24 * MillisPerHour

	// ResetThreshold is the distance from the wrap at which the controller
	// zeroes its tick counters.
	ResetThreshold uint32 = MillisPerDay

	maxTick uint32 = math.MaxUint32
)

// elapsed is correct for any interval shorter than one full wrap.
func elapsed(now, last uint32) uint32 {
	return now - last
}

func minutesToMillis(minutes uint8) uint32 {
	return uint32(minutes) * MillisPerMinute
}

func secondsToMillis(seconds int) uint32 {
	return uint32(seconds) * MillisPerSecond
}

func millisToMinutes(ms uint32) float64 {
	return float64(ms) / float64(MillisPerMinute)
}

func millisToHours(ms uint32) float64 {
	return float64(ms) / float64(MillisPerHour)
}

func millisToDays(ms uint32) float64 {
	return float64(ms) / float64(MillisPerDay)
}

// nearWrap reports whether now is within ResetThreshold of the counter wrap.
func nearWrap(now uint32) bool {
	return maxTick-now < ResetThreshold
}

// daysBeforeReset returns how long until nearWrap(now) becomes true.
func daysBeforeReset(now uint32) float64 {
	remaining := maxTick - now
	if remaining < ResetThreshold {
		return 0
	}

	return millisToDays(remaining - ResetThreshold)
}
