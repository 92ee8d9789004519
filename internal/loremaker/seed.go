package loremaker

import (
	"hash/fnv"
	"strings"
	"time"
)

// DayKey is the calendar date (UTC) used to seed daily values.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SeededValue maps (seed, date) to a number in [0,1): FNV-1a over
// "date|seed" followed by the murmur3 32-bit finalizer.
func SeededValue(seed, date string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(date + "|" + seed))
	x := h.Sum32()
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return float64(x) / (1 << 32)
}

// DailyLevel is the placeholder level for a power on a given day, in [4,9].
func DailyLevel(powerName string, day time.Time) int {
	seed := strings.ToLower(strings.TrimSpace(powerName))
	return 4 + int(SeededValue(seed, DayKey(day))*6)
}
