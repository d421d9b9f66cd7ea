package engagement

import (
	"math"
	"unicode/utf16"
)

// StringHash is the multiply-by-31 rolling hash over UTF-16 code units,
// with the shift truncated to 32 bits on every step and the running sum
// kept wide, so results match what browsers compute for the same string.
func StringHash(s string) int64 {
	var h int64
	for _, c := range utf16.Encode([]rune(s)) {
		h = int64(c) + (int64(int32(h)<<5) - h)
	}
	return h
}

// Seed turns s into a non-negative LCG seed.
func Seed(s string) uint32 {
	return uint32(abs(StringHash(s)))
}

// NextLCG advances the Numerical Recipes linear congruential generator.
func NextLCG(seed uint32) uint32 {
	return seed*1664525 + 1013904223
}

const activityMix uint32 = 0x5bd1e995

// Interests draws up to three distinct items of pool for the profile id.
// The same id and pool always give the same picks in the same order.
func Interests[T any](id string, pool []T) []T {
	n := min(3, len(pool))
	out := make([]T, 0, n)
	taken := make([]bool, len(pool))
	seed := Seed(id)
	for range n {
		seed = NextLCG(seed)
		i := int(seed % uint32(len(pool)))
		for taken[i] {
			i = (i + 1) % len(pool)
		}
		taken[i] = true
		out = append(out, pool[i])
	}
	return out
}

// ReadingStats are the synthetic weekly reading figures of a profile.
type ReadingStats struct {
	ReadingMinutes  int `json:"reading_minutes"`  // [10, 600]
	ActivityMinutes int `json:"activity_minutes"` // [5, 300]
	Percentile      int `json:"percentile"`       // [20, 95]
}

// Reading derives ReadingStats from the profile id.
func Reading(id string) ReadingStats {
	seed := Seed(id)
	r := 10 + int(NextLCG(seed)%591)
	a := 5 + int(NextLCG(seed^activityMix)%296)
	score := (float64(r-10)/590 + float64(a-5)/295) / 2
	return ReadingStats{
		ReadingMinutes:  r,
		ActivityMinutes: a,
		Percentile:      int(math.Round(20 + score*75)),
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
