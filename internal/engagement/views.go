// Package engagement derives deterministic display metrics from stable
// seeds such as entity ids and usernames. Nothing here does I/O.
package engagement

import (
	"hash/fnv"
	"strconv"
	"strings"
	"time"
)

var dailyViews = [3]int{3, 5, 10}

// fnv32a is 32-bit FNV-1a over the UTF-8 bytes of s.
func fnv32a(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Views returns the synthetic view count of an entity created at created,
// as seen on the UTC day of now. It never decreases as now advances.
func Views(id string, created, now time.Time) int {
	n := 60 + int(fnv32a(id+":base")%441)
	for day := 1; day <= DaysElapsed(created, now); day++ {
		n += dailyViews[fnv32a(id+":"+strconv.Itoa(day))%3]
	}
	return n
}

// DaysElapsed counts the UTC midnights between created and now; never negative.
func DaysElapsed(created, now time.Time) int {
	d := int(utcDay(now).Sub(utcDay(created)) / (24 * time.Hour))
	if d < 0 {
		return 0
	}
	return d
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatViews renders n as "999", "1.2K" or "3.4M"; a trailing ".0" is dropped.
func FormatViews(n int) string {
	switch {
	case n >= 1_000_000:
		return oneDecimal(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return oneDecimal(float64(n)/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

func oneDecimal(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}
