package engagement

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFNV32a(t *testing.T) {
	require.Equal(t, uint32(2166136261), fnv32a(""))
	require.Equal(t, uint32(0xe40c292c), fnv32a("a"))
}

func TestViews_DeterministicAndBounded(t *testing.T) {
	created := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)

	for _, id := range []string{"1", "42", "9f6e2c1a-blog"} {
		base := Views(id, created, created)
		require.GreaterOrEqual(t, base, 60)
		require.LessOrEqual(t, base, 500)
		require.Equal(t, base, Views(id, created, created.Add(5*time.Hour)), "same UTC day")

		prev := base
		for d := 1; d <= 30; d++ {
			now := created.AddDate(0, 0, d)
			v := Views(id, created, now)
			require.Equal(t, v, Views(id, created, now))
			require.Contains(t, []int{3, 5, 10}, v-prev)
			prev = v
		}
	}
}

func TestViews_FutureCreationDoesNotGoBelowBase(t *testing.T) {
	created := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, Views("7", created, created), Views("7", created, created.AddDate(0, 0, -3)))
}

func TestDaysElapsed_UTCMidnights(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	created := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	require.Equal(t, 1, DaysElapsed(created, time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC)))
	// 2024-01-02 03:00 in UTC+5 is still 2024-01-01 in UTC.
	require.Equal(t, 0, DaysElapsed(created, time.Date(2024, 1, 2, 3, 0, 0, 0, loc)))
	require.Equal(t, 0, DaysElapsed(created, created.AddDate(0, 0, -2)))
}

func TestFormatViews(t *testing.T) {
	cases := map[int]string{
		0:         "0",
		999:       "999",
		1000:      "1K",
		1234:      "1.2K",
		1000000:   "1M",
		2500000:   "2.5M",
		120000000: "120M",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatViews(in), "n=%d", in)
	}
}

func TestStringHash(t *testing.T) {
	require.Equal(t, int64(0), StringHash(""))
	require.Equal(t, int64(97), StringHash("a"))
	require.Equal(t, int64(3105), StringHash("ab"))
	require.Equal(t, StringHash("alice"), StringHash("alice"))
}

func TestNextLCG(t *testing.T) {
	require.Equal(t, uint32(1013904223), NextLCG(0))
	require.Equal(t, uint32(1015568748), NextLCG(1))
}

func TestInterests(t *testing.T) {
	pool := []string{"Go", "Rust", "Web", "AI", "DevOps"}

	got := Interests("user-1", pool)
	require.Len(t, got, 3)
	seen := map[string]bool{}
	for _, g := range got {
		require.Contains(t, pool, g)
		require.False(t, seen[g], "duplicate %q", g)
		seen[g] = true
	}
	require.Equal(t, got, Interests("user-1", pool))

	require.ElementsMatch(t, []string{"Go", "Rust"}, Interests("user-2", []string{"Go", "Rust"}))
	require.Empty(t, Interests("user-3", []string{}))
}

func TestReading(t *testing.T) {
	for i := range 50 {
		id := fmt.Sprintf("profile-%d", i)
		r := Reading(id)
		require.Equal(t, r, Reading(id))
		require.GreaterOrEqual(t, r.ReadingMinutes, 10)
		require.LessOrEqual(t, r.ReadingMinutes, 600)
		require.GreaterOrEqual(t, r.ActivityMinutes, 5)
		require.LessOrEqual(t, r.ActivityMinutes, 300)
		require.GreaterOrEqual(t, r.Percentile, 20)
		require.LessOrEqual(t, r.Percentile, 95)
	}
}

func TestActivityPointsAndLevel(t *testing.T) {
	require.Equal(t, 50, ActivityPoints(0))
	require.Equal(t, 80, ActivityPoints(3))
	require.Equal(t, 1, Level(50))
	require.Equal(t, 2, Level(110))
}

func TestAvatar(t *testing.T) {
	require.Equal(t, "#999", AvatarColor(""))
	require.Equal(t, "#FFC107", AvatarColor("a"))
	require.Equal(t, AvatarColor("alice"), AvatarColor("alice"))

	require.Equal(t, "linear-gradient(135deg, #58a6ff, #5644cc)", AvatarGradient(""))
	require.Equal(t, "linear-gradient(135deg, hsl(97, 70%, 50%), hsl(137, 70%, 50%))", AvatarGradient("a"))
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"":                 "U",
		"   ":              "U",
		"a":                "A",
		"alice":            "AL",
		"john doe":         "JD",
		"mary_jane-watson": "MJ",
		"élan vital":       "ÉV",
	}
	for in, want := range cases {
		require.Equal(t, want, Initials(in), "name=%q", in)
	}
}
