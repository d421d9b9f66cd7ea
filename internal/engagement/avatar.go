package engagement

import (
	"fmt"
	"strings"
	"unicode"
)

var palette = [...]string{
	"#F44336", "#E91E63", "#9C27B0", "#673AB7", "#3F51B5",
	"#2196F3", "#03A9F4", "#00BCD4", "#009688", "#4CAF50",
	"#8BC34A", "#CDDC39", "#FFC107", "#FF9800", "#FF5722",
	"#795548", "#607D8B",
}

const (
	fallbackColor    = "#999"
	fallbackGradient = "linear-gradient(135deg, #58a6ff, #5644cc)"
)

// AvatarColor picks a palette colour for seed.
func AvatarColor(seed string) string {
	if seed == "" {
		return fallbackColor
	}
	return palette[abs(StringHash(seed))%int64(len(palette))]
}

// AvatarGradient returns a CSS gradient of two hues 40 degrees apart.
func AvatarGradient(name string) string {
	if name == "" {
		return fallbackGradient
	}
	h1 := abs(StringHash(name) % 360)
	h2 := (h1 + 40) % 360
	return fmt.Sprintf("linear-gradient(135deg, hsl(%d, 70%%, 50%%), hsl(%d, 70%%, 50%%))", h1, h2)
}

// Initials returns two upper-case letters for name: the first letters of the
// first two words, or the first two letters of a single word. Words are split
// on whitespace, '_' and '-'.
func Initials(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	switch len(parts) {
	case 0:
		return "U"
	case 1:
		r := []rune(parts[0])
		return strings.ToUpper(string(r[:min(2, len(r))]))
	default:
		return strings.ToUpper(string([]rune(parts[0])[0]) + string([]rune(parts[1])[0]))
	}
}
