package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Colors is a four-color theme palette.
type Colors struct {
	AccentColor     string `json:"accentColor"`
	BackgroundColor string `json:"backgroundColor"`
	CardColor       string `json:"cardColor"`
	TextColor       string `json:"textColor"`
}

// Default is the documented default palette.
var Default = Colors{
	AccentColor:     "#ff6b9d",
	BackgroundColor: "#1a1a2e",
	CardColor:       "#16213e",
	TextColor:       "#e5e5e5",
}

// Presets are the five named palettes selectable by name.
var Presets = map[string]Colors{
	"classic": {
		AccentColor:     "#ff6b9d",
		BackgroundColor: "#1a1a2e",
		CardColor:       "#16213e",
		TextColor:       "#e5e5e5",
	},
	"ocean": {
		AccentColor:     "#00d9ff",
		BackgroundColor: "#0a1628",
		CardColor:       "#0f2942",
		TextColor:       "#e0f4ff",
	},
	"forest": {
		AccentColor:     "#4ade80",
		BackgroundColor: "#0f1f0f",
		CardColor:       "#1a331a",
		TextColor:       "#e0ffe0",
	},
	"sunset": {
		AccentColor:     "#ff9f43",
		BackgroundColor: "#1f1510",
		CardColor:       "#332218",
		TextColor:       "#fff5e6",
	},
	"monochrome": {
		AccentColor:     "#ffffff",
		BackgroundColor: "#0a0a0a",
		CardColor:       "#1a1a1a",
		TextColor:       "#e5e5e5",
	},
}

// hoverDelta is added to each RGB channel of the accent to derive the hover variant.
const hoverDelta = 20

// mutedAlphaSuffix appended to the accent hex gives roughly 20% opacity.
const mutedAlphaSuffix = "33"

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidHexColor reports whether s is a six-digit hex color like "#ff6b9d".
func ValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// Validate checks all four palette entries.
func (c Colors) Validate() error {
	for _, col := range []string{c.AccentColor, c.BackgroundColor, c.CardColor, c.TextColor} {
		if !ValidHexColor(col) {
			return fmt.Errorf("invalid color format: %q", col)
		}
	}
	return nil
}

// Adjust shifts each RGB channel of a hex color by amount, clamping the
// channels to [0,255] independently.
func Adjust(hex string, amount int) string {
	num, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return hex
	}
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	r := clamp(int(num>>16&0xff) + amount)
	g := clamp(int(num>>8&0xff) + amount)
	b := clamp(int(num&0xff) + amount)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Apply computes the CSS custom properties for a palette. The hover and
// muted variants are derived on every call and never persisted.
func Apply(c Colors) map[string]string {
	return map[string]string{
		"--accent":       c.AccentColor,
		"--bg":           c.BackgroundColor,
		"--card":         c.CardColor,
		"--text":         c.TextColor,
		"--accent-hover": Adjust(c.AccentColor, hoverDelta),
		"--accent-muted": c.AccentColor + mutedAlphaSuffix,
	}
}
