// Package bossbar provides the boss bar colors and styles understood by the bridge.
package bossbar

import (
	"fmt"
	"math"
	"strconv"
)

// Color is the color of the percent bar.
type Color uint8

// Available boss bar colors.
const (
	PinkColor Color = iota
	BlueColor
	RedColor
	GreenColor
	YellowColor
	PurpleColor
	RebeccaPurpleColor
	WhiteColor
)

// Colors is a list of available boss bar colors.
var Colors = []Color{
	PinkColor,
	BlueColor,
	RedColor,
	GreenColor,
	YellowColor,
	PurpleColor,
	RebeccaPurpleColor,
	WhiteColor,
}

var colorNames = [...]string{"pink", "blue", "red", "green", "yellow", "purple", "rebecca_purple", "white"}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "Color(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is a known color.
func (c Color) Valid() bool { return int(c) < len(colorNames) }

// Style is the segmentation of the percent bar.
type Style uint8

// Available boss bar styles.
const (
	SolidStyle Style = iota
	Segmented6Style
	Segmented10Style
	Segmented12Style
	Segmented20Style
)

// Styles is a list of available boss bar styles.
var Styles = []Style{
	SolidStyle,
	Segmented6Style,
	Segmented10Style,
	Segmented12Style,
	Segmented20Style,
}

var styleNames = [...]string{"solid", "segmented_6", "segmented_10", "segmented_12", "segmented_20"}

func (s Style) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "Style(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool { return int(s) < len(styleNames) }

const (
	// MinProgress is the minimum value the progress can be.
	MinProgress float32 = 0.0
	// MaxProgress is the maximum value the progress can be.
	MaxProgress float32 = 1.0
)

// Bar is a boss bar as it is sent to the bridge.
type Bar struct {
	Title   string
	Color   Color
	Style   Style
	Percent float32
}

// Validate checks color, style and percent bounds.
func (b Bar) Validate() error {
	if !b.Color.Valid() {
		return fmt.Errorf("invalid boss bar color %d", b.Color)
	}
	if !b.Style.Valid() {
		return fmt.Errorf("invalid boss bar style %d", b.Style)
	}
	if math.IsNaN(float64(b.Percent)) || b.Percent < MinProgress || b.Percent > MaxProgress {
		return fmt.Errorf("boss bar percent %v out of range [%v, %v]", b.Percent, MinProgress, MaxProgress)
	}
	return nil
}

// Args returns the wire arguments of b followed by the player name.
func (b Bar) Args(player string) []string {
	return []string{
		b.Title,
		strconv.Itoa(int(b.Color)),
		strconv.Itoa(int(b.Style)),
		strconv.FormatFloat(float64(b.Percent), 'f', -1, 32),
		player,
	}
}

// Parse parses wire arguments produced by Args (without the player name).
func Parse(title, color, style, percent string) (Bar, error) {
	c, err := strconv.ParseUint(color, 10, 8)
	if err != nil {
		return Bar{}, fmt.Errorf("invalid boss bar color %q: %w", color, err)
	}
	s, err := strconv.ParseUint(style, 10, 8)
	if err != nil {
		return Bar{}, fmt.Errorf("invalid boss bar style %q: %w", style, err)
	}
	p, err := strconv.ParseFloat(percent, 32)
	if err != nil {
		return Bar{}, fmt.Errorf("invalid boss bar percent %q: %w", percent, err)
	}
	b := Bar{Title: title, Color: Color(c), Style: Style(s), Percent: float32(p)}
	return b, b.Validate()
}
