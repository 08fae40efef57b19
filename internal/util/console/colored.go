// Package console renders legacy formatted text, like Bedrock MOTDs, for terminals.
package console

import (
	"strings"

	"github.com/gookit/color"
	"go.minekube.com/common/minecraft/component/codec/legacy"
)

// AnsiFromLegacy converts legacy formatting codes (§a, §l, ...) of s to
// ANSI escape sequences. §r resets all formatting.
func AnsiFromLegacy(s string) string {
	b := new(strings.Builder)
	var x bool
	c := func(s string) string { return s }
	for _, r := range s {
		if r == legacy.DefaultChar && !x {
			x = true
			continue
		}
		if x {
			x = false
			if r == 'r' {
				c = func(s string) string { return s }
				continue
			}
			wrap := c
			conv := convert(r)
			c = func(s string) string { return wrap(conv.Sprint(s)) }
			continue
		}
		b.WriteString(c(string(r)))
	}
	return b.String()
}

// StripLegacy removes legacy formatting codes from s.
func StripLegacy(s string) string {
	b := new(strings.Builder)
	var x bool
	for _, r := range s {
		switch {
		case r == legacy.DefaultChar && !x:
			x = true
		case x:
			x = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func convert(r rune) color.Color {
	switch r {
	case 'a':
		return color.LightGreen
	case 'b':
		return color.LightBlue
	case 'c':
		return color.LightRed
	case 'd':
		return color.LightMagenta
	case 'e':
		return color.LightYellow
	case 'f':
		return color.LightWhite
	case 'g': // minecoin gold
		return color.Yellow
	case 'k':
		return color.OpConcealed
	case 'l':
		return color.OpBold
	case 'm':
		return color.OpStrikethrough
	case 'n':
		return color.OpUnderscore
	case 'o':
		return color.OpItalic
	case '0':
		return color.Black
	case '1':
		return color.Blue
	case '2':
		return color.Green
	case '3':
		return color.Cyan
	case '4':
		return color.Red
	case '5':
		return color.Magenta
	case '6':
		return color.Yellow
	case '7':
		return color.White
	case '8':
		return color.Gray
	case '9':
		return color.LightCyan
	default:
		return color.OpReset
	}
}
