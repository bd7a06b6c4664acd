package coreutils

import (
	"github.com/forPelevin/gomoji"
	"github.com/gookit/color"
	"github.com/jfrog/jfrog-client-go/utils/log"
)

// Add green color style to the string if possible.
func PrintTitle(str string) string {
	return colorStr(str, color.Green)
}

// Add cyan color style to the string if possible.
func PrintLink(str string) string {
	return colorStr(str, color.Cyan)
}

// Add the requested style to the string if possible.
func colorStr(str string, c color.Color) string {
	// Add styles only on supported terminals
	if log.IsStdOutTerminal() && log.IsColorsSupported() {
		return c.Render(str)
	}
	// Remove emojis from non-supported terminals
	if gomoji.ContainsEmoji(str) {
		str = gomoji.RemoveEmojis(str)
	}
	return str
}
