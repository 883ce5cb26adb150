package console

import (
	"github.com/gookit/color"

	"tutor-backend/internal/session"
)

type palette struct {
	prompt   color.Style
	question color.Style
	answer   color.Style
	refusal  color.Style
	info     color.Style
	err      color.Style
}

var palettes = map[session.Theme]palette{
	session.ThemeDark: {
		prompt:   color.New(color.FgLightCyan, color.OpBold),
		question: color.New(color.FgLightWhite, color.OpBold),
		answer:   color.New(color.FgLightGreen),
		refusal:  color.New(color.FgLightYellow),
		info:     color.New(color.FgGray),
		err:      color.New(color.FgLightRed, color.OpBold),
	},
	session.ThemeLight: {
		prompt:   color.New(color.FgBlue, color.OpBold),
		question: color.New(color.FgBlack, color.OpBold),
		answer:   color.New(color.FgGreen),
		refusal:  color.New(color.FgMagenta),
		info:     color.New(color.FgDarkGray),
		err:      color.New(color.FgRed, color.OpBold),
	},
}

func paletteFor(t session.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[session.ThemeDark]
}
