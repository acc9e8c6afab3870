package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/sheepfold/internal/core"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

// palette maps core colors to terminal colors.
var palette = map[core.Color]lipgloss.Color{
	core.ColorSkyHigh:    lipgloss.Color("33"),
	core.ColorSkyMid:     lipgloss.Color("75"),
	core.ColorSkyLow:     lipgloss.Color("117"),
	core.ColorCloud:      lipgloss.Color("255"),
	core.ColorMountain:   lipgloss.Color("60"),
	core.ColorLeaf:       lipgloss.Color("28"),
	core.ColorHorizon:    lipgloss.Color("70"),
	core.ColorField:      lipgloss.Color("107"),
	core.ColorForeground: lipgloss.Color(scene.ForegroundBaseColor),
	core.ColorRock:       lipgloss.Color("245"),
	core.ColorGrass:      lipgloss.Color("22"),
	core.ColorBush:       lipgloss.Color("29"),
	core.ColorSheep:      lipgloss.Color("231"),
	core.ColorSick:       lipgloss.Color("209"),
	core.ColorDead:       lipgloss.Color("240"),
	core.ColorGold:       lipgloss.Color("220"),
	core.ColorText:       lipgloss.Color("229"),
	core.ColorMuted:      lipgloss.Color("241"),
}

type colorPair struct {
	fg, bg core.Color
}

// styleFor builds the style for a color pair. ColorDefault leaves the
// terminal's own color in place.
func styleFor(p colorPair) lipgloss.Style {
	st := lipgloss.NewStyle()
	if c, ok := palette[p.fg]; ok {
		st = st.Foreground(c)
	}
	if c, ok := palette[p.bg]; ok {
		st = st.Background(c)
	}
	return st
}

// RenderScreen converts a Screen to styled text.
// Adjacent cells with the same colors share one escape sequence.
func RenderScreen(s *core.Screen) string {
	styles := make(map[colorPair]lipgloss.Style)
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			pair := colorPair{cell.FG, cell.BG}

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if (colorPair{cell.FG, cell.BG}) != pair {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			st, ok := styles[pair]
			if !ok {
				st = styleFor(pair)
				styles[pair] = st
			}
			sb.WriteString(st.Render(run.String()))
		}
	}
	return sb.String()
}
