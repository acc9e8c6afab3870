package core

import (
	"strings"
	"unicode/utf8"
)

// Cell is one character of the screen with its colors.
// A zero BG means the terminal background.
type Cell struct {
	Rune rune
	FG   Color
	BG   Color
}

var blank = Cell{Rune: ' '}

// Screen is a fixed-size cell buffer. Views draw onto it and the terminal
// layer turns it into styled text.
type Screen struct {
	width  int
	height int
	cells  []Cell
}

// NewScreen creates a cleared screen. Negative sizes are treated as zero.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

func (s *Screen) Width() int  { return s.width }
func (s *Screen) Height() int { return s.height }

// Resize reallocates the buffer and clears it.
func (s *Screen) Resize(width, height int) {
	s.width = Max(width, 0)
	s.height = Max(height, 0)
	if cap(s.cells) >= s.width*s.height {
		s.cells = s.cells[:s.width*s.height]
	} else {
		s.cells = make([]Cell, s.width*s.height)
	}
	s.Clear()
}

// Clear resets every cell to a blank on the default background.
func (s *Screen) Clear() {
	s.Fill(blank)
}

// Fill sets every cell to c.
func (s *Screen) Fill(c Cell) {
	for i := range s.cells {
		s.cells[i] = c
	}
}

func (s *Screen) inside(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// SetCell places c at (x, y). Out-of-bounds writes are ignored.
func (s *Screen) SetCell(x, y int, c Cell) {
	if s.inside(x, y) {
		s.cells[y*s.width+x] = c
	}
}

// Set draws r in fg at (x, y), keeping the cell's background.
func (s *Screen) Set(x, y int, r rune, fg Color) {
	if !s.inside(x, y) {
		return
	}
	c := &s.cells[y*s.width+x]
	c.Rune = r
	c.FG = fg
}

// Paint changes only the background of (x, y).
func (s *Screen) Paint(x, y int, bg Color) {
	if s.inside(x, y) {
		s.cells[y*s.width+x].BG = bg
	}
}

// PaintRow changes the background of a whole row.
func (s *Screen) PaintRow(y int, bg Color) {
	for x := 0; x < s.width; x++ {
		s.Paint(x, y, bg)
	}
}

// GetCell returns the cell at (x, y), or a blank out of bounds.
func (s *Screen) GetCell(x, y int) Cell {
	if !s.inside(x, y) {
		return blank
	}
	return s.cells[y*s.width+x]
}

// Get returns the rune at (x, y).
func (s *Screen) Get(x, y int) rune {
	return s.GetCell(x, y).Rune
}

// DrawText writes text starting at (x, y), one cell per rune, clipped.
func (s *Screen) DrawText(x, y int, text string, fg Color) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r, fg)
		i++
	}
}

// DrawTextCentered draws text centered on row y.
func (s *Screen) DrawTextCentered(y int, text string, fg Color) {
	s.DrawText((s.width-utf8.RuneCountInString(text))/2, y, text, fg)
}

// DrawSprite draws a multi-line sprite with its top-left corner at (x, y).
// Spaces are transparent.
func (s *Screen) DrawSprite(x, y int, lines []string, fg Color) {
	for dy, line := range lines {
		dx := 0
		for _, r := range line {
			if r != ' ' {
				s.Set(x+dx, y+dy, r, fg)
			}
			dx++
		}
	}
}

// String returns the runes row by row, without colors.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)
	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Row(y))
	}
	return sb.String()
}

// Row returns row y as plain text.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	runes := make([]rune, s.width)
	for x := range runes {
		runes[x] = s.cells[y*s.width+x].Rune
	}
	return string(runes)
}
