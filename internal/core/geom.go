// Package core provides the character canvas the terminal views draw on.
// It has no terminal dependencies so drawing can be tested as plain text.
package core

import "math"

// Viewport maps scene percentage space (0 to 100 on both axes) onto a
// rectangle of cells.
type Viewport struct {
	X, Y int // Top-left cell
	W, H int // Size in cells
}

// Col converts a horizontal percentage to a column.
func (v Viewport) Col(pct float64) int {
	return v.X + int(math.Floor(pct/100*float64(v.W)))
}

// Row converts a vertical percentage to a row.
func (v Viewport) Row(pct float64) int {
	return v.Y + int(math.Floor(pct/100*float64(v.H)))
}

// Contains reports whether the cell (x, y) lies inside the viewport.
func (v Viewport) Contains(x, y int) bool {
	return x >= v.X && x < v.X+v.W && y >= v.Y && y < v.Y+v.H
}

// Clamp restricts val to [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts val to [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Max returns the larger of a and b.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
