package core

// Color is a palette entry. The terminal layer maps it to an ANSI 256 code.
type Color uint8

// Pasture palette.
const (
	ColorDefault Color = iota
	ColorSkyHigh
	ColorSkyMid
	ColorSkyLow
	ColorCloud
	ColorMountain
	ColorLeaf
	ColorHorizon
	ColorField
	ColorForeground
	ColorRock
	ColorGrass
	ColorBush
	ColorSheep
	ColorSick
	ColorDead
	ColorGold
	ColorText
	ColorMuted
)
