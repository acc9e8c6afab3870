// Package scene generates the pasture backdrop for an owner.
//
// Generation is a pure function of the identity string: the same identity
// always yields the same Scene, and nothing here touches the simulation.
// Coordinates are percentages of the viewport (x across, y down from the
// top of the sky); renderers decide how to map them to pixels or cells.
package scene

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies what an element depicts.
type Kind int

const (
	KindMountain Kind = iota
	KindTree
	KindHorizonGrass
	KindRock
	KindGrass
	KindBush
)

var kindNames = [...]string{"mountain", "tree", "horizon-grass", "rock", "grass", "bush"}

// Sprite variants available per kind.
var kindVariants = [...]int{1, 3, 3, 2, 3, 2}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Variants returns how many sprite variants the kind has.
func (k Kind) Variants() int {
	if k < 0 || int(k) >= len(kindVariants) {
		return 1
	}
	return kindVariants[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Element is a single placed decoration.
type Element struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	Variant  int     `json:"variant"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation,omitempty"`
	Z        int     `json:"z"` // Stacking key, higher draws on top
}

// Foreground is the near bank in front of the field.
// Decoration Y values are relative to the top edge of the bank.
type Foreground struct {
	Decorations []Element `json:"decorations"`
	BaseColor   string    `json:"base_color"`
}

// Scene is the full backdrop description.
type Scene struct {
	Identity   string     `json:"identity"`
	Sky        string     `json:"sky"`
	Elements   []Element  `json:"elements"` // Sorted by Z
	Foreground Foreground `json:"foreground"`
	Clouds     []string   `json:"clouds"`
}

const (
	SkyDayGradient      = "day-gradient"
	ForegroundBaseColor = "#81C784"

	// HorizonY is where the tree line meets the field.
	HorizonY = 29.0

	horizonStripWidth = 20.0
	maxPlacements     = 10
)

// Clouds lists the cloud sprites every scene animates.
var Clouds = []string{"cloud-small", "cloud-wide", "cloud-puff"}

// Params tunes generation.
type Params struct {
	// MinSpacing is the minimum distance, in percentage space, between
	// trees, rocks and field grass of the same band. Zero disables the check
	// and reproduces the reference layout exactly.
	MinSpacing float64
	// Attempts bounds placement retries when MinSpacing is set.
	Attempts int
}

// DefaultParams returns the parameters used by Generate.
func DefaultParams() Params {
	return Params{
		MinSpacing: 0,
		Attempts:   maxPlacements,
	}
}

// Generate builds the scene for identity with DefaultParams.
func Generate(identity string) Scene {
	return GenerateWithParams(identity, DefaultParams())
}

// GenerateWithParams builds the scene for identity. The order of draws from
// the generator is fixed; changing it changes every layout.
func GenerateWithParams(identity string, p Params) Scene {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	g := &generator{
		rng:    NewRandom(identity),
		hash:   HashIdentity(identity),
		params: p,
	}

	elements := make([]Element, 0, 64)
	elements = append(elements, g.mountains()...)
	elements = append(elements, g.trees()...)
	elements = append(elements, g.horizonStrip()...)
	elements = append(elements, g.rocks()...)
	elements = append(elements, g.fieldGrass()...)

	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Z < elements[j].Z
	})

	decorations := g.bushes()
	decorations = append(decorations, g.foregroundGrass()...)

	clouds := make([]string, len(Clouds))
	copy(clouds, Clouds)

	return Scene{
		Identity: identity,
		Sky:      SkyDayGradient,
		Elements: elements,
		Foreground: Foreground{
			Decorations: decorations,
			BaseColor:   ForegroundBaseColor,
		},
		Clouds: clouds,
	}
}

type generator struct {
	rng    *Random
	hash   uint32
	params Params
}

func (g *generator) element(kind Kind, prefix string, i int) Element {
	return Element{
		ID:      fmt.Sprintf("%s-%d", prefix, i),
		Kind:    kind,
		Variant: g.variant(kind, i),
	}
}

// variant picks a sprite without consuming generator draws.
func (g *generator) variant(kind Kind, i int) int {
	n := kind.Variants()
	if n <= 1 {
		return 0
	}
	v := g.hash ^ (uint32(kind)+1)*0x9e3779b9 ^ (uint32(i)+1)*0x85ebca6b
	v ^= v >> 16
	v *= 0x7feb352d
	v ^= v >> 15
	v *= 0x846ca68b
	v ^= v >> 16
	return int(v % uint32(n))
}

// place draws a position with draw, retrying while it lands too close to
// placed. The last attempt is kept regardless.
func (g *generator) place(placed []Element, draw func() (x, y float64)) (float64, float64) {
	var x, y float64
	for attempt := 0; attempt < g.params.Attempts; attempt++ {
		x, y = draw()
		if g.params.MinSpacing <= 0 || !crowded(placed, x, y, g.params.MinSpacing) {
			break
		}
	}
	return x, y
}

func crowded(placed []Element, x, y, spacing float64) bool {
	for _, e := range placed {
		if math.Hypot(e.X-x, e.Y-y) < spacing {
			return true
		}
	}
	return false
}

func (g *generator) mountains() []Element {
	n := g.rng.Count(2, 4)
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		e := g.element(KindMountain, "mtn", i)
		e.X = g.rng.Range(0, 100)
		e.Y = g.rng.Range(10, 15)
		e.Scale = g.rng.Range(2, 3)
		e.Z = 0
		out = append(out, e)
	}
	return out
}

func (g *generator) trees() []Element {
	n := g.rng.Count(15, 25)
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		e := g.element(KindTree, "tree", i)
		e.X, e.Y = g.place(out, func() (float64, float64) {
			x := g.rng.Range(-10, 110)
			return x, g.rng.Range(18, 25)
		})
		e.Scale = g.rng.Range(0.8, 1.5)
		e.Z = 5
		out = append(out, e)
	}
	return out
}

// horizonStrip tiles grass along the horizon. It draws nothing from the generator.
func (g *generator) horizonStrip() []Element {
	n := int(math.Ceil(100/horizonStripWidth)) + 2
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		e := g.element(KindHorizonGrass, "horizon-grass", i)
		e.X = float64(i)*horizonStripWidth - 10
		e.Y = HorizonY
		e.Scale = 1
		e.Z = 6
		out = append(out, e)
	}
	return out
}

// fieldBand places elements in the open field. Y is drawn before X and
// doubles as the stacking key.
func (g *generator) fieldBand(kind Kind, prefix string, countLo, countHi, scaleLo, scaleHi float64) []Element {
	n := g.rng.Count(countLo, countHi)
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		e := g.element(kind, prefix, i)
		e.X, e.Y = g.place(out, func() (float64, float64) {
			y := g.rng.Range(35, 80)
			return g.rng.Range(5, 95), y
		})
		e.Scale = g.rng.Range(scaleLo, scaleHi)
		e.Z = int(math.Floor(e.Y))
		out = append(out, e)
	}
	return out
}

func (g *generator) rocks() []Element {
	return g.fieldBand(KindRock, "rock", 3, 6, 0.6, 1.0)
}

func (g *generator) fieldGrass() []Element {
	return g.fieldBand(KindGrass, "field-grass", 10, 20, 0.5, 0.8)
}

func (g *generator) bushes() []Element {
	n := g.rng.Count(8, 12)
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		e := g.element(KindBush, "fg-bush", i)
		e.X = g.rng.Range(-5, 105)
		e.Y = g.rng.Range(-5, 0)
		e.Scale = g.rng.Range(1.0, 1.4)
		e.Rotation = g.rng.Range(-5, 5)
		e.Z = 101
		out = append(out, e)
	}
	return out
}

func (g *generator) foregroundGrass() []Element {
	n := g.rng.Count(5, 10)
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		e := g.element(KindGrass, "fg-grass", i)
		e.X = g.rng.Range(0, 100)
		e.Y = g.rng.Range(10, 80)
		e.Scale = g.rng.Range(0.8, 1.2)
		e.Z = 102
		out = append(out, e)
	}
	return out
}
