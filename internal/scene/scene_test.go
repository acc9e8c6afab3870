package scene

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestHashIdentity(t *testing.T) {
	if got := HashIdentity(""); got != 0x811c9dc5 {
		t.Errorf("HashIdentity(\"\") = %#x, expected offset basis", got)
	}
	if got := HashIdentity("guest"); got != 0xbe5cdbf3 {
		t.Errorf("HashIdentity(guest) = %#x, expected 0xbe5cdbf3", got)
	}
}

func TestRandomSequence(t *testing.T) {
	r := NewRandom("guest")
	expected := []float64{0.38091949885711074, 0.2649031050968915, 0.07707937620580196}
	for i, want := range expected {
		if got := r.Next(); math.Abs(got-want) > 1e-12 {
			t.Errorf("Next() #%d = %v, expected %v", i, got, want)
		}
	}
}

func TestRandomRangeBounds(t *testing.T) {
	r := NewRandom("bounds")
	for i := 0; i < 10000; i++ {
		v := r.Range(-5, 5)
		if v < -5 || v >= 5 {
			t.Fatalf("Range(-5, 5) = %v, out of bounds", v)
		}
	}
}

func TestGenerateDeterminism(t *testing.T) {
	for _, id := range []string{"guest", "", "shepherd-42", "овечка"} {
		a, _ := json.Marshal(Generate(id))
		b, _ := json.Marshal(Generate(id))
		if string(a) != string(b) {
			t.Errorf("Generate(%q) not deterministic", id)
		}
	}
}

func TestGenerateDifferentIdentities(t *testing.T) {
	a := Generate("alice")
	b := Generate("bob")
	if reflect.DeepEqual(a.Elements, b.Elements) {
		t.Error("different identities produced identical layouts")
	}
}

func countKinds(s Scene) (map[Kind]int, map[Kind]int) {
	field := make(map[Kind]int)
	for _, e := range s.Elements {
		field[e.Kind]++
	}
	fg := make(map[Kind]int)
	for _, e := range s.Foreground.Decorations {
		fg[e.Kind]++
	}
	return field, fg
}

func TestGenerateReferenceLayout(t *testing.T) {
	tests := []struct {
		identity                       string
		mountains, trees, rocks, grass int
		bushes, fgGrass                int
		firstX, firstY, firstScale     float64
	}{
		{"guest", 2, 15, 5, 10, 11, 9, 26.490310509689152, 10.38539688102901, 2.784746935358271},
		{"", 3, 17, 3, 13, 8, 5, 0.7798924809321761, 13.706931045744568, 2.1158515682909638},
		{"shepherd-42", 2, 20, 5, 11, 9, 9, 34.929452394135296, 13.517657266929746, 2.928515219828114},
	}

	for _, tt := range tests {
		s := Generate(tt.identity)
		field, fg := countKinds(s)

		if field[KindMountain] != tt.mountains || field[KindTree] != tt.trees ||
			field[KindRock] != tt.rocks || field[KindGrass] != tt.grass {
			t.Errorf("%q: field counts = %v", tt.identity, field)
		}
		if field[KindHorizonGrass] != 7 {
			t.Errorf("%q: horizon strip = %d tiles, expected 7", tt.identity, field[KindHorizonGrass])
		}
		if fg[KindBush] != tt.bushes || fg[KindGrass] != tt.fgGrass {
			t.Errorf("%q: foreground counts = %v", tt.identity, fg)
		}

		first := s.Elements[0]
		if first.ID != "mtn-0" {
			t.Fatalf("%q: first element = %s, expected mtn-0", tt.identity, first.ID)
		}
		if math.Abs(first.X-tt.firstX) > 1e-9 || math.Abs(first.Y-tt.firstY) > 1e-9 ||
			math.Abs(first.Scale-tt.firstScale) > 1e-9 {
			t.Errorf("%q: mtn-0 = (%v, %v, %v)", tt.identity, first.X, first.Y, first.Scale)
		}
	}
}

func TestGenerateOrderingAndRanges(t *testing.T) {
	s := Generate("guest")

	for i := 1; i < len(s.Elements); i++ {
		if s.Elements[i-1].Z > s.Elements[i].Z {
			t.Fatalf("elements not sorted by Z at %d", i)
		}
	}

	for _, e := range s.Elements {
		switch e.Kind {
		case KindRock, KindGrass:
			if e.Y < 35 || e.Y >= 80 || e.X < 5 || e.X >= 95 {
				t.Errorf("%s out of field: (%v, %v)", e.ID, e.X, e.Y)
			}
			if e.Z != int(math.Floor(e.Y)) {
				t.Errorf("%s: Z = %d, expected floor(y)", e.ID, e.Z)
			}
		case KindHorizonGrass:
			if e.Y != HorizonY {
				t.Errorf("%s: Y = %v, expected horizon", e.ID, e.Y)
			}
		}
		if e.Variant < 0 || e.Variant >= e.Kind.Variants() {
			t.Errorf("%s: variant %d out of range", e.ID, e.Variant)
		}
	}

	for _, d := range s.Foreground.Decorations {
		if d.Kind == KindBush && (d.Rotation < -5 || d.Rotation >= 5) {
			t.Errorf("%s: rotation %v out of range", d.ID, d.Rotation)
		}
	}

	if s.Sky != SkyDayGradient || s.Foreground.BaseColor != ForegroundBaseColor || len(s.Clouds) == 0 {
		t.Errorf("unexpected scene chrome: %q %q %v", s.Sky, s.Foreground.BaseColor, s.Clouds)
	}
}

func TestCollisionAvoidance(t *testing.T) {
	p := Params{MinSpacing: 4, Attempts: 10}
	a := GenerateWithParams("guest", p)
	b := GenerateWithParams("guest", p)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("spacing generation is not deterministic")
	}

	// Counts are drawn before placement, so spacing can't drop elements.
	field, _ := countKinds(a)
	if field[KindTree] < 15 || field[KindTree] >= 25 {
		t.Errorf("tree count %d out of range", field[KindTree])
	}

	// Impossible spacing still terminates and keeps every element.
	crowdedScene := GenerateWithParams("guest", Params{MinSpacing: 1000, Attempts: 10})
	if len(crowdedScene.Elements) == 0 {
		t.Error("expected elements even when no slot satisfies spacing")
	}
}

func TestSpacingZeroMatchesReference(t *testing.T) {
	a := Generate("guest")
	b := GenerateWithParams("guest", Params{MinSpacing: 0, Attempts: 10})
	if !reflect.DeepEqual(a, b) {
		t.Error("zero spacing should reproduce the reference layout")
	}
}

func TestKindText(t *testing.T) {
	data, err := json.Marshal(Element{Kind: KindHorizonGrass})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["kind"] != "horizon-grass" {
		t.Errorf("kind = %v, expected horizon-grass", m["kind"])
	}
}
