package tui

import (
	"github.com/vovakirdan/sheepfold/internal/core"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

type sprite struct {
	lines []string
	color core.Color
}

func (s sprite) width() int {
	w := 0
	for _, l := range s.lines {
		w = max(w, len([]rune(l)))
	}
	return w
}

// kindSprites holds one sprite per scene variant, indexed by Kind.
var kindSprites = map[scene.Kind][]sprite{
	scene.KindMountain: {
		{lines: []string{
			"      /\\      ",
			"     /**\\     ",
			"    /    \\    ",
			"   /      \\   ",
			"  /        \\  ",
			" /          \\ ",
		}, color: core.ColorMountain},
	},
	scene.KindTree: {
		{lines: []string{" ^ ", "/^\\", " | "}, color: core.ColorLeaf},
		{lines: []string{" @ ", "@@@", " | "}, color: core.ColorLeaf},
		{lines: []string{" A ", "/A\\", "/A\\", " | "}, color: core.ColorLeaf},
	},
	scene.KindHorizonGrass: {
		{lines: []string{"wWwvwWwwvWwWvwwWwvwW"}, color: core.ColorHorizon},
	},
	scene.KindRock: {
		{lines: []string{" __ ", "(__)"}, color: core.ColorRock},
		{lines: []string{"_/\\_"}, color: core.ColorRock},
	},
	scene.KindGrass: {
		{lines: []string{"\\|/"}, color: core.ColorGrass},
		{lines: []string{"vV"}, color: core.ColorGrass},
		{lines: []string{",|,"}, color: core.ColorGrass},
	},
	scene.KindBush: {
		{lines: []string{" .oOo. ", "oOOOOOo"}, color: core.ColorBush},
		{lines: []string{" ooo ", "ooOoo"}, color: core.ColorBush},
	},
}

// spriteFor returns the sprite for an element, falling back to variant 0.
func spriteFor(e scene.Element) sprite {
	set := kindSprites[e.Kind]
	if len(set) == 0 {
		return sprite{lines: []string{"?"}, color: core.ColorText}
	}
	if e.Variant < 0 || e.Variant >= len(set) {
		return set[0]
	}
	return set[e.Variant]
}

var cloudSprites = map[string][]string{
	"cloud-small": {" .--. ", "(____)"},
	"cloud-wide":  {"  .---.__  ", "(_________)"},
	"cloud-puff":  {" .-. .-. ", "(___(___)"},
}

var stageSprites = map[flock.Stage][]string{
	flock.StageLamb:     {" @@o", " ''"},
	flock.StageFaithful: {"@@@@o", " '' '"},
	flock.StageGolden:   {"*@@@@o", " '' ''"},
}

var deadSprite = []string{" + ", "~~~"}

// sheepSprite picks the sheep drawing by stage and status.
func sheepSprite(s flock.Sheep) sprite {
	if s.Status == flock.StatusDead {
		return sprite{lines: deadSprite, color: core.ColorDead}
	}
	lines, ok := stageSprites[s.Stage]
	if !ok {
		lines = stageSprites[flock.BaseStage]
	}
	color := core.ColorSheep
	switch {
	case s.Status == flock.StatusSick || s.Status == flock.StatusInjured:
		color = core.ColorSick
	case s.Stage == flock.StageGolden:
		color = core.ColorGold
	}
	return sprite{lines: lines, color: color}
}
