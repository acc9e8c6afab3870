package tui

import (
	"github.com/vovakirdan/sheepfold/internal/core"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

// foregroundShare is the part of the view height taken by the foreground strip.
const foregroundShare = 0.2

// drawScene paints the landscape and the flock onto scr. frame drives the
// cloud drift; selected is the id of the sheep under the cursor.
func drawScene(scr *core.Screen, sc scene.Scene, sheep []flock.Sheep, selected string, frame int) {
	w, h := scr.Width(), scr.Height()
	if w == 0 || h == 0 {
		return
	}
	scr.Clear()

	fgRows := max(2, int(float64(h)*foregroundShare))
	field := core.Viewport{W: w, H: max(h-fgRows, 1)}
	strip := core.Viewport{Y: field.H, W: w, H: h - field.H}

	horizon := field.Row(scene.HorizonY)
	for y := 0; y < field.H; y++ {
		switch {
		case y < horizon/3:
			scr.PaintRow(y, core.ColorSkyHigh)
		case y < 2*horizon/3:
			scr.PaintRow(y, core.ColorSkyMid)
		case y < horizon:
			scr.PaintRow(y, core.ColorSkyLow)
		default:
			scr.PaintRow(y, core.ColorField)
		}
	}
	for y := strip.Y; y < h; y++ {
		scr.PaintRow(y, core.ColorForeground)
	}

	drawClouds(scr, sc.Clouds, horizon, frame)
	for _, e := range sc.Elements {
		drawElement(scr, field, e)
	}
	for _, s := range sheep {
		drawSheep(scr, field, s)
	}
	for _, e := range sc.Foreground.Decorations {
		drawElement(scr, strip, e)
	}
	for _, s := range sheep {
		if s.ID == selected {
			drawLabel(scr, field, s)
		}
	}
}

// drawElement draws one scene element. Backdrop sprites hang from their
// anchor and field sprites stand on it.
func drawElement(scr *core.Screen, vp core.Viewport, e scene.Element) {
	sp := spriteFor(e)
	lines := sp.lines
	col, row := vp.Col(e.X), vp.Row(e.Y)

	switch e.Kind {
	case scene.KindMountain:
		n := core.Clamp(int(e.Scale*float64(vp.H)/10), 2, len(lines))
		lines = lines[:n]
	case scene.KindTree, scene.KindHorizonGrass:
		// Hang from the anchor.
	default:
		row -= len(lines) - 1
	}

	x := col - sp.width()/2
	if e.Kind == scene.KindHorizonGrass {
		x = col
	}
	scr.DrawSprite(x, row, lines, sp.color)
}

// sheepSpot places a sheep in the open field from its id.
func sheepSpot(id string) (x, y float64) {
	r := scene.NewRandom(id)
	return r.Range(10, 85), r.Range(45, 85)
}

func drawSheep(scr *core.Screen, vp core.Viewport, s flock.Sheep) {
	sp := sheepSprite(s)
	px, py := sheepSpot(s.ID)
	col, row := vp.Col(px), vp.Row(py)
	scr.DrawSprite(col-sp.width()/2, row-len(sp.lines)+1, sp.lines, sp.color)
}

// drawLabel marks a sheep and writes its name under it.
func drawLabel(scr *core.Screen, vp core.Viewport, s flock.Sheep) {
	sp := sheepSprite(s)
	px, py := sheepSpot(s.ID)
	col, row := vp.Col(px), vp.Row(py)
	scr.Set(col, row-len(sp.lines), 'v', core.ColorGold)
	scr.DrawText(col-len([]rune(s.Name))/2, row+1, s.Name, core.ColorText)
}

func drawClouds(scr *core.Screen, clouds []string, horizon, frame int) {
	if len(clouds) == 0 || horizon < 3 {
		return
	}
	w := scr.Width()
	for i, name := range clouds {
		lines, ok := cloudSprites[name]
		if !ok {
			continue
		}
		cw := len([]rune(lines[len(lines)-1]))
		span := w + cw
		// Each cloud drifts at its own pace.
		x := (i*w/len(clouds)+frame/(2+i))%span - cw
		y := (i * (horizon - 2)) / len(clouds)
		scr.DrawSprite(x, y, lines, core.ColorCloud)
	}
}

// SceneText draws sc without any sheep as plain text.
func SceneText(sc scene.Scene, width, height int) string {
	scr := core.NewScreen(width, height)
	drawScene(scr, sc, nil, "", 0)
	return scr.String()
}

// SceneANSI draws sc without any sheep using terminal colors.
func SceneANSI(sc scene.Scene, width, height int) string {
	scr := core.NewScreen(width, height)
	drawScene(scr, sc, nil, "", 0)
	return RenderScreen(scr)
}
