package stacker

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-castle/internal/castle"
	"github.com/vovakirdan/tui-castle/internal/core"
)

// Visual characters for rendering
const (
	GroundChar  = '▀'
	RailChar    = '═'
	HookChar    = '▼'
	InvalidChar = '×'
)

// ColorByName maps a configuration color name to a screen color.
func ColorByName(name string) core.Color {
	switch strings.ToLower(name) {
	case "red":
		return core.ColorRed
	case "green":
		return core.ColorGreen
	case "yellow":
		return core.ColorYellow
	case "blue":
		return core.ColorBlue
	case "magenta":
		return core.ColorMagenta
	case "cyan":
		return core.ColorCyan
	case "white":
		return core.ColorWhite
	case "orange":
		return core.ColorOrange
	case "gray", "grey":
		return core.ColorGray
	default:
		return core.ColorDefault
	}
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.screenTooSmall {
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("Screen too small (need %dx%d)", MinScreenW, MinScreenH), core.ColorBrightRed)
		return
	}

	g.drawHUD(dst)
	g.drawCrane(dst)

	dst.DrawHLine(0, g.groundY, dst.Width(), GroundChar, core.ColorGray)
	for _, b := range g.world.Bodies() {
		g.drawBody(dst, b)
	}

	if g.message != "" && g.tickCount < g.messageUntil {
		dst.DrawTextCentered(g.cfg.Crane.Row+4, g.message, g.messageColor)
	}

	if g.paused {
		g.drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}

	if g.gameOver {
		title := "GAME OVER"
		switch g.outcome {
		case OutcomeComplete:
			title = "CASTLE COMPLETE"
		case OutcomeCollapse:
			title = "THE CASTLE COLLAPSED"
		case OutcomeDeadlock:
			title = "NO LEGAL MOVE"
		}
		g.drawCenteredMessage(dst, title, fmt.Sprintf("Score: %d  |  Press R to restart", g.State().Score))
	}
}

func (g *Game) drawHUD(dst *core.Screen) {
	score := g.engine.Score()
	name := "-"
	if g.selected > 0 {
		name = fmt.Sprintf("L%d %s", g.selected, g.cfg.PartFor(g.selected).Name)
	}
	hud := fmt.Sprintf(" Score: %d  Combo: x%.2f  Next: %s ", score.Score, g.engine.ComboFactor(), name)
	dst.DrawTextColored(1, 0, hud, core.ColorWhite)

	// Per-level fill: eligible levels green, full levels gray.
	agg := g.engine.Aggregate()
	eligible := g.engine.Eligible()
	caps := g.engine.Params().Capacity
	x := 2
	for l := castle.MinLevel; l <= castle.MaxLevel; l++ {
		text := fmt.Sprintf("L%d %d/%d", l, agg.Count(l), caps.Of(l))
		c := core.ColorDefault
		switch {
		case eligible.Contains(l):
			c = core.ColorGreen
		case agg.Count(l) >= caps.Of(l):
			c = core.ColorGray
		}
		dst.DrawTextColored(x, 1, text, c)
		x += len(text) + 2
	}
}

func (g *Game) drawCrane(dst *core.Screen) {
	row := g.cfg.Crane.Row
	dst.DrawHLine(0, row-1, dst.Width(), RailChar, core.ColorGray)

	cx := int(g.craneX)
	dst.SetColored(cx, row, HookChar, core.ColorCyan)

	// Ghost of the carried part while nothing is falling.
	if g.selected == 0 || len(g.inFlight) > 0 {
		return
	}
	def := g.cfg.PartFor(g.selected)
	ghost := core.Box{
		Center: core.V(g.craneX, float64(row+1)+def.Height/2),
		HalfW:  def.Width / 2,
		HalfH:  def.Height / 2,
	}
	dst.DrawRect(ghost.Cells(), def.GlyphRune(), ColorByName(def.Color))
}

func (g *Game) drawBody(dst *core.Screen, b *Body) {
	glyph := b.Def.GlyphRune()
	color := ColorByName(b.Def.Color)

	if rec, ok := g.engine.Part(b.ID); ok {
		switch {
		case rec.Placed && !rec.PlacedOnValidTarget:
			glyph, color = InvalidChar, core.ColorBrightRed
		case rec.Stability == castle.Unstable && rec.Placed:
			color = core.ColorRed
		case rec.Stability == castle.Warning && rec.Placed:
			color = core.ColorBrightYellow
		}
	}
	dst.DrawRect(b.Box.Cells(), glyph, color)
}

// drawCenteredMessage draws a message box in the center of the screen.
func (g *Game) drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	// Calculate box dimensions
	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	// Draw box
	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorWhite)

	// Draw text
	dst.DrawTextColored(boxX+(boxW-len([]rune(title)))/2, boxY+1, title, core.ColorBrightYellow)
	dst.DrawText(boxX+(boxW-len([]rune(subtitle)))/2, boxY+3, subtitle)
}
