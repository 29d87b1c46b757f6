package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/tui-castle/internal/core"
)

func TestRenderScreenText(t *testing.T) {
	scr := core.NewScreen(10, 3)
	scr.DrawTextColored(0, 0, "Score", core.ColorWhite)
	scr.SetColored(2, 1, '█', core.ColorGray)
	scr.SetColored(3, 1, '▓', core.ColorOrange)

	out := ansi.Strip(RenderScreen(scr))
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("RenderScreen() produced %d lines, expected 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Score") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if []rune(lines[1])[2] != '█' || []rune(lines[1])[3] != '▓' {
		t.Errorf("line 1 = %q", lines[1])
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 10 {
			t.Errorf("line %d has %d cells, expected 10", i, n)
		}
	}
}

func TestStyleForUnknownColor(t *testing.T) {
	if StyleFor(core.Color(250)).Render("x") != "x" {
		t.Error("unknown colors should render unstyled")
	}
	if StyleFor(core.ColorDefault).Render("x") != "x" {
		t.Error("default color should render unstyled")
	}
}
