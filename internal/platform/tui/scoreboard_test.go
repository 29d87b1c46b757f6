package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/tui-castle/internal/games/stacker"
	"github.com/vovakirdan/tui-castle/internal/storage"
)

func scoreboardStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	runs := []storage.RunRecord{
		{GameID: stacker.IDClassic, Score: 300, Height: 4, Outcome: "collapse"},
		{GameID: stacker.IDClassic, Score: 100, Height: 2, Outcome: "deadlock"},
		{GameID: stacker.IDZen, Score: 50, Height: 1, Outcome: "complete"},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	return store
}

func TestScoreboardOrders(t *testing.T) {
	m := NewScoreboardModel(scoreboardStore(t), 100, 30)
	if m.ModeID() != stacker.IDClassic {
		t.Fatalf("ModeID() = %q, expected %q", m.ModeID(), stacker.IDClassic)
	}
	if len(m.Runs()) != 2 || m.Runs()[0].Score != 300 {
		t.Fatalf("best runs = %+v, expected 300 first", m.Runs())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	m = next.(ScoreboardModel)
	if m.Order() != OrderRecent {
		t.Fatalf("Order() = %v, expected recent", m.Order())
	}
	if m.Runs()[0].Score != 100 {
		t.Errorf("recent first score = %d, expected 100", m.Runs()[0].Score)
	}
	if !strings.Contains(ansi.Strip(m.View()), "RECENT CASTLES") {
		t.Error("View() should show the recent title")
	}
}

func TestScoreboardModeSwitch(t *testing.T) {
	m := NewScoreboardModel(scoreboardStore(t), 100, 30)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.ModeID() != stacker.IDZen {
		t.Fatalf("ModeID() after tab = %q, expected %q", m.ModeID(), stacker.IDZen)
	}
	if len(m.Runs()) != 1 || m.Runs()[0].Outcome != "complete" {
		t.Errorf("zen runs = %+v", m.Runs())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(ScoreboardModel)
	if m.ModeID() != stacker.IDClassic {
		t.Errorf("ModeID() after left = %q, expected %q", m.ModeID(), stacker.IDClassic)
	}
}

func TestScoreboardView(t *testing.T) {
	wide := ansi.Strip(NewScoreboardModel(scoreboardStore(t), 120, 30).View())
	for _, want := range []string{"BEST CASTLES", "Best combo", "Outcome"} {
		if !strings.Contains(wide, want) {
			t.Errorf("wide View() missing %q", want)
		}
	}

	narrow := ansi.Strip(NewScoreboardModel(scoreboardStore(t), 60, 30).View())
	if strings.Contains(narrow, "Best combo") {
		t.Error("narrow View() should hide the run detail panel")
	}

	empty := ansi.Strip(NewScoreboardModel(nil, 100, 30).View())
	if !strings.Contains(empty, "No castles built yet") {
		t.Error("View() without runs should show the empty message")
	}
}

func TestScoreboardBackAndQuit(t *testing.T) {
	m := NewScoreboardModel(nil, 80, 24)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(ScoreboardModel).IsGoingBack() {
		t.Error("Esc should go back")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !next.(ScoreboardModel).IsQuitting() {
		t.Error("q should quit")
	}
}
