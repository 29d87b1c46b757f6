package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-castle/internal/games/stacker"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save some scores
	_, err = store.SaveScore("castle", 100)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	_, err = store.SaveScore("castle", 50)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	_, err = store.SaveScore("castle", 200)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	// Different game
	_, err = store.SaveScore("castle_zen", 500)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	// Retrieve top scores for classic
	scores, err := store.TopScores("castle", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	if scores[0].Score != 200 {
		t.Errorf("Expected highest score to be 200, got %d", scores[0].Score)
	}
	if scores[1].Score != 100 {
		t.Errorf("Expected second score to be 100, got %d", scores[1].Score)
	}
	if scores[2].Score != 50 {
		t.Errorf("Expected third score to be 50, got %d", scores[2].Score)
	}

	// Retrieve top scores for zen
	zenScores, err := store.TopScores("castle_zen", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(zenScores) != 1 {
		t.Errorf("Expected 1 zen score, got %d", len(zenScores))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save 5 scores
	for i := 0; i < 5; i++ {
		store.SaveScore("test", (i+1)*100)
	}

	// Request only top 3
	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores with limit, got %d", len(scores))
	}

	// Should be 500, 400, 300 (top 3)
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// No scores yet
	high, err := store.HighScore("castle")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	// Add scores
	store.SaveScore("castle", 100)
	store.SaveScore("castle", 300)
	store.SaveScore("castle", 200)

	high, err = store.HighScore("castle")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveScore("castle", 100)
	store.SaveScore("castle", 200)
	store.SaveScore("castle_zen", 300)

	// Clear only classic scores
	err = store.ClearScores("castle")
	if err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	// Classic should be empty
	classicScores, _ := store.TopScores("castle", 10)
	if len(classicScores) != 0 {
		t.Errorf("Expected 0 classic scores after clear, got %d", len(classicScores))
	}

	// Zen should still have scores
	zenScores, _ := store.TopScores("castle_zen", 10)
	if len(zenScores) != 1 {
		t.Errorf("Zen scores should not be affected by clearing classic")
	}
}

func TestStoreAllScores(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Add many scores
	for i := 0; i < 20; i++ {
		store.SaveScore("test", i*10)
	}

	scores, err := store.AllScores("test")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}

	if len(scores) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(scores))
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	// Test that ~ expansion works (we won't actually write to home)
	// Just verify the function doesn't crash
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSaveRun(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.SaveRun(RunRecord{
		GameID:      "castle",
		Preset:      "hard",
		Seed:        42,
		Score:       640,
		Height:      6,
		PartsPlaced: 7,
		Outcome:     "complete",
		Duration:    95 * time.Second,
	})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("SaveRun() returned %q, expected a UUID: %v", runID, err)
	}

	got, err := store.RunByID(runID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() = nil")
	}
	if got.Height != 6 || got.Score != 640 || got.Preset != "hard" || got.Seed != 42 {
		t.Errorf("RunByID() = %+v", got)
	}
	if got.Duration != 95*time.Second {
		t.Errorf("Duration = %v, expected 1m35s", got.Duration)
	}

	// The score is mirrored into the scores table.
	high, err := store.HighScore("castle")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 640 {
		t.Errorf("HighScore() = %d, expected 640", high)
	}
}

func TestStoreRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.RunByID(uuid.NewString())
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("RunByID() = %+v, expected nil", got)
	}
}

func TestStoreBestRun(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestRun("castle")
	if err != nil {
		t.Fatalf("BestRun() failed: %v", err)
	}
	if best != nil {
		t.Errorf("BestRun() on empty store = %+v, expected nil", best)
	}

	runs := []RunRecord{
		{GameID: "castle", Score: 900, Height: 3, Outcome: "collapse"},
		{GameID: "castle", Score: 400, Height: 5, Outcome: "collapse"},
		{GameID: "castle", Score: 700, Height: 5, Outcome: "deadlock"},
		{GameID: "castle_zen", Score: 5000, Height: 6, Outcome: "complete"},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	best, err = store.BestRun("castle")
	if err != nil {
		t.Fatalf("BestRun() failed: %v", err)
	}
	if best == nil || best.Height != 5 || best.Score != 700 {
		t.Errorf("BestRun() = %+v, expected height 5 score 700", best)
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.SaveRun(RunRecord{GameID: "castle", Score: i, Outcome: "collapse"}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	if _, err := store.SaveRun(RunRecord{GameID: "castle_zen", Score: 99, Outcome: "deadlock"}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	runs, err := store.RecentRuns("castle", 3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("RecentRuns() returned %d runs, expected 3", len(runs))
	}
	// Newest first.
	if runs[0].Score != 4 || runs[2].Score != 2 {
		t.Errorf("RecentRuns() order = %d,%d,%d", runs[0].Score, runs[1].Score, runs[2].Score)
	}

	all, err := store.RecentRuns("", 100)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("RecentRuns(\"\") returned %d runs, expected 6", len(all))
	}
}

func TestStoreTopRuns(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{300, 100, 500, 200} {
		if _, err := store.SaveRun(RunRecord{GameID: "castle", Score: score, Outcome: "collapse"}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	runs, err := store.TopRuns("castle", 2)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].Score != 500 || runs[1].Score != 300 {
		t.Errorf("TopRuns() = %+v, expected scores 500, 300", runs)
	}
}

func TestStoreSaveRunDuplicateID(t *testing.T) {
	store := openTestStore(t)

	id := uuid.NewString()
	if _, err := store.SaveRun(RunRecord{RunID: id, GameID: "castle", Score: 10, Outcome: "collapse"}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := store.SaveRun(RunRecord{RunID: id, GameID: "castle", Score: 20, Outcome: "collapse"}); err == nil {
		t.Error("SaveRun() with a duplicate run ID should fail")
	}

	// The failed insert must not leave a score behind.
	scores, err := store.AllScores("castle")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 1 {
		t.Errorf("AllScores() returned %d scores, expected 1", len(scores))
	}
}

func TestStoreSaveSummary(t *testing.T) {
	store := openTestStore(t)

	sum := stacker.Summary{
		GameID:        "castle",
		Score:         321,
		HeightReached: 4,
		PartsPlaced:   9,
		PerfectCount:  2,
		WrongCount:    1,
		BestCombo:     5,
		Outcome:       stacker.OutcomeCollapse,
		SimulatedTime: 2 * time.Minute,
	}
	runID, err := store.SaveSummary(sum, "normal", 7)
	if err != nil {
		t.Fatalf("SaveSummary() failed: %v", err)
	}

	got, err := store.RunByID(runID)
	if err != nil || got == nil {
		t.Fatalf("RunByID() = %v, %v", got, err)
	}
	if got.Outcome != "collapse" || got.Height != 4 || got.WrongCount != 1 || got.BestCombo != 5 {
		t.Errorf("RunByID() = %+v", got)
	}
}

func TestStoreClearScoresRemovesRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{GameID: "castle", Score: 10, Outcome: "collapse"})
	if err := store.ClearScores("castle"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	runs, _ := store.RecentRuns("castle", 10)
	if len(runs) != 0 {
		t.Errorf("expected no runs after clear, got %d", len(runs))
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{100, 200, 300} {
		if _, err := store.SaveScore("castle", s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("castle_zen", 40); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	stats, err := store.GetGameStats("castle")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 3 || stats.HighScore != 300 || stats.TotalScore != 600 {
		t.Errorf("GetGameStats() = %+v, expected 3 games, high 300, total 600", stats)
	}
	if stats.AvgScore != 200 {
		t.Errorf("AvgScore = %v, expected 200", stats.AvgScore)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	empty, err := store.GetGameStats("nothing")
	if err != nil {
		t.Fatalf("GetGameStats() of an unplayed game failed: %v", err)
	}
	if empty.GamesCount != 0 || empty.HighScore != 0 {
		t.Errorf("GetGameStats() of an unplayed game = %+v", empty)
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAllGamesStats() returned %d games, expected 2", len(all))
	}
	if all["castle_zen"].HighScore != 40 {
		t.Errorf("castle_zen HighScore = %d, expected 40", all["castle_zen"].HighScore)
	}
}
