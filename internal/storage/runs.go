package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-castle/internal/games/stacker"
)

// RunRecord is one finished castle run.
type RunRecord struct {
	ID           int64
	RunID        string // UUID, generated on save when empty
	GameID       string
	Preset       string
	Seed         int64
	Score        int
	Height       int
	PartsPlaced  int
	PerfectCount int
	WrongCount   int
	BestCombo    int
	Collapses    int
	Outcome      string
	Duration     time.Duration
	CreatedAt    time.Time
}

const runColumns = `id, run_id, game_id, preset, seed, score, height, parts_placed,
	perfect_count, wrong_count, best_combo, collapses, outcome, duration_ms, created_at`

// SaveRun records a finished run and mirrors its score into the scores
// table. Returns the run's UUID.
func (s *Store) SaveRun(r RunRecord) (string, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO castle_runs
		 (run_id, game_id, preset, seed, score, height, parts_placed,
		  perfect_count, wrong_count, best_combo, collapses, outcome, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.GameID, r.Preset, r.Seed, r.Score, r.Height, r.PartsPlaced,
		r.PerfectCount, r.WrongCount, r.BestCombo, r.Collapses, r.Outcome,
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO scores (game_id, score) VALUES (?, ?)", r.GameID, r.Score); err != nil {
		return "", fmt.Errorf("storage: cannot save score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return r.RunID, nil
}

// SaveSummary stores the summary of a finished game.
func (s *Store) SaveSummary(sum stacker.Summary, preset string, seed int64) (string, error) {
	return s.SaveRun(RunRecord{
		GameID:       sum.GameID,
		Preset:       preset,
		Seed:         seed,
		Score:        sum.Score,
		Height:       sum.HeightReached,
		PartsPlaced:  sum.PartsPlaced,
		PerfectCount: sum.PerfectCount,
		WrongCount:   sum.WrongCount,
		BestCombo:    sum.BestCombo,
		Collapses:    sum.Collapses,
		Outcome:      string(sum.Outcome),
		Duration:     sum.SimulatedTime,
	})
}

// RecentRuns returns the latest runs of a game, newest first.
// An empty gameID matches every game.
func (s *Store) RecentRuns(gameID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT `+runColumns+`
		 FROM castle_runs
		 WHERE ? = '' OR game_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		gameID, gameID, limit,
	)
}

// TopRuns returns the highest scoring runs of a game.
func (s *Store) TopRuns(gameID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(
		`SELECT `+runColumns+`
		 FROM castle_runs
		 WHERE game_id = ?
		 ORDER BY score DESC, height DESC, id ASC
		 LIMIT ?`,
		gameID, limit,
	)
}

// BestRun returns the run with the tallest castle, ties broken by score.
// Returns nil if the game has no runs.
func (s *Store) BestRun(gameID string) (*RunRecord, error) {
	runs, err := s.queryRuns(
		`SELECT `+runColumns+`
		 FROM castle_runs
		 WHERE game_id = ?
		 ORDER BY height DESC, score DESC, id ASC
		 LIMIT 1`,
		gameID,
	)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// RunByID retrieves a run by its UUID. Returns nil if it does not exist.
func (s *Store) RunByID(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM castle_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

func (s *Store) queryRuns(query string, args ...any) ([]RunRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var r RunRecord
	var durationMS int64
	var createdAt any
	err := row.Scan(
		&r.ID,
		&r.RunID,
		&r.GameID,
		&r.Preset,
		&r.Seed,
		&r.Score,
		&r.Height,
		&r.PartsPlaced,
		&r.PerfectCount,
		&r.WrongCount,
		&r.BestCombo,
		&r.Collapses,
		&r.Outcome,
		&durationMS,
		&createdAt,
	)
	if err != nil {
		return RunRecord{}, err
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}
