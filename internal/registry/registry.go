// Package registry keeps the castle modes that can be played.
// The stacker package registers the classic and zen modes from init; the
// menu, the scoreboard and the CLI find them here by ID.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/vovakirdan/tui-castle/internal/core"
)

// ErrUnknownMode is returned by Create for an ID nobody registered.
var ErrUnknownMode = errors.New("registry: unknown mode")

// Game is a tick-driven castle mode. Implementations hold no terminal
// state; the platform owns input mapping, timing and output.
type Game interface {
	// ID is the mode key used by the CLI and by stored scores and runs.
	ID() string
	Title() string

	// Reset starts a fresh castle for the given screen and seed.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws into a pre-cleared screen.
	Render(dst *core.Screen)

	State() core.GameState
}

// GameInfo describes a registered mode.
type GameInfo struct {
	ID    string
	Title string
}

// Factory builds a fresh instance of a mode.
type Factory func() Game

type mode struct {
	info  GameInfo
	build Factory
}

var (
	mu    sync.RWMutex
	modes = map[string]mode{}
)

// Register adds a mode. The title is read once from a throwaway instance.
// It panics when id is taken.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, taken := modes[id]; taken {
		panic(fmt.Sprintf("registry: mode %q already registered", id))
	}
	modes[id] = mode{info: GameInfo{ID: id, Title: f().Title()}, build: f}
}

// List returns every registered mode ordered by ID, so the classic castle
// comes before its variants.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]GameInfo, 0, len(modes))
	for _, m := range modes {
		out = append(out, m.info)
	}
	slices.SortFunc(out, func(a, b GameInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Lookup returns the description of a mode without building it.
func Lookup(id string) (GameInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	m, ok := modes[id]
	return m.info, ok
}

// Create builds a new instance of the mode registered under id.
func Create(id string) (Game, error) {
	mu.RLock()
	m, ok := modes[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, id)
	}
	return m.build(), nil
}

// Exists reports whether id is registered.
func Exists(id string) bool {
	_, ok := Lookup(id)
	return ok
}
