// Package store persists analysis positions and imported libraries.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jaminalder/codex-renju/internal/board"
)

var ErrNotFound = errors.New("not found")

// Position is a board under analysis.
type Position struct {
	ID      string
	Grid    *board.Grid
	ToMove  board.Stone
	Moves   []board.Point
	Created time.Time
	Updated time.Time
}

// Clone returns a copy that shares nothing with p.
func (p Position) Clone() Position {
	cp := p
	if p.Grid != nil {
		cp.Grid = p.Grid.Clone()
	}
	cp.Moves = append([]board.Point(nil), p.Moves...)
	return cp
}

// Library is an imported RenLib file. Data holds the raw bytes.
type Library struct {
	ID      string
	Name    string
	Data    []byte
	Nodes   int
	Created time.Time
}

// Store is implemented by Memory and SQLite.
type Store interface {
	SavePosition(ctx context.Context, p Position) error
	LoadPosition(ctx context.Context, id string) (Position, error)
	DeletePosition(ctx context.Context, id string) error
	// ListPositions returns every position, oldest first.
	ListPositions(ctx context.Context) ([]Position, error)

	SaveLibrary(ctx context.Context, l Library) error
	LoadLibrary(ctx context.Context, id string) (Library, error)
	// ListLibraries returns every library without its data, oldest first.
	ListLibraries(ctx context.Context) ([]Library, error)

	Close() error
}
