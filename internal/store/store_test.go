package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaminalder/codex-renju/internal/board"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "renju.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]Store{"memory": NewMemory(), "sqlite": db}
}

func samplePosition(t *testing.T, id string, created time.Time) Position {
	t.Helper()
	g, err := board.New(board.DefaultSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	moves := []board.Point{board.Pt(7, 7), board.Pt(8, 8)}
	if err := g.Place(moves[0], board.Black); err != nil {
		t.Fatal(err)
	}
	if err := g.Place(moves[1], board.White); err != nil {
		t.Fatal(err)
	}
	return Position{ID: id, Grid: g, ToMove: board.Black, Moves: moves, Created: created, Updated: created}
}

func TestPositionLifecycle(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p := samplePosition(t, "p1", base)
			if err := s.SavePosition(ctx, p); err != nil {
				t.Fatalf("SavePosition: %v", err)
			}
			// Stored copies are independent of the caller's grid.
			p.Grid.Set(board.Pt(0, 0), board.Black)

			got, err := s.LoadPosition(ctx, "p1")
			if err != nil {
				t.Fatalf("LoadPosition: %v", err)
			}
			if got.Grid.At(board.Pt(0, 0)) != board.Empty {
				t.Fatalf("store shares the grid with the caller")
			}
			if got.Grid.At(board.Pt(7, 7)) != board.Black || got.Grid.At(board.Pt(8, 8)) != board.White {
				t.Fatalf("stones lost:\n%s", got.Grid)
			}
			if got.ToMove != board.Black || len(got.Moves) != 2 || got.Moves[1] != board.Pt(8, 8) {
				t.Fatalf("unexpected position %+v", got)
			}
			if !got.Created.Equal(base) {
				t.Fatalf("created = %v, want %v", got.Created, base)
			}

			got.ToMove = board.White
			got.Updated = base.Add(time.Minute)
			if err := s.SavePosition(ctx, got); err != nil {
				t.Fatalf("SavePosition update: %v", err)
			}
			if err := s.SavePosition(ctx, samplePosition(t, "p2", base.Add(time.Second))); err != nil {
				t.Fatal(err)
			}
			list, err := s.ListPositions(ctx)
			if err != nil {
				t.Fatalf("ListPositions: %v", err)
			}
			if len(list) != 2 || list[0].ID != "p1" || list[1].ID != "p2" || list[0].ToMove != board.White {
				t.Fatalf("unexpected list %+v", list)
			}

			if err := s.DeletePosition(ctx, "p1"); err != nil {
				t.Fatalf("DeletePosition: %v", err)
			}
			if _, err := s.LoadPosition(ctx, "p1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.DeletePosition(ctx, "p1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestLibraries(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.LoadLibrary(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			data := []byte{0xFF, 'R', 'e', 'n', 'L', 'i', 'b', 0xFF}
			for i, id := range []string{"a", "b"} {
				l := Library{ID: id, Name: "lib-" + id, Data: data, Nodes: i + 1, Created: base.Add(time.Duration(i) * time.Second)}
				if err := s.SaveLibrary(ctx, l); err != nil {
					t.Fatalf("SaveLibrary: %v", err)
				}
			}
			l, err := s.LoadLibrary(ctx, "b")
			if err != nil {
				t.Fatalf("LoadLibrary: %v", err)
			}
			if l.Name != "lib-b" || l.Nodes != 2 || string(l.Data) != string(data) {
				t.Fatalf("unexpected library %+v", l)
			}
			list, err := s.ListLibraries(ctx)
			if err != nil {
				t.Fatalf("ListLibraries: %v", err)
			}
			if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" || list[0].Data != nil {
				t.Fatalf("unexpected list %+v", list)
			}
		})
	}
}

func TestMoveEncoding(t *testing.T) {
	moves := []board.Point{board.Pt(0, 14), board.Pt(7, 7)}
	got, err := decodeMoves(encodeMoves(moves))
	if err != nil {
		t.Fatalf("decodeMoves: %v", err)
	}
	if len(got) != 2 || got[0] != moves[0] || got[1] != moves[1] {
		t.Fatalf("got %v, want %v", got, moves)
	}
	if _, err := decodeMoves("7;7"); err == nil {
		t.Fatalf("expected an error for a malformed move")
	}
}
