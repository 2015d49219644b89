package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jaminalder/codex-renju/internal/board"
	"github.com/jaminalder/codex-renju/internal/config"
	"github.com/jaminalder/codex-renju/internal/renlib"
	"github.com/jaminalder/codex-renju/internal/store"
)

// minimal renderer for tests: encode the move count
func testRenderer(p store.Position) []byte { return []byte(fmt.Sprintf("moves=%d", len(p.Moves))) }

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(store.NewMemory(), config.NewStore(config.DefaultConfig()), nil)
	s.SetRenderer(testRenderer)
	return s
}

func pt(t *testing.T, n string) board.Point {
	t.Helper()
	p, err := board.ParsePoint(n, board.DefaultSize)
	if err != nil {
		t.Fatalf("ParsePoint(%q): %v", n, err)
	}
	return p
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p, err := s.CreatePosition(ctx, board.DefaultSize)
	if err != nil {
		t.Fatalf("CreatePosition error: %v", err)
	}
	if p.ID == "" || p.ToMove != board.Black || p.Grid.Size() != board.DefaultSize {
		t.Fatalf("unexpected position %+v", p)
	}
	if p.Created.IsZero() || p.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, err := s.Get(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("Get should find created position, err=%v", err)
	}
	if _, err := s.CreatePosition(ctx, 3); !errors.Is(err, board.ErrSize) {
		t.Fatalf("expected ErrSize, got %v", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayAlternatesAndUndo(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p, _ := s.CreatePosition(ctx, board.DefaultSize)

	if _, err := s.Play(ctx, p.ID, board.White, pt(t, "H8")); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("white cannot open, got %v", err)
	}
	st, err := s.Play(ctx, p.ID, board.Empty, pt(t, "H8"))
	if err != nil {
		t.Fatalf("black play failed: %v", err)
	}
	if st.Grid.At(pt(t, "H8")) != board.Black || st.ToMove != board.White || len(st.Moves) != 1 {
		t.Fatalf("unexpected state after black move: %+v", st)
	}
	if _, err := s.Play(ctx, p.ID, board.White, pt(t, "H8")); !errors.Is(err, board.ErrOccupied) {
		t.Fatalf("expected ErrOccupied, got %v", err)
	}
	if _, err := s.Play(ctx, p.ID, board.White, board.Pt(15, 0)); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := s.Play(ctx, p.ID, board.White, pt(t, "I9")); err != nil {
		t.Fatalf("white play failed: %v", err)
	}

	st, err = s.Undo(ctx, p.ID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if st.Grid.At(pt(t, "I9")) != board.Empty || st.ToMove != board.White || len(st.Moves) != 1 {
		t.Fatalf("unexpected state after undo: %+v", st)
	}
	s.Undo(ctx, p.ID)
	if _, err := s.Undo(ctx, p.ID); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

// setup places black stones on H8 G8 G9 H10, making F8 a forbidden double-three.
func setup(t *testing.T, s *Service) store.Position {
	t.Helper()
	ctx := context.Background()
	p, err := s.CreatePosition(ctx, board.DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"H8", "G8", "G9", "H10"} {
		if p, err = s.SetStone(ctx, p.ID, pt(t, n), board.Black); err != nil {
			t.Fatalf("SetStone %s: %v", n, err)
		}
	}
	return p
}

func TestPlayRejectsForbiddenPoint(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := setup(t, s)
	if p.ToMove != board.Black || len(p.Moves) != 0 {
		t.Fatalf("setup should not change the turn or the move list")
	}
	if _, err := s.Play(ctx, p.ID, board.Black, pt(t, "F8")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	res, err := s.Analyze(ctx, p.ID, board.Black)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.IsForbidden(pt(t, "F8")) || len(res.Forbidden) != 1 {
		t.Fatalf("expected F8 alone to be forbidden, got %v", res.Forbidden.Sorted())
	}
	if res, _ := s.Analyze(ctx, p.ID, board.White); len(res.Forbidden) != 0 {
		t.Fatalf("white has no forbidden points")
	}
	if _, err := s.Analyze(ctx, p.ID, board.Empty); !errors.Is(err, board.ErrStone) {
		t.Fatalf("expected ErrStone, got %v", err)
	}

	cfg := s.config.Get()
	cfg.EnforceForbidden = false
	s.config.Update(cfg)
	if _, err := s.Play(ctx, p.ID, board.Black, pt(t, "F8")); err != nil {
		t.Fatalf("play without enforcement: %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p, _ := s.CreatePosition(ctx, board.DefaultSize)
	ch, unsub, err := s.Subscribe(ctx, p.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsub()
	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("subscriber channel should close on delete")
	}
	if err := s.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if list, _ := s.List(ctx); len(list) != 0 {
		t.Fatalf("expected no positions, got %d", len(list))
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := newTestService(t)
	p, _ := s.CreatePosition(context.Background(), board.DefaultSize)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub, err := s.Subscribe(ctx, p.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsub()

	if _, err := s.Play(ctx, p.ID, board.Black, pt(t, "H8")); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case b, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		if string(b) != "moves=1" {
			t.Fatalf("unexpected broadcast payload: %q", string(b))
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}

	if _, _, err := s.Subscribe(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := newTestService(t)
	p, _ := s.CreatePosition(context.Background(), board.DefaultSize)

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(context.Background())
	defer cancelSlow()
	slowCh, _, _ := s.Subscribe(ctxSlow, p.ID)

	ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
	defer cancelFast()
	fastCh, unsubFast, _ := s.Subscribe(ctxFast, p.ID)
	defer unsubFast()

	if _, err := s.Play(ctxFast, p.ID, board.Black, pt(t, "H8")); err != nil {
		t.Fatalf("play1: %v", err)
	}
	<-fastCh
	if _, err := s.Play(ctxFast, p.ID, board.White, pt(t, "I9")); err != nil {
		t.Fatalf("play2: %v", err)
	}
	select {
	case b := <-fastCh:
		if string(b) != "moves=2" {
			t.Fatalf("unexpected payload %q", b)
		}
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive updates in time")
	}

	// The slow channel holds the first payload and is then closed.
	if b, ok := <-slowCh; !ok || string(b) != "moves=1" {
		t.Fatalf("expected buffered first payload, got %q ok=%v", b, ok)
	}
	if _, ok := <-slowCh; ok {
		t.Fatalf("slow subscriber should have been dropped")
	}
}

var basicLibrary = append([]byte{0xFF, 'R', 'e', 'n', 'L', 'i', 'b', 0xFF, 3, 0,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	0x78, 0x00, 0x68, 0xC0, 0x79, 0x40)

func TestImportLibrary(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	l, err := s.ImportLibrary(ctx, "openings", basicLibrary)
	if err != nil {
		t.Fatalf("ImportLibrary: %v", err)
	}
	if l.ID == "" || l.Nodes != 3 || l.Data != nil {
		t.Fatalf("unexpected library %+v", l)
	}
	g, toMove, err := s.LibraryPosition(ctx, l.ID, 1)
	if err != nil {
		t.Fatalf("LibraryPosition: %v", err)
	}
	if g.At(pt(t, "H8")) != board.Black || g.At(pt(t, "H9")) != board.White || toMove != board.Black {
		t.Fatalf("unexpected library position, %v to move:\n%s", toMove, g)
	}
	if _, _, err := s.LibraryPosition(ctx, l.ID, 7); !errors.Is(err, renlib.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}

	// A fresh service over the same store parses the stored bytes again.
	other := NewService(s.store, nil, nil)
	if _, _, err := other.LibraryPosition(ctx, l.ID, 2); err != nil {
		t.Fatalf("LibraryPosition after restart: %v", err)
	}

	if _, err := s.ImportLibrary(ctx, "", basicLibrary); !errors.Is(err, ErrLibraryName) {
		t.Fatalf("expected ErrLibraryName, got %v", err)
	}
	bad := bytes.Clone(basicLibrary)
	bad[8] = 2
	if _, err := s.ImportLibrary(ctx, "old", bad); !errors.Is(err, renlib.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if list, _ := s.Libraries(ctx); len(list) != 1 {
		t.Fatalf("expected one stored library, got %d", len(list))
	}
}
