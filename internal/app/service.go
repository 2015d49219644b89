package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaminalder/codex-renju/internal/board"
	"github.com/jaminalder/codex-renju/internal/config"
	"github.com/jaminalder/codex-renju/internal/renju"
	"github.com/jaminalder/codex-renju/internal/renlib"
	"github.com/jaminalder/codex-renju/internal/store"
)

// Errors exposed by the service layer.
var (
	ErrNotFound      = store.ErrNotFound
	ErrNotYourTurn   = errors.New("not your turn")
	ErrForbidden     = errors.New("forbidden point")
	ErrNothingToUndo = errors.New("no moves to undo")
	ErrLibraryName   = errors.New("library name required")
)

type subscriber struct {
	mu     sync.Mutex
	closed bool
	ch     chan []byte
}

// send reports false when the buffer is full.
func (s *subscriber) send(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service manages positions, libraries and subscribers. Mutations of a
// position are serialized by mu.
type Service struct {
	store  store.Store
	config *config.Store
	log    *log.Logger

	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	render func(store.Position) []byte

	libMu     sync.Mutex
	libraries map[string]*renlib.Library
}

// NewService builds a service over st. A nil logger discards output.
func NewService(st store.Store, cfg *config.Store, logger *log.Logger) *Service {
	if cfg == nil {
		cfg = config.NewStore(config.DefaultConfig())
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		store:     st,
		config:    cfg,
		log:       logger,
		subs:      make(map[string]map[*subscriber]struct{}),
		render:    func(store.Position) []byte { return nil },
		libraries: make(map[string]*renlib.Library),
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(store.Position) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(store.Position) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreatePosition registers an empty board with Black to move.
func (s *Service) CreatePosition(ctx context.Context, size int) (store.Position, error) {
	g, err := board.New(size)
	if err != nil {
		return store.Position{}, err
	}
	now := time.Now()
	p := store.Position{
		ID:      uuid.NewString(),
		Grid:    g,
		ToMove:  board.Black,
		Created: now,
		Updated: now,
	}
	if err := s.store.SavePosition(ctx, p); err != nil {
		return store.Position{}, err
	}
	s.log.Printf("[service] created position %s (%dx%d)", p.ID, size, size)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (store.Position, error) {
	return s.store.LoadPosition(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]store.Position, error) {
	return s.store.ListPositions(ctx)
}

// Delete removes the position and closes its subscribers.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeletePosition(ctx, id); err != nil {
		return err
	}
	for sub := range s.subs[id] {
		sub.close()
	}
	delete(s.subs, id)
	s.log.Printf("[service] deleted position %s", id)
	return nil
}

// SetStone edits the setup. It ignores turn order and forbidden points.
func (s *Service) SetStone(ctx context.Context, id string, p board.Point, stone board.Stone) (store.Position, error) {
	return s.mutate(ctx, id, func(pos *store.Position) error {
		return pos.Grid.Set(p, stone)
	})
}

// Play puts the side to move on p. An Empty stone means whoever is to move.
func (s *Service) Play(ctx context.Context, id string, stone board.Stone, p board.Point) (store.Position, error) {
	return s.mutate(ctx, id, func(pos *store.Position) error {
		if stone == board.Empty {
			stone = pos.ToMove
		}
		if stone != pos.ToMove {
			return fmt.Errorf("%w: %v to move", ErrNotYourTurn, pos.ToMove)
		}
		if !pos.Grid.InBounds(p) {
			return fmt.Errorf("%w: %v", board.ErrOutOfBounds, p)
		}
		if pos.Grid.At(p) != board.Empty {
			return fmt.Errorf("%w: %s", board.ErrOccupied, p.Notation(pos.Grid.Size()))
		}
		if stone == board.Black && s.config.Get().EnforceForbidden {
			res := renju.Evaluate(pos.Grid, board.Black, renju.NewPointSet(p))
			if res.IsForbidden(p) {
				return fmt.Errorf("%w: %s", ErrForbidden, p.Notation(pos.Grid.Size()))
			}
		}
		if err := pos.Grid.Place(p, stone); err != nil {
			return err
		}
		pos.Moves = append(pos.Moves, p)
		pos.ToMove = stone.Opposite()
		return nil
	})
}

// Undo takes back the last played move.
func (s *Service) Undo(ctx context.Context, id string) (store.Position, error) {
	return s.mutate(ctx, id, func(pos *store.Position) error {
		if len(pos.Moves) == 0 {
			return ErrNothingToUndo
		}
		last := pos.Moves[len(pos.Moves)-1]
		if err := pos.Grid.Set(last, board.Empty); err != nil {
			return err
		}
		pos.Moves = pos.Moves[:len(pos.Moves)-1]
		pos.ToMove = pos.ToMove.Opposite()
		return nil
	})
}

// mutate loads, edits, saves and broadcasts a position under the service lock.
func (s *Service) mutate(ctx context.Context, id string, edit func(*store.Position) error) (store.Position, error) {
	s.mu.Lock()
	pos, err := s.store.LoadPosition(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return store.Position{}, err
	}
	if err := edit(&pos); err != nil {
		s.mu.Unlock()
		return store.Position{}, err
	}
	pos.Updated = time.Now()
	if err := s.store.SavePosition(ctx, pos); err != nil {
		s.mu.Unlock()
		return store.Position{}, err
	}
	subs := s.copySubsLocked(id)
	payload := s.render(pos)
	s.mu.Unlock()

	s.broadcast(id, subs, payload)
	return pos, nil
}

// Analyze evaluates the position for stone.
func (s *Service) Analyze(ctx context.Context, id string, stone board.Stone) (renju.Result, error) {
	if stone != board.Black && stone != board.White {
		return renju.Result{}, fmt.Errorf("%w: %v", board.ErrStone, stone)
	}
	pos, err := s.store.LoadPosition(ctx, id)
	if err != nil {
		return renju.Result{}, err
	}
	return renju.Evaluate(pos.Grid, stone, nil), nil
}

// ImportLibrary parses data and stores it under a new ID.
func (s *Service) ImportLibrary(ctx context.Context, name string, data []byte) (store.Library, error) {
	if name == "" {
		return store.Library{}, ErrLibraryName
	}
	lib, err := renlib.ParseBytes(data)
	if err != nil {
		s.log.Printf("[service] import %q failed: %v", name, err)
		return store.Library{}, err
	}
	l := store.Library{
		ID:      uuid.NewString(),
		Name:    name,
		Data:    data,
		Nodes:   lib.Len(),
		Created: time.Now(),
	}
	if err := s.store.SaveLibrary(ctx, l); err != nil {
		return store.Library{}, err
	}
	s.libMu.Lock()
	s.libraries[l.ID] = lib
	s.libMu.Unlock()
	s.log.Printf("[service] imported library %q (%s, v%s, %d nodes)", name, l.ID, lib.Version, lib.Len())
	l.Data = nil
	return l, nil
}

func (s *Service) Libraries(ctx context.Context) ([]store.Library, error) {
	return s.store.ListLibraries(ctx)
}

// Library returns the parsed tree, parsing the stored bytes on a cache miss.
func (s *Service) Library(ctx context.Context, id string) (*renlib.Library, error) {
	s.libMu.Lock()
	lib, ok := s.libraries[id]
	s.libMu.Unlock()
	if ok {
		return lib, nil
	}
	l, err := s.store.LoadLibrary(ctx, id)
	if err != nil {
		return nil, err
	}
	lib, err = renlib.ParseBytes(l.Data)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", id, err)
	}
	s.libMu.Lock()
	s.libraries[id] = lib
	s.libMu.Unlock()
	return lib, nil
}

// LibraryPosition returns the grid at a library node and the side to move there.
func (s *Service) LibraryPosition(ctx context.Context, id string, index int) (*board.Grid, board.Stone, error) {
	lib, err := s.Library(ctx, id)
	if err != nil {
		return nil, board.Empty, err
	}
	g, err := lib.Position(index)
	if err != nil {
		return nil, board.Empty, err
	}
	toMove, err := lib.ToMove(index)
	if err != nil {
		return nil, board.Empty, err
	}
	return g, toMove, nil
}

// Subscribe registers a subscriber for a position. The channel closes when
// ctx ends, the subscriber falls behind, or the position is deleted.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.LoadPosition(ctx, id); err != nil {
		return nil, nil, err
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// broadcast fans payload out; slow subscribers are closed and dropped.
func (s *Service) broadcast(id string, subs map[*subscriber]struct{}, payload []byte) {
	var toDrop []*subscriber
	for sub := range subs {
		if !sub.send(payload) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) == 0 {
		return
	}
	s.mu.Lock()
	for _, sub := range toDrop {
		if set, ok := s.subs[id]; ok {
			delete(set, sub)
		}
	}
	s.mu.Unlock()
	s.log.Printf("[service] dropped %d slow subscriber(s) on %s", len(toDrop), id)
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
