package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jaminalder/codex-renju/internal/board"
)

const schema = `
create table if not exists position (
	id text primary key,
	grid text not null,
	to_move integer not null,
	moves text not null,
	created integer not null,
	updated integer not null
);
create table if not exists library (
	id text primary key,
	name text not null,
	data blob not null,
	nodes integer not null,
	created integer not null
);`

// SQLite stores grids in their text form and moves as space separated
// coordinates.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared between queries.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func encodeMoves(moves []board.Point) string {
	parts := make([]string, len(moves))
	for i, p := range moves {
		parts[i] = fmt.Sprintf("%d,%d", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func decodeMoves(s string) ([]board.Point, error) {
	fields := strings.Fields(s)
	moves := make([]board.Point, 0, len(fields))
	for _, f := range fields {
		var x, y int
		if _, err := fmt.Sscanf(f, "%d,%d", &x, &y); err != nil {
			return nil, fmt.Errorf("bad move %q: %w", f, err)
		}
		moves = append(moves, board.Pt(x, y))
	}
	return moves, nil
}

func (s *SQLite) SavePosition(ctx context.Context, p Position) error {
	if p.Grid == nil {
		return errors.New("position without grid")
	}
	grid, err := p.Grid.MarshalText()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `insert into position (id, grid, to_move, moves, created, updated)
		values (?, ?, ?, ?, ?, ?)
		on conflict(id) do update set grid=excluded.grid, to_move=excluded.to_move,
			moves=excluded.moves, updated=excluded.updated`,
		p.ID, string(grid), int(p.ToMove), encodeMoves(p.Moves), p.Created.UnixNano(), p.Updated.UnixNano())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(row scanner) (Position, error) {
	var (
		p                Position
		grid, moves      string
		toMove           int
		created, updated int64
	)
	if err := row.Scan(&p.ID, &grid, &toMove, &moves, &created, &updated); err != nil {
		return Position{}, err
	}
	p.Grid = &board.Grid{}
	if err := p.Grid.UnmarshalText([]byte(grid)); err != nil {
		return Position{}, fmt.Errorf("position %s: %w", p.ID, err)
	}
	var err error
	if p.Moves, err = decodeMoves(moves); err != nil {
		return Position{}, fmt.Errorf("position %s: %w", p.ID, err)
	}
	p.ToMove = board.Stone(toMove)
	p.Created = time.Unix(0, created)
	p.Updated = time.Unix(0, updated)
	return p, nil
}

func (s *SQLite) LoadPosition(ctx context.Context, id string) (Position, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, grid, to_move, moves, created, updated from position where id=?`, id)
	p, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Position{}, fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	return p, err
}

func (s *SQLite) DeletePosition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from position where id=?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLite) ListPositions(ctx context.Context) ([]Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, grid, to_move, moves, created, updated from position order by created, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveLibrary(ctx context.Context, l Library) error {
	_, err := s.db.ExecContext(ctx, `insert into library (id, name, data, nodes, created)
		values (?, ?, ?, ?, ?)
		on conflict(id) do update set name=excluded.name, data=excluded.data, nodes=excluded.nodes`,
		l.ID, l.Name, l.Data, l.Nodes, l.Created.UnixNano())
	return err
}

func (s *SQLite) LoadLibrary(ctx context.Context, id string) (Library, error) {
	var (
		l       Library
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`select id, name, data, nodes, created from library where id=?`, id).
		Scan(&l.ID, &l.Name, &l.Data, &l.Nodes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Library{}, fmt.Errorf("%w: library %s", ErrNotFound, id)
	}
	if err != nil {
		return Library{}, err
	}
	l.Created = time.Unix(0, created)
	return l, nil
}

func (s *SQLite) ListLibraries(ctx context.Context) ([]Library, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, nodes, created from library order by created, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Library
	for rows.Next() {
		var (
			l       Library
			created int64
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Nodes, &created); err != nil {
			return nil, err
		}
		l.Created = time.Unix(0, created)
		out = append(out, l)
	}
	return out, rows.Err()
}
