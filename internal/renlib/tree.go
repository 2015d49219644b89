package renlib

import (
	"fmt"
	"io"
	"strings"

	"github.com/jaminalder/codex-renju/internal/board"
)

// Node is a record placed in the move tree.
type Node struct {
	Index    int
	Record   Record
	Parent   int // -1 for top-level nodes
	Children []int
}

// Library is a parsed move tree. Node indexes follow file order.
type Library struct {
	Version Version
	Nodes   []Node
	Roots   []int
}

// build links records into a tree. A node continues the line of the node
// before it unless that node was a leaf (Right); a leaf returns to the parent
// of the nearest node still waiting for a sibling (Down).
func build(v Version, recs []Record) *Library {
	lib := &Library{Version: v, Nodes: make([]Node, len(recs))}
	attach := -1
	var pending []int
	for i, rec := range recs {
		lib.Nodes[i] = Node{Index: i, Record: rec, Parent: attach}
		if attach >= 0 {
			lib.Nodes[attach].Children = append(lib.Nodes[attach].Children, i)
		} else {
			lib.Roots = append(lib.Roots, i)
		}
		if rec.Flags.Has(Down) {
			pending = append(pending, attach)
		}
		switch {
		case !rec.Flags.Has(Right):
			attach = i
		case len(pending) > 0:
			attach = pending[len(pending)-1]
			pending = pending[:len(pending)-1]
		default:
			attach = -1
		}
	}
	return lib
}

func (l *Library) Len() int { return len(l.Nodes) }

// Path returns the node indexes from the top of the tree down to index.
func (l *Library) Path(index int) ([]int, error) {
	if index < 0 || index >= len(l.Nodes) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, index)
	}
	var path []int
	for i := index; i >= 0; i = l.Nodes[i].Parent {
		path = append(path, i)
	}
	for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
		path[a], path[b] = path[b], path[a]
	}
	return path, nil
}

// Moves returns the stones played on the way to index, Black first.
func (l *Library) Moves(index int) ([]board.Point, error) {
	path, err := l.Path(index)
	if err != nil {
		return nil, err
	}
	var moves []board.Point
	for _, i := range path {
		if rec := l.Nodes[i].Record; rec.IsMove() {
			moves = append(moves, rec.Point)
		}
	}
	return moves, nil
}

// Position replays the moves leading to index. Comments of the node and the
// board texts of its annotation children become grid comments.
func (l *Library) Position(index int) (*board.Grid, error) {
	moves, err := l.Moves(index)
	if err != nil {
		return nil, err
	}
	g, err := board.New(Size)
	if err != nil {
		return nil, err
	}
	stone := board.Black
	for _, p := range moves {
		if err := g.Set(p, stone); err != nil {
			return nil, err
		}
		stone = stone.Opposite()
	}
	n := l.Nodes[index]
	if c := n.Record.Comment(); c != "" && !n.Record.Point.IsNull() {
		g.SetComment(n.Record.Point, c)
	}
	for _, ci := range n.Children {
		rec := l.Nodes[ci].Record
		if rec.Flags.Has(NoMove) && rec.BoardText != "" && !rec.Point.IsNull() {
			g.SetComment(rec.Point, rec.BoardText)
		}
	}
	return g, nil
}

// ToMove returns the color that plays next at index.
func (l *Library) ToMove(index int) (board.Stone, error) {
	moves, err := l.Moves(index)
	if err != nil {
		return board.Empty, err
	}
	if len(moves)%2 == 0 {
		return board.Black, nil
	}
	return board.White, nil
}

// Outline writes the tree one node per line. Main lines stay at the same
// indentation; each alternative is indented one step further.
func (l *Library) Outline(w io.Writer) error {
	type item struct{ index, depth int }
	stack := make([]item, 0, len(l.Roots))
	for i := len(l.Roots) - 1; i >= 0; i-- {
		stack = append(stack, item{l.Roots[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := l.Nodes[it.index]
		label := n.Record.Point.Notation(Size)
		if n.Record.Flags.Has(NoMove) {
			label = "(" + label + ")"
		}
		line := fmt.Sprintf("%s%d %s", strings.Repeat("  ", it.depth), n.Index, label)
		if n.Record.BoardText != "" {
			line += " [" + n.Record.BoardText + "]"
		}
		if n.Record.OneLine != "" {
			line += " " + n.Record.OneLine
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			d := it.depth
			if i > 0 {
				d++
			}
			stack = append(stack, item{n.Children[i], d})
		}
	}
	return nil
}
