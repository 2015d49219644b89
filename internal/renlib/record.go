package renlib

import (
	"strings"

	"github.com/jaminalder/codex-renju/internal/board"
)

// Size is the board size every RenLib library is recorded on.
const Size = 15

// Flags are the command bits stored with each record.
type Flags uint32

const (
	Extension  Flags = 0x01
	NoMove     Flags = 0x02
	Start      Flags = 0x04
	Comment    Flags = 0x08
	Mark       Flags = 0x10
	OldComment Flags = 0x20
	// Right marks the last node of a line: the record has no children.
	Right Flags = 0x40
	// Down marks a node with a later sibling.
	Down Flags = 0x80
	// BoardText only appears in the widened flags of an extension record.
	BoardText Flags = 0x100
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{Down, "down"},
	{Right, "right"},
	{OldComment, "oldcomment"},
	{Mark, "mark"},
	{Comment, "comment"},
	{Start, "start"},
	{NoMove, "nomove"},
	{Extension, "extension"},
	{BoardText, "boardtext"},
}

func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	var parts []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Record is one decoded entry of the move stream.
type Record struct {
	Point     board.Point
	Flags     Flags
	OneLine   string
	MultiLine string
	BoardText string
	// Offset of the record's first byte, counted after the header.
	Offset int
}

// IsMove reports whether the record places a stone.
func (r Record) IsMove() bool { return !r.Point.IsNull() && !r.Flags.Has(NoMove) }

// Comment joins both comment parts.
func (r Record) Comment() string {
	switch {
	case r.OneLine == "":
		return r.MultiLine
	case r.MultiLine == "":
		return r.OneLine
	}
	return r.OneLine + "\n" + r.MultiLine
}

// decodePoint unpacks a coordinate byte. 0x00 is the null point.
func decodePoint(b byte) (board.Point, error) {
	if b == 0 {
		return board.NullPoint(), nil
	}
	x, y := int((b-1)&0x0f), int(b>>4)
	if x >= Size || y >= Size {
		return board.Point{}, ErrInvalidCoordinate
	}
	return board.Pt(x, y), nil
}
