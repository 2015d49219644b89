package board

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRejectsBadSize(t *testing.T) {
	for _, size := range []int{-1, 0, 4, 27} {
		if _, err := New(size); !errors.Is(err, ErrSize) {
			t.Fatalf("New(%d): expected ErrSize, got %v", size, err)
		}
	}
}

func TestPointNotation(t *testing.T) {
	cases := []struct {
		in   string
		x, y int
	}{
		{"H8", 7, 7},
		{"a15", 0, 0},
		{"A1", 0, 14},
		{"O1", 14, 14},
		{"I10", 8, 5},
	}
	for _, tc := range cases {
		p, err := ParsePoint(tc.in, 15)
		if err != nil {
			t.Fatalf("ParsePoint(%q): %v", tc.in, err)
		}
		if p != Pt(tc.x, tc.y) {
			t.Fatalf("ParsePoint(%q) = %v, want (%d,%d)", tc.in, p, tc.x, tc.y)
		}
		if got := p.Notation(15); got != strings.ToUpper(tc.in) {
			t.Fatalf("Notation = %q, want %q", got, strings.ToUpper(tc.in))
		}
	}
	for _, bad := range []string{"", "H", "H0", "P8", "H16", "88", "H-1"} {
		if _, err := ParsePoint(bad, 15); err == nil {
			t.Fatalf("ParsePoint(%q) should fail", bad)
		}
	}
}

func TestNullPointNeverEqualsRealPoint(t *testing.T) {
	null := NullPoint()
	if !null.IsNull() {
		t.Fatalf("NullPoint should be null")
	}
	if null == Pt(0, 0) {
		t.Fatalf("null point must differ from (0,0)")
	}
	if null.Compare(Pt(0, 0)) >= 0 || Pt(0, 0).Compare(null) <= 0 {
		t.Fatalf("null should sort before real points")
	}
	if Pt(1, 0).Compare(Pt(0, 5)) <= 0 || Pt(2, 3).Compare(Pt(2, 4)) >= 0 {
		t.Fatalf("real points should order by x then y")
	}
}

func TestStoneOpposite(t *testing.T) {
	if Black.Opposite() != White || White.Opposite() != Black || Empty.Opposite() != Empty {
		t.Fatalf("unexpected Opposite mapping")
	}
}

func TestPlaceAndClone(t *testing.T) {
	g, _ := New(15)
	p := Pt(7, 7)
	if err := g.Place(p, Black); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if err := g.Place(p, White); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected ErrOccupied, got %v", err)
	}
	if err := g.Set(Pt(15, 0), Black); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	g.SetComment(p, "center")

	cp := g.Clone()
	cp.Set(Pt(0, 0), White)
	cp.SetComment(p, "changed")
	if g.At(Pt(0, 0)) != Empty {
		t.Fatalf("clone must not alias cells")
	}
	if c, _ := g.Comment(p); c != "center" {
		t.Fatalf("clone must not alias comments, got %q", c)
	}
	if b, w := cp.Count(); b != 1 || w != 1 {
		t.Fatalf("expected 1 black and 1 white, got %d/%d", b, w)
	}
}

func TestTextEncoding(t *testing.T) {
	g, _ := New(5)
	g.Set(Pt(0, 0), Black)
	g.Set(Pt(4, 4), White)
	text, err := g.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "x..../...../...../...../....o" {
		t.Fatalf("unexpected encoding %q", text)
	}
	var back Grid
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back.Size() != 5 || back.At(Pt(0, 0)) != Black || back.At(Pt(4, 4)) != White {
		t.Fatalf("decoded grid differs:\n%s", back.String())
	}
	if err := back.UnmarshalText([]byte("x..../...")); err == nil {
		t.Fatalf("expected error for ragged rows")
	}
}

func TestStringDiagram(t *testing.T) {
	g, _ := New(5)
	g.Set(Pt(2, 2), Black)
	out := g.String()
	if !strings.Contains(out, " 3 . . X . .") {
		t.Fatalf("missing center row in diagram:\n%s", out)
	}
	if !strings.HasSuffix(out, "   A B C D E\n") {
		t.Fatalf("missing column legend:\n%s", out)
	}
}
