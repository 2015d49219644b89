package renju

import (
	"github.com/jaminalder/codex-renju/internal/board"
)

type classifiedLine struct {
	dir   board.Direction
	cells []Cell
	// scoped is false for lines that miss every restricted point.
	scoped bool
}

// scan holds the working sets of one evaluation.
type scan struct {
	grid      *board.Grid
	black     bool
	lines     []classifiedLine
	fives     PointSet
	forbidden PointSet
	found     map[Condition]struct{}
	fours     map[board.Point]map[Condition]struct{}
	threes    map[board.Point]map[Link]struct{}
}

func newScan(g *board.Grid, stone board.Stone, restrict PointSet) *scan {
	s := &scan{
		grid:      g,
		black:     stone == board.Black,
		fives:     PointSet{},
		forbidden: PointSet{},
		found:     map[Condition]struct{}{},
		fours:     map[board.Point]map[Condition]struct{}{},
		threes:    map[board.Point]map[Link]struct{}{},
	}
	for _, l := range g.Lines() {
		scoped := restrict == nil
		for _, p := range l.Points {
			if scoped {
				break
			}
			scoped = restrict.Has(p)
		}
		s.lines = append(s.lines, classifiedLine{dir: l.Direction, cells: Classify(g, stone, l), scoped: scoped})
	}
	return s
}

func (s *scan) each(width int, scopedOnly bool, fn func(dir board.Direction, w window)) {
	for _, l := range s.lines {
		if scopedOnly && !l.scoped {
			continue
		}
		for i := 0; i+width <= len(l.cells); i++ {
			fn(l.dir, window(l.cells[i:i+width]))
		}
	}
}

// findFives records every empty point that completes exactly five. Black
// windows flanked by its own stone would be overlines and do not count.
func (s *scan) findFives() {
	s.each(7, false, func(dir board.Direction, w window) {
		same, empty := 0, -1
		for i := 1; i <= 5; i++ {
			switch w[i].Class {
			case Same:
				same++
			case Empty:
				if empty >= 0 {
					return
				}
				empty = i
			default:
				return
			}
		}
		if same != 4 || empty < 0 {
			return
		}
		if s.black && (w[0].Class == Same || w[6].Class == Same) {
			return
		}
		place := w[empty].Point
		s.found[newCondition(Five, dir, place, w.points(1, 6))] = struct{}{}
		s.fives.Add(place)
	})
}

// findOverlines forbids every empty point that would join six or more stones.
func (s *scan) findOverlines() {
	s.each(6, false, func(_ board.Direction, w window) {
		empty := -1
		for i, c := range w {
			switch c.Class {
			case Same:
			case Empty:
				if empty >= 0 {
					return
				}
				empty = i
			default:
				return
			}
		}
		if empty >= 0 {
			s.forbidden.Add(w[empty].Point)
		}
	})
}

func (s *scan) addFour(kind Kind, dir board.Direction, place board.Point, stones []board.Point) {
	if s.forbidden.Has(place) || s.fives.Has(place) {
		return
	}
	set := s.fours[place]
	if set == nil {
		set = map[Condition]struct{}{}
		s.fours[place] = set
	}
	set[newCondition(kind, dir, place, stones)] = struct{}{}
}

// flankKind tells a straight four from a closed one by its open flank.
func flankKind(c Class) Kind {
	if c == Empty {
		return StraightFour
	}
	return ClosedFour
}

// findFours collects four shapes by place. Black places reached by more than
// one distinct four are double-fours and become forbidden.
func (s *scan) findFours() {
	s.each(7, true, func(dir board.Direction, w window) {
		l, r := w[0].Class, w[6].Class
		switch {
		case w.is("?..xxx|"):
			s.addFour(flankKind(r), dir, w[2].Point, w.points(2, 6))
			if l != Same {
				s.addFour(BrokenFour, dir, w[1].Point, w.points(1, 6))
			}
		case w.is("|xxx..?"):
			s.addFour(flankKind(l), dir, w[4].Point, w.points(1, 5))
			if r != Same {
				s.addFour(BrokenFour, dir, w[5].Point, w.points(1, 6))
			}
		case w.is("?.x.xx|"):
			s.addFour(flankKind(r), dir, w[3].Point, w.points(2, 6))
			if l != Same {
				s.addFour(BrokenFour, dir, w[1].Point, w.points(1, 6))
			}
		case w.is("|xx.x.?"):
			s.addFour(flankKind(l), dir, w[3].Point, w.points(1, 5))
			if r != Same {
				s.addFour(BrokenFour, dir, w[5].Point, w.points(1, 6))
			}
		}
	})
	for place, set := range s.fours {
		if s.black && len(set) > 1 {
			s.forbidden.Add(place)
			continue
		}
		for c := range set {
			s.found[c] = struct{}{}
		}
	}
}

// addThree records that occupying place makes a three which, with companion,
// can still become a straight four. False threes are skipped: the place must
// not be forbidden and neither point may complete a five.
func (s *scan) addThree(kind Kind, dir board.Direction, place, companion board.Point, stones []board.Point) {
	if s.forbidden.Has(place) || s.fives.Has(place) || s.fives.Has(companion) {
		return
	}
	set := s.threes[place]
	if set == nil {
		set = map[Link]struct{}{}
		s.threes[place] = set
	}
	set[Link{Three: newCondition(kind, dir, place, stones), Companion: companion}] = struct{}{}
}

// findThrees matches the five 9-cell three shapes. The cell after the right
// flank matters in two of them: for Black, a stone there turns the straight
// four the three would make into an overline.
func (s *scan) findThrees() {
	s.each(9, true, func(dir board.Direction, w window) {
		switch {
		case w.is("?...xx.??"):
			left, right, beyond := w[0].Class, w[7].Class, w[8].Class
			if right == Same {
				return
			}
			if left == Same {
				if s.black && beyond == Same {
					return
				}
			} else {
				s.addThree(BrokenThree, dir, w[2].Point, w[3].Point, w.points(2, 6))
			}
			s.addThree(UnbrokenThree, dir, w[3].Point, w[2].Point, w.points(3, 6))
		case w.is("??.xx...?"):
			beyond, left, right := w[0].Class, w[1].Class, w[8].Class
			if left == Same {
				return
			}
			if right == Same {
				if s.black && beyond == Same {
					return
				}
			} else {
				s.addThree(BrokenThree, dir, w[6].Point, w[5].Point, w.points(3, 7))
			}
			s.addThree(UnbrokenThree, dir, w[5].Point, w[6].Point, w.points(3, 6))
		case w.is("?..x.x.??"):
			left, right := w[0].Class, w[7].Class
			if right == Same {
				return
			}
			if left != Same {
				s.addThree(BrokenThree, dir, w[2].Point, w[4].Point, w.points(2, 6))
			}
			s.addThree(UnbrokenThree, dir, w[4].Point, w[2].Point, w.points(3, 6))
		case w.is("?.x.x..??"):
			left, right := w[0].Class, w[7].Class
			if left == Same {
				return
			}
			if right != Same {
				s.addThree(BrokenThree, dir, w[5].Point, w[3].Point, w.points(2, 6))
			}
			s.addThree(UnbrokenThree, dir, w[3].Point, w[5].Point, w.points(2, 5))
		case w.is("|.x..x.|?"):
			s.addThree(BrokenThree, dir, w[3].Point, w[4].Point, w.points(2, 6))
			s.addThree(BrokenThree, dir, w[4].Point, w[3].Point, w.points(2, 6))
		}
	})
}
