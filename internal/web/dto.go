package web

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jaminalder/codex-renju/internal/board"
	"github.com/jaminalder/codex-renju/internal/renju"
	"github.com/jaminalder/codex-renju/internal/store"
)

// Points travel as notation strings ("H8") so clients never see raw coordinates.

type positionDTO struct {
	ID       string            `json:"id"`
	Size     int               `json:"size"`
	Rows     []string          `json:"rows"`
	ToMove   string            `json:"to_move"`
	Moves    []string          `json:"moves"`
	Diagram  string            `json:"diagram"`
	Comments map[string]string `json:"comments,omitempty"`
	Created  time.Time         `json:"created"`
	Updated  time.Time         `json:"updated"`
}

type conditionDTO struct {
	Kind      string   `json:"kind"`
	Direction string   `json:"direction"`
	Place     string   `json:"place"`
	Stones    []string `json:"stones"`
}

type linkDTO struct {
	Three     conditionDTO `json:"three"`
	Companion string       `json:"companion"`
}

type resultDTO struct {
	Stone      string         `json:"stone"`
	Forbidden  []string       `json:"forbidden"`
	Conditions []conditionDTO `json:"conditions"`
	Threes     []linkDTO      `json:"threes"`
}

type libraryDTO struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Nodes   int       `json:"nodes"`
	Created time.Time `json:"created"`
}

type nodeDTO struct {
	Library   string            `json:"library"`
	Index     int               `json:"index"`
	Move      string            `json:"move"`
	Flags     string            `json:"flags"`
	Comment   string            `json:"comment,omitempty"`
	Children  []int             `json:"children"`
	ToMove    string            `json:"to_move"`
	Rows      []string          `json:"rows"`
	Diagram   string            `json:"diagram"`
	Comments  map[string]string `json:"comments,omitempty"`
	Forbidden []string          `json:"forbidden"`
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func notations(points []board.Point, size int) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Notation(size)
	}
	return out
}

func rows(g *board.Grid) []string {
	text, _ := g.MarshalText()
	return strings.Split(string(text), "/")
}

func comments(g *board.Grid) map[string]string {
	cs := g.Comments()
	if len(cs) == 0 {
		return nil
	}
	out := make(map[string]string, len(cs))
	for p, c := range cs {
		out[p.Notation(g.Size())] = c
	}
	return out
}

func toPositionDTO(p store.Position) positionDTO {
	size := p.Grid.Size()
	return positionDTO{
		ID:       p.ID,
		Size:     size,
		Rows:     rows(p.Grid),
		ToMove:   p.ToMove.String(),
		Moves:    notations(p.Moves, size),
		Diagram:  p.Grid.String(),
		Comments: comments(p.Grid),
		Created:  p.Created,
		Updated:  p.Updated,
	}
}

// renderPosition is the broadcast payload for SSE and websocket subscribers.
func renderPosition(p store.Position) []byte {
	return mustMarshal(toPositionDTO(p))
}

func toConditionDTO(c renju.Condition, size int) conditionDTO {
	return conditionDTO{
		Kind:      c.Kind.String(),
		Direction: c.Direction.String(),
		Place:     c.Place.Notation(size),
		Stones:    notations(c.Stones(), size),
	}
}

func toResultDTO(res renju.Result, stone board.Stone, size int) resultDTO {
	out := resultDTO{
		Stone:      stone.String(),
		Forbidden:  notations(res.Forbidden.Sorted(), size),
		Conditions: make([]conditionDTO, len(res.Conditions)),
		Threes:     make([]linkDTO, len(res.Threes)),
	}
	for i, c := range res.Conditions {
		out.Conditions[i] = toConditionDTO(c, size)
	}
	for i, l := range res.Threes {
		out.Threes[i] = linkDTO{Three: toConditionDTO(l.Three, size), Companion: l.Companion.Notation(size)}
	}
	return out
}

func toLibraryDTO(l store.Library) libraryDTO {
	return libraryDTO{ID: l.ID, Name: l.Name, Nodes: l.Nodes, Created: l.Created}
}
