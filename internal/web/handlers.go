package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/codex-renju/internal/app"
	"github.com/jaminalder/codex-renju/internal/board"
	"github.com/jaminalder/codex-renju/internal/config"
	"github.com/jaminalder/codex-renju/internal/renju"
	"github.com/jaminalder/codex-renju/internal/renlib"
)

var errBadRequest = errors.New("bad request")

type handlers struct {
	svc *app.Service
	cfg *config.Store
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, app.ErrNotFound), errors.Is(err, renlib.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, app.ErrForbidden),
		errors.Is(err, app.ErrNothingToUndo), errors.Is(err, board.ErrOccupied):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, app.ErrLibraryName),
		errors.Is(err, board.ErrNotation), errors.Is(err, board.ErrOutOfBounds),
		errors.Is(err, board.ErrStone), errors.Is(err, board.ErrSize):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, renlib.ErrUnsupportedFormat), errors.Is(err, renlib.ErrUnsupportedVersion),
		errors.Is(err, renlib.ErrTruncatedStream), errors.Is(err, renlib.ErrInvalidCoordinate),
		errors.Is(err, renlib.ErrMalformed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseColor accepts black or white; empty input yields def.
func parseColor(s string, def board.Stone) (board.Stone, error) {
	if s == "" {
		return def, nil
	}
	stone, err := board.ParseStone(s)
	if err != nil {
		return board.Empty, err
	}
	if stone == board.Empty {
		return board.Empty, fmt.Errorf("%w: expected black or white", board.ErrStone)
	}
	return stone, nil
}

func (h *handlers) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type evaluateRequest struct {
	Size     int      `json:"size"`
	Black    []string `json:"black"`
	White    []string `json:"white"`
	Stone    string   `json:"stone"`
	Restrict []string `json:"restrict"`
}

// evaluate runs the detector on a board described in the request body.
func (h *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	req := evaluateRequest{Size: h.cfg.Get().BoardSize}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	g, err := board.New(req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, set := range []struct {
		names []string
		stone board.Stone
	}{{req.Black, board.Black}, {req.White, board.White}} {
		for _, n := range set.names {
			p, err := board.ParsePoint(n, req.Size)
			if err != nil {
				writeError(w, err)
				return
			}
			if err := g.Place(p, set.stone); err != nil {
				writeError(w, err)
				return
			}
		}
	}
	stone, err := parseColor(req.Stone, board.Black)
	if err != nil {
		writeError(w, err)
		return
	}
	var restrict renju.PointSet
	if len(req.Restrict) > 0 {
		restrict = renju.NewPointSet()
		for _, n := range req.Restrict {
			p, err := board.ParsePoint(n, req.Size)
			if err != nil {
				writeError(w, err)
				return
			}
			restrict.Add(p)
		}
	}
	writeJSON(w, http.StatusOK, toResultDTO(renju.Evaluate(g, stone, restrict), stone, req.Size))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Size int `json:"size"`
	}{Size: h.cfg.Get().BoardSize}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.CreatePosition(r.Context(), req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/positions/"+p.ID)
	writeJSON(w, http.StatusCreated, toPositionDTO(p))
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]positionDTO, len(ps))
	for i, p := range ps {
		out[i] = toPositionDTO(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPositionDTO(p))
}

func (h *handlers) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	Point string `json:"point"`
	Stone string `json:"stone"`
}

// readMove decodes a move request against the size of position id.
func (h *handlers) readMove(r *http.Request, id string) (board.Point, string, error) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		return board.Point{}, "", err
	}
	pos, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return board.Point{}, "", err
	}
	p, err := board.ParsePoint(req.Point, pos.Grid.Size())
	if err != nil {
		return board.Point{}, "", err
	}
	return p, req.Stone, nil
}

func (h *handlers) setStone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, s, err := h.readMove(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	stone, err := board.ParseStone(s)
	if err != nil {
		writeError(w, err)
		return
	}
	pos, err := h.svc.SetStone(r.Context(), id, p, stone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPositionDTO(pos))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, s, err := h.readMove(r, id)
	if err != nil {
		writeError(w, err)
		return
	}
	stone, err := parseColor(s, board.Empty)
	if err != nil {
		writeError(w, err)
		return
	}
	pos, err := h.svc.Play(r.Context(), id, stone, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPositionDTO(pos))
}

func (h *handlers) undo(w http.ResponseWriter, r *http.Request) {
	pos, err := h.svc.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPositionDTO(pos))
}

func (h *handlers) analysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stone, err := parseColor(r.URL.Query().Get("stone"), board.Black)
	if err != nil {
		writeError(w, err)
		return
	}
	pos, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Analyze(r.Context(), id, stone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(res, stone, pos.Grid.Size()))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// Plain requests only get the headers.
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.cfg.Get().Heartbeat())
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: position\n")
			_, _ = fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}

// importLibrary stores the raw RenLib file sent as the request body.
func (h *handlers) importLibrary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Get().MaxLibraryBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := h.svc.ImportLibrary(r.Context(), r.URL.Query().Get("name"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/libraries/"+l.ID)
	writeJSON(w, http.StatusCreated, toLibraryDTO(l))
}

func (h *handlers) libraries(w http.ResponseWriter, r *http.Request) {
	ls, err := h.svc.Libraries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]libraryDTO, len(ls))
	for i, l := range ls {
		out[i] = toLibraryDTO(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) libraryNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: node index %q", errBadRequest, chi.URLParam(r, "index")))
		return
	}
	lib, err := h.svc.Library(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	g, toMove, err := h.svc.LibraryPosition(r.Context(), id, index)
	if err != nil {
		writeError(w, err)
		return
	}
	n := lib.Nodes[index]
	res := renju.Evaluate(g, board.Black, nil)
	writeJSON(w, http.StatusOK, nodeDTO{
		Library:   id,
		Index:     index,
		Move:      n.Record.Point.Notation(renlib.Size),
		Flags:     n.Record.Flags.String(),
		Comment:   n.Record.Comment(),
		Children:  append([]int{}, n.Children...),
		ToMove:    toMove.String(),
		Rows:      rows(g),
		Diagram:   g.String(),
		Comments:  comments(g),
		Forbidden: notations(res.Forbidden.Sorted(), renlib.Size),
	})
}
