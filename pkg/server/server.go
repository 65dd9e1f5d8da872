package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
	"github.com/jlux98/SchachMotor-sub001/pkg/search"
)

// MaxDepth is the deepest search a request may ask for
const MaxDepth = 10

type BestMoveRequest struct {
	FEN        string   `json:"fen,omitempty"`
	Moves      []string `json:"moves,omitempty"`
	Depth      int      `json:"depth,omitempty"`
	MoveTimeMS int      `json:"movetime_ms,omitempty"`
}

type BestMoveResponse struct {
	ID        string `json:"id"`
	Move      string `json:"move"`
	Score     int    `json:"score"`
	Depth     int    `json:"depth"`
	Opening   string `json:"opening,omitempty"`
	FromBook  bool   `json:"from_book"`
	Complete  bool   `json:"complete"`
	Visited   uint   `json:"visited"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// Handler serves best move requests. Searches are serialised, one engine serves all requests.
type Handler struct {
	eng   *engine.Engine
	log   *zap.SugaredLogger
	depth int
	mu    sync.Mutex
}

func NewHandler(eng *engine.Engine, depth int, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{eng: eng, log: log, depth: depth}
}

// Router mounts the handler on a new chi router
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", h.HandleHealth)
	r.Post("/bestmove", h.HandleBestMove)
	return r
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.log, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleBestMove(w http.ResponseWriter, r *http.Request) {
	var req BestMoveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	depth := req.Depth
	if depth == 0 {
		depth = h.depth
	}
	if depth < 1 || depth > MaxDepth || req.MoveTimeMS < 0 {
		writeJSONError(h.log, w, http.StatusBadRequest, fmt.Sprintf("depth must be between 1 and %d", MaxDepth))
		return
	}
	game, err := buildGame(req.FEN, req.Moves)
	if err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	res, err := h.eng.Search(r.Context(), game, depth, time.Duration(req.MoveTimeMS)*time.Millisecond)
	h.mu.Unlock()
	switch {
	case errors.Is(err, engine.ErrGameOver):
		writeJSONError(h.log, w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, search.ErrNoBestMove):
		writeJSONError(h.log, w, http.StatusServiceUnavailable, "search was cancelled before a move was found")
		return
	case err != nil:
		h.log.Errorf("failed to search best move: %v", err)
		writeJSONError(h.log, w, http.StatusInternalServerError, "Failed to search best move")
		return
	}

	writeJSON(h.log, w, http.StatusOK, BestMoveResponse{
		ID:        res.ID.String(),
		Move:      chess.UCINotation{}.Encode(game.Position(), res.Move),
		Score:     res.Score,
		Depth:     res.Depth,
		Opening:   res.Opening,
		FromBook:  res.FromBook,
		Complete:  res.Complete,
		Visited:   res.Stats.Visited,
		ElapsedMS: res.Elapsed.Milliseconds(),
	})
}

// buildGame sets up fen, the initial position if empty, and plays moves in UCI notation
func buildGame(fen string, moves []string) (*chess.Game, error) {
	opts := []func(*chess.Game){chess.UseNotation(chess.UCINotation{})}
	if fen != "" {
		opt, err := chess.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("invalid fen: %w", err)
		}
		opts = append(opts, opt)
	}
	game := chess.NewGame(opts...)
	for _, mv := range moves {
		if err := game.MoveStr(mv); err != nil {
			return nil, fmt.Errorf("invalid move %s: %w", mv, err)
		}
	}
	return game, nil
}

func writeJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("writeJSON encode error: %v", err)
	}
}

func writeJSONError(log *zap.SugaredLogger, w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	log.Debugf("writeJSONError: %s", msg)
}
