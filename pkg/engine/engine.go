package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/jlux98/SchachMotor-sub001/pkg/search"
	"github.com/jlux98/SchachMotor-sub001/pkg/transposition"
)

// ErrGameOver is returned when the game has already ended
var ErrGameOver = errors.New("game is over, no move can be played")

// minBudget is the shortest time a timed search is given after the safety margin
const minBudget = 10 * time.Millisecond

// Options configure an Engine
type Options struct {
	Strategy           string        // name of the search strategy
	SafetyMargin       time.Duration // subtracted from every time budget
	UseOpeningBook     bool          // play theory moves while the game is in the book
	UseEvalCache       bool          // share static evaluations between searches
	IterativeDeepening bool          // search depth 1, 2, ... until the budget runs out
}

// Engine picks moves for a game
type Engine struct {
	opts  Options
	log   *zap.SugaredLogger
	book  *Book
	cache *transposition.Table
}

// Result describes the move an engine picked
type Result struct {
	ID       uuid.UUID       // search session id, also used in the logs
	Move     *chess.Move     // the chosen move
	Position *chess.Position // the position after the move
	Score    int             // evaluation of the move, positive favours White
	Depth    int             // deepest ply budget that produced the move
	Opening  string          // opening name if the move came from the book
	FromBook bool
	Complete bool // false if the search was stopped before it finished
	Stats    search.Stats
	Elapsed  time.Duration
}

// NewEngine returns an engine, the strategy name is validated here
func NewEngine(opts Options, log *zap.SugaredLogger) (*Engine, error) {
	if _, err := NewStrategy(opts.Strategy, nil); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Engine{opts: opts, log: log}
	if opts.UseOpeningBook {
		e.book = NewBook()
	}
	if opts.UseEvalCache {
		e.cache = transposition.NewTable()
	}
	return e, nil
}

// Options returns the options the engine was created with
func (e *Engine) Options() Options {
	return e.opts
}

// NewGame forgets everything cached from previous games
func (e *Engine) NewGame() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Search will pick a move for the side to move in game. depth is the ply budget, budget the
// time the search may take, zero meaning unlimited. Cancelling ctx stops the search, the
// best fully evaluated move found so far is returned.
func (e *Engine) Search(ctx context.Context, game *chess.Game, depth int, budget time.Duration) (*Result, error) {
	start := time.Now()
	id := uuid.New()
	// Check that we can actually play a move here
	if game.Outcome() != chess.NoOutcome || len(game.ValidMoves()) == 0 {
		return nil, ErrGameOver
	}
	if depth < 1 {
		return nil, fmt.Errorf("%w: got %d", search.ErrInvalidDepth, depth)
	}
	if e.book != nil {
		if mv, name := e.book.Lookup(game); mv != nil {
			e.log.Infow("playing book move", "id", id, "move", mv.String(), "opening", name)
			return &Result{
				ID:       id,
				Move:     mv,
				Position: game.Position().Update(mv),
				Opening:  name,
				FromBook: true,
				Complete: true,
				Elapsed:  time.Since(start),
			}, nil
		}
	}

	clock := &stopper{}
	if budget > 0 {
		budget -= e.opts.SafetyMargin
		if budget < minBudget {
			budget = minBudget
		}
		timer := time.AfterFunc(budget, clock.Stop)
		defer timer.Stop()
	}

	first := depth
	if e.opts.IterativeDeepening {
		first = 1
	}
	var result *Result
	for d := first; d <= depth && !clock.Fired(); d++ {
		res, err := e.searchDepth(ctx, game, d, clock)
		if errors.Is(err, search.ErrNoBestMove) && result != nil {
			break
		}
		if err != nil {
			e.log.Errorw("search failed", "id", id, "depth", d, "error", err)
			return nil, err
		}
		result = res
		if !res.Complete || IsMateScore(res.Score) {
			break
		}
	}
	if result == nil {
		return nil, search.ErrNoBestMove
	}
	result.ID = id
	result.Elapsed = time.Since(start)
	e.log.Infow("search finished",
		"id", id,
		"strategy", e.opts.Strategy,
		"depth", result.Depth,
		"move", result.Move.String(),
		"score", result.Score,
		"complete", result.Complete,
		"visited", result.Stats.Visited,
		"evaluated", result.Stats.Evaluated,
		"cutoffs", result.Stats.Cutoffs,
		"reclaimed", result.Stats.Reclaimed,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// searchDepth runs one game tree search, clock stops it once the time budget is spent.
// The tree is released before returning.
func (e *Engine) searchDepth(ctx context.Context, game *chess.Game, depth int, clock *stopper) (*Result, error) {
	history := NewHistory(game)
	strategy, err := NewStrategy(e.opts.Strategy, history)
	if err != nil {
		return nil, err
	}
	root := NewPosition(game.Position(), e.cache)
	gen := NewMoveGenerator(e.cache)
	gt := search.NewGameTree[*Position](root, gen, strategy, root.WhiteToMove())
	defer gt.Delete()
	clock.Track(gt)
	defer clock.Track(nil)

	best, err := gt.CalculateBestMove(ctx, depth)
	if err != nil {
		return nil, err
	}
	score, err := best.Content().Value()
	if err != nil {
		return nil, err
	}
	stats := gt.Stats()
	return &Result{
		Move:     best.Content().Move(),
		Position: best.Content().Chess(),
		Score:    score,
		Depth:    depth,
		Complete: !stats.Cancelled,
		Stats:    stats,
	}, nil
}

// stopper forwards a timeout to whichever game tree is currently searched
type stopper struct {
	mu    sync.Mutex
	tree  *search.GameTree[*Position]
	fired bool
}

// Stop stops the tracked tree and every tree tracked afterwards
func (s *stopper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = true
	if s.tree != nil {
		s.tree.Stop()
	}
}

// Track makes tree the one to stop, a tree tracked after firing is stopped immediately
func (s *stopper) Track(tree *search.GameTree[*Position]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	if s.fired && tree != nil {
		tree.Stop()
	}
}

// Fired reports whether the budget is spent
func (s *stopper) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}
