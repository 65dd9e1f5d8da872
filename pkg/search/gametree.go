package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jlux98/SchachMotor-sub001/pkg/tree"
)

// GameTree owns the root of one search session together with its cancellation flag
type GameTree[T Evaluable] struct {
	root       *tree.Node[T]
	strategy   Strategy[T]
	maximizing bool
	stop       atomic.Bool
	running    atomic.Bool

	mu    sync.Mutex
	stats Stats

	// onVisit is called for every node the search enters
	onVisit func(*tree.Node[T])
}

// NewGameTree returns a tree rooted at content. maximizing tells whether the side
// to move in content wants the highest score.
func NewGameTree[T Evaluable](content T, expander tree.Expander[T], strategy Strategy[T], maximizing bool) *GameTree[T] {
	return &GameTree[T]{
		root:       tree.NewRoot(content, expander),
		strategy:   strategy,
		maximizing: maximizing,
	}
}

// Root returns the root node
func (g *GameTree[T]) Root() *tree.Node[T] {
	return g.root
}

// Strategy returns the strategy the tree searches with
func (g *GameTree[T]) Strategy() Strategy[T] {
	return g.strategy
}

// CalculateBestMove searches the tree depth plies deep and returns the best child of the root.
// A stopped search returns the best child among the root children it fully evaluated.
func (g *GameTree[T]) CalculateBestMove(ctx context.Context, depth int) (*tree.Node[T], error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	if !g.running.CompareAndSwap(false, true) {
		return nil, ErrSearchInProgress
	}
	defer g.running.Store(false)
	defer g.stop.Store(false)

	s := &searcher[T]{
		ctx:      ctx,
		strategy: g.strategy,
		stop:     &g.stop,
		onVisit:  g.onVisit,
	}
	_, best, _, err := s.evaluate(g.root, depth, NegativeInfinity, PositiveInfinity, g.maximizing, true)

	g.mu.Lock()
	g.stats = s.stats
	g.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if best == nil {
		if s.rootLeaf {
			return nil, ErrNoLegalMoves
		}
		return nil, ErrNoBestMove
	}
	return best, nil
}

// Stop asks the running search to finish at its next checkpoint.
// A stop issued before the search starts is honoured by that search, the flag is
// cleared when the search returns.
func (g *GameTree[T]) Stop() {
	g.stop.Store(true)
}

// Stopped reports whether a stop is pending
func (g *GameTree[T]) Stopped() bool {
	return g.stop.Load()
}

// Stats returns the counters of the last search
func (g *GameTree[T]) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// Delete releases the whole tree, it must not be called during a search
func (g *GameTree[T]) Delete() error {
	if g.running.Load() {
		return ErrSearchInProgress
	}
	g.root.DeleteSelf()
	return nil
}
