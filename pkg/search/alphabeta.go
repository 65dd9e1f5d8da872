package search

import (
	"context"
	"sync/atomic"

	"github.com/jlux98/SchachMotor-sub001/pkg/tree"
)

// Stats are the counters collected during one search
type Stats struct {
	Visited   uint // nodes entered by the search
	Expanded  uint // nodes whose children were queried
	Evaluated uint // static and terminal evaluations
	Repeated  uint // children scored as draw by repetition
	Cutoffs   uint // alpha/beta cutoffs
	Reclaimed uint // children deleted by the reclamation policy
	Cancelled bool // whether the search was stopped before completion
}

// searcher runs the alpha-beta skeleton for one strategy
type searcher[T Evaluable] struct {
	ctx      context.Context
	strategy Strategy[T]
	stop     *atomic.Bool
	stats    Stats
	onVisit  func(*tree.Node[T])
	// rootLeaf is set when the root itself has no legal continuation
	rootLeaf bool
}

// stopped is the per child cancellation checkpoint
func (s *searcher[T]) stopped() bool {
	if s.stop.Load() || s.ctx.Err() != nil {
		s.stats.Cancelled = true
		return true
	}
	return false
}

// evaluate resolves the value of node. complete is false if the search was cancelled
// somewhere below node, in which case value and best reflect the fully evaluated children only.
func (s *searcher[T]) evaluate(node *tree.Node[T], depth int, alpha int, beta int, maximizing bool, root bool) (value int, best *tree.Node[T], complete bool, err error) {
	s.stats.Visited++
	if s.onVisit != nil {
		s.onVisit(node)
	}
	content := node.Content()
	if depth == 0 {
		s.stats.Evaluated++
		return content.GetOrComputeValue(), nil, true, nil
	}
	children, outcome, err := node.QueryChildren()
	if err != nil {
		return 0, nil, false, err
	}
	s.stats.Expanded++
	if outcome == tree.Leaf {
		s.rootLeaf = s.rootLeaf || root
		s.stats.Evaluated++
		return content.EvaluateKnownLeafStatically(depth), nil, true, nil
	}

	// Work on a snapshot, reclaiming a child edits the live child list
	ordered := s.strategy.order(append([]*tree.Node[T](nil), children...))
	complete = true
	for _, child := range ordered {
		if s.stopped() {
			complete = false
			break
		}
		var ev int
		if s.strategy.repeats(child.Content()) {
			s.stats.Repeated++
			child.Content().SetValue(Draw)
			ev = Draw
		} else {
			var done bool
			ev, _, done, err = s.evaluate(child, depth-1, alpha, beta, !maximizing, false)
			if err != nil {
				return 0, nil, false, err
			}
			if !done {
				// A partially searched child says nothing reliable about this node
				s.release(child)
				complete = false
				break
			}
		}

		improved := best == nil
		if maximizing {
			if !improved && ev > value {
				improved = true
			}
			if improved {
				value = ev
			}
			if ev > alpha {
				alpha = ev
			}
		} else {
			if !improved && ev < value {
				improved = true
			}
			if improved {
				value = ev
			}
			if ev < beta {
				beta = ev
			}
		}

		switch {
		case !root:
			s.release(child)
		case improved:
			s.release(best)
		default:
			s.release(child)
		}
		if improved {
			best = child
		}

		if alpha >= beta {
			s.stats.Cutoffs++
			break
		}
	}

	if root {
		// Only the path to the chosen child may survive the search
		for _, child := range ordered {
			if child != best && child.Parent() == node {
				s.release(child)
			}
		}
	}
	if best != nil && complete {
		content.SetValue(value)
	}
	return value, best, complete, nil
}

// release applies the reclamation policy to a child that is no longer needed
func (s *searcher[T]) release(child *tree.Node[T]) {
	if s.strategy.reclaim(child) {
		s.stats.Reclaimed++
	}
}
