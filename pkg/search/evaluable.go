package search

import (
	"errors"
	"math"
)

// PositiveInfinity is bigger than any score a content can report
const PositiveInfinity = math.MaxInt

// NegativeInfinity is smaller than any score a content can report
const NegativeInfinity = math.MinInt

// Draw is the neutral score given to repeated positions
const Draw = 0

var (
	// ErrUninitializedValue is returned when a value is read before it was ever assigned
	ErrUninitializedValue = errors.New("value has not been initialized")
	// ErrInvalidDepth is returned for search depths below one
	ErrInvalidDepth = errors.New("search depth must be at least 1")
	// ErrNoLegalMoves is returned when the root has no legal continuation
	ErrNoLegalMoves = errors.New("root position has no legal moves")
	// ErrNoBestMove is returned when the search was cancelled before any root child was evaluated
	ErrNoBestMove = errors.New("search cancelled before a best move was found")
	// ErrSearchInProgress is returned when the tree is already being searched
	ErrSearchInProgress = errors.New("a search is already running on this tree")
)

// Evaluable is the content a search tree node carries
type Evaluable interface {
	// GetOrComputeValue returns the assigned value or computes and caches a heuristic one
	GetOrComputeValue() int
	// EvaluateKnownLeafStatically scores a content without continuation, depth is the
	// remaining search depth so that shallower mates score higher
	EvaluateKnownLeafStatically(depth int) int
	// Value returns the cached value or ErrUninitializedValue
	Value() (int, error)
	SetValue(v int)
	IsInteresting() bool
	MarkAsInteresting()
	UnmarkAsInteresting()
}
