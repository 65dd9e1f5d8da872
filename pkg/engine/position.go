package engine

import (
	"errors"
	"strings"

	"github.com/notnil/chess"

	"github.com/jlux98/SchachMotor-sub001/pkg/search"
	"github.com/jlux98/SchachMotor-sub001/pkg/transposition"
)

// ErrMalformedPosition is returned when a node carries no usable position
var ErrMalformedPosition = errors.New("malformed position")

// Position is the content of a search node: a chess position, the move that led to it
// and its cached evaluation
type Position struct {
	pos         *chess.Position
	move        *chess.Move
	cache       *transposition.Table
	value       int
	valueSet    bool
	interesting bool
}

// NewPosition wraps pos, cache may be nil
func NewPosition(pos *chess.Position, cache *transposition.Table) *Position {
	return &Position{pos: pos, cache: cache}
}

// Chess returns the wrapped position
func (p *Position) Chess() *chess.Position {
	return p.pos
}

// Move returns the move that produced this position, nil for a root
func (p *Position) Move() *chess.Move {
	return p.move
}

// WhiteToMove reports whether White is the side to move
func (p *Position) WhiteToMove() bool {
	return p.pos.Turn() == chess.White
}

// GetOrComputeValue returns the assigned value or computes the static evaluation
func (p *Position) GetOrComputeValue() int {
	if p.valueSet {
		return p.value
	}
	if p.cache == nil {
		p.SetValue(EvalStatic(p.pos.Board()))
		return p.value
	}
	hash := p.pos.Hash()
	if entry, ok := p.cache.Query(hash); ok {
		p.SetValue(entry.Score)
		return p.value
	}
	p.SetValue(EvalStatic(p.pos.Board()))
	p.cache.Commit(hash, transposition.Entry{Score: p.value})
	return p.value
}

// EvaluateKnownLeafStatically scores a checkmate or stalemate
func (p *Position) EvaluateKnownLeafStatically(depth int) int {
	p.SetValue(EvalTerminal(p.pos, depth))
	return p.value
}

// Value returns the assigned value or search.ErrUninitializedValue
func (p *Position) Value() (int, error) {
	if !p.valueSet {
		return 0, search.ErrUninitializedValue
	}
	return p.value, nil
}

// SetValue assigns the value
func (p *Position) SetValue(v int) {
	p.value = v
	p.valueSet = true
}

func (p *Position) IsInteresting() bool  { return p.interesting }
func (p *Position) MarkAsInteresting()   { p.interesting = true }
func (p *Position) UnmarkAsInteresting() { p.interesting = false }

// Equal compares board, side to move, castling rights and en passant square.
// Move clocks, cached values and the interesting flag are ignored.
func (p *Position) Equal(o *Position) bool {
	if p == nil || o == nil || p.pos == nil || o.pos == nil {
		return p == o
	}
	return samePosition(p.pos, o.pos)
}

// samePosition compares the first four FEN fields: board, side to move, castling rights
// and en passant square
func samePosition(a *chess.Position, b *chess.Position) bool {
	return fenKey(a) == fenKey(b)
}

func fenKey(pos *chess.Position) string {
	fields := strings.Fields(pos.String())
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
