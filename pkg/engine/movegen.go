package engine

import (
	"github.com/notnil/chess"

	"github.com/jlux98/SchachMotor-sub001/pkg/transposition"
)

// MoveGenerator expands positions into their legal follow-up positions
type MoveGenerator struct {
	cache          *transposition.Table
	GeneratedNodes uint
}

// NewMoveGenerator returns a generator whose positions share cache, which may be nil
func NewMoveGenerator(cache *transposition.Table) *MoveGenerator {
	return &MoveGenerator{cache: cache}
}

// Expand returns one position per legal move in generation order. Captures, checks and
// promotions are marked as interesting. A checkmate or stalemate yields no positions.
func (g *MoveGenerator) Expand(p *Position) ([]*Position, error) {
	if p == nil || p.pos == nil || p.pos.Board() == nil {
		return nil, ErrMalformedPosition
	}
	moves := p.pos.ValidMoves()
	children := make([]*Position, 0, len(moves))
	for _, mv := range moves {
		child := &Position{pos: p.pos.Update(mv), move: mv, cache: g.cache}
		if isInteresting(mv) {
			child.MarkAsInteresting()
		}
		children = append(children, child)
	}
	g.GeneratedNodes += uint(len(children))
	return children, nil
}

// isInteresting is true for the moves with the highest potential score variance
func isInteresting(mv *chess.Move) bool {
	return mv.HasTag(chess.Capture) || mv.HasTag(chess.Check) || mv.Promo() != chess.NoPieceType
}
