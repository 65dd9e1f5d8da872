package engine

import (
	"github.com/notnil/chess"

	"github.com/jlux98/SchachMotor-sub001/pkg/search"
)

// EvalStatic will evaluate a board by material and piece placement, positive favours White
func EvalStatic(board *chess.Board) int {
	score := 0
	for sq, piece := range board.SquareMap() {
		score += pieceValues[piece]
		score += positionalValue(piece, sq)
	}
	return score
}

// EvalTerminal scores a position without legal moves. depth is the remaining search depth,
// a mate found with more depth left is closer to the root and scores higher.
func EvalTerminal(pos *chess.Position, depth int) int {
	if pos.Status() != chess.Checkmate {
		return search.Draw
	}
	// The side to move is the one that got mated
	if pos.Turn() == chess.White {
		return -(MateScore + depth)
	}
	return MateScore + depth
}

// IsMateScore reports whether score comes from a forced mate
func IsMateScore(score int) bool {
	return score >= MateScore || score <= -MateScore
}

func positionalValue(piece chess.Piece, sq chess.Square) int {
	rank := int(sq.Rank())
	file := int(sq.File())
	var table *[64]int
	switch piece.Type() {
	case chess.Pawn:
		table = &pawnTable
	case chess.Knight:
		table = &knightTable
	case chess.Bishop:
		table = &bishopTable
	case chess.Rook:
		table = &rookTable
	case chess.Queen:
		table = &queenTable
	case chess.King:
		table = &kingTable
	default:
		return 0
	}
	if piece.Color() == chess.White {
		return table[(7-rank)*8+file]
	}
	return -table[rank*8+file]
}
