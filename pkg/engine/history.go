package engine

import "github.com/notnil/chess"

// History is the ordered list of positions reached so far in a game
type History []*chess.Position

// NewHistory returns the positions of game, the current one included
func NewHistory(game *chess.Game) History {
	return History(game.Positions())
}

// Contains reports whether p equals any recorded position. Positions are compared in full,
// not by hash.
func (h History) Contains(p *Position) bool {
	if p == nil || p.pos == nil {
		return false
	}
	for _, pos := range h {
		if samePosition(pos, p.pos) {
			return true
		}
	}
	return false
}
