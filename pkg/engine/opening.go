package engine

import (
	"sort"
	"strings"

	"github.com/notnil/chess"
	"github.com/notnil/chess/opening"
)

// startFEN is the standard starting position
const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Book looks up theory moves in the ECO opening classification
type Book struct {
	eco *opening.BookECO
}

// NewBook loads the ECO book
func NewBook() *Book {
	return &Book{eco: opening.NewBookECO()}
}

// Lookup returns the next theory move for game and the name of the opening it follows.
// It returns nil if the game left the book or did not start from the initial position.
func (b *Book) Lookup(game *chess.Game) (*chess.Move, string) {
	if !startedFromInitialPosition(game) {
		return nil, ""
	}
	prevMoves := game.Moves()
	moveIndex := len(prevMoves)
	openings := b.eco.Possible(prevMoves)
	sort.Stable(byOpeningLength(openings))
	for _, op := range openings {
		line := bookLine(op)
		if len(line) <= moveIndex || !samePrefix(line, prevMoves) {
			continue
		}
		// Translate the book move into a move that is valid in our own game
		want := line[moveIndex]
		for _, mv := range game.ValidMoves() {
			if mv.String() == want {
				return mv, op.Title()
			}
		}
	}
	return nil, ""
}

// Name returns the title of the opening the game currently follows
func (b *Book) Name(game *chess.Game) string {
	if !startedFromInitialPosition(game) {
		return ""
	}
	if op := b.eco.Find(game.Moves()); op != nil {
		return op.Title()
	}
	return ""
}

// bookLine returns the moves of an opening in UCI notation, the book stores them as
// "1.e2e4 e7e5 2.g1f3"
func bookLine(op *opening.Opening) []string {
	fields := strings.Fields(op.PGN())
	line := make([]string, 0, len(fields))
	for _, f := range fields {
		if idx := strings.Index(f, "."); idx >= 0 {
			f = f[idx+1:]
		}
		if f != "" {
			line = append(line, f)
		}
	}
	return line
}

func samePrefix(line []string, played []*chess.Move) bool {
	for idx, mv := range played {
		if line[idx] != mv.String() {
			return false
		}
	}
	return true
}

func startedFromInitialPosition(game *chess.Game) bool {
	positions := game.Positions()
	if len(positions) == 0 {
		return false
	}
	start, err := chess.FEN(startFEN)
	if err != nil {
		return false
	}
	return samePosition(positions[0], chess.NewGame(start).Position())
}
