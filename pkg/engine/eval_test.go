package engine

import (
	"testing"

	"github.com/notnil/chess"
)

func TestEvalStaticSymmetry(t *testing.T) {
	tests := []struct {
		white, black string
	}{
		{startFEN, startFEN},
		{
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
			"rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		},
		{
			"4k3/8/8/8/8/8/8/3QK3 w - - 0 1",
			"3qk3/8/8/8/8/8/8/4K3 w - - 0 1",
		},
	}
	for _, tc := range tests {
		w := EvalStatic(gameFromFEN(t, tc.white).Position().Board())
		b := EvalStatic(gameFromFEN(t, tc.black).Position().Board())
		if w != -b {
			t.Fatalf("%s scores %d but its mirror scores %d", tc.white, w, b)
		}
	}
	if v := EvalStatic(gameFromFEN(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1").Position().Board()); v <= 0 {
		t.Fatalf("extra white queen must favour White, got %d", v)
	}
}

func TestEvalTerminal(t *testing.T) {
	whiteMated := gameFromFEN(t, "6rk/8/8/8/8/8/5PPP/r5K1 w - - 0 1").Position()
	if whiteMated.Status() != chess.Checkmate {
		t.Fatalf("fixture is not checkmate")
	}
	if got := EvalTerminal(whiteMated, 2); got != -(MateScore + 2) {
		t.Fatalf("got %d, want %d", got, -(MateScore + 2))
	}
	if EvalTerminal(whiteMated, 3) >= EvalTerminal(whiteMated, 1) {
		t.Fatalf("a deeper mate must not score better for the loser")
	}

	blackMated := gameFromFEN(t, "R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 1 1").Position()
	if EvalTerminal(blackMated, 3) <= EvalTerminal(blackMated, 1) {
		t.Fatalf("a shallower mate must score higher")
	}

	stalemate := gameFromFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1").Position()
	if stalemate.Status() != chess.Stalemate {
		t.Fatalf("fixture is not stalemate")
	}
	if got := EvalTerminal(stalemate, 4); got != 0 {
		t.Fatalf("stalemate scores %d, want 0", got)
	}
	if IsMateScore(EvalStatic(gameFromFEN(t, "4k3/8/8/8/8/8/8/QQQQK3 w - - 0 1").Position().Board())) {
		t.Fatalf("heuristic scores must stay below mate scores")
	}
}
