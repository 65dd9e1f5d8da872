package uci

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/notnil/chess"

	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
)

// syncBuffer is written by the search goroutine and read by the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var testOptions = engine.Options{
	Strategy:           engine.StrategyRepetition,
	UseEvalCache:       true,
	IterativeDeepening: true,
}

func run(t *testing.T, opts engine.Options, script string) string {
	t.Helper()
	c, err := NewController(opts, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out syncBuffer
	if err := c.Run(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out.String()
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "bestmove ") {
			return strings.TrimPrefix(line, "bestmove ")
		}
	}
	t.Fatalf("no bestmove in output:\n%s", out)
	return ""
}

func TestHandshake(t *testing.T) {
	out := run(t, testOptions, "uci\nisready\nquit\n")
	for _, want := range []string{"id name SchachMotor", "option name Strategy", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestPositionAndGo(t *testing.T) {
	out := run(t, testOptions, "position startpos moves e2e4 e7e5 g1f3\ngo depth 2\n")
	mv := bestMove(t, out)

	game := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for _, m := range []string{"e2e4", "e7e5", "g1f3"} {
		if err := game.MoveStr(m); err != nil {
			t.Fatalf("fixture move %s: %v", m, err)
		}
	}
	if err := game.MoveStr(mv); err != nil {
		t.Fatalf("bestmove %s is not legal for Black: %v", mv, err)
	}
	if !strings.Contains(out, "info depth 2") {
		t.Fatalf("expected an info line for depth 2:\n%s", out)
	}
}

func TestMateIsReported(t *testing.T) {
	out := run(t, testOptions, "position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1\ngo depth 3\n")
	if mv := bestMove(t, out); mv != "a1a8" {
		t.Fatalf("got %s, want a1a8", mv)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Fatalf("expected a mate score:\n%s", out)
	}

	out = run(t, testOptions, "position fen r5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1\ngo depth 2\n")
	if mv := bestMove(t, out); mv != "a8a1" {
		t.Fatalf("got %s, want a8a1", mv)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Fatalf("scores must be from the side to move:\n%s", out)
	}
}

func TestGameOverAnswersNullMove(t *testing.T) {
	out := run(t, testOptions, "position fen R5k1/5ppp/8/8/8/8/5PPP/6K1 b - - 1 1\ngo depth 2\n")
	if mv := bestMove(t, out); mv != "0000" {
		t.Fatalf("got %s, want 0000", mv)
	}
}

func TestInvalidCommandsKeepState(t *testing.T) {
	script := strings.Join([]string{
		"position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"position fen not a fen",
		"position startpos moves e2e5",
		"go depth x",
		"setoption name Strategy value minimax",
		"setoption name Depth value 0",
		"frobnicate",
		"go",
	}, "\n") + "\n"
	out := run(t, testOptions, script)
	if mv := bestMove(t, out); mv != "a1a8" {
		t.Fatalf("rejected commands must not change the position, got %s", mv)
	}
}

func TestSetOption(t *testing.T) {
	c, err := NewController(testOptions, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cmd := range []string{"name Depth value 5", "name Strategy value alphabeta", "name OwnBook value true"} {
		if err := c.setOption(strings.Fields(cmd)); err != nil {
			t.Fatalf("%s: unexpected error: %v", cmd, err)
		}
	}
	if c.depth != 5 || c.opts.Strategy != engine.StrategyAlphaBeta || !c.opts.UseOpeningBook {
		t.Fatalf("options were not applied: depth=%d opts=%+v", c.depth, c.opts)
	}
	if err := c.setOption(strings.Fields("name Strategy value minimax")); err == nil {
		t.Fatalf("an unknown strategy must be rejected")
	}
	if c.opts.Strategy != engine.StrategyAlphaBeta {
		t.Fatalf("a rejected option must not change the engine")
	}
}

func TestBookMoveFromStartPosition(t *testing.T) {
	opts := testOptions
	opts.UseOpeningBook = true
	out := run(t, opts, "ucinewgame\nposition startpos\ngo depth 4\n")
	mv := bestMove(t, out)
	if !strings.Contains(out, "info string book move") {
		t.Fatalf("expected a book move:\n%s", out)
	}
	game := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	if err := game.MoveStr(mv); err != nil {
		t.Fatalf("book move %s is not legal: %v", mv, err)
	}
}

func TestStopEndsInfiniteSearch(t *testing.T) {
	c, err := NewController(testOptions, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in, w := io.Pipe()
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background(), in, &out) }()

	if _, err := io.WriteString(w, "position startpos\ngo infinite\n"); err != nil {
		t.Fatalf("writing commands: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if _, err := io.WriteString(w, "stop\nisready\n"); err != nil {
		t.Fatalf("writing commands: %v", err)
	}
	w.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("stop did not end the search")
	}
	got := out.String()
	if strings.Count(got, "bestmove ") != 1 {
		t.Fatalf("expected exactly one bestmove:\n%s", got)
	}
	if strings.Index(got, "bestmove ") > strings.Index(got, "readyok") {
		t.Fatalf("bestmove must be written before stop returns:\n%s", got)
	}
}

func TestMovetime(t *testing.T) {
	start := time.Now()
	out := run(t, testOptions, "position startpos\ngo movetime 100\n")
	bestMove(t, out)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("movetime was ignored, took %v", elapsed)
	}
}

func TestBudget(t *testing.T) {
	tests := []struct {
		name string
		args string
		turn chess.Color
		want time.Duration
	}{
		{"movetime", "movetime 250 wtime 1000", chess.White, 250 * time.Millisecond},
		{"white clock", "wtime 30000 btime 1000 winc 1000", chess.White, 1500 * time.Millisecond},
		{"black clock", "wtime 30000 btime 6000 movestogo 3", chess.Black, 2000 * time.Millisecond},
		{"increment beyond clock", "btime 100 binc 1000", chess.Black, 50 * time.Millisecond},
		{"infinite", "infinite wtime 1000", chess.White, 0},
		{"none", "depth 3", chess.White, 0},
	}
	for _, tc := range tests {
		p, err := parseGo(strings.Fields(tc.args))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got := p.budget(tc.turn); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
	if _, err := parseGo([]string{"wtime"}); err == nil {
		t.Fatalf("a missing value must fail")
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score, depth int
		want         string
	}{
		{35, 4, "cp 35"},
		{-120, 4, "cp -120"},
		{engine.MateScore + 1, 2, "mate 1"},
		{engine.MateScore + 1, 4, "mate 2"},
		{-(engine.MateScore + 2), 4, "mate -1"},
	}
	for _, tc := range tests {
		if got := formatScore(tc.score, tc.depth); got != tc.want {
			t.Fatalf("formatScore(%d, %d) = %q, want %q", tc.score, tc.depth, got, tc.want)
		}
	}
}

// flakyWriter fails the first failures writes, then records the output
type flakyWriter struct {
	mu       sync.Mutex
	failures int
	buf      bytes.Buffer
}

var errWrite = errors.New("write failed")

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return 0, errWrite
	}
	return w.buf.Write(p)
}

func TestOutputErrorBelongsToItsSearch(t *testing.T) {
	c, err := NewController(testOptions, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := &flakyWriter{failures: 1}
	if err := c.Run(context.Background(), strings.NewReader("go depth 1\ngo depth 1\n"), out); err != nil {
		t.Fatalf("a failed write of an earlier search must not be reported later: %v", err)
	}
	if !strings.Contains(out.buf.String(), "bestmove ") {
		t.Fatalf("the second search must answer:\n%s", out.buf.String())
	}

	c, err = NewController(testOptions, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out = &flakyWriter{failures: 1}
	if err := c.Run(context.Background(), strings.NewReader("go depth 1\n"), out); !errors.Is(err, errWrite) {
		t.Fatalf("got %v, want the write error of the last search", err)
	}
}
