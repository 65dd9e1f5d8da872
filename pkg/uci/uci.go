package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
)

const (
	EngineName   = "SchachMotor"
	EngineAuthor = "the SchachMotor authors"

	// MaxDepth bounds "go infinite" and the Depth option
	MaxDepth = 64

	// defaultMovesToGo is assumed when the GUI sends a clock without movestogo
	defaultMovesToGo = 30

	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ErrMalformedCommand is returned for a command whose arguments cannot be parsed
var ErrMalformedCommand = errors.New("malformed command")

// Controller speaks the UCI protocol on top of an engine. Searches run on a worker
// goroutine so that stop and isready are answered while thinking.
type Controller struct {
	log   *zap.SugaredLogger
	opts  engine.Options
	eng   *engine.Engine
	depth int
	game  *chess.Game

	outMu sync.Mutex
	out   io.Writer

	// search runs the current go command, each command gets its own group
	search *errgroup.Group
	cancel context.CancelFunc
}

// NewController returns a controller searching depth plies unless told otherwise
func NewController(opts engine.Options, depth int, log *zap.SugaredLogger) (*Controller, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrMalformedCommand, depth)
	}
	eng, err := engine.NewEngine(opts, log)
	if err != nil {
		return nil, err
	}
	c := &Controller{log: log, opts: opts, eng: eng, depth: depth}
	if err := c.setPosition(startFEN, nil); err != nil {
		return nil, err
	}
	return c, nil
}

// Run will read commands from in until quit, end of input or ctx is cancelled. Replies are
// written to out. A search still running at the end of input is waited for.
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	c.out = out
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := c.handle(ctx, strings.Fields(line))
		if err != nil {
			c.log.Warnw("command failed", "command", line, "error", err)
		}
		if quit {
			c.stopSearch()
			return nil
		}
	}
	if c.search != nil {
		err := c.search.Wait()
		c.search = nil
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Controller) handle(ctx context.Context, args []string) (bool, error) {
	switch args[0] {
	case "uci":
		return false, c.identify()
	case "isready":
		return false, c.send("readyok")
	case "ucinewgame":
		c.stopSearch()
		c.eng.NewGame()
		return false, c.setPosition(startFEN, nil)
	case "position":
		c.stopSearch()
		return false, c.position(args[1:])
	case "go":
		return false, c.goCmd(ctx, args[1:])
	case "stop":
		c.stopSearch()
		return false, nil
	case "setoption":
		c.stopSearch()
		return false, c.setOption(args[1:])
	case "d":
		return false, c.send(c.game.Position().Board().Draw())
	case "quit":
		return true, nil
	}
	c.log.Debugw("ignoring unknown command", "command", args[0])
	return false, nil
}

func (c *Controller) identify() error {
	lines := []string{
		"id name " + EngineName,
		"id author " + EngineAuthor,
		fmt.Sprintf("option name Depth type spin default %d min 1 max %d", c.depth, MaxDepth),
		"option name Strategy type combo default " + c.opts.Strategy + " var " + strings.Join(engine.StrategyNames, " var "),
		fmt.Sprintf("option name OwnBook type check default %t", c.opts.UseOpeningBook),
		"uciok",
	}
	for _, l := range lines {
		if err := c.send(l); err != nil {
			return err
		}
	}
	return nil
}

// position handles "position startpos|fen <fen> [moves <m1> ...]"
func (c *Controller) position(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: position needs startpos or fen", ErrMalformedCommand)
	}
	var fen string
	rest := args[1:]
	switch args[0] {
	case "startpos":
		fen = startFEN
	case "fen":
		idx := 0
		for idx < len(rest) && rest[idx] != "moves" {
			idx++
		}
		fen = strings.Join(rest[:idx], " ")
		rest = rest[idx:]
	default:
		return fmt.Errorf("%w: unknown position type %q", ErrMalformedCommand, args[0])
	}
	var moves []string
	if len(rest) > 0 {
		if rest[0] != "moves" {
			return fmt.Errorf("%w: expected moves, got %q", ErrMalformedCommand, rest[0])
		}
		moves = rest[1:]
	}
	return c.setPosition(fen, moves)
}

// setPosition replaces the game only if the fen and every move are valid
func (c *Controller) setPosition(fen string, moves []string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	game := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	for _, mv := range moves {
		if err := game.MoveStr(mv); err != nil {
			return fmt.Errorf("%w: move %s: %v", ErrMalformedCommand, mv, err)
		}
	}
	c.game = game
	return nil
}

func (c *Controller) goCmd(ctx context.Context, args []string) error {
	c.stopSearch()
	params, err := parseGo(args)
	if err != nil {
		return err
	}
	depth := c.depth
	if params.depth > 0 {
		depth = min(params.depth, MaxDepth)
	}
	if params.infinite {
		depth = MaxDepth
	}
	game := c.game
	eng := c.eng
	budget := params.budget(game.Position().Turn())

	searchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.search = new(errgroup.Group)
	c.search.Go(func() error {
		defer cancel()
		res, err := eng.Search(searchCtx, game, depth, budget)
		if err != nil {
			c.log.Errorw("search returned no move", "depth", depth, "error", err)
			return c.send("bestmove 0000")
		}
		if err := c.send(info(res, game.Position().Turn())); err != nil {
			return err
		}
		return c.send("bestmove " + chess.UCINotation{}.Encode(game.Position(), res.Move))
	})
	return nil
}

// stopSearch cancels the running search and waits for its bestmove to be written.
// An output error of that search is logged, it does not outlive the search.
func (c *Controller) stopSearch() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.search == nil {
		return
	}
	if err := c.search.Wait(); err != nil {
		c.log.Warnw("writing search result failed", "error", err)
	}
	c.search = nil
}

// setOption handles "setoption name <id> [value <x>]"
func (c *Controller) setOption(args []string) error {
	if len(args) < 2 || args[0] != "name" {
		return fmt.Errorf("%w: setoption needs a name", ErrMalformedCommand)
	}
	name, value := args[1:], []string(nil)
	for idx, tok := range name {
		if tok == "value" {
			name, value = name[:idx], name[idx+1:]
			break
		}
	}
	val := strings.Join(value, " ")
	opts := c.opts
	switch strings.ToLower(strings.Join(name, " ")) {
	case "depth":
		d, err := strconv.Atoi(val)
		if err != nil || d < 1 || d > MaxDepth {
			return fmt.Errorf("%w: depth %q", ErrMalformedCommand, val)
		}
		c.depth = d
		return nil
	case "strategy":
		opts.Strategy = val
	case "ownbook":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: OwnBook %q", ErrMalformedCommand, val)
		}
		opts.UseOpeningBook = b
	default:
		c.log.Debugw("ignoring unknown option", "name", strings.Join(name, " "))
		return nil
	}
	eng, err := engine.NewEngine(opts, c.log)
	if err != nil {
		return err
	}
	c.opts, c.eng = opts, eng
	return nil
}

func (c *Controller) send(line string) error {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

type goParams struct {
	depth     int
	movetime  int
	wtime     int
	btime     int
	winc      int
	binc      int
	movestogo int
	infinite  bool
}

func parseGo(args []string) (goParams, error) {
	var p goParams
	for idx := 0; idx < len(args); idx++ {
		var field *int
		switch args[idx] {
		case "infinite":
			p.infinite = true
			continue
		case "depth":
			field = &p.depth
		case "movetime":
			field = &p.movetime
		case "wtime":
			field = &p.wtime
		case "btime":
			field = &p.btime
		case "winc":
			field = &p.winc
		case "binc":
			field = &p.binc
		case "movestogo":
			field = &p.movestogo
		default:
			// searchmoves, ponder, nodes and mate are not supported
			continue
		}
		if idx+1 >= len(args) {
			return p, fmt.Errorf("%w: %s needs a value", ErrMalformedCommand, args[idx])
		}
		n, err := strconv.Atoi(args[idx+1])
		if err != nil {
			return p, fmt.Errorf("%w: %s %q", ErrMalformedCommand, args[idx], args[idx+1])
		}
		*field = n
		idx++
	}
	return p, nil
}

// budget is the time the side to move may spend, zero meaning no limit
func (p goParams) budget(turn chess.Color) time.Duration {
	if p.infinite {
		return 0
	}
	if p.movetime > 0 {
		return time.Duration(p.movetime) * time.Millisecond
	}
	remaining, inc := p.wtime, p.winc
	if turn == chess.Black {
		remaining, inc = p.btime, p.binc
	}
	if remaining <= 0 {
		return 0
	}
	movesToGo := p.movestogo
	if movesToGo <= 0 {
		movesToGo = defaultMovesToGo
	}
	ms := remaining/movesToGo + inc/2
	if ms >= remaining {
		ms = remaining / 2
	}
	return time.Duration(ms) * time.Millisecond
}

// info formats the result as an info line, scores are from the side to move's view
func info(res *engine.Result, turn chess.Color) string {
	if res.FromBook {
		return "info string book move " + res.Opening
	}
	score := res.Score
	if turn == chess.Black {
		score = -score
	}
	return fmt.Sprintf("info depth %d score %s nodes %d time %d pv %s",
		res.Depth, formatScore(score, res.Depth), res.Stats.Visited, res.Elapsed.Milliseconds(), res.Move.String())
}

func formatScore(score int, depth int) string {
	if !engine.IsMateScore(score) {
		return fmt.Sprintf("cp %d", score)
	}
	remaining := score - engine.MateScore
	if score < 0 {
		remaining = -score - engine.MateScore
	}
	moves := (depth - remaining + 1) / 2
	if score < 0 {
		moves = -moves
	}
	return fmt.Sprintf("mate %d", moves)
}
