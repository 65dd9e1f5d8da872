package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	tm "github.com/buger/goterm"
	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/jlux98/SchachMotor-sub001/pkg/config"
	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
)

var (
	cfgPath  = flag.String("config", "", "path to a config file")
	fenStr   = flag.String("fen", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "starting position")
	asBlack  = flag.Bool("black", false, "play the black pieces")
	thinkFor = flag.Duration("movetime", 5*time.Second, "time the engine may think per move")
)

var game *chess.Game
var reader *bufio.Reader
var eng *engine.Engine
var log *zap.SugaredLogger
var depth int
var human chess.Color = chess.White

func main() {
	flag.Parse()
	cfg, err := config.Setup(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup configuration:", err)
		os.Exit(1)
	}
	// the board owns the terminal, only warnings go to stderr
	log, err = config.NewLogger("warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	eng, err = engine.NewEngine(cfg.EngineOptions(), log)
	if err != nil {
		log.Fatalw("failed to create engine", "error", err)
	}
	depth = cfg.Depth
	if *asBlack {
		human = chess.Black
	}
	// Create STDIN Reader
	reader = bufio.NewReader(os.Stdin)
	// Create the Game
	fen, err := chess.FEN(*fenStr)
	if err != nil {
		log.Fatalw("invalid starting position", "fen", *fenStr, "error", err)
	}
	game = chess.NewGame(fen)
	// Enter Game Loop
	for game.Outcome() == chess.NoOutcome {
		Turn()
	}
	Draw("")
	tm.Println(tm.Bold(fmt.Sprintf("Game over: %s by %s", game.Outcome(), game.Method())))
	tm.Flush()
}

// Draw will render the board and the last move
func Draw(status string) {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Println(game.Position().Board().Draw())
	if moves := game.Moves(); len(moves) > 0 {
		tm.Printf("Last move: %s\n", moves[len(moves)-1])
		tm.Printf("Board evaluation (White perspective): %d\n", engine.EvalStatic(game.Position().Board()))
	}
	if status != "" {
		tm.Println(status)
	}
	tm.Flush()
}

// Turn will cause the active player to take a turn
func Turn() {
	if game.Position().Turn() == human {
		Draw("")
		for {
			tm.Print("Your move: ")
			tm.Flush()
			inp := SpaceMap(ReadSTDIN())
			if err := playHumanMove(inp); err != nil {
				tm.Println(tm.Color(fmt.Sprintf("Your input was invalid, error: %v", err), tm.RED))
				continue
			}
			return
		}
	}

	Draw("Thinking...")
	res, err := eng.Search(context.Background(), game, depth, *thinkFor)
	if err != nil {
		log.Fatalw("engine failed to move", "error", err)
	}
	status := fmt.Sprintf("Search completed in %vms at depth %d, %d nodes visited",
		res.Elapsed.Milliseconds(), res.Depth, res.Stats.Visited)
	if res.FromBook {
		status = "Playing the " + res.Opening
	}
	if err := game.Move(res.Move); err != nil {
		log.Fatalw("engine played an illegal move", "move", res.Move.String(), "error", err)
	}
	Draw(tm.Color(status, tm.GREEN))
}

// playHumanMove accepts algebraic (Nf3) and UCI (g1f3) input
func playHumanMove(inp string) error {
	if mv, err := (chess.UCINotation{}).Decode(game.Position(), inp); err == nil {
		return game.Move(mv)
	}
	return game.MoveStr(inp)
}

func SpaceMap(str string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, str)
}

// ReadSTDIN will read one line from stdin, exiting on end of input
func ReadSTDIN() string {
	text, err := reader.ReadString('\n')
	if err != nil && text == "" {
		os.Exit(0)
	}
	return text
}
