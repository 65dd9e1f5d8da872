package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"golang.org/x/sync/errgroup"

	"github.com/jlux98/SchachMotor-sub001/pkg/engine"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
var depth = flag.Int("depth", 4, "search depth for every position")
var strategies = flag.String("strategies", strings.Join(engine.StrategyNames, ","), "comma separated strategies to compare")
var parallel = flag.Bool("parallel", false, "run the strategies concurrently")
var evalCount = flag.Int("evals", 1000000, "number of static evaluations to time")

var positions = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"5B2/PP1k2P1/p3pr1p/7p/1p2p3/8/3K2Rn/4r3 w - - 0 1",
}

type row struct {
	strategy string
	fen      string
	res      *engine.Result
}

func main() {
	// Setup Profiling
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}
	fmt.Println("----BEGIN SCHACHMOTOR BENCHMARK----")
	benchmarkStaticEval(*evalCount)
	if err := benchmarkStrategies(strings.Split(*strategies, ","), *depth, *parallel); err != nil {
		log.Fatal(err)
	}
	fmt.Println("----END  SCHACHMOTOR  BENCHMARK----")
}

// benchmarkStrategies searches every position with every strategy and prints one row each
func benchmarkStrategies(names []string, depth int, parallel bool) error {
	var (
		mu   sync.Mutex
		rows []row
		g    errgroup.Group
	)
	if !parallel {
		g.SetLimit(1)
	}
	for _, name := range names {
		eng, err := engine.NewEngine(engine.Options{Strategy: name}, nil)
		if err != nil {
			return err
		}
		name := name
		g.Go(func() error {
			for _, fen := range positions {
				opt, err := chess.FEN(fen)
				if err != nil {
					return err
				}
				res, err := eng.Search(context.Background(), chess.NewGame(opt), depth, 0)
				if err != nil {
					return fmt.Errorf("%s on %s: %w", name, fen, err)
				}
				mu.Lock()
				rows = append(rows, row{strategy: name, fen: fen, res: res})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Printf("[SEARCH] depth %d\n", depth)
	for _, r := range rows {
		fmt.Printf("[SEARCH] %-16s %-6s visited=%-9d cutoffs=%-8d reclaimed=%-9d %6dms  %s\n",
			r.strategy, r.res.Move, r.res.Stats.Visited, r.res.Stats.Cutoffs, r.res.Stats.Reclaimed,
			r.res.Elapsed.Milliseconds(), r.fen)
	}
	return nil
}

func benchmarkStaticEval(n int) {
	if n <= 0 {
		return
	}
	fmt.Println("[EVAL] Begin Setup")
	// Create the Game from the base position FEN
	fen, _ := chess.FEN(positions[1])
	game := chess.NewGame(fen)
	// Generate Positions for the valid moves
	var boards []*chess.Board
	for _, mv := range game.ValidMoves() {
		boards = append(boards, game.Position().Update(mv).Board())
	}
	// Randomly select the boards up front so that only evaluation is timed
	selection := make([]*chess.Board, n)
	for i := range selection {
		selection[i] = boards[rand.Intn(len(boards))]
	}
	fmt.Printf("[EVAL] Setup Completed, Evaluating %d Positions\n", n)
	start := time.Now()
	for _, b := range selection {
		engine.EvalStatic(b)
	}
	elapsed := time.Since(start)
	fmt.Printf("[EVAL] %d Operations completed in %vms\n", n, elapsed.Milliseconds())
	fmt.Printf("[EVAL] That Makes %.0f Static Evaluations per second\n", float64(n)/elapsed.Seconds())
}
