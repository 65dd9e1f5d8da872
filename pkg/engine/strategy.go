package engine

import (
	"errors"
	"fmt"

	"github.com/jlux98/SchachMotor-sub001/pkg/search"
)

// ErrUnknownStrategy is returned for a strategy name that does not exist
var ErrUnknownStrategy = errors.New("unknown search strategy")

// Strategy names accepted by NewStrategy
const (
	StrategyAlphaBeta       = "alphabeta"
	StrategySelfDestructing = "selfdestructing"
	StrategyMoveOrdering    = "moveordering"
	StrategyRepetition      = "repetition"
)

// StrategyNames lists every strategy, the default one last
var StrategyNames = []string{StrategyAlphaBeta, StrategySelfDestructing, StrategyMoveOrdering, StrategyRepetition}

// NewStrategy returns the named strategy, history is only used for repetition detection
func NewStrategy(name string, history History) (search.Strategy[*Position], error) {
	switch name {
	case StrategyAlphaBeta:
		return search.AlphaBeta[*Position](), nil
	case StrategySelfDestructing:
		return search.SelfDestructingAlphaBeta[*Position](), nil
	case StrategyMoveOrdering:
		return search.MoveOrderingSelfDestructingAlphaBeta[*Position](), nil
	case StrategyRepetition, "":
		return search.RepetitionAwareAlphaBeta[*Position](history), nil
	}
	return search.Strategy[*Position]{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
