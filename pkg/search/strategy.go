package search

import "github.com/jlux98/SchachMotor-sub001/pkg/tree"

// Ordering arranges a snapshot of a node's children before they are visited
type Ordering[T Evaluable] func(children []*tree.Node[T]) []*tree.Node[T]

// Reclamation is applied to a child once its value no longer matters to any bound
type Reclamation[T Evaluable] func(child *tree.Node[T])

// RepetitionCheck reports whether a content was already reached earlier in the game
type RepetitionCheck[T Evaluable] func(content T) bool

// History is an ordered record of previously reached contents
type History[T any] interface {
	Contains(content T) bool
}

// Strategy is one alpha-beta variant, described by its three policies.
// Nil policies mean generation order, no reclamation and no repetition check.
type Strategy[T Evaluable] struct {
	Name    string
	Order   Ordering[T]
	Reclaim Reclamation[T]
	Repeats RepetitionCheck[T]
}

func (s Strategy[T]) order(children []*tree.Node[T]) []*tree.Node[T] {
	if s.Order == nil {
		return generationOrder(children)
	}
	return s.Order(children)
}

func (s Strategy[T]) reclaim(child *tree.Node[T]) bool {
	if s.Reclaim == nil || child == nil {
		return false
	}
	s.Reclaim(child)
	return true
}

func (s Strategy[T]) repeats(content T) bool {
	return s.Repeats != nil && s.Repeats(content)
}

func selfDestruct[T Evaluable](child *tree.Node[T]) {
	child.DeleteSelf()
}

// AlphaBeta visits children in generation order and keeps the whole explored tree
func AlphaBeta[T Evaluable]() Strategy[T] {
	return Strategy[T]{Name: "alphabeta"}
}

// SelfDestructingAlphaBeta deletes every child as soon as its value has been used,
// only the best child of the root survives the search
func SelfDestructingAlphaBeta[T Evaluable]() Strategy[T] {
	return Strategy[T]{
		Name:    "selfdestructing",
		Reclaim: selfDestruct[T],
	}
}

// MoveOrderingSelfDestructingAlphaBeta visits interesting children first and self destructs
func MoveOrderingSelfDestructingAlphaBeta[T Evaluable]() Strategy[T] {
	return Strategy[T]{
		Name:    "moveordering",
		Order:   interestingFirst[T],
		Reclaim: selfDestruct[T],
	}
}

// RepetitionAwareAlphaBeta behaves like MoveOrderingSelfDestructingAlphaBeta but scores
// every child found in history as a draw without searching it
func RepetitionAwareAlphaBeta[T Evaluable](history History[T]) Strategy[T] {
	s := MoveOrderingSelfDestructingAlphaBeta[T]()
	s.Name = "repetition"
	if history != nil {
		s.Repeats = history.Contains
	}
	return s
}
