package search

import (
	"sort"

	"github.com/jlux98/SchachMotor-sub001/pkg/tree"
)

// byInterest sorts interesting nodes before the others
type byInterest[T Evaluable] []*tree.Node[T]

func (a byInterest[T]) Len() int      { return len(a) }
func (a byInterest[T]) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byInterest[T]) Less(i, j int) bool {
	return a[i].Content().IsInteresting() && !a[j].Content().IsInteresting()
}

// generationOrder keeps the children in the order they were generated
func generationOrder[T Evaluable](nodes []*tree.Node[T]) []*tree.Node[T] {
	return nodes
}

// interestingFirst moves interesting nodes to the front, ties keep generation order
func interestingFirst[T Evaluable](nodes []*tree.Node[T]) []*tree.Node[T] {
	sort.Stable(byInterest[T](nodes))
	return nodes
}
