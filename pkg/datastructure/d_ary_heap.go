package datastructure

import (
	"errors"

	"github.com/lintang-b-s/roadflow/pkg"
)

var errEmptyHeap = errors.New("heap is empty")

type PriorityQueueNode[T comparable] struct {
	rank    float64
	item    T
	itemPos int
}

func NewPriorityQueueNode[T comparable](rank float64, item T) *PriorityQueueNode[T] {
	return &PriorityQueueNode[T]{rank: rank, item: item}
}

func (p *PriorityQueueNode[T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T]) GetRank() float64 {
	return p.rank
}

func (p *PriorityQueueNode[T]) SetRank(rank float64) {
	p.rank = rank
}

func (p *PriorityQueueNode[T]) SetPos(i int) {
	p.itemPos = i
}

func (p *PriorityQueueNode[T]) GetPos() int {
	return p.itemPos
}

// MinHeap d-ary min priority queue with decrease-key. nodes remember their slot so DecreaseKey is O(log_d N).
type MinHeap[T comparable] struct {
	heap []*PriorityQueueNode[T]
	d    int
}

func NewBinaryHeap[T comparable]() *MinHeap[T] {
	return NewdAryHeap[T](2)
}

func NewFourAryHeap[T comparable]() *MinHeap[T] {
	return NewdAryHeap[T](4)
}

func NewdAryHeap[T comparable](d int) *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]*PriorityQueueNode[T], 0),
		d:    d,
	}
}

func (h *MinHeap[T]) Preallocate(maxSearchSize int) {
	h.heap = make([]*PriorityQueueNode[T], 0, maxSearchSize)
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / h.d
}

func (h *MinHeap[T]) siftUp(index int) {
	for index != 0 && h.heap[index].rank < h.heap[h.parent(index)].rank {
		p := h.parent(index)
		h.Swap(index, p)
		index = p
	}
}

func (h *MinHeap[T]) siftDown(index int) {
	for {
		first := index*h.d + 1
		if first >= len(h.heap) {
			return
		}
		last := first + h.d
		if last > len(h.heap) {
			last = len(h.heap)
		}

		smallest := first
		for i := first + 1; i < last; i++ {
			if h.heap[i].rank < h.heap[smallest].rank {
				smallest = i
			}
		}

		if h.heap[smallest].rank >= h.heap[index].rank {
			return
		}
		h.Swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]

	h.heap[i].SetPos(i)
	h.heap[j].SetPos(j)
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Clear() {
	h.heap = h.heap[:0]
}

func (h *MinHeap[T]) GetMin() (*PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return nil, errEmptyHeap
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) GetMinRank() float64 {
	if h.IsEmpty() {
		return 2 * pkg.INF_WEIGHT
	}
	return h.heap[0].rank
}

func (h *MinHeap[T]) Insert(node *PriorityQueueNode[T]) {
	h.heap = append(h.heap, node)
	index := h.Size() - 1
	node.SetPos(index)
	h.siftUp(index)
}

// ExtractMin pops the root. O(d log_d N)
func (h *MinHeap[T]) ExtractMin() (*PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return nil, errEmptyHeap
	}
	root := h.heap[0]

	h.Swap(0, h.Size()-1)
	h.heap = h.heap[:h.Size()-1]
	root.SetPos(-1)
	if len(h.heap) > 0 {
		h.siftDown(0)
	}

	return root, nil
}

// DecreaseKey lowers the rank of a node that is still in the heap.
func (h *MinHeap[T]) DecreaseKey(node *PriorityQueueNode[T], rank float64) error {
	pos := node.GetPos()
	if pos < 0 || pos >= h.Size() || h.heap[pos] != node || node.GetRank() < rank {
		return errors.New("invalid index or new value")
	}

	node.SetRank(rank)
	h.siftUp(pos)
	return nil
}
