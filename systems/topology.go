package systems

import (
	"fmt"
	"iter"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Nil marks a missing neighbor or a dead slot.
const Nil = -1

// Node is the payload of one slot.
type Node struct {
	Pos r2.Vec
	Vel r2.Vec
}

// Link connects a slot into its chain. Value < 0 marks a dead slot.
type Link struct {
	Value int
	Prev  int
	Next  int
}

// Chain describes one walk produced by Topology.Chains.
type Chain struct {
	Head   int
	Closed bool
}

// Topology is an arena of curve nodes addressed by stable integer handles.
// Nodes and links are parallel-indexed; freed slots are recycled in FIFO
// order before the arena grows.
type Topology struct {
	nodes []Node
	links []Link

	free     []int
	freeHead int

	live    int
	visited []bool // scratch for chain walks
}

// NewTopology creates an empty store with room for capacity slots.
func NewTopology(capacity int) *Topology {
	return &Topology{
		nodes: make([]Node, 0, capacity),
		links: make([]Link, 0, capacity),
	}
}

// Reset drops every slot. Buffers are kept.
func (t *Topology) Reset() {
	t.nodes = t.nodes[:0]
	t.links = t.links[:0]
	t.free = t.free[:0]
	t.freeHead = 0
	t.live = 0
}

// Slots returns the arena size, live and dead.
func (t *Topology) Slots() int { return len(t.links) }

// LiveCount returns the number of live nodes.
func (t *Topology) LiveCount() int { return t.live }

// FreeCount returns the number of recyclable slots.
func (t *Topology) FreeCount() int { return len(t.free) - t.freeHead }

// IsLive reports whether h addresses a live slot.
func (t *Topology) IsLive(h int) bool {
	return h >= 0 && h < len(t.links) && t.links[h].Value >= 0
}

// Node returns the payload at h. The pointer is valid until the arena grows.
func (t *Topology) Node(h int) *Node { return &t.nodes[h] }

// Link returns the link record at h.
func (t *Topology) Link(h int) Link { return t.links[h] }

// Neighbors returns the previous and next handles of h, either may be Nil.
func (t *Topology) Neighbors(h int) (prev, next int) {
	l := t.links[h]
	return l.Prev, l.Next
}

// AppendChain allocates fresh slots for positions and links them in order.
// The free list is ignored. Returns the head handle, or Nil if empty.
func (t *Topology) AppendChain(positions []r2.Vec, closed bool) int {
	n := len(positions)
	if n == 0 {
		return Nil
	}
	base := len(t.links)
	for i, p := range positions {
		h := base + i
		prev, next := h-1, h+1
		if i == 0 {
			prev = Nil
			if closed {
				prev = base + n - 1
			}
		}
		if i == n-1 {
			next = Nil
			if closed {
				next = base
			}
		}
		t.nodes = append(t.nodes, Node{Pos: p})
		t.links = append(t.links, Link{Value: h, Prev: prev, Next: next})
	}
	t.live += n
	return base
}

// Live yields every live handle in slot order.
func (t *Topology) Live() iter.Seq[int] {
	return func(yield func(int) bool) {
		for h := range t.links {
			if t.links[h].Value < 0 {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}

// Edges yields every live edge (h, next(h)) in slot order.
func (t *Topology) Edges() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for h, l := range t.links {
			if l.Value < 0 || l.Next < 0 {
				continue
			}
			if !yield(h, l.Next) {
				return
			}
		}
	}
}

// Collapse removes the interior node h, linking its neighbors directly.
// Endpoints, dead slots and nodes of a closed loop with three or fewer
// members are left alone. Returns whether h was removed.
func (t *Topology) Collapse(h int) bool {
	if !t.IsLive(h) {
		return false
	}
	l := t.links[h]
	if l.Prev < 0 || l.Next < 0 {
		return false
	}
	if l.Prev == l.Next || t.links[l.Next].Next == l.Prev {
		return false
	}

	t.links[l.Prev].Next = l.Next
	t.links[l.Next].Prev = l.Prev
	t.links[h] = Link{Value: Nil, Prev: Nil, Next: Nil}
	t.nodes[h] = Node{}
	t.free = append(t.free, h)
	t.live--
	return true
}

// Split inserts a node at the midpoint of edge (h0, h1). h1 must be the
// next of h0. Returns the new handle, or Nil if the edge does not exist.
func (t *Topology) Split(h0, h1 int) int {
	if !t.IsLive(h0) || !t.IsLive(h1) || t.links[h0].Next != h1 {
		return Nil
	}
	mid := r2.Scale(0.5, r2.Add(t.nodes[h0].Pos, t.nodes[h1].Pos))
	return t.insertBetween(h0, h1, mid)
}

// insertBetween splices a new node at pos between h0 and h1.
func (t *Topology) insertBetween(h0, h1 int, pos r2.Vec) int {
	j := t.alloc()
	t.nodes[j] = Node{Pos: pos}
	t.links[j] = Link{Value: j, Prev: h0, Next: h1}
	t.links[h0].Next = j
	t.links[h1].Prev = j
	t.live++
	return j
}

// alloc returns a slot, reusing the oldest freed one first.
func (t *Topology) alloc() int {
	if t.freeHead < len(t.free) {
		j := t.free[t.freeHead]
		t.freeHead++
		// Compact once the consumed prefix dominates so the queue stays
		// bounded by the arena under steady churn.
		if t.freeHead > len(t.free)/2 {
			n := copy(t.free, t.free[t.freeHead:])
			t.free = t.free[:n]
			t.freeHead = 0
		}
		return j
	}
	j := len(t.links)
	t.nodes = append(t.nodes, Node{})
	t.links = append(t.links, Link{Value: Nil, Prev: Nil, Next: Nil})
	return j
}

// Chains yields every chain once: open chains from their heads in slot
// order, then closed loops starting at their lowest handle.
func (t *Topology) Chains() iter.Seq[Chain] {
	return func(yield func(Chain) bool) {
		t.resetVisited()
		for h, l := range t.links {
			if l.Value < 0 || l.Prev >= 0 {
				continue
			}
			t.markChain(h)
			if !yield(Chain{Head: h}) {
				return
			}
		}
		for h, l := range t.links {
			if l.Value < 0 || t.visited[h] {
				continue
			}
			t.markChain(h)
			if !yield(Chain{Head: h, Closed: true}) {
				return
			}
		}
	}
}

func (t *Topology) resetVisited() {
	if cap(t.visited) < len(t.links) {
		t.visited = make([]bool, len(t.links))
		return
	}
	t.visited = t.visited[:len(t.links)]
	clear(t.visited)
}

func (t *Topology) markChain(head int) {
	for h := range t.Walk(head) {
		t.visited[h] = true
	}
}

// Walk yields the handles of the chain starting at head, following next
// until Nil or until the walk returns to head.
func (t *Topology) Walk(head int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !t.IsLive(head) {
			return
		}
		for h, steps := head, 0; h >= 0 && steps < len(t.links); steps++ {
			if !yield(h) {
				return
			}
			h = t.links[h].Next
			if h == head {
				return
			}
		}
	}
}

// Positions yields live node positions in chain order, chain by chain.
func (t *Topology) Positions() iter.Seq[r2.Vec] {
	return func(yield func(r2.Vec) bool) {
		for c := range t.Chains() {
			for h := range t.Walk(c.Head) {
				if !yield(t.nodes[h].Pos) {
					return
				}
			}
		}
	}
}

// Validate checks link symmetry, that no link reaches a dead slot, that
// dead slots are freed exactly once, and that every walk terminates.
func (t *Topology) Validate() error {
	n := len(t.links)
	live := 0
	for h, l := range t.links {
		if l.Value < 0 {
			continue
		}
		live++
		if l.Value != h {
			return fmt.Errorf("slot %d: value %d does not match handle", h, l.Value)
		}
		if l.Next >= 0 {
			if l.Next >= n || t.links[l.Next].Value < 0 {
				return fmt.Errorf("slot %d: next %d is dead", h, l.Next)
			}
			if t.links[l.Next].Prev != h {
				return fmt.Errorf("slot %d: next %d links back to %d", h, l.Next, t.links[l.Next].Prev)
			}
		}
		if l.Prev >= 0 {
			if l.Prev >= n || t.links[l.Prev].Value < 0 {
				return fmt.Errorf("slot %d: prev %d is dead", h, l.Prev)
			}
			if t.links[l.Prev].Next != h {
				return fmt.Errorf("slot %d: prev %d links forward to %d", h, l.Prev, t.links[l.Prev].Next)
			}
		}
	}
	if live != t.live {
		return fmt.Errorf("live count %d, counted %d", t.live, live)
	}

	seen := make(map[int]bool, t.FreeCount())
	for _, h := range t.free[t.freeHead:] {
		if h < 0 || h >= n {
			return fmt.Errorf("free list holds out-of-range slot %d", h)
		}
		if t.links[h].Value >= 0 {
			return fmt.Errorf("free list holds live slot %d", h)
		}
		if seen[h] {
			return fmt.Errorf("slot %d freed twice", h)
		}
		seen[h] = true
	}
	if live+len(seen) != n {
		return fmt.Errorf("%d dead slots missing from free list", n-live-len(seen))
	}

	walked := 0
	for c := range t.Chains() {
		for range t.Walk(c.Head) {
			walked++
		}
	}
	if walked != live {
		return fmt.Errorf("chain walks visit %d nodes, %d live", walked, live)
	}
	return nil
}

// Dump renders the link table for diagnostics.
func (t *Topology) Dump() string {
	var b strings.Builder
	b.WriteString("Indices\n")
	for i, l := range t.links {
		fmt.Fprintf(&b, " [%d]:%d <%d,%d>\n", i, l.Value, l.Prev, l.Next)
	}
	return b.String()
}
