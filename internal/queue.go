package internal

// Queue is a depth-bucketed priority queue. Nodes are polled in increasing
// depth; min is the read cursor and nothing pending sits below it.
type Queue struct {
	min  int
	size int

	nodes [][]*Node // [depth]bucket
}

func NewQueue(depthHint int) *Queue {
	return &Queue{
		nodes: make([][]*Node, 0, depthHint),
	}
}

// Enqueue adds n at its depth. A node already waiting is not added twice.
func (q *Queue) Enqueue(n *Node) {
	if n.flags.has(flagInQueue) {
		return
	}
	debugAssert(n.depth >= q.min, "node enqueued below the read cursor", n.depth)

	for len(q.nodes) <= n.depth {
		q.nodes = append(q.nodes, nil)
	}

	n.flags.set(flagInQueue)
	q.nodes[n.depth] = append(q.nodes[n.depth], n)
	q.size++
}

// Poll removes and returns a node of minimal depth, or nil when empty.
func (q *Queue) Poll() *Node {
	for ; q.min < len(q.nodes); q.min++ {
		bucket := q.nodes[q.min]
		if len(bucket) == 0 {
			continue
		}

		last := len(bucket) - 1
		n := bucket[last]
		bucket[last] = nil
		q.nodes[q.min] = bucket[:last]
		q.size--

		n.flags.clear(flagInQueue)
		return n
	}
	return nil
}

// Rebuild re-buckets every pending node after depths changed and rewinds the
// read cursor.
func (q *Queue) Rebuild() {
	pending := make([]*Node, 0, q.size)
	for _, bucket := range q.nodes {
		pending = append(pending, bucket...)
	}

	q.Reset()
	for _, n := range pending {
		q.Enqueue(n)
	}
}

// Reset empties the queue, clearing the membership flag of pending nodes.
func (q *Queue) Reset() {
	for i, bucket := range q.nodes {
		for _, n := range bucket {
			n.flags.clear(flagInQueue)
		}
		clear(bucket)
		q.nodes[i] = bucket[:0]
	}
	q.min = 0
	q.size = 0
}

func (q *Queue) Len() int {
	return q.size
}
