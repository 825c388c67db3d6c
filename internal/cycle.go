package internal

import "slices"

// findCycle searches upward from start for root. When start depends on root,
// making root depend on start would close a cycle; the returned path starts
// at root, then walks from start up through dependencies until root.
func findCycle(root, start *Node) []*Node {
	if start == root {
		return []*Node{root}
	}

	pred := map[*Node]*Node{start: root}
	queue := []*Node{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for p := range allParents(cur.rule) {
			if p == root {
				path := []*Node{}
				for n := cur; n != root; n = pred[n] {
					path = append(path, n)
				}
				path = append(path, root)
				slices.Reverse(path)
				return path
			}
			if _, ok := pred[p]; !ok {
				pred[p] = cur
				queue = append(queue, p)
			}
		}
	}
	return nil
}
