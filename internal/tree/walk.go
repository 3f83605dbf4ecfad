package tree

// Walk visits the subtree rooted at n in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		// Push in reverse to visit children in order
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// Flatten returns every node of the subtree in pre-order.
func Flatten(root *Node) []*Node {
	var nodes []*Node
	root.Walk(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// Count returns the number of nodes in the subtree, n included.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// FindLine follows notations from n and returns the last matched node, or nil
// when a step is missing.
func (n *Node) FindLine(notations ...string) *Node {
	cur := n
	for _, want := range notations {
		var next *Node
		for _, c := range cur.children {
			if c.Notation == want {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}
