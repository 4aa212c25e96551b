package graph

// findCycle performs a depth-first search with a recursion stack over
// registration order, returning one deterministic witness path (closed:
// first node repeated last), or nil if the graph is acyclic.
func (g *Graph) findCycle() []string {
	const (
		white = 0 // unvisited
		gray  = 1 // on the recursion stack
		black = 2 // fully explored
	)

	color := make(map[string]int, len(g.order))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)

		for _, dep := range g.deps[name] {
			switch color[dep] {
			case white:
				if visit(dep) {
					return true
				}
			case gray:
				// Back edge: reconstruct the cycle from the stack.
				start := 0
				for i, n := range stack {
					if n == dep {
						start = i
						break
					}
				}
				cycle = append(cycle, stack[start:]...)
				cycle = append(cycle, dep)
				return true
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	for _, name := range g.order {
		if color[name] == white {
			if visit(name) {
				return cycle
			}
		}
	}
	return nil
}
