package ranking

import "math/rand/v2"

// Treap ordered by completed projects DESC, then freelancer id ASC.
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. Subtree sizes make offset lookups O(log n).

type node struct {
	id       string
	projects int
	prio     uint64
	left     *node
	right    *node
	size     int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aProjects, aID) should appear before (bProjects, bID).
func less(aProjects int, aID string, bProjects int, bID string) bool {
	if aProjects != bProjects {
		return aProjects > bProjects
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, projects int) *node {
	if n == nil {
		return &node{id: id, projects: projects, prio: rand.Uint64(), size: 1}
	}
	if less(projects, id, n.projects, n.id) {
		n.left = insert(n.left, id, projects)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, projects)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, projects int) *node {
	if n == nil {
		return nil
	}
	switch {
	case projects == n.projects && id == n.id:
		// Rotate the higher priority child up until n is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, projects)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, projects)
		}
	case less(projects, id, n.projects, n.id):
		n.left = deleteNode(n.left, id, projects)
	default:
		n.right = deleteNode(n.right, id, projects)
	}
	fix(n)
	return n
}

// position returns the 0-based in-order index of (id, projects).
func position(n *node, id string, projects int) int {
	pos := 0
	for n != nil {
		switch {
		case projects == n.projects && id == n.id:
			return pos + nsize(n.left)
		case less(projects, id, n.projects, n.id):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// collect appends up to limit nodes in rank order, skipping the first skip.
// Whole subtrees that fall inside the skipped prefix are never visited.
func collect(n *node, skip, limit int, out *[]*node) int {
	if n == nil || len(*out) >= limit {
		return skip
	}
	if skip >= n.size {
		return skip - n.size
	}
	skip = collect(n.left, skip, limit, out)
	if len(*out) >= limit {
		return skip
	}
	if skip > 0 {
		skip--
	} else {
		*out = append(*out, n)
	}
	return collect(n.right, skip, limit, out)
}
