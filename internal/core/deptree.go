package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/valter-silva-au/bt/pkg/models"
)

// ErrDependencyCycle is wrapped by CycleError.
var ErrDependencyCycle = errors.New("dependency cycle among active tasks")

// CycleError lists active tasks that could not be placed in the tree
// because their blockers never all became printable.
type CycleError struct {
	IDs []models.TaskID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = string(id)
	}
	return fmt.Sprintf("%s: %s", ErrDependencyCycle.Error(), strings.Join(ids, ", "))
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

// TreeNode is one printed task in the dependency forest. Children are the
// tasks it unblocks last.
type TreeNode struct {
	Entry models.Entry
	// Blockers are the active blockers, deduplicated, in blocked_by order.
	Blockers []models.TaskID
	Children []*TreeNode
}

// Ready reports whether the node has no active blockers.
func (n *TreeNode) Ready() bool {
	return len(n.Blockers) == 0
}

// DependencyTree is the forest of active tasks. Each task appears at most
// once, attached under whichever of its blockers is placed last.
type DependencyTree struct {
	Roots []*TreeNode
	// Unplaced holds active tasks that never became printable, sorted by id.
	Unplaced []models.TaskID
}

// Err returns a *CycleError when some active tasks could not be placed.
func (t *DependencyTree) Err() error {
	if len(t.Unplaced) == 0 {
		return nil
	}
	return &CycleError{IDs: t.Unplaced}
}

// Walk visits every node depth-first in display order.
func (t *DependencyTree) Walk(fn func(n *TreeNode, depth int)) {
	var visit func(n *TreeNode, depth int)
	visit = func(n *TreeNode, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range t.Roots {
		visit(r, 0)
	}
}

type treeBuilder struct {
	byID     map[models.TaskID]models.Entry
	blockers map[models.TaskID][]models.TaskID
	blocks   map[models.TaskID][]models.TaskID
	printed  map[models.TaskID]bool
}

// BuildDependencyTree arranges the active tasks among entries into a
// forest. Entries that are not active are ignored, as are edges to
// blockers that are inactive or missing. Roots and siblings are ordered by
// title, then id. A task listing itself as a blocker is treated as a cycle.
func BuildDependencyTree(entries []models.Entry) *DependencyTree {
	b := &treeBuilder{
		byID:     make(map[models.TaskID]models.Entry),
		blockers: make(map[models.TaskID][]models.TaskID),
		blocks:   make(map[models.TaskID][]models.TaskID),
		printed:  make(map[models.TaskID]bool),
	}
	for _, e := range entries {
		if e.Status.IsActive() {
			b.byID[e.Task.ID] = e
		}
	}

	var roots []models.TaskID
	for id, e := range b.byID {
		seen := make(map[models.TaskID]bool)
		for _, blocker := range e.Task.BlockedBy {
			if _, active := b.byID[blocker]; !active || seen[blocker] {
				continue
			}
			seen[blocker] = true
			b.blockers[id] = append(b.blockers[id], blocker)
			b.blocks[blocker] = append(b.blocks[blocker], id)
		}
		if len(b.blockers[id]) == 0 {
			roots = append(roots, id)
		}
	}
	b.sortByTitle(roots)

	tree := &DependencyTree{}
	for _, id := range roots {
		if n := b.place(id); n != nil {
			tree.Roots = append(tree.Roots, n)
		}
	}

	for id := range b.byID {
		if !b.printed[id] {
			tree.Unplaced = append(tree.Unplaced, id)
		}
	}
	sort.Slice(tree.Unplaced, func(i, j int) bool { return tree.Unplaced[i] < tree.Unplaced[j] })
	return tree
}

func (b *treeBuilder) place(id models.TaskID) *TreeNode {
	if b.printed[id] {
		return nil
	}
	for _, blocker := range b.blockers[id] {
		if !b.printed[blocker] {
			return nil
		}
	}
	b.printed[id] = true

	node := &TreeNode{Entry: b.byID[id], Blockers: b.blockers[id]}

	// A child is attached here only if every other active blocker of it has
	// already been placed, so multi-blocker tasks appear once.
	var children []models.TaskID
	for _, child := range b.blocks[id] {
		ready := true
		for _, other := range b.blockers[child] {
			if other != id && !b.printed[other] {
				ready = false
				break
			}
		}
		if ready {
			children = append(children, child)
		}
	}
	b.sortByTitle(children)

	for _, child := range children {
		if n := b.place(child); n != nil {
			node.Children = append(node.Children, n)
		}
	}
	return node
}

func (b *treeBuilder) sortByTitle(ids []models.TaskID) {
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := b.byID[ids[i]].Task.Title, b.byID[ids[j]].Task.Title
		if ti != tj {
			return ti < tj
		}
		return ids[i] < ids[j]
	})
}
