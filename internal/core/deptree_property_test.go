package core

import (
	"fmt"
	"testing"

	"github.com/valter-silva-au/bt/pkg/models"
	"pgregory.net/rapid"
)

// genDAG draws active tasks whose blockers only point at earlier tasks, so
// the graph is acyclic. Some blockers are inactive or dangling.
func genDAG(rt *rapid.T) []models.Entry {
	n := rapid.IntRange(0, 15).Draw(rt, "n")
	entries := make([]models.Entry, n)
	for i := 0; i < n; i++ {
		id := models.TaskID(fmt.Sprintf("t%02d", i))
		var blockers []models.TaskID
		if i > 0 {
			k := rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("k%d", i))
			for j := 0; j < k; j++ {
				target := rapid.IntRange(0, i-1).Draw(rt, fmt.Sprintf("b%d_%d", i, j))
				blockers = append(blockers, models.TaskID(fmt.Sprintf("t%02d", target)))
			}
		}
		if rapid.Bool().Draw(rt, fmt.Sprintf("dangling%d", i)) {
			blockers = append(blockers, "ghost")
		}
		status := rapid.SampledFrom(models.AllStatuses).Draw(rt, fmt.Sprintf("status%d", i))
		title := rapid.StringMatching(`[A-C]{1,2}`).Draw(rt, fmt.Sprintf("title%d", i))
		entries[i] = treeEntry(id, title, status, blockers...)
	}
	return entries
}

// Every active task in an acyclic graph is placed exactly once, after all
// of its active blockers.
func TestProperty_TreePlacesEveryActiveTaskOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		entries := genDAG(rt)
		tree := BuildDependencyTree(entries)

		if err := tree.Err(); err != nil {
			rt.Fatalf("acyclic graph reported %v", err)
		}

		position := make(map[models.TaskID]int)
		i := 0
		tree.Walk(func(n *TreeNode, _ int) {
			id := n.Entry.Task.ID
			if _, dup := position[id]; dup {
				rt.Fatalf("task %s placed twice", id)
			}
			position[id] = i
			i++
		})

		active := 0
		for _, e := range entries {
			if !e.Status.IsActive() {
				if _, ok := position[e.Task.ID]; ok {
					rt.Fatalf("inactive task %s placed", e.Task.ID)
				}
				continue
			}
			active++
			pos, ok := position[e.Task.ID]
			if !ok {
				rt.Fatalf("active task %s missing from tree", e.Task.ID)
			}
			for _, b := range e.Task.BlockedBy {
				if bp, placed := position[b]; placed && bp >= pos {
					rt.Fatalf("task %s placed before its blocker %s", e.Task.ID, b)
				}
			}
		}
		if active != len(position) {
			rt.Fatalf("placed %d tasks, want %d", len(position), active)
		}
	})
}

// Adding a back edge that closes a loop among active tasks is always
// reported rather than silently dropped.
func TestProperty_TreeReportsCycles(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		var entries []models.Entry
		for i := 0; i < n; i++ {
			next := models.TaskID(fmt.Sprintf("c%02d", (i+1)%n))
			entries = append(entries, treeEntry(models.TaskID(fmt.Sprintf("c%02d", i)), "x", models.StatusOpen, next))
		}
		tree := BuildDependencyTree(entries)

		cycle, ok := tree.Err().(*CycleError)
		if !ok || len(cycle.IDs) != n {
			rt.Fatalf("Err() = %v, want a cycle of %d tasks", tree.Err(), n)
		}
		if len(tree.Roots) != 0 {
			rt.Fatalf("cycle members were placed")
		}
	})
}
