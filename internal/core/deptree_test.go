package core

import (
	"errors"
	"testing"

	"github.com/valter-silva-au/bt/pkg/models"
)

func treeEntry(id models.TaskID, title string, status models.Status, blockers ...models.TaskID) models.Entry {
	return models.Entry{
		Status: status,
		Task: &models.Task{
			ID:          id,
			Frontmatter: models.Frontmatter{Title: title, BlockedBy: blockers},
		},
	}
}

type visit struct {
	id    models.TaskID
	depth int
}

func walkOrder(tree *DependencyTree) []visit {
	var out []visit
	tree.Walk(func(n *TreeNode, depth int) {
		out = append(out, visit{n.Entry.Task.ID, depth})
	})
	return out
}

func assertOrder(t *testing.T, got, want []visit) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("walk = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("walk = %v, want %v", got, want)
		}
	}
}

func TestBuildDependencyTree_Chain(t *testing.T) {
	tree := BuildDependencyTree([]models.Entry{
		treeEntry("c", "C", models.StatusOpen, "a", "b"),
		treeEntry("b", "B", models.StatusBlocked, "a"),
		treeEntry("a", "A", models.StatusOpen),
	})

	if err := tree.Err(); err != nil {
		t.Fatalf("unexpected cycle: %v", err)
	}
	assertOrder(t, walkOrder(tree), []visit{{"a", 0}, {"b", 1}, {"c", 2}})

	c := tree.Roots[0].Children[0].Children[0]
	if len(c.Blockers) != 2 || c.Ready() {
		t.Errorf("c blockers = %v, want two active blockers", c.Blockers)
	}
	if !tree.Roots[0].Ready() {
		t.Error("root a should be ready")
	}
}

func TestBuildDependencyTree_Diamond(t *testing.T) {
	tree := BuildDependencyTree([]models.Entry{
		treeEntry("root", "Root", models.StatusOpen),
		treeEntry("left", "Left", models.StatusOpen, "root"),
		treeEntry("right", "Right", models.StatusOpen, "root"),
		treeEntry("join", "Join", models.StatusOpen, "left", "right"),
	})

	assertOrder(t, walkOrder(tree), []visit{
		{"root", 0}, {"left", 1}, {"right", 1}, {"join", 2},
	})
	if tree.Roots[0].Children[0].Children != nil {
		t.Error("join must attach under the blocker placed last, not left")
	}
}

func TestBuildDependencyTree_SortsByTitle(t *testing.T) {
	tree := BuildDependencyTree([]models.Entry{
		treeEntry("1", "Zebra", models.StatusOpen),
		treeEntry("2", "Apple", models.StatusInProgress),
		treeEntry("3", "Mango", models.StatusOpen),
		treeEntry("4", "Mango", models.StatusOpen),
	})
	assertOrder(t, walkOrder(tree), []visit{{"2", 0}, {"3", 0}, {"4", 0}, {"1", 0}})
}

func TestBuildDependencyTree_IgnoresInactiveAndDangling(t *testing.T) {
	tree := BuildDependencyTree([]models.Entry{
		treeEntry("done", "Done", models.StatusClosed),
		treeEntry("task", "Task", models.StatusOpen, "done", "ghost", "done"),
	})
	assertOrder(t, walkOrder(tree), []visit{{"task", 0}})
	if !tree.Roots[0].Ready() {
		t.Error("closed and dangling blockers must not count as active")
	}
}

func TestBuildDependencyTree_ReportsCycle(t *testing.T) {
	tree := BuildDependencyTree([]models.Entry{
		treeEntry("a", "A", models.StatusOpen, "b"),
		treeEntry("b", "B", models.StatusOpen, "a"),
		treeEntry("c", "C", models.StatusOpen),
	})

	assertOrder(t, walkOrder(tree), []visit{{"c", 0}})

	err := tree.Err()
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("Err() = %v, want ErrDependencyCycle", err)
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) || len(cycle.IDs) != 2 || cycle.IDs[0] != "a" || cycle.IDs[1] != "b" {
		t.Fatalf("cycle ids = %v, want [a b]", cycle)
	}
}

func TestBuildDependencyTree_SelfBlockIsCycle(t *testing.T) {
	tree := BuildDependencyTree([]models.Entry{
		treeEntry("a", "A", models.StatusOpen, "a"),
	})
	if len(tree.Roots) != 0 {
		t.Fatalf("roots = %d, want 0", len(tree.Roots))
	}
	if tree.Err() == nil {
		t.Fatal("expected a cycle error for a self-blocked task")
	}
}

func TestBuildDependencyTree_Empty(t *testing.T) {
	tree := BuildDependencyTree(nil)
	if len(tree.Roots) != 0 || tree.Err() != nil {
		t.Fatalf("tree = %+v", tree)
	}
}
