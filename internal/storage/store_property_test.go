package storage

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
	"pgregory.net/rapid"
)

func genWord(t *rapid.T, label string) string {
	return rapid.StringMatching(`[a-z][a-z0-9]{0,9}`).Draw(t, label)
}

func genTask(t *rapid.T, id models.TaskID) *models.Task {
	nWords := rapid.IntRange(1, 4).Draw(t, "nWords")
	words := make([]string, nWords)
	for i := range words {
		words[i] = genWord(t, fmt.Sprintf("word%d", i))
	}

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(rapid.IntRange(0, 1_000_000).Draw(t, "createdSecs")) * time.Second)
	task := models.NewTask(id, strings.Join(words, " "), genWord(t, "author"), created)
	task.Priority = rapid.SampledFrom([]models.Priority{
		models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
	}).Draw(t, "priority")

	nTags := rapid.IntRange(0, 3).Draw(t, "nTags")
	for i := 0; i < nTags; i++ {
		task.Tags = append(task.Tags, genWord(t, fmt.Sprintf("tag%d", i)))
	}
	task.Body = genBody(t)
	return task
}

// genBody draws markdown-ish text: indented lines, trailing whitespace,
// headings (including a literal "## Log") and interior blank lines. Leading
// and trailing newlines are not part of a body.
func genBody(t *rapid.T) string {
	n := rapid.IntRange(0, 6).Draw(t, "nBody")
	lines := make([]string, n)
	for i := range lines {
		word := genWord(t, fmt.Sprintf("body%d", i))
		lines[i] = rapid.SampledFrom([]string{
			word,
			"    " + word,
			"\t" + word,
			word + "  ",
			"# " + word,
			"### " + word,
			"## Log",
			"---",
			"- " + word,
			"",
		}).Draw(t, fmt.Sprintf("line%d", i))
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// genLog builds a log the way the task manager does, one entry at a time.
func genLog(t *rapid.T, task *models.Task) {
	n := rapid.IntRange(0, 3).Draw(t, "nLog")
	at := task.Created
	for i := 0; i < n; i++ {
		at = at.Add(time.Duration(rapid.IntRange(1, 3600).Draw(t, fmt.Sprintf("logGap%d", i))) * time.Second)
		msg := genWord(t, fmt.Sprintf("logMsg%d", i))
		if rapid.Bool().Draw(t, fmt.Sprintf("logMultiline%d", i)) {
			msg += "\n\n    " + genWord(t, fmt.Sprintf("logMore%d", i))
		}
		core.AppendLog(task, at, genWord(t, fmt.Sprintf("logAuthor%d", i)), msg)
	}
}

func genBlockedBy(t *rapid.T, task *models.Task) {
	n := rapid.IntRange(0, 3).Draw(t, "nBlockedBy")
	for i := 0; i < n; i++ {
		id := models.TaskID(rapid.StringMatching(`[0-9a-z]{10}`).Draw(t, fmt.Sprintf("blockedBy%d", i)))
		if id != task.ID && !task.IsBlockedBy(id) {
			task.BlockedBy = append(task.BlockedBy, id)
		}
	}
}

func newPropertyStore(t *rapid.T, dir string) Store {
	if _, err := Init(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestProperty_CreateThenLoadRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newPropertyStore(rt, t.TempDir())
		want := genTask(rt, "k3j9a0b1c2")
		genBlockedBy(rt, want)
		genLog(rt, want)

		path, err := s.Create(want)
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		got, err := s.Load(path)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}

		if st, ok := s.StatusFromPath(path); !ok || st != models.StatusOpen {
			rt.Fatalf("status = %q, %v; want open", st, ok)
		}
		if !got.Created.Equal(want.Created) || !got.Updated.Equal(want.Updated) {
			rt.Fatalf("timestamps differ: got %v/%v want %v/%v", got.Created, got.Updated, want.Created, want.Updated)
		}
		gotRest, wantRest := *got, *want
		gotRest.Created, gotRest.Updated = time.Time{}, time.Time{}
		wantRest.Created, wantRest.Updated = time.Time{}, time.Time{}
		if !reflect.DeepEqual(gotRest, wantRest) {
			rt.Fatalf("loaded task differs:\n got  %#v\n want %#v", gotRest, wantRest)
		}
	})
}

func TestProperty_StartStopPreservesRecord(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newPropertyStore(rt, t.TempDir())
		task := genTask(rt, "k3j9a0b1c2")
		path, err := s.Create(task)
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		before, err := os.ReadFile(path)
		if err != nil {
			rt.Fatalf("read: %v", err)
		}

		wip, err := s.MoveToStatus(path, models.StatusInProgress)
		if err != nil {
			rt.Fatalf("start: %v", err)
		}
		back, err := s.MoveToStatus(wip, models.StatusOpen)
		if err != nil {
			rt.Fatalf("stop: %v", err)
		}

		if back != path {
			rt.Fatalf("round trip path = %q, want %q", back, path)
		}
		after, err := os.ReadFile(back)
		if err != nil {
			rt.Fatalf("read: %v", err)
		}
		if !bytes.Equal(before, after) {
			rt.Fatalf("content changed across open -> in-progress -> open")
		}
	})
}

func TestProperty_ReadyNeverHasUnresolvedBlocker(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newPropertyStore(rt, t.TempDir())

		n := rapid.IntRange(1, 8).Draw(rt, "n")
		ids := make([]models.TaskID, n)
		for i := range ids {
			ids[i] = models.TaskID(fmt.Sprintf("t%02d", i))
		}

		for i, id := range ids {
			task := genTask(rt, id)
			nBlockers := rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("nBlockers%d", i))
			for j := 0; j < nBlockers; j++ {
				blocker := rapid.SampledFrom(append(ids, "ghost")).Draw(rt, fmt.Sprintf("blocker%d_%d", i, j))
				if blocker != id && !task.IsBlockedBy(blocker) {
					task.BlockedBy = append(task.BlockedBy, blocker)
				}
			}
			path, err := s.Create(task)
			if err != nil {
				rt.Fatalf("create %s: %v", id, err)
			}
			status := rapid.SampledFrom(models.AllStatuses).Draw(rt, fmt.Sprintf("status%d", i))
			if _, err := s.MoveToStatus(path, status); err != nil {
				rt.Fatalf("move %s: %v", id, err)
			}
		}

		all, err := s.ListAll()
		if err != nil {
			rt.Fatalf("list all: %v", err)
		}
		statuses := models.StatusIndex(all)

		ready, err := s.ListReady()
		if err != nil {
			rt.Fatalf("list ready: %v", err)
		}
		for _, e := range ready {
			st := e.Status
			if st != models.StatusOpen && st != models.StatusInProgress {
				rt.Fatalf("ready task %s has status %s", e.Task.ID, st)
			}
			for _, b := range e.Task.BlockedBy {
				if bst, ok := statuses[b]; ok && !bst.IsTerminal() {
					rt.Fatalf("ready task %s has unresolved blocker %s (%s)", e.Task.ID, b, bst)
				}
			}
		}
	})
}
