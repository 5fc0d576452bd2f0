package core

import (
	"testing"
	"time"

	"github.com/valter-silva-au/bt/pkg/models"
)

func TestAppendLogAndParse(t *testing.T) {
	task := &models.Task{ID: "abc"}
	t1 := time.Date(2025, 11, 26, 23, 41, 41, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	AppendLog(task, t1, "Brian", "Started work.\n\nMore detail here.")
	AppendLog(task, t2, "", "Second entry")

	want := "### 2025-11-26T23:41:41Z Brian\n\nStarted work.\n\nMore detail here.\n\n### 2025-11-27T00:41:41Z unknown\n\nSecond entry"
	if task.Log != want {
		t.Fatalf("log =\n%s\nwant\n%s", task.Log, want)
	}

	entries := ParseLog(task.Log)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if !entries[0].Time.Equal(t1) || entries[0].Author != "Brian" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[0].Message != "Started work.\n\nMore detail here." {
		t.Errorf("entry 0 message = %q", entries[0].Message)
	}
	if entries[0].Summary() != "Started work." {
		t.Errorf("entry 0 summary = %q", entries[0].Summary())
	}
	if entries[1].Author != UnknownAuthor || entries[1].Message != "Second entry" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestParseLog_AuthorWithSpaces(t *testing.T) {
	entries := ParseLog("### 2025-11-26T23:41:41Z Ada Lovelace\n\nhello")
	if len(entries) != 1 || entries[0].Author != "Ada Lovelace" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParseLog_IgnoresBadHeaders(t *testing.T) {
	raw := "stray text\n### not-a-time someone\n### 2025-01-01T00:00:00Z bob\n\nok\n### yesterday me\nstill bob's"
	entries := ParseLog(raw)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(entries), entries)
	}
	if entries[0].Message != "ok\n### yesterday me\nstill bob's" {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestParseLog_Empty(t *testing.T) {
	if entries := ParseLog(""); len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}

func TestRecentActivity(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &models.Task{ID: "a"}
	b := &models.Task{ID: "b"}
	AppendLog(a, base, "x", "a1")
	AppendLog(a, base.Add(2*time.Hour), "x", "a2")
	AppendLog(b, base.Add(time.Hour), "y", "b1")

	entries := []models.Entry{{Task: a}, {Task: b}}
	got := RecentActivity(entries, 2)
	if len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
	if got[0].Log.Message != "a2" || got[1].Log.Message != "b1" {
		t.Errorf("order = %q, %q", got[0].Log.Message, got[1].Log.Message)
	}
	if got[1].Entry.Task.ID != "b" {
		t.Errorf("activity attributed to %s, want b", got[1].Entry.Task.ID)
	}
	if all := RecentActivity(entries, 0); len(all) != 3 {
		t.Errorf("limit 0 returned %d, want 3", len(all))
	}
}
