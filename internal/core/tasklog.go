package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/bt/pkg/models"
)

const logHeaderPrefix = "### "

// UnknownAuthor is recorded when no author identity is configured.
const UnknownAuthor = "unknown"

// FormatLogEntry renders one log entry as
//
//	### <RFC3339 timestamp> <author>
//
//	<message>
func FormatLogEntry(at time.Time, author, message string) string {
	if strings.TrimSpace(author) == "" {
		author = UnknownAuthor
	}
	return fmt.Sprintf("%s%s %s\n\n%s", logHeaderPrefix, at.UTC().Format(time.RFC3339), author, strings.TrimSpace(message))
}

// AppendLog adds an entry to the end of the task's log. The log is
// append-only; existing entries are never rewritten.
func AppendLog(task *models.Task, at time.Time, author, message string) {
	entry := FormatLogEntry(at, author, message)
	existing := strings.TrimSpace(task.Log)
	if existing == "" {
		task.Log = entry
		return
	}
	task.Log = existing + "\n\n" + entry
}

// ParseLog splits a raw log into entries. Headers whose timestamp does not
// parse are treated as message text of the previous entry.
func ParseLog(raw string) []models.LogEntry {
	var entries []models.LogEntry
	var msg []string

	flush := func() {
		if len(entries) == 0 {
			return
		}
		entries[len(entries)-1].Message = strings.TrimSpace(strings.Join(msg, "\n"))
		msg = msg[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if at, author, ok := parseLogHeader(line); ok {
			flush()
			entries = append(entries, models.LogEntry{Time: at, Author: author})
			continue
		}
		if len(entries) > 0 {
			msg = append(msg, line)
		}
	}
	flush()
	return entries
}

func parseLogHeader(line string) (time.Time, string, bool) {
	if !strings.HasPrefix(line, logHeaderPrefix) {
		return time.Time{}, "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, logHeaderPrefix))
	stamp, author, found := strings.Cut(rest, " ")
	if !found {
		return time.Time{}, "", false
	}
	at, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, "", false
	}
	return at.UTC(), strings.TrimSpace(author), true
}

// Activity is a log entry attributed to the task it belongs to.
type Activity struct {
	Entry models.Entry
	Log   models.LogEntry
}

// RecentActivity collects log entries across tasks, newest first. A limit
// of zero or less returns everything.
func RecentActivity(entries []models.Entry, limit int) []Activity {
	var out []Activity
	for _, e := range entries {
		for _, l := range ParseLog(e.Task.Log) {
			out = append(out, Activity{Entry: e, Log: l})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Log.Time.After(out[j].Log.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
