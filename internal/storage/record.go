package storage

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/bt/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	frontmatterDelim = "---"
	logHeading       = "## Log"
	logEntryPrefix   = "### "
)

// MarshalRecord renders a task as markdown with a YAML frontmatter header,
// the body, and a "## Log" section when the log is non-empty. Body and log
// are written verbatim apart from leading and trailing newlines.
func MarshalRecord(task *models.Task) ([]byte, error) {
	fm, err := yaml.Marshal(&task.Frontmatter)
	if err != nil {
		return nil, fmt.Errorf("marshalling frontmatter for %s: %w", task.ID, err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")
	buf.Write(fm)
	buf.WriteString(frontmatterDelim + "\n")

	if body := strings.Trim(task.Body, "\n"); body != "" {
		buf.WriteString("\n" + body + "\n")
	}
	if log := strings.Trim(task.Log, "\n"); log != "" {
		buf.WriteString("\n" + logHeading + "\n\n" + log + "\n")
	}
	return buf.Bytes(), nil
}

// UnmarshalRecord parses a record produced by MarshalRecord (or edited by
// hand). path is used only for error reporting.
func UnmarshalRecord(id models.TaskID, path string, data []byte) (*models.Task, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return nil, &MalformedRecordError{Path: path, Reason: "missing frontmatter opening ---"}
	}
	rest := text[len(frontmatterDelim)+1:]

	var header, content string
	switch {
	case strings.HasPrefix(rest, frontmatterDelim+"\n"):
		content = rest[len(frontmatterDelim)+1:]
	case rest == frontmatterDelim:
	default:
		end := strings.Index(rest, "\n"+frontmatterDelim+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+frontmatterDelim) {
				return nil, &MalformedRecordError{Path: path, Reason: "missing frontmatter closing ---"}
			}
			end = len(rest) - len(frontmatterDelim) - 1
			header = rest[:end]
		} else {
			header = rest[:end]
			content = rest[end+len(frontmatterDelim)+2:]
		}
	}

	task := &models.Task{ID: id}
	if err := yaml.Unmarshal([]byte(header), &task.Frontmatter); err != nil {
		return nil, &MalformedRecordError{Path: path, Reason: err.Error()}
	}
	if strings.TrimSpace(task.Title) == "" {
		return nil, &MalformedRecordError{Path: path, Reason: "title is required"}
	}
	if task.Priority == "" {
		task.Priority = models.DefaultPriority
	}
	if len(task.Tags) == 0 {
		task.Tags = nil
	}
	if len(task.BlockedBy) == 0 {
		task.BlockedBy = nil
	}

	task.Body, task.Log = splitLog(content)
	return task, nil
}

// splitLog separates the body from the log section. The log starts at the
// last "## Log" heading whose next non-blank line is a log entry header, so
// a "## Log" line written in the body stays body text.
func splitLog(content string) (body, log string) {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimRight(lines[i], " \t") != logHeading || !startsLogEntries(lines[i+1:]) {
			continue
		}
		body = strings.Join(lines[:i], "\n")
		log = strings.Join(lines[i+1:], "\n")
		return strings.Trim(body, "\n"), strings.Trim(log, "\n")
	}
	return strings.Trim(content, "\n"), ""
}

func startsLogEntries(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return isLogEntryHeader(line)
	}
	return false
}

// isLogEntryHeader matches "### <RFC3339> <author>".
func isLogEntryHeader(line string) bool {
	rest, ok := strings.CutPrefix(line, logEntryPrefix)
	if !ok {
		return false
	}
	stamp, _, _ := strings.Cut(rest, " ")
	_, err := time.Parse(time.RFC3339, stamp)
	return err == nil
}
