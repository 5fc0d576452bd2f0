package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
)

// UnknownAuthor is the last resort author name.
const UnknownAuthor = "unknown"

// GitUserName returns `git config user.name` as seen from dir, or "" when
// git is unavailable or the name is unset.
func GitUserName(dir string) string {
	cmd := exec.Command("git", "config", "user.name")
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}

// ResolveAuthor picks the author recorded on new tasks and log entries:
// the configured value, then the git user name, then $USER.
func ResolveAuthor(configured, dir string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	if name := GitUserName(dir); name != "" {
		return name
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return name
	}
	return UnknownAuthor
}
