// Package git shells out to the git binary for status, diffs, history and
// commit creation.
package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNotARepository is returned when the working directory has no git repo.
var ErrNotARepository = fmt.Errorf("not a git repository")

// Status buckets the working tree's uncommitted changes.
type Status struct {
	ModifiedFiles []string
	NewFiles      []string
	DeletedFiles  []string
	RenamedFiles  []string
}

func (s *Status) IsClean() bool {
	return s.TotalChanges() == 0
}

func (s *Status) TotalChanges() int {
	return len(s.ModifiedFiles) + len(s.NewFiles) + len(s.DeletedFiles) + len(s.RenamedFiles)
}

// CommitInfo is one commit record from the log.
type CommitInfo struct {
	ShortID string
	Time    time.Time
	Summary string
	Author  string
}

// LogOptions filter the commit log.
type LogOptions struct {
	Count  int
	Grep   string
	Author string
	Since  string
	Until  string
}

func run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if strings.Contains(stderr, "not a git repository") {
				return "", ErrNotARepository
			}
			if stderr != "" {
				return "", fmt.Errorf("git %s: %s", args[0], stderr)
			}
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(output), nil
}

// IsRepository reports whether the current directory is inside a git repo.
func IsRepository() bool {
	_, err := run("rev-parse", "--git-dir")
	return err == nil
}

// GetStatus parses porcelain status output into change buckets.
func GetStatus() (*Status, error) {
	output, err := run("status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseStatus(output), nil
}

func parseStatus(output string) *Status {
	status := &Status{}
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 3 {
			continue
		}
		code := line[:2]
		path := strings.TrimSpace(line[3:])
		switch {
		case strings.Contains(code, "R"):
			status.RenamedFiles = append(status.RenamedFiles, path)
		case strings.Contains(code, "D"):
			status.DeletedFiles = append(status.DeletedFiles, path)
		case strings.Contains(code, "M"):
			status.ModifiedFiles = append(status.ModifiedFiles, path)
		case strings.Contains(code, "A") || code == "??":
			status.NewFiles = append(status.NewFiles, path)
		}
	}
	return status
}

// GetBranchName returns the current branch, or "" on a detached HEAD.
func GetBranchName() (string, error) {
	output, err := run("branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// GetDiff returns staged changes when staged is true, otherwise unstaged.
func GetDiff(staged bool) (string, error) {
	args := []string{"--no-pager", "diff"}
	if staged {
		args = append(args, "--cached")
	}
	return run(args...)
}

// GetCombinedDiff concatenates staged and unstaged changes under explicit
// section headers so the model can tell them apart.
func GetCombinedDiff() (string, error) {
	staged, err := GetDiff(true)
	if err != nil {
		return "", err
	}
	unstaged, err := GetDiff(false)
	if err != nil {
		return "", err
	}

	var combined strings.Builder
	if staged != "" {
		combined.WriteString("=== STAGED CHANGES ===\n\n")
		combined.WriteString(staged)
	}
	if unstaged != "" {
		if combined.Len() > 0 {
			combined.WriteString("\n\n")
		}
		combined.WriteString("=== UNSTAGED CHANGES ===\n\n")
		combined.WriteString(unstaged)
	}
	return combined.String(), nil
}

// CountChangedLines tallies added and removed lines in a unified diff,
// skipping file headers.
func CountChangedLines(diff string) (added, removed int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

const logFormat = "%h%x00%at%x00%an%x00%s"

// GetCommits reads the commit log, newest first, applying the filters.
func GetCommits(opts LogOptions) ([]CommitInfo, error) {
	args := []string{"log", "--pretty=format:" + logFormat}
	if opts.Count > 0 {
		args = append(args, fmt.Sprintf("-n%d", opts.Count))
	}
	if opts.Grep != "" {
		args = append(args, "--grep="+opts.Grep)
	}
	if opts.Author != "" {
		args = append(args, "--author="+opts.Author)
	}
	if opts.Since != "" {
		args = append(args, "--since="+opts.Since)
	}
	if opts.Until != "" {
		args = append(args, "--until="+opts.Until)
	}

	output, err := run(args...)
	if err != nil {
		return nil, err
	}
	return parseCommits(output)
}

func parseCommits(output string) ([]CommitInfo, error) {
	var commits []CommitInfo
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, "\x00", 4)
		if len(fields) != 4 {
			return nil, fmt.Errorf("unexpected git log output format: %q", line)
		}
		unix, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad commit timestamp %q: %w", fields[1], err)
		}
		commits = append(commits, CommitInfo{
			ShortID: fields[0],
			Time:    time.Unix(unix, 0),
			Author:  fields[2],
			Summary: fields[3],
		})
	}
	return commits, nil
}

// Add stages all changes.
func Add() error {
	cmd := exec.Command("git", "add", ".")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git add failed: %v\nOutput: %s", err, string(output))
	}
	return nil
}

// Commit creates a commit with the given full message.
func Commit(message string) error {
	cmd := exec.Command("git", "commit", "-m", message)
	output, err := cmd.CombinedOutput()
	if err != nil {
		text := string(output)
		if strings.Contains(text, "nothing to commit") {
			return fmt.Errorf("no changes to commit")
		}
		if strings.Contains(text, "Please tell me who you are") {
			return fmt.Errorf("git user not configured; set user.name and user.email")
		}
		return fmt.Errorf("git commit failed: %v\nOutput: %s", err, text)
	}
	return nil
}
