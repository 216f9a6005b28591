package git

import (
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	output := strings.Join([]string{
		" M internal/core/core.go",
		"M  main.go",
		"A  internal/git/git.go",
		"?? notes.txt",
		" D old.go",
		"R  a.go -> b.go",
		"",
	}, "\n")

	status := parseStatus(output)

	if got := status.ModifiedFiles; len(got) != 2 || got[0] != "internal/core/core.go" || got[1] != "main.go" {
		t.Errorf("ModifiedFiles = %v", got)
	}
	if got := status.NewFiles; len(got) != 2 || got[0] != "internal/git/git.go" || got[1] != "notes.txt" {
		t.Errorf("NewFiles = %v", got)
	}
	if got := status.DeletedFiles; len(got) != 1 || got[0] != "old.go" {
		t.Errorf("DeletedFiles = %v", got)
	}
	if got := status.RenamedFiles; len(got) != 1 || got[0] != "a.go -> b.go" {
		t.Errorf("RenamedFiles = %v", got)
	}
	if status.IsClean() {
		t.Error("IsClean() = true for a dirty tree")
	}
	if status.TotalChanges() != 6 {
		t.Errorf("TotalChanges() = %d, want 6", status.TotalChanges())
	}
}

func TestParseStatusClean(t *testing.T) {
	status := parseStatus("")
	if !status.IsClean() {
		t.Error("IsClean() = false for empty output")
	}
}

func TestParseCommits(t *testing.T) {
	output := "abc1234\x001722500000\x00Alice\x00feat: 添加登录\n" +
		"def5678\x001722400000\x00Bob\x00fix: timeout in parser\n"

	commits, err := parseCommits(output)
	if err != nil {
		t.Fatalf("parseCommits() error = %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("len = %d, want 2", len(commits))
	}
	first := commits[0]
	if first.ShortID != "abc1234" || first.Author != "Alice" || first.Summary != "feat: 添加登录" {
		t.Errorf("first commit = %+v", first)
	}
	if first.Time.Unix() != 1722500000 {
		t.Errorf("Time = %v, want unix 1722500000", first.Time)
	}
}

func TestParseCommitsSummaryMayContainSeparatorText(t *testing.T) {
	// A summary containing no NUL but other punctuation must survive intact.
	output := "abc1234\x001722500000\x00Alice\x00fix: handle a -> b rename; edge, case\n"
	commits, err := parseCommits(output)
	if err != nil {
		t.Fatalf("parseCommits() error = %v", err)
	}
	if commits[0].Summary != "fix: handle a -> b rename; edge, case" {
		t.Errorf("Summary = %q", commits[0].Summary)
	}
}

func TestParseCommitsErrors(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"missing fields", "abc1234\x001722500000\x00Alice"},
		{"bad timestamp", "abc1234\x00notanumber\x00Alice\x00feat: x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseCommits(tt.output); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseCommitsEmpty(t *testing.T) {
	commits, err := parseCommits("\n\n")
	if err != nil {
		t.Fatalf("parseCommits() error = %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("len = %d, want 0", len(commits))
	}
}

func TestCountChangedLines(t *testing.T) {
	diff := strings.Join([]string{
		"diff --git a/main.go b/main.go",
		"--- a/main.go",
		"+++ b/main.go",
		"@@ -1,3 +1,4 @@",
		" package main",
		"+import \"fmt\"",
		"+",
		"-var x int",
		" func main() {}",
	}, "\n")

	added, removed := CountChangedLines(diff)
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestCountChangedLinesEmpty(t *testing.T) {
	added, removed := CountChangedLines("")
	if added != 0 || removed != 0 {
		t.Errorf("got %d/%d, want 0/0", added, removed)
	}
}
