package games

import (
	"testing"
	"time"
)

func TestParseCommits(t *testing.T) {
	out := "abc123" + recordSep + "Alice" + recordSep + "2025-03-10T12:00:00+01:00" + recordSep + "Fix the bug\n" +
		"def456" + recordSep + "Bob" + recordSep + "2025-03-09T09:30:00Z" + recordSep + "Add the feature\n"

	commits, err := parseCommits(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("got %d commits, want 2", len(commits))
	}
	if commits[0].SHA != "abc123" || commits[0].Author != "Alice" || commits[0].Message != "Fix the bug" {
		t.Fatalf("first commit = %+v", commits[0])
	}
	want := time.Date(2025, 3, 10, 12, 0, 0, 0, time.FixedZone("", 3600))
	if !commits[0].Date.Equal(want) {
		t.Fatalf("date = %v, want %v", commits[0].Date, want)
	}
}

func TestParseCommitsSkipsMalformedLines(t *testing.T) {
	out := "not a commit line\n" +
		"abc" + recordSep + "Alice" + recordSep + "garbage-date" + recordSep + "msg\n" +
		"def" + recordSep + "Bob" + recordSep + "2025-01-01T00:00:00Z" + recordSep + "ok\n"

	commits, err := parseCommits(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(commits) != 1 || commits[0].SHA != "def" {
		t.Fatalf("got %+v, want only the valid line", commits)
	}
}

func TestCommitShortSHA(t *testing.T) {
	c := Commit{SHA: "0123456789abcdef"}
	if got := c.ShortSHA(); got != "0123456" {
		t.Fatalf("ShortSHA() = %q", got)
	}
	short := Commit{SHA: "abc"}
	if got := short.ShortSHA(); got != "abc" {
		t.Fatalf("ShortSHA() = %q for short hash", got)
	}
}

func TestCommitSubject(t *testing.T) {
	c := Commit{Message: "First line\n\nBody text here"}
	if got := c.Subject(); got != "First line" {
		t.Fatalf("Subject() = %q", got)
	}
}

func TestOpenRepoRejectsNonRepo(t *testing.T) {
	if _, err := OpenRepo(t.TempDir()); err == nil {
		t.Fatal("expected error opening a plain directory")
	}
}
