package games

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotARepository is returned by OpenRepo for paths git does not recognize.
var ErrNotARepository = errors.New("not a git repository")

// Commit is one entry of the repository history.
type Commit struct {
	SHA     string
	Author  string
	Date    time.Time
	Message string
}

// ShortSHA is the abbreviated hash used in question metadata.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Subject is the first line of the commit message.
func (c Commit) Subject() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return strings.TrimSpace(c.Message[:i])
	}
	return strings.TrimSpace(c.Message)
}

// Repo reads history from a local git repository by shelling out to the git
// CLI. All methods are read-only.
type Repo struct {
	dir string
}

// OpenRepo validates that dir is inside a git work tree.
func OpenRepo(dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	if _, err := r.git("rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}
	return r, nil
}

// Dir returns the repository path.
func (r *Repo) Dir() string {
	return r.dir
}

func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}

// recordSep keeps field parsing safe against commit subjects containing
// whatever separator a human could plausibly type.
const recordSep = "\x1f"

// Log returns up to limit commits reachable from HEAD, newest first.
func (r *Repo) Log(limit int) ([]Commit, error) {
	out, err := r.git("log",
		"--pretty=format:%H"+recordSep+"%an"+recordSep+"%aI"+recordSep+"%s",
		"--max-count="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	return parseCommits(out)
}

// BranchLog returns up to limit commits on the given branch, newest first.
func (r *Repo) BranchLog(branch string, limit int) ([]Commit, error) {
	out, err := r.git("log",
		"--pretty=format:%H"+recordSep+"%an"+recordSep+"%aI"+recordSep+"%s",
		"--max-count="+strconv.Itoa(limit), branch)
	if err != nil {
		return nil, err
	}
	return parseCommits(out)
}

func parseCommits(out string) ([]Commit, error) {
	var commits []Commit
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, recordSep, 4)
		if len(parts) != 4 {
			continue
		}
		date, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			continue
		}
		commits = append(commits, Commit{
			SHA:     parts[0],
			Author:  parts[1],
			Date:    date,
			Message: parts[3],
		})
	}
	return commits, scanner.Err()
}

// Branches lists local and remote branch names, excluding symbolic HEAD refs.
func (r *Repo) Branches() ([]string, error) {
	out, err := r.git("for-each-ref", "--format=%(refname:short)",
		"refs/heads", "refs/remotes")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || name == "HEAD" || strings.HasSuffix(name, "/HEAD") {
			continue
		}
		branches = append(branches, name)
	}
	return branches, nil
}

// ChangedFiles lists the paths touched by a commit. Root commits are handled
// the same way as ordinary ones.
func (r *Repo) ChangedFiles(sha string) ([]string, error) {
	out, err := r.git("diff-tree", "--no-commit-id", "--name-only", "-r", "--root", sha)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if f := strings.TrimSpace(line); f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// Authors returns the distinct commit author names in the history.
func (r *Repo) Authors(limit int) ([]string, error) {
	commits, err := r.Log(limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(commits))
	var authors []string
	for _, c := range commits {
		if c.Author == "" || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		authors = append(authors, c.Author)
	}
	return authors, nil
}

var sourceExtensions = map[string]bool{
	".go": true, ".rb": true, ".js": true, ".py": true, ".ts": true,
	".jsx": true, ".tsx": true, ".java": true, ".c": true, ".cpp": true,
	".h": true, ".html": true, ".css": true, ".md": true, ".yml": true,
	".yaml": true, ".json": true,
}

// TrackedSourceFiles lists tracked files with code-like extensions, skipping
// minified bundles.
func (r *Repo) TrackedSourceFiles() ([]string, error) {
	out, err := r.git("ls-files")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		if strings.HasSuffix(path, ".min.js") || strings.HasSuffix(path, ".min.css") {
			continue
		}
		if sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
	}
	return files, nil
}

// ReadLines reads up to max lines of a tracked file from the work tree.
func (r *Repo) ReadLines(path string, max int) ([]string, error) {
	f, err := os.Open(filepath.Join(r.dir, path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() && len(lines) < max {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// BlameLine resolves the author and author date of one line of a file via
// the blame porcelain format.
func (r *Repo) BlameLine(path string, line int) (string, time.Time, error) {
	span := strconv.Itoa(line) + "," + strconv.Itoa(line)
	out, err := r.git("blame", "-L", span, "--line-porcelain", path)
	if err != nil {
		return "", time.Time{}, err
	}

	var author string
	var when time.Time
	for _, l := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(l, "author "); ok {
			author = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(l, "author-time "); ok {
			if secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				when = time.Unix(secs, 0)
			}
		}
	}
	if author == "" || author == "Not Committed Yet" {
		return "", time.Time{}, fmt.Errorf("no committed author for %s:%d", path, line)
	}
	return author, when, nil
}
