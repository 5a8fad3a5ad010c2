package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// BranchDetective asks which branch a commit was made on. It needs a repo
// with a reasonable amount of branching activity to be any fun, so it falls
// back to sample data below five branches.
type BranchDetective struct {
	repo *Repo
	rng  *rand.Rand
}

func NewBranchDetective(repo *Repo) *BranchDetective {
	return &BranchDetective{repo: repo, rng: newRNG()}
}

func (g *BranchDetective) Name() string { return "Branch Detective" }
func (g *BranchDetective) Description() string {
	return "Figure out which branch each commit belongs to!"
}

func (g *BranchDetective) QuestionTimeout() time.Duration { return 15 * time.Second }
func (g *BranchDetective) DisplayInterval() time.Duration { return 5 * time.Second }

const branchMinimum = 5

type branchCommit struct {
	commit Commit
	branch string
}

func (g *BranchDetective) GenerateQuestions() ([]Question, error) {
	branches, err := g.repo.Branches()
	if err != nil {
		return g.sampleQuestions(), nil
	}
	branches = dedupeBranches(branches)
	if len(branches) < branchMinimum {
		return g.sampleQuestions(), nil
	}

	// Gather commits that appear on exactly one of the sampled branches so
	// the answer is unambiguous.
	seen := make(map[string][]string)
	commitBySHA := make(map[string]Commit)
	for _, branch := range branches {
		commits, err := g.repo.BranchLog(branch, 50)
		if err != nil {
			continue
		}
		for _, c := range commits {
			seen[c.SHA] = append(seen[c.SHA], branch)
			commitBySHA[c.SHA] = c
		}
	}

	var candidates []branchCommit
	for sha, owners := range seen {
		if len(owners) == 1 {
			candidates = append(candidates, branchCommit{commit: commitBySHA[sha], branch: owners[0]})
		}
	}
	if len(candidates) < QuestionsPerRound {
		return g.sampleQuestions(), nil
	}

	g.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	candidates = candidates[:QuestionsPerRound]

	questions := make([]Question, 0, len(candidates))
	for _, bc := range candidates {
		decoys := sampleExcluding(g.rng, branches, bc.branch, 3)
		if len(decoys) < 3 {
			return g.sampleQuestions(), nil
		}
		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Which branch was this commit made on?\n\n   %q", bc.commit.Subject()),
			CommitInfo: fmt.Sprintf("%s (%s)", bc.commit.ShortSHA(), bc.commit.Date.Format("Jan 2, 2006")),
			Options:    shuffled(g.rng, append([]string{bc.branch}, decoys...)),
			Answer:     bc.branch,
			Type:       TypeChoice,
		})
	}
	return questions, nil
}

func (g *BranchDetective) EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome {
	return evaluateChoice(q, subs)
}

// dedupeBranches collapses remote-tracking duplicates of local branches.
func dedupeBranches(branches []string) []string {
	seen := make(map[string]bool, len(branches))
	var out []string
	for _, b := range branches {
		short := b
		if i := strings.Index(b, "/"); i >= 0 && strings.HasPrefix(b, "origin/") {
			short = b[i+1:]
		}
		if seen[short] {
			continue
		}
		seen[short] = true
		out = append(out, short)
	}
	return out
}

var sampleBranches = []string{"main", "develop", "feature/auth", "feature/search", "hotfix/login"}

var sampleBranchMessages = []struct {
	subject string
	branch  string
}{
	{"Add OAuth2 token refresh", "feature/auth"},
	{"Fix crash on empty search query", "feature/search"},
	{"Patch login redirect loop", "hotfix/login"},
	{"Bump version to 2.3.0", "main"},
	{"Merge latest integration fixes", "develop"},
}

func (g *BranchDetective) sampleQuestions() []Question {
	questions := make([]Question, 0, QuestionsPerRound)
	for i := 0; i < QuestionsPerRound; i++ {
		s := sampleBranchMessages[i%len(sampleBranchMessages)]
		decoys := sampleExcluding(g.rng, sampleBranches, s.branch, 3)
		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Which branch was this commit made on?\n\n   %q", s.subject+" (SAMPLE)"),
			CommitInfo: fmt.Sprintf("sample%d (Demo Question)", i),
			Options:    shuffled(g.rng, append([]string{s.branch}, decoys...)),
			Answer:     s.branch,
			Type:       TypeChoice,
		})
	}
	return questions
}
