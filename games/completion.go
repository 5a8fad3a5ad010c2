package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// CommitCompletion hides a run of words from real commit messages and asks
// players to pick the missing fragment among decoys cut from other messages.
type CommitCompletion struct {
	repo *Repo
	rng  *rand.Rand
}

func NewCommitCompletion(repo *Repo) *CommitCompletion {
	return &CommitCompletion{repo: repo, rng: newRNG()}
}

func (g *CommitCompletion) Name() string { return "Complete the Commit" }
func (g *CommitCompletion) Description() string {
	return "Complete the missing part of these commit messages!"
}

func (g *CommitCompletion) QuestionTimeout() time.Duration { return 20 * time.Second }
func (g *CommitCompletion) DisplayInterval() time.Duration { return 5 * time.Second }

func (g *CommitCompletion) GenerateQuestions() ([]Question, error) {
	commits, err := g.repo.Log(1000)
	if err != nil {
		return g.sampleQuestions(), nil
	}

	var valid []Commit
	for _, c := range commits {
		if len(strings.TrimSpace(c.Message)) > 10 {
			valid = append(valid, c)
		}
	}
	if len(valid) < QuestionsPerRound {
		return g.sampleQuestions(), nil
	}

	var questions []Question
	for attempts := 0; len(questions) < QuestionsPerRound && attempts < 100; attempts++ {
		commit := valid[g.rng.Intn(len(valid))]
		words := strings.Fields(strings.TrimSpace(commit.Message))
		if len(words) < 4 {
			continue
		}

		// Hide a third of the message, at least two words.
		hideCount := len(words) / 3
		if hideCount < 2 {
			hideCount = 2
		}
		hideStart := g.rng.Intn(len(words) - hideCount + 1)
		correct := strings.Join(words[hideStart:hideStart+hideCount], " ")

		blanked := make([]string, len(words))
		copy(blanked, words)
		for i := hideStart; i < hideStart+hideCount; i++ {
			blanked[i] = "________"
		}

		decoys := g.decoyFragments(valid, commit, hideCount)
		if len(decoys) < 3 {
			continue
		}

		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Complete this commit message:\n\n   %q", strings.Join(blanked, " ")),
			CommitInfo: fmt.Sprintf("%s (%s)", commit.ShortSHA(), commit.Date.Format("Jan 2, 2006")),
			Options:    shuffled(g.rng, append([]string{correct}, decoys[:3]...)),
			Answer:     correct,
			Type:       TypeChoice,
		})
	}

	if len(questions) < QuestionsPerRound {
		return g.sampleQuestions(), nil
	}
	return questions, nil
}

// decoyFragments cuts same-length word runs out of other commit messages.
func (g *CommitCompletion) decoyFragments(commits []Commit, skip Commit, length int) []string {
	var fragments []string
	for _, c := range commits {
		if c.SHA == skip.SHA {
			continue
		}
		words := strings.Fields(strings.TrimSpace(c.Message))
		if len(words) < length {
			continue
		}
		start := g.rng.Intn(len(words) - length + 1)
		fragments = append(fragments, strings.Join(words[start:start+length], " "))
	}
	g.rng.Shuffle(len(fragments), func(i, j int) { fragments[i], fragments[j] = fragments[j], fragments[i] })
	return uniqueStrings(fragments)
}

func (g *CommitCompletion) EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome {
	return evaluateChoice(q, subs)
}

type completionSample struct {
	blanked string
	missing string
	decoys  []string
	sha     string
	date    string
}

var completionSamples = []completionSample{
	{
		blanked: "Add user __________ with OAuth2 support",
		missing: "authentication",
		decoys:  []string{"registration", "profile", "settings"},
		sha:     "f8c7b3e", date: "Mar 10, 2025",
	},
	{
		blanked: "Fix memory __________ in the background worker",
		missing: "leak",
		decoys:  []string{"usage", "allocation", "error"},
		sha:     "2d9a45c", date: "Feb 25, 2025",
	},
	{
		blanked: "Update __________ to latest stable versions",
		missing: "dependencies",
		decoys:  []string{"documentation", "configurations", "references"},
		sha:     "7b3e9d1", date: "Mar 5, 2025",
	},
	{
		blanked: "Improve error __________ in API response layer",
		missing: "handling",
		decoys:  []string{"messages", "logging", "codes"},
		sha:     "c4e91a2", date: "Feb 28, 2025",
	},
	{
		blanked: "Add comprehensive __________ coverage for payment module",
		missing: "test",
		decoys:  []string{"code", "feature", "security"},
		sha:     "9f5d7e3", date: "Mar 15, 2025",
	},
}

func (g *CommitCompletion) sampleQuestions() []Question {
	questions := make([]Question, 0, QuestionsPerRound)
	for i := 0; i < QuestionsPerRound; i++ {
		s := completionSamples[i%len(completionSamples)]
		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Complete this commit message:\n\n   %q", s.blanked),
			CommitInfo: fmt.Sprintf("%s (%s)", s.sha, s.date),
			Options:    shuffled(g.rng, append([]string{s.missing}, s.decoys...)),
			Answer:     s.missing,
			Type:       TypeChoice,
		})
	}
	return questions
}
