package games

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// CommitTimeline shows four shuffled commits and asks players to drag them
// back into chronological order. Scoring is relative: every pair of commits
// the player orders correctly earns credit, so a near-miss still pays.
type CommitTimeline struct {
	repo *Repo
	rng  *rand.Rand
}

func NewCommitTimeline(repo *Repo) *CommitTimeline {
	return &CommitTimeline{repo: repo, rng: newRNG()}
}

func (g *CommitTimeline) Name() string { return "Commit Timeline" }
func (g *CommitTimeline) Description() string {
	return "Put these commits in chronological order, oldest first!"
}

func (g *CommitTimeline) QuestionTimeout() time.Duration { return 20 * time.Second }
func (g *CommitTimeline) DisplayInterval() time.Duration { return 5 * time.Second }

const (
	timelineItems    = 4
	timelineMinGap   = time.Minute
	orderFastBonus   = 4
	orderQuickBonus  = 2
	orderFastWindow  = 8 * time.Second
	orderQuickWindow = 14 * time.Second
)

func (g *CommitTimeline) GenerateQuestions() ([]Question, error) {
	commits, err := g.repo.Log(1000)
	if err != nil || len(commits) < timelineItems {
		return g.sampleQuestions(), nil
	}

	var questions []Question
	for attempts := 0; len(questions) < QuestionsPerRound && attempts < 50; attempts++ {
		picks := g.pickSpacedCommits(commits)
		if picks == nil {
			break
		}

		// Oldest first is the canonical order.
		sort.Slice(picks, func(i, j int) bool { return picks[i].Date.Before(picks[j].Date) })

		labels := make([]string, len(picks))
		dates := make([]string, len(picks))
		for i, c := range picks {
			labels[i] = fmt.Sprintf("%s (%s)", truncate(c.Subject(), 40), c.ShortSHA())
			dates[i] = fmt.Sprintf("%s: %s", c.ShortSHA(), c.Date.Format("Jan 2, 2006 15:04"))
		}

		questions = append(questions, Question{
			Prompt:      "Put these commits in chronological order (oldest first):",
			Options:     shuffled(g.rng, labels),
			AnswerOrder: labels,
			Type:        TypeOrdering,
			CommitInfo:  strings.Join(dates, " | "),
		})
	}

	if len(questions) < QuestionsPerRound {
		return g.sampleQuestions(), nil
	}
	return questions, nil
}

// pickSpacedCommits draws four commits whose author dates are at least a
// minute apart, so the canonical order is unambiguous.
func (g *CommitTimeline) pickSpacedCommits(commits []Commit) []Commit {
	for attempt := 0; attempt < 20; attempt++ {
		idx := g.rng.Perm(len(commits))[:timelineItems]
		picks := make([]Commit, timelineItems)
		for i, n := range idx {
			picks[i] = commits[n]
		}

		sorted := make([]Commit, len(picks))
		copy(sorted, picks)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

		ok := true
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Date.Sub(sorted[i-1].Date) < timelineMinGap {
				ok = false
				break
			}
		}
		if ok {
			return picks
		}
	}
	return nil
}

func (g *CommitTimeline) EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome {
	max := MaxPairwiseScore(len(q.AnswerOrder))
	results := make(map[string]Outcome, len(subs))
	for player, sub := range subs {
		if sub.Answer.TimedOut || sub.Answer.Order == nil {
			wrong := false
			results[player] = Outcome{Answer: sub.Answer, Correct: &wrong, Points: 0}
			continue
		}

		points := PairwiseScore(q.AnswerOrder, sub.Answer.Order)
		perfect := points == max
		if perfect {
			if sub.Elapsed < orderFastWindow {
				points += orderFastBonus
			} else if sub.Elapsed < orderQuickWindow {
				points += orderQuickBonus
			}
		}

		results[player] = Outcome{
			Answer:  sub.Answer,
			Correct: &perfect,
			Points:  points,
			Detail:  fmt.Sprintf("%d of %d pairs in order", PairwiseScore(q.AnswerOrder, sub.Answer.Order), max),
		}
	}
	return results
}

type timelineSample struct {
	subject string
	sha     string
	date    string
}

var timelineSamples = [][]timelineSample{
	{
		{"Initial commit", "a1b2c3d", "Jan 5, 2025 09:12"},
		{"Add project scaffolding", "b2c3d4e", "Jan 8, 2025 14:30"},
		{"Implement login flow", "c3d4e5f", "Jan 15, 2025 11:45"},
		{"Fix login redirect bug", "d4e5f6a", "Jan 22, 2025 16:20"},
	},
	{
		{"Set up CI pipeline", "e5f6a7b", "Feb 1, 2025 10:00"},
		{"Add unit tests for parser", "f6a7b8c", "Feb 6, 2025 13:15"},
		{"Refactor parser internals", "a7b8c9d", "Feb 12, 2025 09:40"},
		{"Release v1.1.0", "b8c9d0e", "Feb 20, 2025 17:05"},
	},
	{
		{"Add database migrations", "c9d0e1f", "Mar 2, 2025 08:25"},
		{"Introduce caching layer", "d0e1f2a", "Mar 9, 2025 12:50"},
		{"Tune cache eviction policy", "e1f2a3b", "Mar 14, 2025 15:35"},
		{"Document cache configuration", "f2a3b4c", "Mar 21, 2025 10:10"},
	},
	{
		{"Add dark mode toggle", "a3b4c5d", "Apr 1, 2025 11:00"},
		{"Polish settings page", "b4c5d6e", "Apr 4, 2025 14:45"},
		{"Fix theme flash on load", "c5d6e7f", "Apr 10, 2025 09:30"},
		{"Ship theming to production", "d6e7f8a", "Apr 18, 2025 16:55"},
	},
	{
		{"Prototype search endpoint", "e7f8a9b", "May 3, 2025 10:20"},
		{"Index documents on write", "f8a9b0c", "May 8, 2025 13:40"},
		{"Add search result ranking", "a9b0c1d", "May 15, 2025 11:15"},
		{"Optimize slow search queries", "b0c1d2e", "May 23, 2025 15:00"},
	},
}

func (g *CommitTimeline) sampleQuestions() []Question {
	questions := make([]Question, 0, QuestionsPerRound)
	for i := 0; i < QuestionsPerRound; i++ {
		set := timelineSamples[i%len(timelineSamples)]
		labels := make([]string, len(set))
		dates := make([]string, len(set))
		for j, s := range set {
			labels[j] = fmt.Sprintf("%s (%s)", s.subject, s.sha)
			dates[j] = fmt.Sprintf("%s: %s", s.sha, s.date)
		}
		questions = append(questions, Question{
			Prompt:      "Put these commits in chronological order (oldest first):",
			Options:     shuffled(g.rng, labels),
			AnswerOrder: labels,
			Type:        TypeOrdering,
			CommitInfo:  strings.Join(dates, " | "),
		})
	}
	return questions
}
