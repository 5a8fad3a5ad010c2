// Package games contains the mini-game providers: pluggable content sources
// that each supply one round of questions drawn from the host's git history,
// plus the scoring rules for their own question types.
package games

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"
)

type QuestionType string

const (
	TypeChoice   QuestionType = "choice"
	TypeOrdering QuestionType = "ordering"
)

// Question is a single prompt sent to every player. For choice questions the
// canonical answer is Answer; for ordering questions it is AnswerOrder.
// CommitInfo and Context are display-only and never interpreted by the engine.
type Question struct {
	Prompt      string
	Options     []string
	Answer      string
	AnswerOrder []string
	Type        QuestionType
	CommitInfo  string
	Context     string
}

// CorrectAnswer returns the canonical answer in the shape clients render it.
func (q Question) CorrectAnswer() any {
	if q.Type == TypeOrdering {
		numbered := make([]string, len(q.AnswerOrder))
		for i, item := range q.AnswerOrder {
			numbered[i] = strconv.Itoa(i+1) + ". " + item
		}
		return numbered
	}
	return q.Answer
}

// Answer is a player's submitted answer: a single option for choice
// questions, a permutation for ordering questions, or the timeout sentinel
// (JSON null on the wire).
type Answer struct {
	Text     string
	Order    []string
	TimedOut bool
}

func ChoiceAnswer(text string) Answer      { return Answer{Text: text} }
func OrderingAnswer(order []string) Answer { return Answer{Order: order} }

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{TimedOut: true}
		return nil
	}
	if data[0] == '[' {
		a.TimedOut = false
		a.Text = ""
		return json.Unmarshal(data, &a.Order)
	}
	a.TimedOut = false
	a.Order = nil
	return json.Unmarshal(data, &a.Text)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case a.TimedOut:
		return json.Marshal("TIMEOUT")
	case a.Order != nil:
		return json.Marshal(a.Order)
	default:
		return json.Marshal(a.Text)
	}
}

// Submission is a raw per-player answer handed to a provider for evaluation.
type Submission struct {
	Answer  Answer
	Elapsed time.Duration
}

// Outcome is a provider's verdict for one player. Correct is nil while an
// ordering answer is still awaiting evaluation.
type Outcome struct {
	Answer  Answer `json:"answer"`
	Correct *bool  `json:"correct"`
	Points  int    `json:"points"`
	Detail  string `json:"detail,omitempty"`
}

// MiniGame is the provider capability contract consumed by the round engine.
// Every provider supplies its own timing so the engine never needs to probe.
type MiniGame interface {
	Name() string
	Description() string
	QuestionTimeout() time.Duration
	DisplayInterval() time.Duration
	GenerateQuestions() ([]Question, error)
	EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome
}

// Factory produces a fresh provider instance for one round.
type Factory func() MiniGame

const (
	// QuestionsPerRound is the fixed round length shared by all providers.
	QuestionsPerRound = 5

	// DefaultQuestionTimeout and DefaultDisplayInterval back any provider
	// that does not override its timing.
	DefaultQuestionTimeout = 30 * time.Second
	DefaultDisplayInterval = 5 * time.Second
)

// ChoiceBasePoints is awarded for a correct choice answer; the fast bonuses
// reward answers under 5 and 10 seconds respectively.
const (
	ChoiceBasePoints  = 10
	ChoiceFastBonus   = 5
	ChoiceQuickBonus  = 3
	choiceFastWindow  = 5 * time.Second
	choiceQuickWindow = 10 * time.Second
)

// ScoreChoice computes points for a choice answer: base points when correct
// plus a speed bonus. Wrong or timed-out answers are worth nothing.
func ScoreChoice(correct bool, elapsed time.Duration) int {
	if !correct {
		return 0
	}
	points := ChoiceBasePoints
	if elapsed < choiceFastWindow {
		points += ChoiceFastBonus
	} else if elapsed < choiceQuickWindow {
		points += ChoiceQuickBonus
	}
	return points
}

// evaluateChoice is the shared evaluation for all choice-type providers.
func evaluateChoice(q Question, subs map[string]Submission) map[string]Outcome {
	results := make(map[string]Outcome, len(subs))
	for player, sub := range subs {
		correct := !sub.Answer.TimedOut && sub.Answer.Text == q.Answer
		results[player] = Outcome{
			Answer:  sub.Answer,
			Correct: &correct,
			Points:  ScoreChoice(correct, sub.Elapsed),
		}
	}
	return results
}

// PairwiseScore counts the pairs of distinct canonical items whose relative
// order the submission preserves. Items missing from the submission earn no
// credit for any pair involving them. The maximum is n*(n-1).
func PairwiseScore(canonical, submitted []string) int {
	positions := make(map[string]int, len(submitted))
	for i, item := range submitted {
		positions[item] = i
	}

	score := 0
	for i, item := range canonical {
		pi, ok := positions[item]
		if !ok {
			continue
		}
		for j, other := range canonical {
			if i == j || item == other {
				continue
			}
			pj, ok := positions[other]
			if !ok {
				continue
			}
			if (i < j && pi < pj) || (i > j && pi > pj) {
				score++
			}
		}
	}
	return score
}

// MaxPairwiseScore is the score of a fully correct ordering of n items.
func MaxPairwiseScore(n int) int {
	return n * (n - 1)
}

// shuffled returns a shuffled copy of items.
func shuffled(rng *rand.Rand, items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// sampleExcluding picks up to n random items, skipping any equal to skip.
func sampleExcluding(rng *rand.Rand, items []string, skip string, n int) []string {
	pool := make([]string, 0, len(items))
	for _, item := range items {
		if item != skip {
			pool = append(pool, item)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
