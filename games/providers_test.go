package games

import (
	"testing"
	"time"
)

// All providers must degrade to sample questions instead of failing when
// the repository has no usable history.

func TestProvidersFallBackToSamples(t *testing.T) {
	empty := &Repo{dir: t.TempDir()}

	providers := []MiniGame{
		NewAuthorQuiz(empty),
		NewFileQuiz(empty),
		NewCommitCompletion(empty),
		NewCommitTimeline(empty),
		NewBranchDetective(empty),
		NewBlameGame(empty),
	}

	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			questions, err := p.GenerateQuestions()
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if len(questions) != QuestionsPerRound {
				t.Fatalf("got %d questions, want %d", len(questions), QuestionsPerRound)
			}
			for i, q := range questions {
				if q.Prompt == "" {
					t.Fatalf("question %d has empty prompt", i)
				}
				if q.Type == TypeChoice {
					if len(q.Options) < 2 {
						t.Fatalf("question %d has %d options", i, len(q.Options))
					}
					found := false
					for _, opt := range q.Options {
						if opt == q.Answer {
							found = true
						}
					}
					if !found {
						t.Fatalf("question %d answer %q not among options %v", i, q.Answer, q.Options)
					}
				}
			}
		})
	}
}

// Every registered provider must be able to evaluate a submission against
// its own questions; a provider missing its evaluator would otherwise only
// surface once a round reaches it.
func TestProvidersEvaluateOwnQuestions(t *testing.T) {
	empty := &Repo{dir: t.TempDir()}

	providers := []MiniGame{
		NewAuthorQuiz(empty),
		NewFileQuiz(empty),
		NewCommitCompletion(empty),
		NewCommitTimeline(empty),
		NewBranchDetective(empty),
		NewBlameGame(empty),
	}

	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			questions, err := p.GenerateQuestions()
			if err != nil || len(questions) == 0 {
				t.Fatalf("generate: %v (%d questions)", err, len(questions))
			}
			q := questions[0]

			var sub Submission
			if q.Type == TypeOrdering {
				sub = Submission{Answer: OrderingAnswer(q.AnswerOrder), Elapsed: 3 * time.Second}
			} else {
				sub = Submission{Answer: ChoiceAnswer(q.Answer), Elapsed: 3 * time.Second}
			}

			results := p.EvaluateAnswers(q, map[string]Submission{"alice": sub})
			out, ok := results["alice"]
			if !ok {
				t.Fatal("no outcome for the submitting player")
			}
			if out.Correct == nil || !*out.Correct {
				t.Fatalf("canonical answer scored %+v, want correct", out)
			}
			if out.Points <= 0 {
				t.Fatalf("canonical answer earned %d points", out.Points)
			}
		})
	}
}

func TestProviderTimingsArePositive(t *testing.T) {
	empty := &Repo{dir: t.TempDir()}
	providers := []MiniGame{
		NewAuthorQuiz(empty),
		NewFileQuiz(empty),
		NewCommitCompletion(empty),
		NewCommitTimeline(empty),
		NewBranchDetective(empty),
		NewBlameGame(empty),
	}
	for _, p := range providers {
		if p.QuestionTimeout() <= 0 || p.DisplayInterval() <= 0 {
			t.Fatalf("%s has non-positive timing", p.Name())
		}
	}
}
