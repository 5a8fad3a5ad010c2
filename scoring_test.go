package main

import (
	"errors"
	"testing"
	"time"

	"github.com/gitgameshow/gitgameshow/games"
)

func playingSession(t *testing.T, provider games.MiniGame, questions []games.Question) *Session {
	t.Helper()
	s := NewSession(1)
	if err := s.StartGame(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.StartNextRound(provider)
	s.SetRoundQuestions(questions)
	if err := s.PrepareNextQuestion(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return s
}

func TestScoringEvaluateAtMostOnce(t *testing.T) {
	roster := NewRoster()
	roster.Add("alice", &fakeSender{})
	d := NewScoringDispatcher(roster)

	s := playingSession(t, &namedGame{name: "quiz"}, twoQuestions())
	correct := true
	s.RecordAnswer("alice", AnswerRecord{
		Answer:  games.ChoiceAnswer("A"),
		Elapsed: 2 * time.Second,
		Correct: &correct,
		Points:  15,
	})

	if _, err := d.EvaluateCurrentQuestion(s); err != nil {
		t.Fatalf("first evaluation: %v", err)
	}
	if score := roster.Scores()["alice"]; score != 15 {
		t.Fatalf("score = %d after first evaluation", score)
	}

	_, err := d.EvaluateCurrentQuestion(s)
	if !errors.Is(err, ErrAlreadyEvaluated) {
		t.Fatalf("second evaluation err = %v, want ErrAlreadyEvaluated", err)
	}
	if score := roster.Scores()["alice"]; score != 15 {
		t.Fatalf("score = %d, points were added twice", score)
	}
}

func TestScoringChoiceReadsBackRecords(t *testing.T) {
	roster := NewRoster()
	roster.Add("alice", &fakeSender{})
	roster.Add("bob", &fakeSender{})
	d := NewScoringDispatcher(roster)

	s := playingSession(t, &namedGame{name: "quiz"}, twoQuestions())
	correct := true
	s.RecordAnswer("alice", AnswerRecord{
		Answer:  games.ChoiceAnswer("A"),
		Elapsed: 3 * time.Second,
		Correct: &correct,
		Points:  15,
	})

	result, err := d.EvaluateCurrentQuestion(s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	alice := result.Results["alice"]
	if !*alice.Correct || alice.Points != 15 {
		t.Fatalf("alice outcome = %+v", alice)
	}

	bob, ok := result.Results["bob"]
	if !ok {
		t.Fatal("silent player missing from results")
	}
	if *bob.Correct || bob.Points != 0 || !bob.Answer.TimedOut {
		t.Fatalf("bob outcome = %+v, want timed-out zero", bob)
	}
	if roster.Scores()["bob"] != 0 {
		t.Fatalf("bob score = %d", roster.Scores()["bob"])
	}
}

func TestScoringOrderingDelegatesToProvider(t *testing.T) {
	roster := NewRoster()
	roster.Add("alice", &fakeSender{})
	d := NewScoringDispatcher(roster)

	q := games.Question{
		Type:        games.TypeOrdering,
		AnswerOrder: []string{"one", "two", "three", "four"},
	}
	s := playingSession(t, games.NewCommitTimeline(nil), []games.Question{q})
	s.RecordAnswer("alice", AnswerRecord{
		Answer:  games.OrderingAnswer(q.AnswerOrder),
		Elapsed: 3 * time.Second,
	})

	result, err := d.EvaluateCurrentQuestion(s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	alice := result.Results["alice"]
	want := games.MaxPairwiseScore(4) + 4
	if !*alice.Correct || alice.Points != want {
		t.Fatalf("alice outcome = %+v, want correct with %d points", alice, want)
	}
	if roster.Scores()["alice"] != want {
		t.Fatalf("score = %d, want %d", roster.Scores()["alice"], want)
	}
}

type panickingGame struct {
	namedGame
}

func (g *panickingGame) EvaluateAnswers(q games.Question, subs map[string]games.Submission) map[string]games.Outcome {
	panic("provider bug")
}

func TestScoringSurvivesProviderPanic(t *testing.T) {
	roster := NewRoster()
	roster.Add("alice", &fakeSender{})
	d := NewScoringDispatcher(roster)

	q := games.Question{Type: games.TypeOrdering, AnswerOrder: []string{"a", "b"}}
	s := playingSession(t, &panickingGame{}, []games.Question{q})
	s.RecordAnswer("alice", AnswerRecord{Answer: games.OrderingAnswer([]string{"a", "b"})})

	result, err := d.EvaluateCurrentQuestion(s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	alice := result.Results["alice"]
	if *alice.Correct || alice.Points != 0 {
		t.Fatalf("outcome after panic = %+v, want incorrect zero", alice)
	}
	if roster.Scores()["alice"] != 0 {
		t.Fatalf("score = %d after failed evaluation", roster.Scores()["alice"])
	}
}
