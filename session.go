package main

import (
	"fmt"
	"time"

	"github.com/gitgameshow/gitgameshow/games"
)

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseLobby Phase = iota
	PhasePlaying
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// AnswerRecord is one player's stored answer for the current question.
// Correct stays nil for ordering answers until evaluation runs.
type AnswerRecord struct {
	Answer  games.Answer
	Elapsed time.Duration
	Correct *bool
	Points  int
}

// Session is the authoritative game record: phase, round and question
// position, the open question's answer buffer, and the evaluation guard.
// It is pure state; the orchestrator drives every transition.
type Session struct {
	phase          Phase
	generation     int
	currentRound   int
	totalRounds    int
	activeProvider games.MiniGame
	roundQuestions []games.Question
	questionIndex  int
	questionID     string
	startedAt      time.Time
	answers        map[string]AnswerRecord
	evaluated      bool
}

func NewSession(totalRounds int) *Session {
	return &Session{
		totalRounds: totalRounds,
		answers:     make(map[string]AnswerRecord),
	}
}

func (s *Session) Phase() Phase             { return s.phase }
func (s *Session) Generation() int          { return s.generation }
func (s *Session) CurrentRound() int        { return s.currentRound }
func (s *Session) TotalRounds() int         { return s.totalRounds }
func (s *Session) Provider() games.MiniGame { return s.activeProvider }
func (s *Session) QuestionID() string       { return s.questionID }
func (s *Session) StartedAt() time.Time     { return s.startedAt }
func (s *Session) Evaluated() bool          { return s.evaluated }
func (s *Session) QuestionCount() int       { return len(s.roundQuestions) }
func (s *Session) QuestionNumber() int      { return s.questionIndex + 1 }

// StartGame moves Lobby to Playing. The roster size check belongs to the
// orchestrator; the phase check belongs here. Each game gets a fresh
// generation: question ids restart at 1-0 every game, so timers need the
// generation to tell this game's 1-0 from the last one's.
func (s *Session) StartGame() error {
	if s.phase != PhaseLobby {
		return ErrWrongPhase
	}
	s.phase = PhasePlaying
	s.generation++
	s.currentRound = 0
	return nil
}

// StartNextRound advances the round counter and installs the provider. The
// caller checks CurrentRound against TotalRounds and ends the game instead
// when the counter runs past it.
func (s *Session) StartNextRound(provider games.MiniGame) {
	s.currentRound++
	s.activeProvider = provider
	s.evaluated = false
}

func (s *Session) SetRoundQuestions(questions []games.Question) {
	s.roundQuestions = questions
	s.questionIndex = 0
}

// PrepareNextQuestion opens the question at the current index: stamps the
// question id and start time, clears the answer buffer, drops the guard.
func (s *Session) PrepareNextQuestion() error {
	if s.questionIndex >= len(s.roundQuestions) {
		return ErrRoundExhausted
	}
	s.questionID = fmt.Sprintf("%d-%d", s.currentRound, s.questionIndex)
	s.startedAt = time.Now()
	s.answers = make(map[string]AnswerRecord)
	s.evaluated = false
	return nil
}

// CurrentQuestion returns the open question, or false when none is open.
func (s *Session) CurrentQuestion() (games.Question, bool) {
	if s.questionIndex >= len(s.roundQuestions) {
		return games.Question{}, false
	}
	return s.roundQuestions[s.questionIndex], true
}

// HasAnswered reports whether the player already answered the open question.
func (s *Session) HasAnswered(name string) bool {
	_, ok := s.answers[name]
	return ok
}

// RecordAnswer stores a player's answer. First answer wins; the caller
// checks HasAnswered before recording.
func (s *Session) RecordAnswer(name string, rec AnswerRecord) {
	s.answers[name] = rec
}

// Answers returns the open question's answer buffer.
func (s *Session) Answers() map[string]AnswerRecord {
	return s.answers
}

// MarkEvaluated flips the guard. It reports false if the guard was already
// set, which is how a second evaluation trigger gets turned away.
func (s *Session) MarkEvaluated() bool {
	if s.evaluated {
		return false
	}
	s.evaluated = true
	return true
}

// MoveToNextQuestion advances past the evaluated question.
func (s *Session) MoveToNextQuestion() {
	s.questionIndex++
	s.answers = make(map[string]AnswerRecord)
}

func (s *Session) IsLastQuestionInRound() bool {
	return s.questionIndex >= len(s.roundQuestions)
}

func (s *Session) IsLastRound() bool {
	return s.currentRound >= s.totalRounds
}

func (s *Session) EndGame() {
	s.phase = PhaseEnded
}

// Reset returns the session to Lobby for a fresh game. Roster scores are
// reset by the orchestrator, not here.
func (s *Session) Reset() {
	s.phase = PhaseLobby
	s.currentRound = 0
	s.activeProvider = nil
	s.roundQuestions = nil
	s.questionIndex = 0
	s.questionID = ""
	s.startedAt = time.Time{}
	s.answers = make(map[string]AnswerRecord)
	s.evaluated = false
}
