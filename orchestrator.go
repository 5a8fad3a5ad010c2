package main

import (
	"time"

	"github.com/gitgameshow/gitgameshow/games"
	"github.com/rs/zerolog/log"
)

// notifier is the outbound side of the protocol, implemented by the
// gateway. The orchestrator announces domain events; the gateway turns them
// into wire messages.
type notifier interface {
	NotifyGameStart(rounds int, players []string)
	NotifyRoundStart(round, totalRounds int, name, description string)
	NotifyQuestion(q games.Question, id string, timeout time.Duration, round, number, total int)
	NotifyAnswerFeedback(player string, out games.Outcome, correctAnswer any)
	NotifyRoundResult(q games.Question, results map[string]games.Outcome, scores []ScoreEntry)
	NotifyGameEnd(winner string, scores []ScoreEntry)
	NotifyGameReset(message string)
}

// Pacing between lifecycle broadcasts, so clients have time to render each
// one before the next arrives.
const (
	roundBannerGrace = 3 * time.Second
	transitionDelay  = 10 * time.Second
	resetPause       = 1 * time.Second
)

// RoundOrchestrator drives the session through rounds and questions with
// scheduled callbacks. Every callback runs on the game loop; timers are
// never cancelled, they re-check phase, generation, and the question id
// before acting.
type RoundOrchestrator struct {
	session *Session
	roster  *Roster
	rotator *ProviderRotator
	scoring *ScoringDispatcher
	sched   Scheduler
	notify  notifier

	finishedOnce bool
	now          func() time.Time
}

func NewRoundOrchestrator(session *Session, roster *Roster, rotator *ProviderRotator, scoring *ScoringDispatcher, sched Scheduler, notify notifier) *RoundOrchestrator {
	return &RoundOrchestrator{
		session: session,
		roster:  roster,
		rotator: rotator,
		scoring: scoring,
		sched:   sched,
		notify:  notify,
		now:     time.Now,
	}
}

// HandleStartCommand begins a game. After a finished game it first
// broadcasts a reset notice and pauses so clients can clear their screens.
func (o *RoundOrchestrator) HandleStartCommand() error {
	if o.session.Phase() == PhasePlaying {
		return ErrGameInProgress
	}
	if o.roster.Count() < 1 {
		return ErrNoPlayers
	}

	if o.finishedOnce {
		o.notify.NotifyGameReset("Get ready, a new game is starting!")
		o.sched.After(resetPause, o.beginGame)
		return nil
	}
	o.beginGame()
	return nil
}

func (o *RoundOrchestrator) beginGame() {
	if err := o.session.StartGame(); err != nil {
		log.Warn().Err(err).Msg("start ignored")
		return
	}
	o.rotator.Reset()
	o.notify.NotifyGameStart(o.session.TotalRounds(), o.roster.Names())
	log.Info().Int("rounds", o.session.TotalRounds()).
		Int("players", o.roster.Count()).Msg("game started")
	o.advanceRound()
}

func (o *RoundOrchestrator) advanceRound() {
	if o.session.Phase() != PhasePlaying {
		return
	}

	provider := o.rotator.Next()
	o.session.StartNextRound(provider)
	if o.session.CurrentRound() > o.session.TotalRounds() {
		o.endGame()
		return
	}

	o.notify.NotifyRoundStart(o.session.CurrentRound(), o.session.TotalRounds(),
		provider.Name(), provider.Description())
	log.Info().Int("round", o.session.CurrentRound()).
		Str("game", provider.Name()).Msg("round starting")

	questions, err := safeGenerate(provider)
	if err != nil {
		log.Error().Err(err).Str("game", provider.Name()).Msg("question generation failed")
		questions = nil
	}
	o.session.SetRoundQuestions(questions)

	o.sched.After(roundBannerGrace, o.askNextQuestion)
}

func (o *RoundOrchestrator) askNextQuestion() {
	if o.session.Phase() != PhasePlaying {
		return
	}
	if err := o.session.PrepareNextQuestion(); err != nil {
		// Round produced no questions at all; move on.
		o.sched.After(transitionDelay, o.advanceRound)
		return
	}

	q, _ := o.session.CurrentQuestion()
	provider := o.session.Provider()
	timeout := provider.QuestionTimeout()
	id := o.session.QuestionID()
	gen := o.session.Generation()

	o.notify.NotifyQuestion(q, id, timeout,
		o.session.CurrentRound(), o.session.QuestionNumber(), o.session.QuestionCount())
	log.Debug().Str("question_id", id).Dur("timeout", timeout).Msg("question dispatched")

	// This timer is the only thing that ends a question. Early completion
	// is logged in HandleAnswer but never shortens the clock, so answer
	// timing stays comparable between players. The generation check keeps
	// a leftover timer from an ended game off the next game's questions,
	// whose ids start over at 1-0.
	o.sched.After(timeout, func() {
		if o.session.Generation() != gen || o.session.QuestionID() != id {
			return
		}
		o.evaluateAnswers()
	})
}

func (o *RoundOrchestrator) evaluateAnswers() {
	if o.session.Phase() != PhasePlaying {
		return
	}

	result, err := o.scoring.EvaluateCurrentQuestion(o.session)
	if err != nil {
		// A stale trigger after an early end or a double fire. Safe no-op.
		log.Debug().Err(err).Msg("evaluation skipped")
		return
	}

	o.notify.NotifyRoundResult(result.Question, result.Results, o.roster.RankedScores())

	o.session.MoveToNextQuestion()
	if o.session.IsLastQuestionInRound() {
		o.sched.After(transitionDelay, o.advanceRound)
		return
	}
	o.sched.After(o.session.Provider().DisplayInterval(), o.askNextQuestion)
}

// HandleAnswer processes one inbound answer. First answer per question
// wins; stale question ids and out-of-phase submissions are dropped.
func (o *RoundOrchestrator) HandleAnswer(name string, questionID string, ans games.Answer) {
	if o.session.Phase() != PhasePlaying {
		log.Debug().Str("player", name).Msg("answer outside active game dropped")
		return
	}
	if questionID != o.session.QuestionID() {
		log.Debug().Str("player", name).Str("got", questionID).
			Str("want", o.session.QuestionID()).Msg("stale answer dropped")
		return
	}
	if o.session.HasAnswered(name) {
		log.Debug().Str("player", name).Msg("duplicate answer dropped")
		return
	}

	q, ok := o.session.CurrentQuestion()
	if !ok {
		return
	}
	elapsed := o.now().Sub(o.session.StartedAt())

	var rec AnswerRecord
	if q.Type == games.TypeOrdering {
		// Correctness waits for evaluation, but a provisional pairwise
		// score gives the player immediate feedback.
		points := 0
		if !ans.TimedOut && ans.Order != nil {
			points = games.PairwiseScore(q.AnswerOrder, ans.Order)
		}
		rec = AnswerRecord{Answer: ans, Elapsed: elapsed, Points: points}
	} else {
		correct := !ans.TimedOut && ans.Text == q.Answer
		rec = AnswerRecord{
			Answer:  ans,
			Elapsed: elapsed,
			Correct: &correct,
			Points:  games.ScoreChoice(correct, elapsed),
		}
	}
	o.session.RecordAnswer(name, rec)

	o.notify.NotifyAnswerFeedback(name, games.Outcome{
		Answer:  rec.Answer,
		Correct: rec.Correct,
		Points:  rec.Points,
	}, q.CorrectAnswer())

	if len(o.session.Answers()) == o.roster.Count() {
		log.Debug().Str("question_id", questionID).Msg("all players answered early")
	}
}

// HandleEndCommand ends a running game early.
func (o *RoundOrchestrator) HandleEndCommand() error {
	if o.session.Phase() != PhasePlaying {
		return ErrWrongPhase
	}
	o.endGame()
	return nil
}

func (o *RoundOrchestrator) endGame() {
	o.session.EndGame()

	winner, _ := o.roster.TopPlayer()
	o.notify.NotifyGameEnd(winner, o.roster.RankedScores())
	log.Info().Str("winner", winner).Msg("game over")

	// Ready for the next game: identities persist, everything else resets.
	o.session.Reset()
	o.roster.ResetScores()
	o.finishedOnce = true
}

// HandleResetCommand clears state between games without starting one.
func (o *RoundOrchestrator) HandleResetCommand() error {
	if o.session.Phase() == PhasePlaying {
		return ErrGameInProgress
	}
	o.notify.NotifyGameReset("The game has been reset.")
	o.session.Reset()
	o.roster.ResetScores()
	return nil
}

// safeGenerate isolates provider panics during question generation.
func safeGenerate(provider games.MiniGame) (questions []games.Question, err error) {
	defer func() {
		if r := recover(); r != nil {
			questions = nil
			err = panicError(r)
		}
	}()
	return provider.GenerateQuestions()
}
