package main

import (
	"github.com/gitgameshow/gitgameshow/games"
	"github.com/rs/zerolog/log"
)

// EvaluationResult carries the scored question and per-player outcomes back
// to the orchestrator for broadcasting.
type EvaluationResult struct {
	Question games.Question
	Results  map[string]games.Outcome
}

// ScoringDispatcher turns the open question's answer buffer into outcomes
// and applies the points to the roster, exactly once per question.
type ScoringDispatcher struct {
	roster *Roster
}

func NewScoringDispatcher(roster *Roster) *ScoringDispatcher {
	return &ScoringDispatcher{roster: roster}
}

// EvaluateCurrentQuestion scores the open question. The guard is taken
// before anything else, so a second trigger for the same question returns
// ErrAlreadyEvaluated with no side effects. Every roster member gets an
// outcome; players who never answered score zero.
func (d *ScoringDispatcher) EvaluateCurrentQuestion(s *Session) (*EvaluationResult, error) {
	if !s.MarkEvaluated() {
		return nil, ErrAlreadyEvaluated
	}
	q, ok := s.CurrentQuestion()
	if !ok {
		return nil, ErrRoundExhausted
	}

	var results map[string]games.Outcome
	if q.Type == games.TypeOrdering {
		results = d.evaluateOrdering(s, q)
	} else {
		results = d.readBackChoice(s)
	}

	for name, out := range results {
		d.roster.AddPoints(name, out.Points)
	}
	return &EvaluationResult{Question: q, Results: results}, nil
}

// readBackChoice collects choice outcomes, which were already computed when
// each answer arrived.
func (d *ScoringDispatcher) readBackChoice(s *Session) map[string]games.Outcome {
	results := make(map[string]games.Outcome, d.roster.Count())
	for _, name := range d.roster.Names() {
		rec, ok := s.Answers()[name]
		if !ok {
			wrong := false
			results[name] = games.Outcome{
				Answer:  games.Answer{TimedOut: true},
				Correct: &wrong,
			}
			continue
		}
		results[name] = games.Outcome{
			Answer:  rec.Answer,
			Correct: rec.Correct,
			Points:  rec.Points,
		}
	}
	return results
}

// evaluateOrdering hands the full submission map to the provider. Players
// who never answered are submitted with the timeout sentinel so they still
// appear in the results.
func (d *ScoringDispatcher) evaluateOrdering(s *Session, q games.Question) map[string]games.Outcome {
	subs := make(map[string]games.Submission, d.roster.Count())
	for _, name := range d.roster.Names() {
		if rec, ok := s.Answers()[name]; ok {
			subs[name] = games.Submission{Answer: rec.Answer, Elapsed: rec.Elapsed}
		} else {
			subs[name] = games.Submission{Answer: games.Answer{TimedOut: true}}
		}
	}

	results, err := safeEvaluate(s.Provider(), q, subs)
	if err != nil {
		log.Error().Err(err).Str("game", s.Provider().Name()).
			Msg("evaluation failed, scoring all answers as incorrect")
		results = make(map[string]games.Outcome, len(subs))
		for name, sub := range subs {
			wrong := false
			results[name] = games.Outcome{Answer: sub.Answer, Correct: &wrong}
		}
	}
	return results
}

// safeEvaluate isolates provider panics so a bad evaluator cannot take the
// session down.
func safeEvaluate(provider games.MiniGame, q games.Question, subs map[string]games.Submission) (results map[string]games.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = panicError(r)
		}
	}()
	return provider.EvaluateAnswers(q, subs), nil
}
