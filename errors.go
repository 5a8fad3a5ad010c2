package main

import (
	"errors"
	"fmt"
)

var (
	// ErrNameTaken is returned by the roster when a joining player picked a
	// name that is already registered.
	ErrNameTaken = errors.New("name already taken")

	// ErrAlreadyEvaluated guards against scoring the same question twice.
	ErrAlreadyEvaluated = errors.New("question already evaluated")

	// ErrNoPlayers rejects starting a game with an empty roster.
	ErrNoPlayers = errors.New("no players connected")

	// ErrGameInProgress rejects joins and restarts while a game is running.
	ErrGameInProgress = errors.New("game in progress")

	// ErrWrongPhase rejects commands that do not apply to the current phase.
	ErrWrongPhase = errors.New("not valid in current game phase")

	// ErrWrongPassword rejects joins with a bad session password.
	ErrWrongPassword = errors.New("incorrect password")

	// ErrRoundExhausted signals there is no next question in the round.
	ErrRoundExhausted = errors.New("no more questions in round")
)

// panicError wraps a recovered panic value as an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
