package main

import (
	"github.com/gitgameshow/gitgameshow/games"
)

// Wire messages exchanged with clients. Every message is a JSON object with
// a "type" field; Envelope is decoded first to pick the concrete type.

type Envelope struct {
	Type string `json:"type"`
}

// ScoreEntry is one row of the ranked scoreboard. Ordered slices keep the
// leaderboard stable on the wire where a map would not.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type JoinRequestMessage struct {
	Type     string `json:"type"` // "join_request"
	Name     string `json:"name"`
	Password string `json:"password"`
}

type JoinResponseMessage struct {
	Type    string   `json:"type"` // "join_response"
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Players []string `json:"players,omitempty"`
}

// PlayerEventMessage covers both "player_joined" and "player_left".
type PlayerEventMessage struct {
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

type GameStartMessage struct {
	Type    string   `json:"type"` // "game_start"
	Rounds  int      `json:"rounds"`
	Players []string `json:"players"`
}

type RoundStartMessage struct {
	Type        string `json:"type"` // "round_start"
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
	MiniGame    string `json:"mini_game"`
	Description string `json:"description"`
}

type QuestionMessage struct {
	Type           string   `json:"type"` // "question"
	QuestionID     string   `json:"question_id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Timeout        int      `json:"timeout"` // seconds
	QuestionType   string   `json:"question_type,omitempty"`
	Round          int      `json:"round"`
	QuestionNumber int      `json:"question_number"`
	TotalQuestions int      `json:"total_questions"`
	CommitInfo     string   `json:"commit_info,omitempty"`
	Context        string   `json:"context,omitempty"`
}

// AnswerMessage is the only client-to-host message besides join and chat.
// A null answer is the client-side timeout sentinel.
type AnswerMessage struct {
	Type       string       `json:"type"` // "answer"
	Name       string       `json:"name"`
	Answer     games.Answer `json:"answer"`
	QuestionID string       `json:"question_id"`
}

// AnswerFeedbackMessage goes to a single player right after their answer is
// recorded. Correct is null for ordering questions, which are only scored
// when the timer fires.
type AnswerFeedbackMessage struct {
	Type          string       `json:"type"` // "answer_feedback"
	Answer        games.Answer `json:"answer"`
	Correct       *bool        `json:"correct"`
	CorrectAnswer any          `json:"correct_answer"`
	Points        int          `json:"points"`
}

type RoundResultMessage struct {
	Type          string                   `json:"type"` // "round_result"
	Question      string                   `json:"question"`
	Results       map[string]games.Outcome `json:"results"`
	CorrectAnswer any                      `json:"correct_answer"`
	Scores        []ScoreEntry             `json:"scores"`
}

type ScoreboardMessage struct {
	Type   string       `json:"type"` // "scoreboard"
	Scores []ScoreEntry `json:"scores"`
}

type GameEndMessage struct {
	Type   string       `json:"type"` // "game_end"
	Winner string       `json:"winner"`
	Scores []ScoreEntry `json:"scores"`
}

type GameResetMessage struct {
	Type    string `json:"type"` // "game_reset"
	Message string `json:"message"`
}

// Chat messages have no struct: the payload is rebroadcast as-is with the
// sender name stamped over whatever the client claimed.
