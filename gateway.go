package main

import (
	"encoding/json"
	"time"

	"github.com/gitgameshow/gitgameshow/games"
	"github.com/rs/zerolog/log"
)

// ProtocolGateway sits between the transport and the engine: inbound
// payloads are decoded into typed commands for the roster and orchestrator,
// outbound domain events are encoded into wire messages and fanned out to
// every registered player. All methods run on the game loop.
type ProtocolGateway struct {
	session  *Session
	roster   *Roster
	password string
	orch     *RoundOrchestrator
}

func NewProtocolGateway(session *Session, roster *Roster, password string) *ProtocolGateway {
	return &ProtocolGateway{
		session:  session,
		roster:   roster,
		password: password,
	}
}

// SetOrchestrator completes the wiring; the orchestrator needs the gateway
// as its notifier, so it is built second.
func (g *ProtocolGateway) SetOrchestrator(o *RoundOrchestrator) {
	g.orch = o
}

// HandleConnect is called when a transport connection opens. Nothing
// happens until the client sends a join request.
func (g *ProtocolGateway) HandleConnect(handle Sender) {}

// HandleMessage decodes one inbound payload. Malformed or unknown messages
// are logged and dropped, never fatal.
func (g *ProtocolGateway) HandleMessage(handle Sender, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Msg("malformed payload dropped")
		return
	}

	switch env.Type {
	case "join_request":
		var msg JoinRequestMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("malformed join_request dropped")
			return
		}
		g.handleJoin(handle, msg)

	case "answer":
		var msg AnswerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("malformed answer dropped")
			return
		}
		name, ok := g.roster.NameOf(handle)
		if !ok {
			log.Warn().Msg("answer from unregistered connection dropped")
			return
		}
		g.orch.HandleAnswer(name, msg.QuestionID, msg.Answer)

	case "chat":
		g.handleChat(handle, data)

	default:
		log.Debug().Str("type", env.Type).Msg("unknown message type dropped")
	}
}

// HandleDisconnect drops the player and tells everyone else.
func (g *ProtocolGateway) HandleDisconnect(handle Sender) {
	name, ok := g.roster.NameOf(handle)
	if !ok {
		return
	}
	g.roster.Remove(name)
	log.Info().Str("player", name).Msg("player left")
	g.broadcast(PlayerEventMessage{
		Type:    "player_left",
		Name:    name,
		Players: g.roster.Names(),
	})
}

func (g *ProtocolGateway) handleJoin(handle Sender, msg JoinRequestMessage) {
	reject := func(reason string) {
		handle.Send(JoinResponseMessage{Type: "join_response", Message: reason})
	}

	switch {
	case g.session.Phase() != PhaseLobby:
		reject("game in progress, try again later")
	case msg.Password != g.password:
		reject("incorrect password")
	case msg.Name == "":
		reject("name must not be empty")
	default:
		if err := g.roster.Add(msg.Name, handle); err != nil {
			reject("that name is already taken")
			return
		}
		log.Info().Str("player", msg.Name).Int("players", g.roster.Count()).Msg("player joined")

		handle.Send(JoinResponseMessage{
			Type:    "join_response",
			Success: true,
			Players: g.roster.Names(),
		})
		g.broadcastExcept(msg.Name, PlayerEventMessage{
			Type:    "player_joined",
			Name:    msg.Name,
			Players: g.roster.Names(),
		})
	}
}

// handleChat stamps the sender name onto the payload and rebroadcasts it
// without interpreting the rest.
func (g *ProtocolGateway) handleChat(handle Sender, data []byte) {
	name, ok := g.roster.NameOf(handle)
	if !ok {
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	payload["name"] = name
	g.broadcast(payload)
}

// broadcast delivers msg to every registered player in roster order. A full
// or closed client buffer is logged and skipped; it never aborts delivery
// to the rest.
func (g *ProtocolGateway) broadcast(msg any) {
	for _, name := range g.roster.Names() {
		handle, ok := g.roster.HandleOf(name)
		if !ok {
			continue
		}
		if !handle.Send(msg) {
			log.Warn().Str("player", name).Msg("send failed, dropping message")
		}
	}
}

func (g *ProtocolGateway) broadcastExcept(skip string, msg any) {
	for _, name := range g.roster.Names() {
		if name == skip {
			continue
		}
		handle, ok := g.roster.HandleOf(name)
		if !ok {
			continue
		}
		if !handle.Send(msg) {
			log.Warn().Str("player", name).Msg("send failed, dropping message")
		}
	}
}

func (g *ProtocolGateway) sendTo(name string, msg any) {
	handle, ok := g.roster.HandleOf(name)
	if !ok {
		return
	}
	if !handle.Send(msg) {
		log.Warn().Str("player", name).Msg("send failed, dropping message")
	}
}

// notifier implementation

func (g *ProtocolGateway) NotifyGameStart(rounds int, players []string) {
	g.broadcast(GameStartMessage{Type: "game_start", Rounds: rounds, Players: players})
}

func (g *ProtocolGateway) NotifyRoundStart(round, totalRounds int, name, description string) {
	g.broadcast(RoundStartMessage{
		Type:        "round_start",
		Round:       round,
		TotalRounds: totalRounds,
		MiniGame:    name,
		Description: description,
	})
}

func (g *ProtocolGateway) NotifyQuestion(q games.Question, id string, timeout time.Duration, round, number, total int) {
	g.broadcast(QuestionMessage{
		Type:           "question",
		QuestionID:     id,
		Question:       q.Prompt,
		Options:        q.Options,
		Timeout:        int(timeout / time.Second),
		QuestionType:   string(q.Type),
		Round:          round,
		QuestionNumber: number,
		TotalQuestions: total,
		CommitInfo:     q.CommitInfo,
		Context:        q.Context,
	})
}

func (g *ProtocolGateway) NotifyAnswerFeedback(player string, out games.Outcome, correctAnswer any) {
	g.sendTo(player, AnswerFeedbackMessage{
		Type:          "answer_feedback",
		Answer:        out.Answer,
		Correct:       out.Correct,
		CorrectAnswer: correctAnswer,
		Points:        out.Points,
	})
}

func (g *ProtocolGateway) NotifyRoundResult(q games.Question, results map[string]games.Outcome, scores []ScoreEntry) {
	g.broadcast(RoundResultMessage{
		Type:          "round_result",
		Question:      q.Prompt,
		Results:       results,
		CorrectAnswer: q.CorrectAnswer(),
		Scores:        scores,
	})
}

func (g *ProtocolGateway) NotifyGameEnd(winner string, scores []ScoreEntry) {
	g.broadcast(GameEndMessage{Type: "game_end", Winner: winner, Scores: scores})
}

func (g *ProtocolGateway) NotifyGameReset(message string) {
	g.broadcast(GameResetMessage{Type: "game_reset", Message: message})
}

// NotifyScoreboard answers the host's scoreboard command.
func (g *ProtocolGateway) NotifyScoreboard(scores []ScoreEntry) {
	g.broadcast(ScoreboardMessage{Type: "scoreboard", Scores: scores})
}
