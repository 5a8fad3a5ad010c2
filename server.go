package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gitgameshow/gitgameshow/games"
)

// GameServer owns the whole engine: session, roster, rotation, scoring,
// orchestration, protocol gateway, and the transport hub, wired together
// explicitly so nothing reaches for ambient state.
type GameServer struct {
	cfg     *Config
	loop    *Loop
	session *Session
	roster  *Roster
	rotator *ProviderRotator
	scoring *ScoringDispatcher
	orch    *RoundOrchestrator
	gateway *ProtocolGateway
	hub     *Hub
	repo    *games.Repo
}

func NewGameServer(cfg *Config) (*GameServer, error) {
	repo, err := games.OpenRepo(cfg.repo)
	if err != nil {
		return nil, err
	}

	factories := []games.Factory{
		func() games.MiniGame { return games.NewAuthorQuiz(repo) },
		func() games.MiniGame { return games.NewFileQuiz(repo) },
		func() games.MiniGame { return games.NewCommitCompletion(repo) },
		func() games.MiniGame { return games.NewCommitTimeline(repo) },
		func() games.MiniGame { return games.NewBranchDetective(repo) },
		func() games.MiniGame { return games.NewBlameGame(repo) },
	}

	loop := NewLoop()
	session := NewSession(cfg.rounds)
	roster := NewRoster()
	rotator := NewProviderRotator(factories, rand.New(rand.NewSource(time.Now().UnixNano())))
	scoring := NewScoringDispatcher(roster)
	gateway := NewProtocolGateway(session, roster, cfg.password)
	orch := NewRoundOrchestrator(session, roster, rotator, scoring, loop, gateway)
	gateway.SetOrchestrator(orch)

	gs := &GameServer{
		cfg:     cfg,
		loop:    loop,
		session: session,
		roster:  roster,
		rotator: rotator,
		scoring: scoring,
		orch:    orch,
		gateway: gateway,
		hub:     NewHub(loop, gateway),
		repo:    repo,
	}
	return gs, nil
}

// Run starts the game loop, the console, and the web surface, and blocks
// until ctx is cancelled or the host types exit.
func (gs *GameServer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go gs.loop.Run(ctx)
	go runConsole(ctx, cancel, gs)

	gs.printWelcome()

	err := serveWeb(ctx, gs.cfg, gs)
	gs.hub.CloseAll()
	return err
}

func (gs *GameServer) printWelcome() {
	fmt.Println()
	fmt.Println("  ┌──────────────────────────────────────────────┐")
	fmt.Println("  │              GIT GAME SHOW                   │")
	fmt.Println("  └──────────────────────────────────────────────┘")
	fmt.Println()
	fmt.Printf("  Repository:  %s\n", gs.repo.Dir())
	fmt.Printf("  Rounds:      %d\n", gs.cfg.rounds)
	fmt.Printf("  Join link:   %s\n", gs.cfg.joinLink(gs.cfg.bind))
	fmt.Printf("  Password:    %s\n", gs.cfg.password)
	fmt.Println()
	fmt.Println("  Waiting for players. Type 'help' for host commands.")
	fmt.Println()

	log.Info().Str("repo", gs.repo.Dir()).Int("rounds", gs.cfg.rounds).Msg("host ready")
}

// Serve is the cobra entry point.
func Serve(ctx context.Context, cfg *Config) error {
	gs, err := NewGameServer(cfg)
	if err != nil {
		return err
	}
	return gs.Run(ctx)
}
