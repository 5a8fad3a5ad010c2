package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

const consoleHelp = `Host commands:
  start       begin the game with the connected players
  end         end the current game early and show final scores
  reset       clear game state between games
  scoreboard  print and broadcast the current standings
  help        show this message
  exit        shut down the host`

// runConsole reads host commands from stdin. Every command is marshalled
// onto the game loop; the console goroutine never touches game state
// directly.
func runConsole(ctx context.Context, cancel context.CancelFunc, gs *GameServer) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch cmd {
		case "":
			continue

		case "start":
			gs.loop.Dispatch(func() {
				if err := gs.orch.HandleStartCommand(); err != nil {
					fmt.Printf("Cannot start: %v\n", err)
				}
			})

		case "end":
			gs.loop.Dispatch(func() {
				if err := gs.orch.HandleEndCommand(); err != nil {
					fmt.Printf("Cannot end: %v\n", err)
				}
			})

		case "reset":
			gs.loop.Dispatch(func() {
				if err := gs.orch.HandleResetCommand(); err != nil {
					fmt.Printf("Cannot reset: %v\n", err)
				}
			})

		case "scoreboard":
			gs.loop.Dispatch(func() {
				scores := gs.roster.RankedScores()
				if len(scores) == 0 {
					fmt.Println("No players connected.")
					return
				}
				fmt.Println("Current standings:")
				for i, entry := range scores {
					fmt.Printf("  %d. %s: %d\n", i+1, entry.Name, entry.Score)
				}
				gs.gateway.NotifyScoreboard(scores)
			})

		case "help":
			fmt.Println(consoleHelp)

		case "exit", "quit":
			fmt.Println("Shutting down.")
			cancel()
			return

		default:
			fmt.Printf("Unknown command %q. Type 'help' for a list.\n", cmd)
		}
	}
}
