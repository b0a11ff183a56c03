package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"tiktok-stats/internal/adapters/history"
	"tiktok-stats/internal/config"
	"tiktok-stats/pkg/log"
	"tiktok-stats/pkg/log/transporters"
)

// Exit codes for the migrate command.
const (
	exitSuccess = 0
	exitFailure = 1
)

const usage = "Usage: migrate <up|down> [steps]"

// command is a parsed migrate invocation. Steps only applies to down.
type command struct {
	direction string
	steps     int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		return exitFailure
	}

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.History.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		return exitFailure
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	logger := log.New(level, transporters.NewStdout())
	log.SetDefault(logger)
	defer logger.Close()

	switch cmd.direction {
	case "up":
		err = history.RunMigrations(cfg.History.DatabaseURL)
	case "down":
		err = history.MigrateDown(cfg.History.DatabaseURL, cmd.steps)
	}
	if err != nil {
		log.GlobalError("migration failed", "direction", cmd.direction, "error", err)
		return exitFailure
	}

	return exitSuccess
}

// parseArgs accepts "up" or "down [steps]". Down defaults to one step.
func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing direction")
	}

	cmd := command{direction: args[0], steps: 1}
	switch cmd.direction {
	case "up":
		if len(args) > 1 {
			return command{}, errors.New("up takes no arguments")
		}
	case "down":
		if len(args) > 2 {
			return command{}, errors.New("down takes at most one argument")
		}
		if len(args) == 2 {
			steps, err := strconv.Atoi(args[1])
			if err != nil || steps <= 0 {
				return command{}, fmt.Errorf("invalid steps %q: must be a positive integer", args[1])
			}
			cmd.steps = steps
		}
	default:
		return command{}, fmt.Errorf("invalid direction %q (must be \"up\" or \"down\")", cmd.direction)
	}

	return cmd, nil
}
