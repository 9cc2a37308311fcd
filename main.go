package main

import (
	"boards/config"
	"boards/engine"
	"boards/experiments"
	"boards/game"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file, defaults apply when empty")
	mode := flag.String("mode", "play", "play, experiment or throughput")
	first := flag.String("first", "", "Configured player moving first in play mode")
	second := flag.String("second", "", "Configured player moving second in play mode")
	logLevel := flag.String("log-level", "", "Overrides the configured log level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "play":
		err = play(ctx, cfg, *first, *second)
	case "experiment":
		var dir string
		dir, err = experiments.Run(ctx, cfg)
		if err == nil {
			log.Info().Msgf("experiment records written to %s", dir)
		}
	case "throughput":
		_, err = experiments.RunThroughputExperiment(ctx, cfg.Rules, 500*time.Millisecond, []int{1, 2, 4, 8, 16})
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

// play runs one game between two configured players and draws the board
// after every move.
func play(ctx context.Context, cfg config.Config, first, second string) error {
	if first == "" && len(cfg.Players) > 0 {
		first = cfg.Players[0].Name
	}
	if second == "" && len(cfg.Players) > 1 {
		second = cfg.Players[1].Name
	}
	pc1, ok := cfg.Player(first)
	if !ok {
		return fmt.Errorf("no player named %q", first)
	}
	pc2, ok := cfg.Player(second)
	if !ok {
		return fmt.Errorf("no player named %q", second)
	}

	out := termenv.NewOutput(os.Stdout)
	match := engine.NewMatch(cfg.Rules,
		experiments.NewPlayer(pc1, 0),
		experiments.NewPlayer(pc2, 1),
		engine.WithTurnTimeout(cfg.TurnTimeout),
		engine.WithObserver(func(move game.Move, board *game.Board) {
			fmt.Fprintf(out, "%s played %s\n%s\n", board.ToMove().Opponent(), move, renderBoard(out, board, &move))
		}),
	)

	outcome, err := match.Run(ctx)
	if err != nil {
		return err
	}
	switch {
	case outcome.Winner == game.None:
		fmt.Fprintln(out, "Draw.")
	case outcome.Forfeit:
		fmt.Fprintf(out, "%s wins by forfeit.\n", outcome.Winner)
	default:
		fmt.Fprintf(out, "%s wins.\n", outcome.Winner)
	}
	return nil
}
