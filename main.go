package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/doomerang-netplay/client"
	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	server := flag.String("server", "", "Host address (host:port); defaults to the last server used")
	name := flag.String("name", "", "Player name; defaults to the saved name")
	difficulty := flag.Int("difficulty", int(config.BotDifficultyNormal), "Scripted controller style (0 easy, 1 normal, 2 hard)")
	seed := flag.Int64("seed", 0, "Controller seed (0 = random)")
	duration := flag.Duration("duration", 0, "Disconnect after this long (0 = run until interrupted)")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logging.Setup(*logLevel)

	var settings client.Settings
	store, err := client.OpenSettings("doomerang")
	if err != nil {
		log.Warn().Err(err).Msg("could not initialize persistence")
	} else if settings, err = store.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load settings")
	}
	if *server != "" {
		settings.LastServer = *server
	}
	if *name != "" {
		settings.PlayerName = *name
	}
	if settings.LastServer == "" {
		log.Fatal().Msg("no server given and none saved, use -server host:port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	peer := client.NewPeer(client.Options{
		Difficulty: config.BotDifficulty(*difficulty),
		Seed:       *seed,
	})
	defer peer.Close()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	defer cancelConnect()
	if err := peer.Connect(connectCtx, settings.LastServer); err != nil {
		log.Error().Err(err).Msg("cannot reach host")
		peer.Close()
		os.Exit(1)
	}
	if store != nil {
		if err := store.Save(settings); err != nil {
			log.Warn().Err(err).Msg("could not save settings")
		}
	}

	log.Info().Str("server", settings.LastServer).Str("name", settings.PlayerName).Msg("joined")
	if err := peer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("session ended")
	}

	board := peer.Registry().Scoreboard()
	for _, e := range board {
		log.Info().Str("player", e.Name).Int32("score", e.Score).Str("state", e.State).Msg("final score")
	}
}
