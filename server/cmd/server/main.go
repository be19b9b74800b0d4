package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/server/core"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	port := flag.Uint("port", config.Net.Port, "Server port")
	tickRate := flag.Int("tickrate", config.Net.TickRate, "Server tick rate (updates per second)")
	name := flag.String("name", "Doomerang Server", "Server display name")
	version := flag.String("version", "", "Version reported to the master server")
	levelPath := flag.String("level", "", "TMX level to host (empty = open arena)")
	bots := flag.Int("bots", 0, "Local bot players (at most 2)")
	difficulty := flag.Int("difficulty", int(config.BotDifficultyNormal), "Bot difficulty (0 easy, 1 normal, 2 hard)")
	master := flag.String("master", "", "Master server URL (empty = do not register)")
	address := flag.String("address", "", "Public address advertised to the master server")
	region := flag.String("region", "", "Region advertised to the master server")
	maxPlayers := flag.Int("maxplayers", 8, "Player limit advertised to the master server")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logging.Setup(*logLevel)

	opts := core.Options{
		TickRate:   *tickRate,
		Bots:       *bots,
		Difficulty: config.BotDifficulty(*difficulty),
	}
	if *levelPath != "" {
		lvl, err := core.LoadServerLevel(os.DirFS(filepath.Dir(*levelPath)), filepath.Base(*levelPath))
		if err != nil {
			log.Fatal().Err(err).Str("level", *levelPath).Msg("cannot load level")
		}
		opts.Level = lvl
	}

	server := core.NewServer(opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var registration *core.Registration
	if *master != "" {
		registration = core.NewRegistration(core.RegistrationOptions{
			MasterURL:  *master,
			Name:       *name,
			Address:    *address,
			Version:    *version,
			Region:     *region,
			MaxPlayers: *maxPlayers,
		}, server)
		registration.Start(ctx)
	}

	stopped := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer close(stopped)
		<-sigChan
		log.Info().Msg("shutting down server")
		if registration != nil {
			registration.Stop()
		}
		server.Stop()
	}()

	log.Info().
		Str("name", *name).
		Uint("port", *port).
		Int("tickrate", *tickRate).
		Int("bots", *bots).
		Msg("starting doomerang host")
	if err := server.Start(*port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	<-stopped
}
