package core

import (
	"time"

	"github.com/automoto/doomerang-netplay/shared/logging"
)

// GameLoop calls Server.Step at a fixed rate until stopped.
type GameLoop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
	done     chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	if tickRate <= 0 {
		tickRate = 20
	}
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	defer close(g.done)
	ticker := time.NewTicker(g.Interval())
	defer ticker.Stop()

	log := logging.For("loop")
	log.Info().Int("tickrate", g.tickRate).Msg("game loop started")

	for {
		select {
		case <-g.stopChan:
			log.Info().Msg("game loop stopped")
			return
		case <-ticker.C:
			g.server.Step()
		}
	}
}

// Stop ends Run and waits for the step in progress to finish.
func (g *GameLoop) Stop() {
	close(g.stopChan)
	<-g.done
}

// Interval is the wall-clock length of one step.
func (g *GameLoop) Interval() time.Duration {
	return time.Second / time.Duration(g.tickRate)
}
