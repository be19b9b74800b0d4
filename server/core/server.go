package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/network"
	"github.com/automoto/doomerang-netplay/player"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/protocol"
	"github.com/automoto/doomerang-netplay/systems"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yohamta/donburi"
)

// Options configures a Server. Zero values take config defaults.
type Options struct {
	TickRate   int
	Level      *ServerLevel
	Bots       int
	Difficulty config.BotDifficulty
	Transport  network.HostOptions
}

type bot struct {
	controller int
	brain      *systems.BotController
}

// Server is the authoritative host: it owns the simulation, accepts peers
// and replicates player state to them once per step.
type Server struct {
	log       zerolog.Logger
	tickRate  int
	level     *ServerLevel
	transport *network.HostTransport
	loop      *GameLoop
	engine    *gin.Engine
	http      *http.Server

	bus         *events.Bus
	registry    *player.Registry
	entities    *systems.EntityManager
	transforms  *systems.TransformSystem
	damage      *systems.DamageSystem
	camera      *systems.CameraSystem
	logic       *systems.LogicSystem
	physics     *systems.PhysicsSystem
	pickups     *systems.PickupSystem
	controllers *systems.Controllers
	daemon      *player.PlayerDaemon
	outgoing    *network.Queue
	codec       *protocol.Codec
	bots        []bot

	stepMu  sync.Mutex
	step    uint64
	started bool
	once    sync.Once
}

// NewServer builds a host around opts.Level, or an empty arena.
func NewServer(opts Options) *Server {
	if opts.TickRate <= 0 {
		opts.TickRate = config.Net.TickRate
	}
	if opts.Level == nil {
		opts.Level = EmptyLevel(1024, 768)
	}

	s := &Server{
		log:         logging.For("host"),
		tickRate:    opts.TickRate,
		level:       opts.Level,
		transport:   network.NewHostTransport(opts.Transport),
		bus:         events.NewBus(),
		registry:    player.NewRegistry(),
		entities:    systems.NewEntityManager(donburi.NewWorld()),
		controllers: systems.NewControllers(),
		outgoing:    network.NewQueue(),
		codec:       protocol.Default,
	}
	s.transforms = systems.NewTransformSystem(s.entities)
	s.damage = systems.NewDamageSystem(s.entities)
	s.camera = systems.NewCameraSystem(s.entities.World(), s.transforms)
	s.logic = systems.NewLogicSystem(s.entities)
	s.physics = systems.NewPhysicsSystem(s.entities, opts.Level.Space)
	s.pickups = systems.NewPickupSystem(s.entities, s.physics, s.bus)
	for _, p := range opts.Level.Pickups {
		s.pickups.AddPickup(p.Type, p.X, p.Y, p.Amount)
	}

	sys := player.NewSystems(s.entities, s.transforms, s.damage, s.camera, s.logic, s.physics)
	s.daemon = player.NewPlayerDaemon(s.registry, s.bus, sys, s.controllers, s.outgoing, s.codec,
		player.DaemonConfig{SpawnPoints: opts.Level.SpawnPoints})

	for i := 0; i < min(opts.Bots, 2); i++ {
		s.bots = append(s.bots, bot{controller: i, brain: systems.NewBotController(opts.Difficulty, int64(i+1))})
		s.bus.Post(messages.ControllerAttached{ID: i})
	}

	s.loop = NewGameLoop(s, opts.TickRate)
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })
	r.GET("/players", func(ctx *gin.Context) {
		board := s.registry.Scoreboard()
		if board == nil {
			board = []player.ScoreEntry{}
		}
		ctx.JSON(http.StatusOK, gin.H{"players": board, "count": s.PlayerCount()})
	})
	r.GET("/ws", func(ctx *gin.Context) {
		if err := s.transport.Accept(ctx.Writer, ctx.Request); err != nil {
			s.log.Warn().Err(err).Str("remote", ctx.Request.RemoteAddr).Msg("websocket upgrade failed")
		}
	})
	return r
}

// Handler serves the websocket endpoint and the status routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the game loop and serves HTTP on port until Stop.
func (s *Server) Start(port uint) error {
	s.stepMu.Lock()
	s.started = true
	s.stepMu.Unlock()
	go s.loop.Run()

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Uint("port", port).Msg("listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Stop shuts down the loop, the peers and the HTTP listener. Player
// entities are released and the registry is cleared.
func (s *Server) Stop() {
	s.once.Do(func() {
		s.stepMu.Lock()
		started := s.started
		s.stepMu.Unlock()
		if started {
			s.loop.Stop()
		}

		s.transport.Close()
		if s.http != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.http.Shutdown(ctx); err != nil {
				s.log.Warn().Err(err).Msg("http shutdown")
			}
		}

		s.stepMu.Lock()
		defer s.stepMu.Unlock()
		s.daemon.Close()
		s.entities.FlushReleased()
	})
}

// Step advances the simulation by one tick: inbound network events, input,
// logic, physics, pickups, damage, replication, then the outgoing flush.
func (s *Server) Step() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	s.step++
	ctx := systems.UpdateContext{
		Step:      s.step,
		DeltaMS:   1000 / float64(s.tickRate),
		Timestamp: time.Now(),
	}

	s.drainInbound()
	s.bus.ProcessEvents()

	for _, b := range s.bots {
		if state := s.controllers.Get(b.controller); state != nil {
			b.brain.Update(state)
		}
	}

	s.daemon.Update(ctx)
	s.logic.Update(ctx)
	s.physics.Update()
	s.pickups.Update()
	s.bus.ProcessEvents()
	s.damage.Update()
	s.bus.ProcessEvents()
	s.camera.Update(float32(ctx.DeltaMS / 1000))

	s.daemon.Replicate()
	s.entities.FlushReleased()

	if _, err := network.Flush(s.outgoing, s.transport); err != nil {
		s.log.Debug().Err(err).Msg("flush")
	}
}

func (s *Server) drainInbound() {
	for {
		select {
		case ev := <-s.transport.Inbound():
			s.handleInbound(ev)
		default:
			return
		}
	}
}

// handleInbound turns one transport event into bus events, in arrival order.
// Peers may only send input; the sender address is taken from the
// connection, never from the payload.
func (s *Server) handleInbound(ev network.Inbound) {
	switch ev.Kind {
	case network.PeerConnected:
		s.bus.Post(messages.PlayerConnectedEvent{Address: ev.Address})
	case network.PeerDisconnected:
		s.bus.Post(messages.PlayerDisconnectedEvent{Address: ev.Address})
	case network.PeerPayload:
		msgs, err := s.codec.DecodeMessages(ev.Payload)
		if err != nil {
			s.log.Warn().Err(err).Str("peer", string(ev.Address)).Msg("malformed batch dropped")
			return
		}
		for _, m := range msgs {
			input, ok := m.(messages.RemoteInputMessage)
			if !ok {
				s.log.Debug().Str("peer", string(ev.Address)).Msgf("ignoring %T from peer", m)
				continue
			}
			input.Sender = ev.Address
			s.bus.Post(input)
		}
	}
}

// PlayerCount returns the number of active local and remote players.
func (s *Server) PlayerCount() int {
	return len(s.registry.PlayerIDs())
}

// Registry exposes the player table, mainly for status reporting.
func (s *Server) Registry() *player.Registry {
	return s.registry
}
