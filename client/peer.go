// Package client runs the headless peer: it connects to a host, drives one
// controller, adopts the player the host spawns for it and mirrors every
// replicated player.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/events"
	"github.com/automoto/doomerang-netplay/network"
	"github.com/automoto/doomerang-netplay/player"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/messages"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/automoto/doomerang-netplay/shared/protocol"
	"github.com/automoto/doomerang-netplay/systems"
	"github.com/rs/zerolog"
	"github.com/yohamta/donburi"
)

// Options configures a Peer. Zero values take config defaults.
type Options struct {
	TickRate   int
	Controller int
	Difficulty config.BotDifficulty
	Seed       int64
}

// Peer is the replicated side of a session. It never simulates players: it
// sends input and applies what the host reports.
type Peer struct {
	log      zerolog.Logger
	tickRate int
	conn     *network.Client

	bus         *events.Bus
	registry    *player.Registry
	entities    *systems.EntityManager
	transforms  *systems.TransformSystem
	camera      *systems.CameraSystem
	replica     *systems.ReplicaSystem
	controllers *systems.Controllers
	daemon      *player.ClientPlayerDaemon
	brain       *systems.BotController
	controller  int
	history     network.InputHistory
	outgoing    *network.Queue
	codec       *protocol.Codec

	step uint64
}

func NewPeer(opts Options) *Peer {
	if opts.TickRate <= 0 {
		opts.TickRate = config.Net.TickRate
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	p := &Peer{
		log:         logging.For("peer"),
		tickRate:    opts.TickRate,
		conn:        network.NewClient(),
		bus:         events.NewBus(),
		registry:    player.NewRegistry(),
		entities:    systems.NewEntityManager(donburi.NewWorld()),
		controllers: systems.NewControllers(),
		brain:       systems.NewBotController(opts.Difficulty, opts.Seed),
		controller:  opts.Controller,
		outgoing:    network.NewQueue(),
		codec:       protocol.Default,
	}
	p.transforms = systems.NewTransformSystem(p.entities)
	p.camera = systems.NewCameraSystem(p.entities.World(), p.transforms)
	p.replica = systems.NewReplicaSystem(p.entities, p.bus)
	p.daemon = player.NewClientPlayerDaemon(p.registry, p.bus, p.camera)

	p.controllers.Attach(opts.Controller)
	p.bus.Post(messages.ControllerAttached{ID: opts.Controller})
	return p
}

// Connect dials the host at address ("host:port" or a ws:// URL).
func (p *Peer) Connect(ctx context.Context, address string) error {
	if err := p.conn.Connect(ctx, address); err != nil {
		return fmt.Errorf("connect %s: %w", address, err)
	}
	return nil
}

// Connected reports whether the host link is up.
func (p *Peer) Connected() bool {
	return p.conn.State() == network.StateConnected
}

// Run steps the peer at its tick rate until ctx ends or the host goes away.
func (p *Peer) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(p.tickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.Connected() {
				if err := p.conn.LastError(); err != nil {
					return fmt.Errorf("host link: %w", err)
				}
				p.log.Info().Msg("host closed the connection")
				return nil
			}
			p.Step()
		}
	}
}

// Step applies everything the host sent since the last step, then sends this
// step's input.
func (p *Peer) Step() {
	p.step++
	dt := 1 / float32(p.tickRate)

	for _, payload := range p.conn.DrainPayloads() {
		msgs, err := p.codec.DecodeMessages(payload)
		if err != nil {
			p.log.Warn().Err(err).Msg("malformed batch from host dropped")
			continue
		}
		for _, m := range msgs {
			p.bus.Post(m)
		}
	}
	p.bus.ProcessEvents()

	if state := p.controllers.Get(p.controller); state != nil {
		p.brain.Update(state)
		p.sendInput(*state)
	}

	p.replica.Update()
	p.camera.Update(dt)
	p.entities.FlushReleased()

	if p.Connected() {
		if _, err := network.Flush(p.outgoing, p.conn); err != nil {
			p.log.Debug().Err(err).Msg("flush")
		}
	}
}

func (p *Peer) sendInput(state netconfig.ControllerState) {
	host := p.conn.Address()
	if host == "" {
		return
	}
	sender := network.NewBatchedMessageSender(host, p.outgoing, p.codec)
	defer sender.Close()

	msg := p.history.Next(messages.RemoteInputMessage{Controller: state})
	if err := sender.SendMessage(msg); err != nil {
		p.log.Warn().Err(err).Uint32("seq", msg.Sequence).Msg("input not sent")
	}
}

// LocalEntity returns the id the host assigned to this peer's player.
func (p *Peer) LocalEntity() (netconfig.EntityID, bool) {
	return p.daemon.LocalEntity()
}

// Registry exposes slot one and the scores the host has reported.
func (p *Peer) Registry() *player.Registry {
	return p.registry
}

// Replicas returns the ids of every player the host is replicating.
func (p *Peer) Replicas() []netconfig.EntityID {
	return p.replica.IDs()
}

// CameraTarget returns the entity the camera follows, if any.
func (p *Peer) CameraTarget() (netconfig.EntityID, bool) {
	return p.camera.Target()
}

// Close stops event delivery and drops the host connection.
func (p *Peer) Close() {
	p.daemon.Close()
	p.replica.Close()
	p.conn.Disconnect()
	p.entities.FlushReleased()
}
