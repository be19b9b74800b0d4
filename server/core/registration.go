package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/rs/zerolog"
)

// PlayerCounter reports how many players a host currently has.
type PlayerCounter interface {
	PlayerCount() int
}

// Registration handles registering and heartbeating with the master server.
type Registration struct {
	mu         sync.Mutex
	masterURL  string
	serverID   string
	name       string
	address    string
	version    string
	region     string
	maxPlayers int
	interval   time.Duration
	players    PlayerCounter
	client     *http.Client
	log        zerolog.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

type regRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
	Region     string `json:"region"`
}

type regResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

type RegistrationOptions struct {
	MasterURL  string
	Name       string
	Address    string
	Version    string
	Region     string
	MaxPlayers int
	Interval   time.Duration // Heartbeat period, 30s if zero
}

func NewRegistration(opts RegistrationOptions, players PlayerCounter) *Registration {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	return &Registration{
		masterURL:  opts.MasterURL,
		name:       opts.Name,
		address:    opts.Address,
		version:    opts.Version,
		region:     opts.Region,
		maxPlayers: opts.MaxPlayers,
		interval:   opts.Interval,
		players:    players,
		client:     &http.Client{Timeout: 5 * time.Second},
		log:        logging.For("registration"),
		done:       make(chan struct{}),
	}
}

// Start registers once and keeps heartbeating until ctx ends or Stop.
func (r *Registration) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	if err := r.register(ctx); err != nil {
		r.log.Warn().Err(err).Msg("initial registration failed")
	}
	go r.heartbeatLoop(ctx)
}

func (r *Registration) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

// ID returns the id the master assigned, empty until registered.
func (r *Registration) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.serverID
}

func (r *Registration) register(ctx context.Context) error {
	var result regResponse
	status, err := r.post(ctx, "/servers/register", regRequest{
		Name:       r.name,
		Address:    r.address,
		Players:    r.players.PlayerCount(),
		MaxPlayers: r.maxPlayers,
		Version:    r.version,
		Region:     r.region,
	}, &result)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", status)
	}

	r.mu.Lock()
	r.serverID = result.ID
	r.mu.Unlock()
	r.log.Info().Str("id", result.ID).Msg("registered with master")
	return nil
}

func (r *Registration) heartbeatLoop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sendHeartbeat(ctx); err != nil && ctx.Err() == nil {
				r.log.Warn().Err(err).Msg("heartbeat failed")
			}
		}
	}
}

func (r *Registration) sendHeartbeat(ctx context.Context) error {
	status, err := r.post(ctx, "/servers/heartbeat", heartbeatRequest{
		ID:      r.ID(),
		Players: r.players.PlayerCount(),
	}, nil)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		r.log.Info().Msg("master lost our registration, re-registering")
		return r.register(ctx)
	}
	return fmt.Errorf("unexpected status: %d", status)
}

// post sends body as JSON and decodes a successful response into out.
func (r *Registration) post(ctx context.Context, path string, body, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.masterURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode: %w", err)
		}
	}
	return resp.StatusCode, nil
}
