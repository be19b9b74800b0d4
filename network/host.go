package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// InboundKind classifies what the host transport observed.
type InboundKind int

const (
	PeerConnected InboundKind = iota
	PeerPayload
	PeerDisconnected
)

// Inbound is one event from a peer, delivered on the step goroutine through
// HostTransport.Inbound.
type Inbound struct {
	Kind    InboundKind
	Address netconfig.Address
	Payload []byte
}

// HostOptions tunes a HostTransport. Zero values take config.Net defaults.
type HostOptions struct {
	InboundBuffer  int
	OutboxSize     int
	ReadLimit      int64
	InboundRate    rate.Limit
	InboundBurst   int
	WriteTimeout   time.Duration
	OriginPatterns []string
}

func (o HostOptions) withDefaults() HostOptions {
	if o.InboundBuffer <= 0 {
		o.InboundBuffer = config.Net.InboundBuffer
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = config.Net.OutboxSize
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = config.Net.ReadLimit
	}
	if o.InboundRate <= 0 {
		o.InboundRate = rate.Limit(config.Net.InboundRate)
	}
	if o.InboundBurst <= 0 {
		o.InboundBurst = config.Net.InboundBurst
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = config.Net.WriteTimeout
	}
	return o
}

// HostTransport accepts websocket peers and exposes them as addressed
// payload pipes. Each peer gets a read pump (running inside Accept) and a
// write pump draining its outbox.
type HostTransport struct {
	opts    HostOptions
	log     zerolog.Logger
	inbound chan Inbound
	done    chan struct{}

	mu     sync.RWMutex
	peers  map[netconfig.Address]*peer
	closed bool
	once   sync.Once
}

type peer struct {
	addr    netconfig.Address
	conn    *websocket.Conn
	outbox  chan []byte
	limiter *rate.Limiter
	cancel  context.CancelFunc
}

func NewHostTransport(opts HostOptions) *HostTransport {
	opts = opts.withDefaults()
	return &HostTransport{
		opts:    opts,
		log:     logging.For("transport"),
		inbound: make(chan Inbound, opts.InboundBuffer),
		done:    make(chan struct{}),
		peers:   make(map[netconfig.Address]*peer),
	}
}

// Inbound returns the channel the step loop drains once per step.
func (h *HostTransport) Inbound() <-chan Inbound {
	return h.inbound
}

// Accept upgrades the request and serves the peer until it disconnects or
// the transport closes. The peer is addressed by r.RemoteAddr.
func (h *HostTransport) Accept(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: len(h.opts.OriginPatterns) == 0,
		OriginPatterns:     h.opts.OriginPatterns,
	})
	if err != nil {
		return err
	}
	conn.SetReadLimit(h.opts.ReadLimit)

	ctx, cancel := context.WithCancel(context.Background())
	p := &peer{
		addr:    netconfig.Address(r.RemoteAddr),
		conn:    conn,
		outbox:  make(chan []byte, h.opts.OutboxSize),
		limiter: rate.NewLimiter(h.opts.InboundRate, h.opts.InboundBurst),
		cancel:  cancel,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return nil
	}
	if old, ok := h.peers[p.addr]; ok {
		old.cancel()
	}
	h.peers[p.addr] = p
	h.mu.Unlock()

	h.log.Info().Str("peer", string(p.addr)).Msg("peer connected")
	h.deliver(Inbound{Kind: PeerConnected, Address: p.addr})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writePump(ctx, p)
	}()

	h.readPump(ctx, p)

	cancel()
	wg.Wait()

	h.mu.Lock()
	current := h.peers[p.addr] == p
	if current {
		delete(h.peers, p.addr)
	}
	h.mu.Unlock()

	conn.Close(websocket.StatusNormalClosure, "")
	h.log.Info().Str("peer", string(p.addr)).Msg("peer disconnected")
	if current {
		h.deliver(Inbound{Kind: PeerDisconnected, Address: p.addr})
	}
	return nil
}

func (h *HostTransport) readPump(ctx context.Context, p *peer) {
	for {
		typ, data, err := p.conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				h.log.Debug().Err(err).Str("peer", string(p.addr)).Msg("read failed")
			}
			return
		}
		if typ != websocket.MessageBinary {
			continue
		}
		if !p.limiter.Allow() {
			h.log.Debug().Str("peer", string(p.addr)).Msg("inbound rate exceeded, batch dropped")
			continue
		}
		h.deliver(Inbound{Kind: PeerPayload, Address: p.addr, Payload: data})
	}
}

func (h *HostTransport) writePump(ctx context.Context, p *peer) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-p.outbox:
			wctx, cancel := context.WithTimeout(ctx, h.opts.WriteTimeout)
			err := p.conn.Write(wctx, websocket.MessageBinary, data)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					h.log.Warn().Err(err).Str("peer", string(p.addr)).Msg("write failed")
				}
				p.cancel()
				return
			}
		}
	}
}

// deliver blocks until the step loop has room or the transport closes.
func (h *HostTransport) deliver(ev Inbound) {
	select {
	case h.inbound <- ev:
	case <-h.done:
	}
}

// SendMessageTo queues payload on the peer's outbox. It never blocks; a full
// outbox drops the payload and reports ErrOutboxFull.
func (h *HostTransport) SendMessageTo(payload []byte, addr netconfig.Address) error {
	h.mu.RLock()
	p, ok := h.peers[addr]
	h.mu.RUnlock()
	if !ok {
		return ErrUnknownPeer
	}

	select {
	case p.outbox <- payload:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Peers returns the currently connected addresses.
func (h *HostTransport) Peers() []netconfig.Address {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]netconfig.Address, 0, len(h.peers))
	for addr := range h.peers {
		out = append(out, addr)
	}
	return out
}

// Close disconnects every peer. Accept calls in flight return shortly after.
func (h *HostTransport) Close() error {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		for _, p := range h.peers {
			p.cancel()
		}
		h.mu.Unlock()
		close(h.done)
	})
	return nil
}
