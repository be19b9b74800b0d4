package network

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/automoto/doomerang-netplay/config"
	"github.com/automoto/doomerang-netplay/shared/logging"
	"github.com/automoto/doomerang-netplay/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Client manages a peer's WebSocket connection to the host.
// All shared fields are protected by mu (the read loop runs on its own goroutine).
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	address   netconfig.Address
	conn      *websocket.Conn
	cancel    context.CancelFunc

	log       zerolog.Logger
	payloadCh chan []byte
}

func NewClient() *Client {
	return &Client{
		state:     StateDisconnected,
		log:       logging.For("client"),
		payloadCh: make(chan []byte, config.Net.InboundBuffer),
	}
}

// HostURL turns "host:port" into the host's websocket endpoint. Addresses
// that already carry a scheme are used unchanged.
func HostURL(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	return "ws://" + address + "/ws"
}

// Connect dials the host and starts the read loop. It blocks until the
// handshake completes or ctx expires.
func (c *Client) Connect(ctx context.Context, address string) error {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	dialCtx, cancelDial := context.WithTimeout(ctx, config.Net.DialTimeout)
	defer cancelDial()

	conn, _, err := websocket.Dial(dialCtx, HostURL(address), nil)
	if err != nil {
		err = fmt.Errorf("connection failed: %w", err)
		c.setError(err)
		return err
	}
	conn.SetReadLimit(config.Net.ReadLimit)

	readCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.address = netconfig.Address(address)
	c.state = StateConnected
	c.mu.Unlock()

	c.log.Info().Str("host", address).Msg("connected to host")
	go c.readLoop(readCtx, conn)
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			c.log.Info().Err(err).Msg("disconnected")
			c.mu.Lock()
			if c.conn == conn {
				if c.state != StateError {
					c.state = StateDisconnected
				}
				c.conn = nil
			}
			c.mu.Unlock()
			return
		}
		if typ != websocket.MessageBinary {
			continue
		}
		select {
		case c.payloadCh <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	c.state = StateDisconnected
	c.conn = nil
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Address returns the host address passed to Connect.
func (c *Client) Address() netconfig.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.address
}

// SendMessageTo writes payload to the host. The peer has a single
// destination, so addr is only checked against it.
func (c *Client) SendMessageTo(payload []byte, addr netconfig.Address) error {
	c.mu.RLock()
	conn := c.conn
	host := c.address
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}
	if addr != host {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, addr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Net.WriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainPayloads returns all pending payloads from the host, non-blocking.
func (c *Client) DrainPayloads() [][]byte {
	return drainChan(c.payloadCh)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
