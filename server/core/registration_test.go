package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount int

func (c fixedCount) PlayerCount() int { return int(c) }

type fakeMaster struct {
	mu         sync.Mutex
	registered []regRequest
	heartbeats []heartbeatRequest
	forget     atomic.Bool
}

func (m *fakeMaster) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/servers/register", func(w http.ResponseWriter, r *http.Request) {
		var req regRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.registered = append(m.registered, req)
		m.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(regResponse{ID: "srv-1"})
	})
	mux.HandleFunc("/servers/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		var req heartbeatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		m.heartbeats = append(m.heartbeats, req)
		m.mu.Unlock()
		if m.forget.Swap(false) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (m *fakeMaster) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registered), len(m.heartbeats)
}

func TestRegistrationRegistersAndHeartbeats(t *testing.T) {
	master := &fakeMaster{}
	ts := httptest.NewServer(master.handler())
	defer ts.Close()

	r := NewRegistration(RegistrationOptions{
		MasterURL:  ts.URL,
		Name:       "test host",
		Address:    "127.0.0.1:7373",
		MaxPlayers: 8,
		Interval:   10 * time.Millisecond,
	}, fixedCount(3))
	r.Start(context.Background())
	defer r.Stop()

	assert.Equal(t, "srv-1", r.ID())
	master.mu.Lock()
	require.Len(t, master.registered, 1)
	assert.Equal(t, regRequest{Name: "test host", Address: "127.0.0.1:7373", Players: 3, MaxPlayers: 8}, master.registered[0])
	master.mu.Unlock()

	require.Eventually(t, func() bool {
		_, beats := master.counts()
		return beats >= 2
	}, 2*time.Second, 5*time.Millisecond)

	master.forget.Store(true)
	require.Eventually(t, func() bool {
		regs, _ := master.counts()
		return regs >= 2
	}, 2*time.Second, 5*time.Millisecond, "a forgotten host registers again")
}

func TestRegistrationSurvivesUnreachableMaster(t *testing.T) {
	r := NewRegistration(RegistrationOptions{MasterURL: "http://127.0.0.1:1", Interval: time.Hour}, fixedCount(0))
	r.Start(context.Background())
	r.Stop()
	assert.Empty(t, r.ID())
}
