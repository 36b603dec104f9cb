package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/lifeboard/internal/model"
)

// Hub fans snapshots of a single game out to its clients.
// Membership changes take effect before Register or Unregister returns.
type Hub struct {
	gameID  model.GameID
	clients map[*Client]bool
	closed  bool
	mu      sync.RWMutex
	logger  *slog.Logger

	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new Hub for a game
func NewHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return &Hub{
		gameID:    gameID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("game_id", string(gameID))),
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("hub started")
	for {
		select {
		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if client.Offer(message) {
					h.logger.Debug("stale snapshot replaced - client behind",
						slog.String("client", client.id))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.logger.Debug("hub stopped")
			return
		}
	}
}

// Register adds a client to the hub. It returns false if the hub is closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("client registered",
		slog.String("client", client.id),
		slog.Int("total_clients", clientCount))
	return true
}

// Unregister removes a client from the hub and closes its mailbox
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("client unregistered",
		slog.String("client", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Broadcast sends a message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warn("broadcast dropped - hub buffer full")
	}
}

// Close shuts down the hub, closing every client mailbox
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		clientCount := len(h.clients)
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mu.Unlock()
		close(h.done)
		if clientCount > 0 {
			h.logger.Debug("hub closed", slog.Int("disconnected_clients", clientCount))
		}
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all games
type HubManager struct {
	hubs   map[model.GameID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "realtime")),
	}
}

// GetOrCreateHub returns the hub for a game, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}

	hub := NewHub(gameID, m.logger)
	m.hubs[gameID] = hub
	go hub.Run()
	return hub
}

// Join registers client with the game's hub, creating the hub if needed
func (m *HubManager) Join(gameID model.GameID, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[gameID]
	if !ok {
		hub = NewHub(gameID, m.logger)
		m.hubs[gameID] = hub
		go hub.Run()
	}
	// Hubs are only closed under m.mu, after leaving the map
	hub.Register(client)
	return hub
}

// Leave unregisters client and removes its hub once the hub has no clients left
func (m *HubManager) Leave(hub *Hub, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub.Unregister(client)
	if hub.ClientCount() > 0 {
		return
	}
	if m.hubs[hub.gameID] == hub {
		delete(m.hubs, hub.gameID)
	}
	hub.Close()
	m.logger.Debug("idle hub removed", slog.String("game_id", string(hub.gameID)))
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// GetHub returns the hub for a game, or nil if it doesn't exist
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[gameID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		hub.Close()
		delete(m.hubs, gameID)
		m.logger.Info("hub removed", slog.String("game_id", string(gameID)))
	}
}
