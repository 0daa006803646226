// Package feed fans complaint events out to live WebSocket subscribers.
// Events arrive over Redis pub/sub so every replica sees every event.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"civicvoice/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Subscriber opens the shared event stream.
type Subscriber interface {
	SubscribeEvents(ctx context.Context) *redis.PubSub
}

// Hub tracks connected clients and delivers each event to the ones whose
// filter accepts it. All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	broadcastCh  chan models.ComplaintEvent

	Events Subscriber

	done     chan struct{}
	doneOnce sync.Once
	countCh  chan chan int
}

// NewHub creates a hub. events may be nil, in which case only events passed
// to Broadcast are delivered.
func NewHub(events Subscriber) *Hub {
	return &Hub{
		clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		broadcastCh:  make(chan models.ComplaintEvent, 64),
		Events:       events,
		done:         make(chan struct{}),
		countCh:      make(chan chan int),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	if h.Events != nil {
		h.startPubSubListener(ctx)
	}

	defer func() {
		h.doneOnce.Do(func() { close(h.done) })
		for id, client := range h.clients {
			client.Close()
			delete(h.clients, id)
		}
		slog.Info("feed hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.RegisterCh:
			if old, ok := h.clients[client.GetClientID()]; ok {
				old.Close()
			}
			h.clients[client.GetClientID()] = client
			slog.Debug("feed client registered", "client_id", client.GetClientID(), "clients", len(h.clients))

		case client := <-h.UnregisterCh:
			if current, ok := h.clients[client.GetClientID()]; ok && current == client {
				delete(h.clients, client.GetClientID())
				client.Close()
				slog.Debug("feed client unregistered", "client_id", client.GetClientID(), "clients", len(h.clients))
			}

		case ev := <-h.broadcastCh:
			h.deliver(ev)

		case reply := <-h.countCh:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) deliver(ev models.ComplaintEvent) {
	for id, client := range h.clients {
		if !client.Wants(ev) {
			continue
		}
		select {
		case client.GetSendChannel() <- ev:
		default:
			// Slow consumer; drop it rather than stall everyone else.
			slog.Warn("feed client too slow, disconnecting", "client_id", id)
			delete(h.clients, id)
			client.Close()
		}
	}
}

// Broadcast queues ev for local delivery. It never blocks for long: once the
// hub has stopped the event is dropped.
func (h *Hub) Broadcast(ev models.ComplaintEvent) {
	select {
	case h.broadcastCh <- ev:
	case <-h.done:
	}
}

// Register adds a client. It is a no-op after the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.RegisterCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. Safe to call after the hub has stopped.
func (h *Hub) Unregister(c Client) {
	select {
	case h.UnregisterCh <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients, or 0 once stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.countCh <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}
