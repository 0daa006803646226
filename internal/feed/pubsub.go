package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"civicvoice/backend/internal/models"
)

// startPubSubListener forwards events published by any replica to the hub.
func (h *Hub) startPubSubListener(ctx context.Context) {
	pubsub := h.Events.SubscribeEvents(ctx)

	go func() {
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ComplaintEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("failed to decode feed event", "error", err)
					continue
				}
				h.Broadcast(ev)
			}
		}
	}()
}
