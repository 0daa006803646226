package feed

import "civicvoice/backend/internal/models"

// Client is one live feed subscriber. It abstracts the underlying connection
// so the hub can be exercised without a socket.
type Client interface {
	// GetClientID returns the identifier the hub registers the client under.
	GetClientID() string
	// Wants reports whether the event passes the client's filter.
	Wants(ev models.ComplaintEvent) bool
	// GetSendChannel returns the channel the hub delivers events on.
	GetSendChannel() chan<- models.ComplaintEvent
	// Run starts the client's pumps.
	Run()
	// Close shuts down the client's send channel. Only the hub calls it.
	Close()
}

// Filter narrows a subscription. Empty fields match everything.
type Filter struct {
	Category  string
	District  string
	ClusterID string
}

// Match reports whether ev passes f. District is only known for events that
// carry it, so a district filter drops events without one.
func (f Filter) Match(ev models.ComplaintEvent) bool {
	if f.Category != "" && f.Category != ev.Category {
		return false
	}
	if f.District != "" && f.District != ev.District {
		return false
	}
	if f.ClusterID != "" && f.ClusterID != ev.ClusterID {
		return false
	}
	return true
}
