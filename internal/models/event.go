package models

import "time"

// Feed event types.
const (
	EventComplaintCreated   = "complaint_created"
	EventComplaintEscalated = "complaint_escalated"
	EventStatusChanged      = "status_changed"
)

// ComplaintEvent is pushed to live feed subscribers.
type ComplaintEvent struct {
	Type            string    `json:"type"`
	ComplaintID     string    `json:"complaintId"`
	Category        string    `json:"category,omitempty"`
	District        string    `json:"district,omitempty"`
	ClusterID       string    `json:"clusterId,omitempty"`
	ClusterCount    int       `json:"clusterCount,omitempty"`
	EscalationLevel int       `json:"escalationLevel"`
	Status          string    `json:"status,omitempty"`
	At              time.Time `json:"at"`
}

// NewComplaintEvent builds an event snapshot of c.
func NewComplaintEvent(eventType string, c *Complaint, at time.Time) ComplaintEvent {
	return ComplaintEvent{
		Type:            eventType,
		ComplaintID:     c.ID,
		Category:        c.Category,
		District:        c.Location.District,
		ClusterID:       c.ClusterID,
		ClusterCount:    c.ClusterCount,
		EscalationLevel: c.EscalationLevel,
		Status:          c.Status,
		At:              at,
	}
}
