package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint statuses. Escalation only ever looks at the first two.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// IsValidStatus reports whether s is one of the four complaint statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Complaint is a citizen complaint. ClusterID and ClusterCount are computed
// server-side at creation; ClusterCount is a snapshot and is never updated
// when later complaints join the same cluster.
type Complaint struct {
	ID         string     `gorm:"type:text;primaryKey" json:"id"`
	UserID     string     `gorm:"type:text;index" json:"userId,omitempty"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	Language   string     `gorm:"type:text" json:"language"`
	Category   string     `gorm:"type:text;not null;index" json:"category"`
	Keywords   StringList `gorm:"type:jsonb" json:"keywords"`
	Department string     `gorm:"type:text" json:"department"`
	Location   Location   `gorm:"type:jsonb" json:"location"`
	Status     string     `gorm:"type:text;not null;index" json:"status"`

	ClusterID    string `gorm:"type:text;not null;index" json:"clusterId"`
	ClusterCount int    `gorm:"not null;default:1" json:"clusterCount"`

	EscalationLevel    int        `gorm:"not null;default:0" json:"escalationLevel"`
	LastEscalationDate *time.Time `json:"lastEscalationDate,omitempty"`

	PetitionText  string        `gorm:"type:text" json:"petitionText,omitempty"`
	AudioURL      string        `gorm:"type:text" json:"audioUrl,omitempty"`
	ImageURL      string        `gorm:"type:text" json:"imageUrl,omitempty"`
	StatusHistory StatusHistory `gorm:"type:jsonb" json:"statusHistory"`
	EmailLog      EmailLog      `gorm:"type:jsonb" json:"emailLog"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
