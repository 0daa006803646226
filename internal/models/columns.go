package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Location is the free-text place a complaint refers to. It is persisted as a
// single JSON document column so sub-keys can be filtered on.
type Location struct {
	Village  string `json:"village"`
	District string `json:"district"`
	State    string `json:"state"`
}

func (l Location) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Location) Scan(src any) error {
	return scanJSON(src, l)
}

// StringList is a JSON-encoded list of strings (keywords, tags).
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(src any) error {
	return scanJSON(src, s)
}

// StatusChange is one entry of a complaint's status history.
type StatusChange struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// StatusHistory is reserved for audit collaborators; the complaint update
// path never writes it.
type StatusHistory []StatusChange

func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]StatusChange(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *StatusHistory) Scan(src any) error {
	return scanJSON(src, h)
}

// EmailLogEntry records one petition email sent to a department.
type EmailLogEntry struct {
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	ProviderID string    `json:"providerId,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

type EmailLog []EmailLogEntry

func (e EmailLog) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]EmailLogEntry(e))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (e *EmailLog) Scan(src any) error {
	return scanJSON(src, e)
}

func scanJSON(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into %T", src, dst)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
