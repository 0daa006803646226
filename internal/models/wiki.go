package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WikiEntry preserves a piece of indigenous knowledge, usually recorded from
// an elder, with its transcription and two translations.
type WikiEntry struct {
	ID                 string     `gorm:"type:text;primaryKey" json:"id"`
	UserID             string     `gorm:"type:text;index" json:"userId,omitempty"`
	Title              string     `gorm:"type:text;not null" json:"title"`
	Category           string     `gorm:"type:text;index" json:"category"`
	Tags               StringList `gorm:"type:jsonb" json:"tags"`
	Description        string     `gorm:"type:text" json:"description"`
	Transcription      string     `gorm:"type:text" json:"transcription"`
	TranslationEnglish string     `gorm:"type:text" json:"translationEnglish"`
	TranslationHindi   string     `gorm:"type:text" json:"translationHindi"`
	ElderName          string     `gorm:"type:text" json:"elderName,omitempty"`
	Village            string     `gorm:"type:text" json:"village,omitempty"`
	AudioURL           string     `gorm:"type:text" json:"audioUrl,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (w *WikiEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}

// EmbeddingText is the text indexed for semantic search.
func (w *WikiEntry) EmbeddingText() string {
	var parts []string
	for _, p := range []string{w.Title, w.Description, w.TranslationEnglish, w.TranslationHindi, w.Transcription} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
