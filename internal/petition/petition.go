// Package petition categorizes complaints and drafts formal petitions with an
// LLM.
package petition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/llm"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/prompts"
)

// ErrParse means the model answered but the answer was unusable.
var ErrParse = errors.New("failed to parse")

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"od": "Odia",
}

// Categorization is the model's reading of a complaint.
type Categorization struct {
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords"`
	Department string   `json:"department"`
	Summary    string   `json:"summary"`
}

type Service struct {
	LLM     llm.LLMClient
	Prompts *prompts.Catalogue
}

func NewService(client llm.LLMClient, p *prompts.Catalogue) *Service {
	return &Service{LLM: client, Prompts: p}
}

// Categorize asks the model for category, keywords and department. The reply
// must be a bare JSON object; anything else is ErrParse. A category outside
// the fixed set becomes "Other".
func (s *Service) Categorize(ctx context.Context, text string) (*Categorization, error) {
	prompt := prompts.Render(s.Prompts.Petition.Categorize, map[string]string{
		"text":       text,
		"categories": strings.Join(config.Categories, ", "),
	})

	resp, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("categorize: %w", err)
	}

	out, err := llm.DecodeStrict[Categorization](resp)
	if err != nil {
		slog.Warn("categorization reply was not strict JSON", "error", err)
		return nil, fmt.Errorf("%w categorization: %v", ErrParse, err)
	}

	out.Category = strings.TrimSpace(out.Category)
	if !config.IsValidCategory(out.Category) {
		slog.Info("model returned unknown category, using default", "category", out.Category)
		out.Category = config.DefaultCategory
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	return &out, nil
}

// DraftPetition writes a formal petition for c in its language.
func (s *Service) DraftPetition(ctx context.Context, c *models.Complaint) (string, error) {
	department := c.Department
	if department == "" {
		department = "concerned department"
	}

	prompt := prompts.Render(s.Prompts.Petition.Draft, map[string]string{
		"language":         LanguageName(c.Language),
		"department":       department,
		"text":             c.Text,
		"category":         c.Category,
		"location":         FormatLocation(c.Location),
		"cluster_count":    strconv.Itoa(c.ClusterCount),
		"escalation_level": strconv.Itoa(c.EscalationLevel),
	})

	resp, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("draft petition: %w", err)
	}

	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("%w petition: empty response", ErrParse)
	}
	return text, nil
}

// LanguageName maps a language code to its English name, defaulting to
// English.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(strings.SplitN(code, "-", 2)[0])]; ok {
		return name
	}
	return "English"
}

// FormatLocation renders the non-empty parts as "village, district, state".
func FormatLocation(loc models.Location) string {
	var parts []string
	for _, p := range []string{loc.Village, loc.District, loc.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
