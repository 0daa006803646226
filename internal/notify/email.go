package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/localization"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/petition"
	"civicvoice/backend/internal/restclient"
)

var (
	ErrNoPetition       = errors.New("complaint has no petition text")
	ErrInvalidRecipient = errors.New("recipient is not a valid email address")
)

// Email is a plain-text message.
type Email struct {
	To      string
	Subject string
	Text    string
}

// EmailSender delivers an email and returns the provider's message id.
type EmailSender interface {
	SendEmail(ctx context.Context, e Email) (string, error)
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// ResendClient sends email through the Resend API.
type ResendClient struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewResendClient(cfg config.EmailConfig) *ResendClient {
	return &ResendClient{
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: restclient.NewSender(15 * time.Second),
	}
}

func (c *ResendClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *ResendClient) SendEmail(ctx context.Context, e Email) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(resendRequest{
		From:    c.from,
		To:      []string{e.To},
		Subject: e.Subject,
		Text:    e.Text,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		ID string `json:"id"`
	}
	if err := restclient.DoJSON(c.httpClient, req, &out); err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}
	return out.ID, nil
}

// EmailLogStore records sent petition emails on the complaint.
type EmailLogStore interface {
	AppendEmailLog(ctx context.Context, id string, entry models.EmailLogEntry) (*models.Complaint, error)
}

// PetitionMailer emails a complaint's petition to a department and keeps the
// audit trail in the complaint's email log.
type PetitionMailer struct {
	Sender    EmailSender
	Storage   EmailLogStore
	Localizer *localization.Localizer

	now func() time.Time
}

func NewPetitionMailer(sender EmailSender, s EmailLogStore, l *localization.Localizer) *PetitionMailer {
	return &PetitionMailer{Sender: sender, Storage: s, Localizer: l, now: time.Now}
}

// SendPetition emails c's petition to to. An empty subject is replaced by a
// localized default. It returns the complaint with the new log entry, or nil
// if the complaint disappeared before the log was written.
func (m *PetitionMailer) SendPetition(ctx context.Context, c *models.Complaint, to, subject string) (*models.Complaint, error) {
	if strings.TrimSpace(c.PetitionText) == "" {
		return nil, ErrNoPetition
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(to))
	if err != nil {
		return nil, ErrInvalidRecipient
	}
	if strings.TrimSpace(subject) == "" {
		subject = m.defaultSubject(c)
	}

	id, err := m.Sender.SendEmail(ctx, Email{To: addr.Address, Subject: subject, Text: c.PetitionText})
	if err != nil {
		return nil, err
	}

	entry := models.EmailLogEntry{
		To:         addr.Address,
		Subject:    subject,
		ProviderID: id,
		SentAt:     m.now().UTC(),
	}
	return m.Storage.AppendEmailLog(ctx, c.ID, entry)
}

func (m *PetitionMailer) defaultSubject(c *models.Complaint) string {
	place := petition.FormatLocation(c.Location)
	if m.Localizer == nil {
		return fmt.Sprintf("Petition regarding %s complaint in %s", c.Category, place)
	}
	return m.Localizer.Format(c.Language, localization.KeyPetitionEmailSubject, c.Category, place)
}
