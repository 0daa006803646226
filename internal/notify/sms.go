// Package notify delivers SMS, email and Telegram messages to citizens and
// officials.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/restclient"
)

var ErrNotConfigured = errors.New("notify: provider is not configured")

// SMSSender sends a text message to a phone number in E.164 form.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioClient sends SMS through the Twilio Messages API.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
}

func NewTwilioClient(cfg config.SMSConfig) *TwilioClient {
	return &TwilioClient{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: restclient.NewSender(15 * time.Second),
	}
}

// Enabled reports whether credentials and a sender number are set.
func (c *TwilioClient) Enabled() bool {
	return c.accountSID != "" && c.authToken != "" && c.from != ""
}

func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := restclient.DoJSON(c.httpClient, req, &out); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}

	slog.Info("sms sent", "sid", out.SID, "status", out.Status)
	return nil
}

// LogSMSSender writes messages to the log instead of sending them. It stands
// in for Twilio in development.
type LogSMSSender struct{}

func (LogSMSSender) SendSMS(ctx context.Context, to, body string) error {
	slog.Info("sms delivery disabled, message logged", "to", to, "body", body)
	return nil
}
