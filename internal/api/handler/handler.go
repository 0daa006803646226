// Package handler exposes the complaint, wiki, voice and auth services over
// HTTP.
package handler

import (
	"context"
	"io"
	"time"

	"civicvoice/backend/internal/auth"
	"civicvoice/backend/internal/complaint"
	"civicvoice/backend/internal/contact"
	"civicvoice/backend/internal/feed"
	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/petition"
	"civicvoice/backend/internal/speech"
	"civicvoice/backend/internal/wiki"
)

// Speech transcribes and translates citizen audio and text.
type Speech interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, languageCode string) (*speech.Transcript, error)
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// ContactFinder looks up a department's public contact details.
type ContactFinder interface {
	FindDepartmentContact(ctx context.Context, department, location string) (*contact.Contact, error)
}

// PetitionSender emails a complaint's petition and logs it on the complaint.
type PetitionSender interface {
	SendPetition(ctx context.Context, c *models.Complaint, to, subject string) (*models.Complaint, error)
}

// OTPIssuer runs the phone verification flow.
type OTPIssuer interface {
	SendOTP(ctx context.Context, phone, language string) error
	VerifyOTP(ctx context.Context, phone, code, language string) (*auth.Session, error)
}

// EscalationStatus reports on the scheduled sweep.
type EscalationStatus interface {
	LastRun(ctx context.Context) (*models.SweepRun, error)
	NextRun() time.Time
}

// Handler holds every collaborator the routes need. Optional collaborators
// left nil make their routes answer 503.
type Handler struct {
	Complaints *complaint.Service
	Petitions  *petition.Service
	Wiki       *wiki.Service
	JWT        *auth.JWTManager
	Metrics    *metrics.Collector

	Speech     Speech
	Contacts   ContactFinder
	Mailer     PetitionSender
	OTP        OTPIssuer
	Escalation EscalationStatus
	Hub        *feed.Hub
	Images     ImageStore

	// Production hides internal error details from responses.
	Production bool
	// MaxUploadBytes caps multipart request bodies.
	MaxUploadBytes int64
	// UploadDir is served at /uploads when set.
	UploadDir string
}
