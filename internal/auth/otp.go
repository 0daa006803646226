package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/localization"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/notify"
	"civicvoice/backend/internal/storage"
)

var (
	ErrInvalidPhone    = errors.New("phone must be in international format, e.g. +919876543210")
	ErrInvalidCode     = errors.New("invalid or expired code")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// Session is the result of a successful verification.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// OTPService sends one-time codes by SMS and exchanges them for tokens.
type OTPService struct {
	Codes     storage.OTPStore
	Users     storage.UserStore
	SMS       notify.SMSSender
	Localizer *localization.Localizer
	JWT       *JWTManager
	TTL       time.Duration

	generate func() (string, error)
}

func NewOTPService(codes storage.OTPStore, users storage.UserStore, sms notify.SMSSender, l *localization.Localizer, jwt *JWTManager, ttl time.Duration) *OTPService {
	return &OTPService{
		Codes:     codes,
		Users:     users,
		SMS:       sms,
		Localizer: l,
		JWT:       jwt,
		TTL:       ttl,
		generate:  generateCode,
	}
}

// NormalizePhone strips spaces, dashes and brackets and checks the result is
// an E.164 number.
func NormalizePhone(phone string) (string, error) {
	phone = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// SendOTP stores a fresh code for phone, replacing any previous one, and
// texts it in language.
func (s *OTPService) SendOTP(ctx context.Context, phone, language string) error {
	phone, err := NormalizePhone(phone)
	if err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.Codes.SaveOTP(ctx, phone, HashCode(phone, code), s.TTL); err != nil {
		return fmt.Errorf("save code: %w", err)
	}

	body := s.message(language, code)
	if err := s.SMS.SendSMS(ctx, phone, body); err != nil {
		if derr := s.Codes.DeleteOTP(ctx, phone); derr != nil {
			slog.Warn("failed to discard unsent code", "error", derr)
		}
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}

func (s *OTPService) message(language, code string) string {
	minutes := int(s.TTL.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if s.Localizer == nil {
		return fmt.Sprintf("Your verification code is %s", code)
	}
	return s.Localizer.Format(language, localization.KeyOTPSMS, code, minutes)
}

// VerifyOTP checks code against the stored hash. A wrong code burns one
// attempt; the code is discarded on success or once the attempt cap is hit.
func (s *OTPService) VerifyOTP(ctx context.Context, phone, code, language string) (*Session, error) {
	phone, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)

	rec, err := s.Codes.GetOTP(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if rec == nil {
		return nil, ErrInvalidCode
	}
	if rec.Attempts >= config.OTPMaxAttempts {
		s.discard(ctx, phone)
		return nil, ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(HashCode(phone, code))) != 1 {
		n, err := s.Codes.IncrementOTPAttempts(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("count attempt: %w", err)
		}
		if n >= config.OTPMaxAttempts {
			s.discard(ctx, phone)
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidCode
	}

	s.discard(ctx, phone)

	user, err := s.Users.SaveUserIfNotExists(ctx, phone, language)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	token, expires, err := s.JWT.GenerateAccessToken(user.ID, user.Phone)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *OTPService) discard(ctx context.Context, phone string) {
	if err := s.Codes.DeleteOTP(ctx, phone); err != nil {
		slog.Warn("failed to delete code", "error", err)
	}
}

func generateCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < config.OTPLength; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", config.OTPLength, n.Int64()), nil
}
