package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"civicvoice/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Redis keys and channels.
const (
	EventsChannel = "complaints:events"
	LastSweepKey  = "escalation:last_run"
	otpKeyPrefix  = "otp:"
)

// ComplaintStore is the relational complaint table.
type ComplaintStore interface {
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	CountComplaintsByCluster(ctx context.Context, clusterID string) (int64, error)
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	ListComplaintsByStatus(ctx context.Context, statuses ...string) ([]models.Complaint, error)
	ListClusterMembers(ctx context.Context, clusterID string) ([]models.Complaint, error)
	UpdateComplaint(ctx context.Context, id string, fields map[string]any) (*models.Complaint, error)
	AppendEmailLog(ctx context.Context, id string, entry models.EmailLogEntry) (*models.Complaint, error)
	DeleteComplaint(ctx context.Context, id string) (bool, error)
}

// WikiStore is the relational wiki table.
type WikiStore interface {
	CreateWikiEntry(ctx context.Context, e *models.WikiEntry) error
	GetWikiEntryByID(ctx context.Context, id string) (*models.WikiEntry, error)
	GetWikiEntriesByIDs(ctx context.Context, ids []string) ([]models.WikiEntry, error)
	ListWikiEntries(ctx context.Context, limit, offset int) ([]models.WikiEntry, error)
	DeleteWikiEntry(ctx context.Context, id string) (bool, error)
}

// UserStore persists users identified by phone.
type UserStore interface {
	SaveUserIfNotExists(ctx context.Context, phone, language string) (*models.User, error)
}

// OTPStore keeps one-time codes in Redis.
type OTPStore interface {
	SaveOTP(ctx context.Context, phone, codeHash string, ttl time.Duration) error
	GetOTP(ctx context.Context, phone string) (*OTPRecord, error)
	IncrementOTPAttempts(ctx context.Context, phone string) (int64, error)
	DeleteOTP(ctx context.Context, phone string) error
}

// LockStore provides a best-effort distributed lock and the sweep watermark.
type LockStore interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
	SaveLastSweep(ctx context.Context, run models.SweepRun) error
	GetLastSweep(ctx context.Context) (*models.SweepRun, error)
}

// EventBus fans complaint events out to every replica.
type EventBus interface {
	PublishEvent(ctx context.Context, ev models.ComplaintEvent) error
	SubscribeEvents(ctx context.Context) *redis.PubSub
}

type Storage interface {
	ComplaintStore
	WikiStore
	UserStore
	OTPStore
	LockStore
	EventBus
}

// ComplaintFilter narrows ListComplaints. Empty fields are ignored.
type ComplaintFilter struct {
	Status    string
	Category  string
	District  string
	ClusterID string
	Limit     int
	Offset    int
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// AutoMigrate creates the tables from the gorm models. Production schemas
// come from Migrate; this is for tests and local sqlite runs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Complaint{}, &models.WikiEntry{})
}

func (s *Service) SaveUserIfNotExists(ctx context.Context, phone, language string) (*models.User, error) {
	var user models.User

	defaults := models.User{
		Phone:    phone,
		Language: language,
	}

	result := s.DB.WithContext(ctx).Where("phone = ?", phone).FirstOrCreate(&user, defaults)
	if result.Error != nil {
		slog.Error("failed to save user on first contact", "phone", phone, "error", result.Error)
		return nil, result.Error
	}

	if result.RowsAffected > 0 {
		slog.Info("new user saved", "user_id", user.ID)
	}

	return &user, nil
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
