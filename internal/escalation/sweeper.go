package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"
)

// Notifier tells officials about a promotion. Failures are logged only.
type Notifier interface {
	NotifyEscalation(ctx context.Context, c *models.Complaint, previousLevel int) error
}

// EventPublisher pushes promotion events to the live feed.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.ComplaintEvent) error
}

// Sweeper runs one pass of the escalation ladder over open complaints.
type Sweeper struct {
	Storage  storage.ComplaintStore
	Events   EventPublisher
	Notifier Notifier
	Metrics  *metrics.Collector
}

func NewSweeper(s storage.ComplaintStore, events EventPublisher, n Notifier, m *metrics.Collector) *Sweeper {
	return &Sweeper{Storage: s, Events: events, Notifier: n, Metrics: m}
}

// Sweep promotes every pending or in-progress complaint that has outgrown its
// level. A complaint that fails to update is logged and skipped; only a
// failure to load the worklist is returned. Running it twice with the same
// now changes nothing the second time.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (run models.SweepRun, err error) {
	start := time.Now()
	run.StartedAt = now
	defer func() {
		elapsed := time.Since(start)
		run.FinishedAt = now.Add(elapsed)
		s.Metrics.RecordSweep(elapsed)
	}()

	worklist, err := s.Storage.ListComplaintsByStatus(ctx, models.StatusPending, models.StatusInProgress)
	if err != nil {
		return run, fmt.Errorf("load escalation worklist: %w", err)
	}

	for i := range worklist {
		c := &worklist[i]
		run.Scanned++

		if c.CreatedAt.IsZero() {
			slog.Warn("complaint has no creation time, skipping escalation", "complaint_id", c.ID)
			run.Skipped++
			continue
		}

		level, promote := TargetLevel(c.CreatedAt, now, c.EscalationLevel)
		if !promote {
			continue
		}

		updated, uerr := s.Storage.UpdateComplaint(ctx, c.ID, map[string]any{
			"escalation_level":     level,
			"last_escalation_date": now,
		})
		if uerr != nil {
			slog.Error("failed to escalate complaint", "complaint_id", c.ID, "level", level, "error", uerr)
			s.Metrics.RecordPromotionFailure()
			run.Failed++
			continue
		}
		if updated == nil {
			run.Skipped++
			continue
		}

		slog.Info("complaint escalated", "complaint_id", c.ID, "from", c.EscalationLevel, "to", level)
		run.Promoted++
		s.Metrics.RecordPromotion(level)
		s.announce(ctx, updated, c.EscalationLevel, now)
	}

	return run, nil
}

func (s *Sweeper) announce(ctx context.Context, c *models.Complaint, previous int, now time.Time) {
	if s.Events != nil {
		if err := s.Events.PublishEvent(ctx, models.NewComplaintEvent(models.EventComplaintEscalated, c, now)); err != nil {
			slog.Warn("failed to publish escalation event", "complaint_id", c.ID, "error", err)
		}
	}
	if s.Notifier != nil {
		if err := s.Notifier.NotifyEscalation(ctx, c, previous); err != nil {
			slog.Warn("failed to notify escalation", "complaint_id", c.ID, "error", err)
		}
	}
}
