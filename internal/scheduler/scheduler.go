package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/example/vocabtrainer/pkg/models"
	"github.com/go-co-op/gocron"
)

// Scheduler periodically reminds users about due reviews
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DueSource
	notifier  Notifier
	cfg       Config
	now       func() time.Time
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, summary models.DueSummary) error
}

// DueSource reports how many reviews are due per user
type DueSource interface {
	DueSummaries(ctx context.Context, now time.Time) ([]models.DueSummary, error)
}

// Config controls when reminders go out
type Config struct {
	Interval  time.Duration
	StartHour int // First UTC hour reminders may be sent
	EndHour   int // Last UTC hour reminders may be sent
}

// New creates a new scheduler instance
func New(source DueSource, notifier Notifier, cfg Config) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.cfg.Interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.checkAndSendReminders(ctx)
	})
	if err != nil {
		return err
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies every user who has reviews waiting
func (s *Scheduler) checkAndSendReminders(ctx context.Context) int {
	now := s.now().UTC()
	if !s.inWindow(now.Hour()) {
		log.Printf("[REMINDERS] Current hour %d is outside notification hours (%d-%d), skipping reminders",
			now.Hour(), s.cfg.StartHour, s.cfg.EndHour)
		return 0
	}

	summaries, err := s.source.DueSummaries(ctx, now)
	if err != nil {
		log.Printf("[REMINDERS] Error getting due reviews: %v", err)
		return 0
	}

	sent := 0
	for _, summary := range summaries {
		if summary.Due == 0 {
			continue
		}
		if err := s.notifier.SendReminder(ctx, summary); err != nil {
			log.Printf("[REMINDERS] Error sending reminder to user %d: %v", summary.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// inWindow handles windows that wrap past midnight, e.g. 20-6
func (s *Scheduler) inWindow(hour int) bool {
	if s.cfg.StartHour <= s.cfg.EndHour {
		return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
	}
	return hour >= s.cfg.StartHour || hour <= s.cfg.EndHour
}

// LogNotifier writes reminders to the log when no messenger is configured
type LogNotifier struct{}

func (LogNotifier) SendReminder(_ context.Context, summary models.DueSummary) error {
	log.Printf("[REMINDERS] %s has %d words to review", summary.Username, summary.Due)
	return nil
}
