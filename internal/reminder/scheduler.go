// Package reminder publishes due-date reminders for unpaid cards.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/cardtracker/internal"
	"github.com/frahmantamala/cardtracker/internal/card"
	"github.com/frahmantamala/cardtracker/internal/core/duedate"
	"github.com/frahmantamala/cardtracker/internal/core/events"
)

type CardLister interface {
	GetAll(ctx context.Context) ([]*card.Card, error)
}

type Scheduler struct {
	cards      CardLister
	publisher  events.Publisher
	daysBefore map[int]bool
	location   *time.Location
	logger     *slog.Logger
	now        func() time.Time

	mu   sync.Mutex
	sent map[string]bool
	day  string
}

func NewScheduler(cards CardLister, publisher events.Publisher, daysBefore []int, loc *time.Location, logger *slog.Logger) *Scheduler {
	offsets := make(map[int]bool, len(daysBefore))
	for _, d := range daysBefore {
		offsets[d] = true
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cards:      cards,
		publisher:  publisher,
		daysBefore: offsets,
		location:   loc,
		logger:     logger,
		now:        time.Now,
		sent:       make(map[string]bool),
	}
}

// WithClock replaces the time source, for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// ScanOnce publishes a reminder for every unpaid card whose next due date
// is one of the configured offsets away. A card is reminded at most once
// per offset per day. It returns the number of reminders published.
func (s *Scheduler) ScanOnce(ctx context.Context) (int, error) {
	cards, err := s.cards.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cards: %w", err)
	}

	now := s.now()
	today := now.In(s.location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if key := today.Format("2006-01-02"); key != s.day {
		s.day = key
		s.sent = make(map[string]bool)
	}

	published := 0
	for _, c := range cards {
		if c.IsPaid() {
			continue
		}
		days := duedate.DaysUntil(c.DueDate, today)
		if !s.daysBefore[days] {
			continue
		}
		key := fmt.Sprintf("%s/%d", c.ID, days)
		if s.sent[key] {
			continue
		}

		due := duedate.NextDueDate(c.DueDate, today)
		evt := events.NewCardDueReminderEvent(c.ID, c.Name, days, due, c.UsedAmount, now)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish reminder", "card_id", c.ID, "error", err)
			continue
		}
		s.sent[key] = true
		published++

		s.logger.Info("due reminder published",
			"card_id", c.ID,
			"card_name", c.Name,
			"days_until_due", days,
			"due_date", due.Format("2006-01-02"))
	}
	return published, nil
}

// Run scans immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	s.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	ctx, cancel := internal.WithTimeout(ctx, 0)
	defer cancel()
	if _, err := s.ScanOnce(ctx); err != nil {
		s.logger.Error("reminder scan failed", "error", err)
	}
}
