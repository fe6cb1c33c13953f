package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/misonrisa/clinic/internal/platform/notification"
)

// Scheduler is the reminder dispatch loop. It wakes on a fixed interval,
// finds appointments whose reminder is due and unsent, and delivers over
// the channels the booking asked for. Delivery is at-least-once: the sent
// flag flips only after every attempted channel succeeded, so a failed
// item is retried on the next cycle.
type Scheduler struct {
	repo     Repository
	email    notification.EmailSender
	whatsapp notification.WhatsAppSender
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	now func() time.Time
}

func NewScheduler(repo Repository, email notification.EmailSender, whatsapp notification.WhatsAppSender, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		repo:     repo,
		email:    email,
		whatsapp: whatsapp,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the loop goroutine. Calling Start again while running is
// a no-op, so the loop can never run twice.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	s.logger.Info().Dur("interval", s.interval).Msg("reminder scheduler started")
}

// Stop cancels the loop and waits for the current cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info().Msg("reminder scheduler stopped")
}

// loop runs cycles until the context is cancelled. Cycles run one at a
// time on this goroutine, so they can never overlap.
func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle executes one scan-and-dispatch pass. Exported so tests and
// manual triggers can run a cycle without the ticker.
func (s *Scheduler) RunCycle(ctx context.Context) {
	due, err := s.repo.ListDueReminders(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder scan failed")
		return
	}

	for _, a := range due {
		if err := s.dispatch(ctx, a); err != nil {
			// Left unsent; the next cycle retries it.
			s.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("reminder dispatch failed")
			continue
		}
		if err := s.repo.MarkReminderSent(ctx, a.ID); err != nil {
			s.logger.Error().Err(err).Str("appointment_id", a.ID.String()).Msg("marking reminder sent failed")
		}
	}
}

// dispatch sends over each channel the reminder method requires. A channel
// whose contact field is missing is skipped silently; a send failure makes
// the whole item fail so nothing is marked sent.
func (s *Scheduler) dispatch(ctx context.Context, a *Appointment) error {
	when := a.ScheduledAt.Format("Mon 2 Jan 2006 15:04")

	if a.ReminderMethod == ReminderEmail || a.ReminderMethod == ReminderBoth {
		if a.Email != "" {
			subject := fmt.Sprintf("Reminder: MiSonrisa appointment %s", when)
			notes := a.Notes
			if notes == "" {
				notes = "-"
			}
			body := fmt.Sprintf("Hello %s,\n\nThis is a reminder of your %s appointment on %s.\n\nNotes: %s\n\nMiSonrisa Dental Clinic",
				a.PatientName, a.Treatment, when, notes)
			if err := s.email.SendEmail(ctx, a.Email, subject, body); err != nil {
				return fmt.Errorf("email: %w", err)
			}
		}
	}

	if a.ReminderMethod == ReminderWhatsApp || a.ReminderMethod == ReminderBoth {
		if a.Phone != "" {
			body := fmt.Sprintf("Reminder: you have a %s appointment on %s at MiSonrisa.", a.Treatment, when)
			if err := s.whatsapp.SendWhatsApp(ctx, a.Phone, body); err != nil {
				return fmt.Errorf("whatsapp: %w", err)
			}
		}
	}

	return nil
}
