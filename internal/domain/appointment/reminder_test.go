package appointment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/misonrisa/clinic/internal/platform/notification"
)

func seedDue(repo *mockRepo, method, email, phone string) *Appointment {
	a := &Appointment{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		PatientName:    "Maria Lopez",
		Treatment:      "Cleaning",
		Status:         StatusPending,
		Email:          email,
		Phone:          phone,
		ReminderMethod: method,
	}
	a.SetScheduledAt(testNow.Add(12 * time.Hour)) // due at testNow-12h, already due
	repo.appts[a.ID] = a
	return a
}

func newTestScheduler(repo *mockRepo) (*Scheduler, *notification.MockEmailSender, *notification.MockWhatsAppSender) {
	email := &notification.MockEmailSender{}
	wa := &notification.MockWhatsAppSender{}
	s := NewScheduler(repo, email, wa, time.Minute, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s, email, wa
}

func TestRunCycle_DispatchesAndMarks(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderEmail, "maria@example.com", "")
	s, email, wa := newTestScheduler(repo)

	s.RunCycle(context.Background())

	if len(email.Sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(email.Sent))
	}
	msg := email.Sent[0]
	if msg.To != "maria@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.Contains(msg.Body, "Maria Lopez") || !strings.Contains(msg.Body, "Cleaning") {
		t.Errorf("body missing patient or treatment: %q", msg.Body)
	}
	if len(wa.Sent) != 0 {
		t.Errorf("whatsapp sent = %d, want 0 for email method", len(wa.Sent))
	}
	if !repo.appts[a.ID].ReminderSent {
		t.Error("reminder_sent not set after successful dispatch")
	}
}

func TestRunCycle_BothChannels(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderBoth, "maria@example.com", "+34600111222")
	s, email, wa := newTestScheduler(repo)

	s.RunCycle(context.Background())

	if len(email.Sent) != 1 || len(wa.Sent) != 1 {
		t.Fatalf("sent email=%d whatsapp=%d, want 1 each", len(email.Sent), len(wa.Sent))
	}
	if wa.Sent[0].To != "+34600111222" {
		t.Errorf("whatsapp to = %q", wa.Sent[0].To)
	}
	if !repo.appts[a.ID].ReminderSent {
		t.Error("reminder_sent not set")
	}
}

func TestRunCycle_CancelledSkipped(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderEmail, "maria@example.com", "")
	a.Status = StatusCancelled
	s, email, _ := newTestScheduler(repo)

	s.RunCycle(context.Background())

	if len(email.Sent) != 0 {
		t.Errorf("cancelled appointment got %d emails", len(email.Sent))
	}
	if repo.appts[a.ID].ReminderSent {
		t.Error("cancelled appointment marked sent")
	}
}

func TestRunCycle_NotYetDue(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderEmail, "maria@example.com", "")
	a.SetScheduledAt(testNow.Add(48 * time.Hour)) // due in 24h
	s, email, _ := newTestScheduler(repo)

	s.RunCycle(context.Background())

	if len(email.Sent) != 0 {
		t.Errorf("future reminder dispatched %d emails", len(email.Sent))
	}
}

func TestRunCycle_FailureLeavesUnsent(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderEmail, "maria@example.com", "")
	s, email, _ := newTestScheduler(repo)
	email.ShouldFail = true

	s.RunCycle(context.Background())

	if repo.appts[a.ID].ReminderSent {
		t.Error("failed dispatch must leave reminder_sent false")
	}

	// Next cycle retries and succeeds.
	email.ShouldFail = false
	s.RunCycle(context.Background())
	if !repo.appts[a.ID].ReminderSent {
		t.Error("retry cycle did not mark sent")
	}
}

func TestRunCycle_PartialFailureLeavesUnsent(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderBoth, "maria@example.com", "+34600111222")
	s, _, wa := newTestScheduler(repo)
	wa.ShouldFail = true

	s.RunCycle(context.Background())

	if repo.appts[a.ID].ReminderSent {
		t.Error("item with one failed channel must stay unsent")
	}
}

func TestRunCycle_MissingContactIsSilentSkip(t *testing.T) {
	repo := newMockRepo()
	a := seedDue(repo, ReminderEmail, "", "")
	s, email, _ := newTestScheduler(repo)

	s.RunCycle(context.Background())

	if len(email.Sent) != 0 {
		t.Errorf("sent %d emails with no address on file", len(email.Sent))
	}
	// No channel actually required sending, so the item counts as handled.
	if !repo.appts[a.ID].ReminderSent {
		t.Error("missing-contact item should still be marked sent")
	}
}

func TestRunCycle_OneFailureDoesNotAbortBatch(t *testing.T) {
	repo := newMockRepo()
	bad := seedDue(repo, ReminderWhatsApp, "", "+34600111222")
	good := seedDue(repo, ReminderEmail, "maria@example.com", "")
	// Shift the second so both coexist without colliding schedules.
	good.SetScheduledAt(testNow.Add(13 * time.Hour))

	s, email, wa := newTestScheduler(repo)
	wa.ShouldFail = true

	s.RunCycle(context.Background())

	if repo.appts[bad.ID].ReminderSent {
		t.Error("failed item marked sent")
	}
	if len(email.Sent) != 1 || !repo.appts[good.ID].ReminderSent {
		t.Error("healthy item not processed after another item failed")
	}
}

func TestScheduler_StartOnce(t *testing.T) {
	repo := newMockRepo()
	s, _, _ := newTestScheduler(repo)

	ctx := context.Background()
	s.Start(ctx)
	first := s.done
	s.Start(ctx) // no-op
	if s.done != first {
		t.Error("second Start replaced the running loop")
	}
	s.Stop()

	select {
	case <-first:
	default:
		t.Error("Stop returned before the loop exited")
	}

	// A stopped scheduler can be started again.
	s.Start(ctx)
	s.Stop()
	s.Stop() // idempotent
}
