package appointment

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/misonrisa/clinic/internal/platform/apperror"
)

const (
	OrderPopular = "popular"
	OrderSpread  = "spread"
)

// demandWindow is the trailing period over which booking history feeds the
// slot ranking.
const demandWindow = 30 * 24 * time.Hour

// Slot is one candidate bookable time point with its historical demand.
type Slot struct {
	Time   string    `json:"time"`
	ISO    time.Time `json:"iso"`
	Demand int       `json:"demand"`
}

// GenerateSlots produces the candidate instants for the given day: one per
// granularity-minute step inside [startHour, endHour), keeping only instants
// strictly after now. Past days therefore yield an empty sequence. When
// granularity does not divide 60 the steps simply restart at each hour
// boundary.
func GenerateSlots(date time.Time, granularity, startHour, endHour int, now time.Time) []time.Time {
	var slots []time.Time
	for h := startHour; h < endHour; h++ {
		for m := 0; m < 60; m += granularity {
			s := time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
			if s.After(now) {
				slots = append(slots, s)
			}
		}
	}
	return slots
}

// AvailableSlots returns the ordered, conflict-free slot list for the
// owner's day: candidates minus exactly-occupied minutes, each carrying its
// trailing-30-day demand count, sorted by demand per the order mode with
// chronological tiebreak. An empty result is a normal outcome.
func (s *Service) AvailableSlots(ctx context.Context, ownerID uuid.UUID, date string, granularity int, order string) ([]Slot, error) {
	if order == "" {
		order = OrderPopular
	}
	if order != OrderPopular && order != OrderSpread {
		return nil, apperror.ValidationField("order", "order must be popular or spread")
	}
	if granularity <= 0 {
		granularity = s.slotMinutes
	}
	if granularity > 60 {
		return nil, apperror.ValidationField("granularity", "granularity must be at most 60 minutes")
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, apperror.ValidationField("date", "date must be YYYY-MM-DD")
	}

	now := s.now()
	candidates := GenerateSlots(day, granularity, s.startHour, s.endHour, now)

	existing, err := s.repo.ListByOwnerBetween(ctx, ownerID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	// Exact-minute occupancy: appointments are point events, not intervals.
	occupied := make(map[string]bool, len(existing))
	for _, a := range existing {
		occupied[a.ScheduledAt.Format("15:04")] = true
	}

	demand, err := s.repo.CountByTimeOfDay(ctx, ownerID, now.Add(-demandWindow))
	if err != nil {
		return nil, err
	}

	slots := []Slot{}
	for _, c := range candidates {
		tod := c.Format("15:04")
		if occupied[tod] {
			continue
		}
		slots = append(slots, Slot{Time: tod, ISO: c, Demand: demand[tod]})
	}

	// Candidates are generated chronologically; a stable sort keeps that
	// order for equal demand counts.
	if order == OrderPopular {
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].Demand > slots[j].Demand })
	} else {
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].Demand < slots[j].Demand })
	}
	return slots, nil
}
