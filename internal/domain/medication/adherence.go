package medication

import (
	"math"
	"time"
)

// TodayLimit caps the overview list.
const TodayLimit = 3

// BuildOverview flattens prescriptions in order, keeps the first TodayLimit
// medicines for today's list and counts all of them as active.
func BuildOverview(prescriptions []*Prescription) Overview {
	ov := Overview{Today: []TodayItem{}}
	for _, p := range prescriptions {
		for _, m := range p.Medicines {
			ov.ActiveCount++
			if len(ov.Today) < TodayLimit {
				ov.Today = append(ov.Today, TodayItem{Name: m.Label(), Instructions: m.Instructions()})
			}
		}
	}
	return ov
}

// AdherenceRate is the rounded percentage of considered reminders that were
// taken. A reminder is considered when it was created on now's calendar day
// or is taken or pending. It returns nil when there are no reminders at all.
func AdherenceRate(reminders []*Reminder, now time.Time) *int {
	if len(reminders) == 0 {
		return nil
	}
	var considered, taken int
	for _, r := range reminders {
		if !sameDay(r.CreatedAt.In(now.Location()), now) && r.Status != ReminderTaken && r.Status != ReminderPending {
			continue
		}
		considered++
		if r.Status == ReminderTaken {
			taken++
		}
	}
	rate := 0
	if considered > 0 {
		rate = int(math.Round(float64(taken) / float64(considered) * 100))
	}
	return &rate
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
