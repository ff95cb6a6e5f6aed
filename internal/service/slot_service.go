package service

import (
	"time"

	"github.com/dairydrop/internal/constants"
)

// ist is the civil timezone every slot, cutoff and delivery-window
// comparison runs in, regardless of the host timezone.
var ist = loadIST()

func loadIST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	// tzdata may be absent in minimal containers
	return time.FixedZone("IST", 5*3600+1800)
}

// SlotDay is one bookable day in the 7-day lookahead.
type SlotDay struct {
	Date                string `json:"date"` // YYYY-MM-DD
	MorningAvailable    bool   `json:"morning_available"`
	MorningCutoffPassed bool   `json:"morning_cutoff_passed"`
	EveningAvailable    bool   `json:"evening_available"`
	Reason              string `json:"reason,omitempty"`
}

// SlotService computes and validates delivery slots. It is pure over
// the injected clock so tests can pin time.
type SlotService struct {
	now func() time.Time
}

// NewSlotService creates a slot service using the wall clock.
func NewSlotService() *SlotService {
	return &SlotService{now: time.Now}
}

// NewSlotServiceWithClock creates a slot service with a fixed clock.
func NewSlotServiceWithClock(now func() time.Time) *SlotService {
	return &SlotService{now: now}
}

// NowIST returns the current instant in IST.
func (s *SlotService) NowIST() time.Time {
	return s.now().In(ist)
}

// civilDate truncates t to midnight in IST.
func civilDate(t time.Time) time.Time {
	t = t.In(ist)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ist)
}

// morningCutoffPassed is the single cutoff predicate shared by the
// lister and the validator, so the two can never disagree about
// tomorrow's availability. Booking for tomorrow morning stays open
// until the end of today (23:59:59 IST).
func (s *SlotService) morningCutoffPassed(now, date time.Time) bool {
	tomorrow := civilDate(now).AddDate(0, 0, 1)
	if !civilDate(date).Equal(tomorrow) {
		return false
	}
	endOfToday := civilDate(now).AddDate(0, 0, 1).Add(-time.Second)
	return now.In(ist).After(endOfToday)
}

// AvailableSlots returns the 7-day lookahead starting tomorrow.
func (s *SlotService) AvailableSlots() []SlotDay {
	now := s.NowIST()
	today := civilDate(now)
	days := make([]SlotDay, 0, 7)
	for offset := 1; offset <= 7; offset++ {
		date := today.AddDate(0, 0, offset)
		cutoff := s.morningCutoffPassed(now, date)
		day := SlotDay{
			Date:                date.Format("2006-01-02"),
			MorningAvailable:    !cutoff,
			MorningCutoffPassed: cutoff,
			EveningAvailable:    false,
			Reason:              "evening delivery is not available yet",
		}
		if cutoff {
			day.Reason = "booking for tomorrow morning has closed"
		}
		days = append(days, day)
	}
	return days
}

// ValidateSlot checks a requested (date, shift) pair against the
// booking rules. Returns nil when bookable.
func (s *SlotService) ValidateSlot(date time.Time, shift string) error {
	switch shift {
	case constants.ShiftMorning:
	case constants.ShiftEvening:
		// represented in the model but not bookable yet
		return ErrEveningUnavailable
	default:
		return ErrInvalidShift
	}

	now := s.NowIST()
	today := civilDate(now)
	target := civilDate(date)

	if target.Equal(today) {
		return ErrSameDayDelivery
	}
	tomorrow := today.AddDate(0, 0, 1)
	last := today.AddDate(0, 0, 7)
	if target.Before(tomorrow) || target.After(last) {
		return ErrSlotOutOfRange
	}
	if s.morningCutoffPassed(now, target) {
		return ErrSlotCutoffPassed
	}
	return nil
}

// deliveryWindow returns the IST shift window bounds for a date.
func deliveryWindow(date time.Time, shift string) (time.Time, time.Time, bool) {
	day := civilDate(date)
	switch shift {
	case constants.ShiftMorning:
		return day.Add(5 * time.Hour), day.Add(11 * time.Hour), true
	case constants.ShiftEvening:
		return day.Add(16 * time.Hour), day.Add(20 * time.Hour), true
	}
	return time.Time{}, time.Time{}, false
}

// WithinDeliveryWindow reports whether now falls inside the shift's
// delivery window on the given date.
func (s *SlotService) WithinDeliveryWindow(date time.Time, shift string) bool {
	start, end, ok := deliveryWindow(date, shift)
	if !ok {
		return false
	}
	now := s.NowIST()
	return !now.Before(start) && !now.After(end)
}

// cancelDeadline returns the last instant a customer may cancel an
// order for the given delivery date and shift: 20:00 IST the previous
// day for morning, 14:00 IST the same day for evening.
func cancelDeadline(date time.Time, shift string) (time.Time, bool) {
	day := civilDate(date)
	switch shift {
	case constants.ShiftMorning:
		return day.AddDate(0, 0, -1).Add(20 * time.Hour), true
	case constants.ShiftEvening:
		return day.Add(14 * time.Hour), true
	}
	return time.Time{}, false
}

// CancellationOpen reports whether a customer may still cancel an order
// with the given delivery date and shift.
func (s *SlotService) CancellationOpen(date time.Time, shift string) bool {
	deadline, ok := cancelDeadline(date, shift)
	if !ok {
		return false
	}
	return !s.NowIST().After(deadline)
}
