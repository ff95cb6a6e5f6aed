package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dairydrop/internal/constants"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func istDate(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, ist)
}

func TestValidateSlotRejectsUnknownShift(t *testing.T) {
	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 9, 0)))
	if err := svc.ValidateSlot(istDate(2026, 3, 11, 0, 0), "afternoon"); !errors.Is(err, ErrInvalidShift) {
		t.Fatalf("want ErrInvalidShift, got %v", err)
	}
}

func TestValidateSlotEveningUnavailable(t *testing.T) {
	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 9, 0)))
	if err := svc.ValidateSlot(istDate(2026, 3, 11, 0, 0), constants.ShiftEvening); !errors.Is(err, ErrEveningUnavailable) {
		t.Fatalf("want ErrEveningUnavailable, got %v", err)
	}
}

func TestValidateSlotRejectsSameDay(t *testing.T) {
	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 6, 0)))
	if err := svc.ValidateSlot(istDate(2026, 3, 10, 0, 0), constants.ShiftMorning); !errors.Is(err, ErrSameDayDelivery) {
		t.Fatalf("want ErrSameDayDelivery, got %v", err)
	}
}

func TestValidateSlotSevenDayWindow(t *testing.T) {
	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 9, 0)))

	if err := svc.ValidateSlot(istDate(2026, 3, 11, 0, 0), constants.ShiftMorning); err != nil {
		t.Fatalf("tomorrow should be bookable, got %v", err)
	}
	if err := svc.ValidateSlot(istDate(2026, 3, 17, 0, 0), constants.ShiftMorning); err != nil {
		t.Fatalf("day 7 should be bookable, got %v", err)
	}
	if err := svc.ValidateSlot(istDate(2026, 3, 18, 0, 0), constants.ShiftMorning); !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("day 8 want ErrSlotOutOfRange, got %v", err)
	}
	if err := svc.ValidateSlot(istDate(2026, 3, 9, 0, 0), constants.ShiftMorning); !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("past date want ErrSlotOutOfRange, got %v", err)
	}
}

func TestValidateSlotMorningOpenLateEvening(t *testing.T) {
	// Booking tomorrow morning stays open until the end of today.
	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 23, 30)))
	if err := svc.ValidateSlot(istDate(2026, 3, 11, 0, 0), constants.ShiftMorning); err != nil {
		t.Fatalf("late-evening booking for tomorrow should pass, got %v", err)
	}
}

func TestAvailableSlotsSevenDaysStartingTomorrow(t *testing.T) {
	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 9, 0)))
	days := svc.AvailableSlots()
	if len(days) != 7 {
		t.Fatalf("want 7 days, got %d", len(days))
	}
	if days[0].Date != "2026-03-11" {
		t.Fatalf("first day want 2026-03-11, got %s", days[0].Date)
	}
	if days[6].Date != "2026-03-17" {
		t.Fatalf("last day want 2026-03-17, got %s", days[6].Date)
	}
	for _, day := range days {
		if !day.MorningAvailable {
			t.Fatalf("morning should be available on %s", day.Date)
		}
		if day.EveningAvailable {
			t.Fatalf("evening should not be available on %s", day.Date)
		}
	}
}

func TestWithinDeliveryWindow(t *testing.T) {
	date := istDate(2026, 3, 11, 0, 0)
	cases := []struct {
		name  string
		now   time.Time
		shift string
		want  bool
	}{
		{"morning start", istDate(2026, 3, 11, 5, 0), constants.ShiftMorning, true},
		{"morning end", istDate(2026, 3, 11, 11, 0), constants.ShiftMorning, true},
		{"before morning", istDate(2026, 3, 11, 4, 59), constants.ShiftMorning, false},
		{"after morning", istDate(2026, 3, 11, 11, 1), constants.ShiftMorning, false},
		{"evening inside", istDate(2026, 3, 11, 18, 0), constants.ShiftEvening, true},
		{"after evening", istDate(2026, 3, 11, 20, 1), constants.ShiftEvening, false},
		{"wrong day", istDate(2026, 3, 12, 8, 0), constants.ShiftMorning, false},
	}
	for _, tc := range cases {
		svc := NewSlotServiceWithClock(fixedClock(tc.now))
		if got := svc.WithinDeliveryWindow(date, tc.shift); got != tc.want {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCancellationOpenMorning(t *testing.T) {
	// Morning order for the 11th closes at 20:00 IST on the 10th.
	date := istDate(2026, 3, 11, 0, 0)

	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 19, 59)))
	if !svc.CancellationOpen(date, constants.ShiftMorning) {
		t.Fatal("19:59 previous day should still be cancellable")
	}
	svc = NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 20, 0)))
	if !svc.CancellationOpen(date, constants.ShiftMorning) {
		t.Fatal("20:00 sharp should still be cancellable")
	}
	svc = NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 10, 20, 1)))
	if svc.CancellationOpen(date, constants.ShiftMorning) {
		t.Fatal("20:01 previous day should be closed")
	}
}

func TestCancellationOpenEvening(t *testing.T) {
	// Evening order closes at 14:00 IST on the delivery day itself.
	date := istDate(2026, 3, 11, 0, 0)

	svc := NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 11, 13, 59)))
	if !svc.CancellationOpen(date, constants.ShiftEvening) {
		t.Fatal("13:59 same day should still be cancellable")
	}
	svc = NewSlotServiceWithClock(fixedClock(istDate(2026, 3, 11, 14, 1)))
	if svc.CancellationOpen(date, constants.ShiftEvening) {
		t.Fatal("14:01 same day should be closed")
	}
}
