package leagues

import (
	"strings"
	"testing"
	"time"

	"github.com/courtline/courtline/internal/pairing"
)

func testRounds() []pairing.Round {
	return []pairing.Round{
		{
			Number: 1,
			Matches: []pairing.Match{
				{SideA: []string{"a"}, SideB: []string{"b"}},
				{SideA: []string{"c"}, SideB: []string{"d"}},
			},
		},
		{
			Number: 2,
			Matches: []pairing.Match{
				{SideA: []string{"a"}, SideB: []string{"c"}},
				{SideA: []string{"b"}, SideB: []string{"d"}},
			},
		},
	}
}

func weekHours(opens, closes string) []DayHours {
	hours := make([]DayHours, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours = append(hours, DayHours{Weekday: day, Opens: opens, Closes: closes})
	}
	return hours
}

func TestPlanCalendarFillsSlotsInRoundOrder(t *testing.T) {
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC) // Monday
	schedule, err := PlanCalendar(testRounds(), start, start, 2, weekHours("18:00", "21:00"), time.Hour)
	if err != nil {
		t.Fatalf("plan calendar: %v", err)
	}
	if len(schedule) != 4 {
		t.Fatalf("expected 4 scheduled matches, got %d", len(schedule))
	}

	// Both courts fill at 18:00 before the 19:00 slots are used.
	if schedule[0].Court != 1 || schedule[1].Court != 2 {
		t.Errorf("expected courts 1 then 2 in the first slot, got %d and %d",
			schedule[0].Court, schedule[1].Court)
	}
	if !schedule[1].StartTime.Equal(schedule[0].StartTime) {
		t.Errorf("first two matches should share a start time: %v vs %v",
			schedule[0].StartTime, schedule[1].StartTime)
	}
	if !schedule[2].StartTime.After(schedule[0].StartTime) {
		t.Errorf("round 2 should start after round 1: %v vs %v",
			schedule[2].StartTime, schedule[0].StartTime)
	}

	for i, scheduled := range schedule {
		wantRound := 1
		if i >= 2 {
			wantRound = 2
		}
		if scheduled.Round != wantRound {
			t.Errorf("match %d assigned to round %d, want %d", i, scheduled.Round, wantRound)
		}
		if !scheduled.EndTime.Equal(scheduled.StartTime.Add(time.Hour)) {
			t.Errorf("match %d has wrong duration: %v to %v", i, scheduled.StartTime, scheduled.EndTime)
		}
	}
}

func TestPlanCalendarSkipsClosedDays(t *testing.T) {
	hours := []DayHours{{Weekday: time.Wednesday, Opens: "18:00", Closes: "20:00"}}
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC) // Monday
	end := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)   // Sunday

	schedule, err := PlanCalendar(testRounds(), start, end, 2, hours, time.Hour)
	if err != nil {
		t.Fatalf("plan calendar: %v", err)
	}
	for i, scheduled := range schedule {
		if scheduled.StartTime.Weekday() != time.Wednesday {
			t.Errorf("match %d scheduled on %s, club only opens Wednesday", i, scheduled.StartTime.Weekday())
		}
	}
}

func TestPlanCalendarInsufficientSlots(t *testing.T) {
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	_, err := PlanCalendar(testRounds(), start, start, 1, weekHours("18:00", "20:00"), time.Hour)
	if err == nil {
		t.Fatal("expected insufficient-slots error")
	}
	if !strings.Contains(err.Error(), "insufficient slots") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPlanCalendarValidation(t *testing.T) {
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	hours := weekHours("18:00", "21:00")

	tests := []struct {
		name string
		run  func() error
	}{
		{"no rounds", func() error {
			_, err := PlanCalendar(nil, start, start, 1, hours, time.Hour)
			return err
		}},
		{"no courts", func() error {
			_, err := PlanCalendar(testRounds(), start, start, 0, hours, time.Hour)
			return err
		}},
		{"zero duration", func() error {
			_, err := PlanCalendar(testRounds(), start, start, 1, hours, 0)
			return err
		}},
		{"end before start", func() error {
			_, err := PlanCalendar(testRounds(), start, start.AddDate(0, 0, -1), 1, hours, time.Hour)
			return err
		}},
		{"no hours", func() error {
			_, err := PlanCalendar(testRounds(), start, start, 1, nil, time.Hour)
			return err
		}},
		{"bad time format", func() error {
			_, err := PlanCalendar(testRounds(), start, start, 1,
				[]DayHours{{Weekday: time.Monday, Opens: "6pm", Closes: "9pm"}}, time.Hour)
			return err
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseTimeOfDayFormats(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"18:00", 18, 0, false},
		{"08:30", 8, 30, false},
		{"6:00 PM", 18, 0, false},
		{"6:00PM", 18, 0, false},
		{"9:15 am", 9, 15, false},
		{"", 0, 0, true},
		{"25:00", 0, 0, true},
		{"soon", 0, 0, true},
	}

	for _, tc := range tests {
		parsed, err := parseTimeOfDay(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseTimeOfDay(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTimeOfDay(%q): %v", tc.input, err)
			continue
		}
		if parsed.Hour() != tc.hour || parsed.Minute() != tc.minute {
			t.Errorf("parseTimeOfDay(%q) = %02d:%02d, want %02d:%02d",
				tc.input, parsed.Hour(), parsed.Minute(), tc.hour, tc.minute)
		}
	}
}
