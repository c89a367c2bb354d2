package leagues

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtline/courtline/internal/pairing"
)

// DayHours is the club's open window for one weekday, as "HH:MM" or
// "H:MM AM/PM" strings.
type DayHours struct {
	Weekday time.Weekday `json:"weekday"`
	Opens   string       `json:"opens"`
	Closes  string       `json:"closes"`
}

// Slot is one court booking window.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Court int       `json:"court"`
}

// ScheduledMatch is a generated match placed on the club calendar.
type ScheduledMatch struct {
	Round     int           `json:"round"`
	Court     int           `json:"court"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Match     pairing.Match `json:"match"`
}

// PlanCalendar assigns every match of the generated rounds to court/time
// slots inside the club's operating hours, in round order. It fails when the
// date range does not hold enough slots for all matches.
func PlanCalendar(rounds []pairing.Round, startDate, endDate time.Time, courts int, hours []DayHours, matchDuration time.Duration) ([]ScheduledMatch, error) {
	if len(rounds) == 0 {
		return nil, errors.New("at least one round is required")
	}
	if courts < 1 {
		return nil, errors.New("at least one court is required")
	}
	if matchDuration <= 0 {
		return nil, errors.New("match duration must be positive")
	}
	startDate = truncateDate(startDate)
	endDate = truncateDate(endDate)
	if endDate.Before(startDate) {
		return nil, errors.New("start date must be on or before end date")
	}

	slots, err := buildSlots(startDate, endDate, courts, hours, matchDuration)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, round := range rounds {
		total += len(round.Matches)
	}
	if len(slots) < total {
		return nil, fmt.Errorf("insufficient slots: need %d matches but only %d available", total, len(slots))
	}

	schedule := make([]ScheduledMatch, 0, total)
	idx := 0
	for _, round := range rounds {
		for _, match := range round.Matches {
			slot := slots[idx]
			idx++
			schedule = append(schedule, ScheduledMatch{
				Round:     round.Number,
				Court:     slot.Court,
				StartTime: slot.Start,
				EndTime:   slot.End,
				Match:     match,
			})
		}
	}
	return schedule, nil
}

func buildSlots(startDate, endDate time.Time, courts int, hours []DayHours, matchDuration time.Duration) ([]Slot, error) {
	hoursByDay, err := buildHoursByDay(hours)
	if err != nil {
		return nil, err
	}
	if len(hoursByDay) == 0 {
		return nil, errors.New("operating hours are required")
	}

	var slots []Slot
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		window, ok := hoursByDay[date.Weekday()]
		if !ok {
			continue
		}
		dayOpen := time.Date(date.Year(), date.Month(), date.Day(), window.opens.Hour(), window.opens.Minute(), 0, 0, date.Location())
		dayClose := time.Date(date.Year(), date.Month(), date.Day(), window.closes.Hour(), window.closes.Minute(), 0, 0, date.Location())
		if !dayClose.After(dayOpen) {
			continue
		}
		for start := dayOpen; !start.Add(matchDuration).After(dayClose); start = start.Add(matchDuration) {
			end := start.Add(matchDuration)
			for court := 1; court <= courts; court++ {
				slots = append(slots, Slot{Start: start, End: end, Court: court})
			}
		}
	}

	if len(slots) == 0 {
		return nil, errors.New("no available match slots in the date range")
	}
	return slots, nil
}

type dayWindow struct {
	opens  time.Time
	closes time.Time
}

func buildHoursByDay(hours []DayHours) (map[time.Weekday]dayWindow, error) {
	result := make(map[time.Weekday]dayWindow)
	for _, day := range hours {
		if strings.TrimSpace(day.Opens) == "" || strings.TrimSpace(day.Closes) == "" {
			continue
		}
		opens, err := parseTimeOfDay(day.Opens)
		if err != nil {
			return nil, fmt.Errorf("invalid opens for %s: %w", day.Weekday, err)
		}
		closes, err := parseTimeOfDay(day.Closes)
		if err != nil {
			return nil, fmt.Errorf("invalid closes for %s: %w", day.Weekday, err)
		}
		result[day.Weekday] = dayWindow{opens: opens, closes: closes}
	}
	return result, nil
}

func parseTimeOfDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("time is required")
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		formats := []string{"3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}
		for _, format := range formats {
			if parsed, err = time.Parse(format, strings.ToUpper(raw)); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errors.New("time must be in HH:MM or H:MM AM/PM format")
	}
	return parsed, nil
}

func truncateDate(value time.Time) time.Time {
	loc := value.Location()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, loc)
}
