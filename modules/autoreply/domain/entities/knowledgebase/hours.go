package knowledgebase

import (
	"fmt"
	"time"
)

// DaySchedule is one weekday's opening window. Start and End are local
// wall-clock times in "HH:MM" form.
type DaySchedule struct {
	Day      time.Weekday
	Start    string
	End      string
	IsActive bool
}

type Schedule struct {
	Enabled           bool
	Timezone          string
	Days              []DaySchedule
	AfterHoursMessage string
}

// IsOpen reports whether the instant falls inside the schedule's
// opening window, evaluated in the schedule's timezone. Both window
// boundaries are inclusive. A disabled schedule never gates anything.
// An unresolvable timezone falls back to UTC.
func (s Schedule) IsOpen(now time.Time) bool {
	if !s.Enabled {
		return true
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	day, ok := s.dayFor(local.Weekday())
	if !ok || !day.IsActive {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	start, err := parseClock(day.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(day.End)
	if err != nil {
		return false
	}
	return minutes >= start && minutes <= end
}

func (s Schedule) dayFor(weekday time.Weekday) (DaySchedule, bool) {
	for _, d := range s.Days {
		if d.Day == weekday {
			return d, true
		}
	}
	return DaySchedule{}, false
}

func parseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", v)
	}
	return h*60 + m, nil
}
