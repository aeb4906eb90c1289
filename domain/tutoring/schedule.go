package tutoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Interval is a clock range within one day, in minutes since midnight
type Interval struct {
	Start int
	End   int
}

// NewInterval builds an interval from "HH:MM" bounds
func NewInterval(start, end string) (Interval, error) {
	s, err := parseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if e <= s {
		return Interval{}, fmt.Errorf("interval %s-%s ends before it starts", start, end)
	}
	return Interval{Start: s, End: e}, nil
}

// StartHour returns the start as a fractional hour
func (iv Interval) StartHour() float64 { return float64(iv.Start) / 60 }

// EndHour returns the end as a fractional hour
func (iv Interval) EndHour() float64 { return float64(iv.End) / 60 }

func (iv Interval) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", iv.Start/60, iv.Start%60, iv.End/60, iv.End%60)
}

// Schedule maps each weekday to its tutoring intervals
type Schedule map[time.Weekday][]Interval

// ParseSchedule parses "Monday=10:30-12:30,14:00-15:00;Tuesday=17:00-19:00".
// Weekday names are case-insensitive. An empty string yields an empty schedule.
func ParseSchedule(s string) (Schedule, error) {
	sched := Schedule{}
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		dayName, ranges, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("schedule entry %q: expected Day=HH:MM-HH:MM", entry)
		}
		day, err := parseWeekday(dayName)
		if err != nil {
			return nil, err
		}
		for _, r := range strings.Split(ranges, ",") {
			start, end, ok := strings.Cut(strings.TrimSpace(r), "-")
			if !ok {
				return nil, fmt.Errorf("schedule entry %q: bad range %q", entry, r)
			}
			iv, err := NewInterval(strings.TrimSpace(start), strings.TrimSpace(end))
			if err != nil {
				return nil, fmt.Errorf("schedule entry %q: %w", entry, err)
			}
			sched[day] = append(sched[day], iv)
		}
	}
	for day := range sched {
		ivs := sched[day]
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	}
	return sched, nil
}

// String renders the schedule in the same form ParseSchedule accepts, Sunday first
func (s Schedule) String() string {
	var parts []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		ivs := s[d]
		if len(ivs) == 0 {
			continue
		}
		ranges := make([]string, len(ivs))
		for i, iv := range ivs {
			ranges[i] = iv.String()
		}
		parts = append(parts, d.String()+"="+strings.Join(ranges, ","))
	}
	return strings.Join(parts, ";")
}

func parseWeekday(name string) (time.Weekday, error) {
	name = strings.TrimSpace(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("clock %q: past midnight", s)
	}
	return h*60 + m, nil
}
