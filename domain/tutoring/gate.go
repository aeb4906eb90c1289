package tutoring

import (
	"fmt"
	"time"
)

// Reasons reported in a Diagnostic
const (
	ReasonNotTutoringDay = "Not a tutoring day"
	ReasonWithinHours    = "Within tutoring hours"
	ReasonOutsideHours   = "Outside tutoring hours"
)

// Diagnostic is the snapshot of one gate evaluation, for display on the hours page
type Diagnostic struct {
	CurrentTime   string    `json:"current_time"`
	CurrentTime24 string    `json:"current_time_24h"`
	Day           string    `json:"day"`
	Hour          int       `json:"hour"`
	Minute        int       `json:"minute"`
	FractionHour  float64   `json:"fraction_hour"`
	TimeZone      string    `json:"timezone"`
	Interval      *Interval `json:"interval,omitempty"`
	Reason        string    `json:"reason"`
	InSession     bool      `json:"in_session"`
}

// TestedRange renders the last interval tested, or "" if none
func (d Diagnostic) TestedRange() string {
	if d.Interval == nil {
		return ""
	}
	return d.Interval.String()
}

// Gate decides whether live tutoring is in session
type Gate struct {
	schedule Schedule
	loc      *time.Location
	now      func() time.Time
}

// NewGate creates a gate evaluating the schedule in loc
func NewGate(schedule Schedule, loc *time.Location) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	return &Gate{schedule: schedule, loc: loc, now: time.Now}
}

// NewGateFromConfig parses the schedule and loads the named zone.
// Either failing is a startup error.
func NewGateFromConfig(schedule, timeZone string) (*Gate, error) {
	sched, err := ParseSchedule(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse tutoring schedule: %w", err)
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("load tutoring time zone: %w", err)
	}
	return NewGate(sched, loc), nil
}

// Schedule returns the configured schedule
func (g *Gate) Schedule() Schedule { return g.schedule }

// Location returns the institution-local zone
func (g *Gate) Location() *time.Location { return g.loc }

// InSession evaluates the gate at the current wall-clock time
func (g *Gate) InSession() (bool, Diagnostic) {
	return g.At(g.now())
}

// At evaluates the gate at t. Bounds are inclusive on both ends and the
// first matching interval wins.
func (g *Gate) At(t time.Time) (bool, Diagnostic) {
	local := t.In(g.loc)
	frac := float64(local.Hour()) + float64(local.Minute())/60

	diag := Diagnostic{
		CurrentTime:   local.Format("03:04 PM"),
		CurrentTime24: local.Format("15:04"),
		Day:           local.Weekday().String(),
		Hour:          local.Hour(),
		Minute:        local.Minute(),
		FractionHour:  frac,
		TimeZone:      local.Format("MST"),
	}

	intervals, ok := g.schedule[local.Weekday()]
	if !ok || len(intervals) == 0 {
		diag.Reason = ReasonNotTutoringDay
		return false, diag
	}

	for i := range intervals {
		iv := intervals[i]
		diag.Interval = &iv
		if iv.StartHour() <= frac && frac <= iv.EndHour() {
			diag.Reason = ReasonWithinHours
			diag.InSession = true
			return true, diag
		}
	}

	diag.Reason = ReasonOutsideHours
	return false, diag
}
