package nlp

import (
	"time"
)

// ResolvedDateTime is a concrete calendar date, optionally with a
// time-of-day. HasTime=false means all-day semantics, which is distinct
// from midnight. Date is always midnight in the resolver's location;
// resolution is anchored to a caller-supplied reference instant, so the
// same (entities, now) pair always yields the same value.
type ResolvedDateTime struct {
	Date     time.Time
	Hour     int
	Minute   int
	HasTime  bool
	Rule     DateRule
	Deadline bool
	// WholeWeek marks a bare week cue ("이번 주") with no weekday: Date is
	// the week-start day and the cue covers the seven days from it.
	WholeWeek bool
}

// At combines date and time-of-day. For all-day values it returns the
// date's midnight; callers must consult HasTime before treating that as
// a clock time.
func (r ResolvedDateTime) At() time.Time {
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), r.Hour, r.Minute, 0, 0, r.Date.Location())
}

// Resolver turns DATE/TIME entities into absolute timestamps. All
// calendar arithmetic happens in the reference instant's location, so
// per-user time zones are honored by handing Resolve a `now` already in
// the caller's zone.
type Resolver struct {
	WeekStart time.Weekday
}

func NewResolver(weekStart time.Weekday) *Resolver {
	return &Resolver{WeekStart: weekStart}
}

// Resolve applies the entity's resolution rule against the reference
// instant. Returns (nil, nil) when no temporal entity is present —
// absence is a valid outcome, not an error. Conflicting DATE entities
// yield an Ambiguous failure listing every candidate instead of silently
// picking one; duplicate mentions that agree on the same day resolve
// normally.
func (rs *Resolver) Resolve(entities []Entity, now time.Time) (*ResolvedDateTime, error) {
	var dates, times []Entity
	for _, e := range entities {
		switch e.Kind {
		case EntityDate:
			dates = append(dates, e)
		case EntityTime:
			times = append(times, e)
		}
	}
	if len(dates) == 0 && len(times) == 0 {
		return nil, nil
	}

	var day time.Time
	var rule DateRule
	deadline := false
	switch len(dates) {
	case 0:
		// TIME-only defaults to the reference date.
		day = midnight(now)
		rule = RuleDayOffset
	default:
		candidates := make([]time.Time, len(dates))
		for i, d := range dates {
			candidates[i] = rs.resolveDate(d.Date, now)
		}
		for _, c := range candidates[1:] {
			if !c.Equal(candidates[0]) {
				pe := &ParseError{Code: FailAmbiguous}
				for _, c := range candidates {
					pe.Candidates = append(pe.Candidates, c.Format("2006-01-02"))
				}
				return nil, pe
			}
		}
		day = candidates[0]
		rule = dates[0].Date.Rule
		deadline = dates[0].Date.Deadline
	}

	out := &ResolvedDateTime{Date: day, Rule: rule, Deadline: deadline}
	if len(dates) > 0 && rule == RuleRelativeWeek && !dates[0].Date.HasWeekday {
		out.WholeWeek = true
	}
	switch {
	case len(times) > 0:
		out.Hour, out.Minute, out.HasTime = times[0].Hour, times[0].Minute, true
	case rule == RuleDayOffset:
		// 오늘/내일/모레 keep the reference time-of-day unless a TIME
		// entity overrides it.
		out.Hour, out.Minute, out.HasTime = now.Hour(), now.Minute(), true
	default:
		// DATE-only weekday or literal date: all-day.
	}
	return out, nil
}

// resolveDate maps one DateSpec to a calendar day.
func (rs *Resolver) resolveDate(d DateSpec, now time.Time) time.Time {
	today := midnight(now)
	switch d.Rule {
	case RuleLiteral:
		c := time.Date(now.Year(), time.Month(d.Month), d.Day, 0, 0, 0, 0, now.Location())
		// A literal date that already passed means next year.
		if c.Before(today) {
			c = c.AddDate(1, 0, 0)
		}
		return c
	case RuleDayOffset:
		return today.AddDate(0, 0, d.DayOffset)
	case RuleRelativeWeek, RuleNamedWeekday:
		start := rs.startOfWeek(today).AddDate(0, 0, 7*d.WeekOffset)
		if !d.HasWeekday {
			return start
		}
		// "이번 주 <weekday>" is literal within the configured week: a
		// weekday that has already passed resolves to the past date, it
		// is not rolled forward.
		offset := (int(d.Weekday) - int(rs.WeekStart) + 7) % 7
		return start.AddDate(0, 0, offset)
	default:
		return today
	}
}

func (rs *Resolver) startOfWeek(day time.Time) time.Time {
	diff := (int(day.Weekday()) - int(rs.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
