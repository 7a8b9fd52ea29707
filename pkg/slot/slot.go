// Package slot holds the time-of-day arithmetic shared by weekly schedules,
// session booking and the availability view.
package slot

import (
	"fmt"
	"sort"
)

// Range is a time-of-day interval [Start, End).
type Range struct {
	Start Clock `json:"start_time"`
	End   Clock `json:"end_time"`
}

func NewRange(start, end string) (Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Range{}, err
	}
	r := Range{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if !r.Start.Valid() || !r.End.Valid() {
		return ErrInvalidClock
	}
	if r.Start >= r.End {
		return ErrEmptyRange
	}
	return nil
}

func (r Range) String() string { return fmt.Sprintf("%s-%s", r.Start, r.End) }

// Minutes is the length of the range.
func (r Range) Minutes() int { return int(r.End - r.Start) }

// Contains reports whether inner lies entirely within r.
func (r Range) Contains(inner Range) bool {
	return r.Start <= inner.Start && inner.End <= r.End
}

// Policy decides how boundaries are compared.
type Policy struct {
	// TouchingConflicts treats ranges that share only an endpoint
	// (09:00-10:00 and 10:00-11:00) as overlapping.
	TouchingConflicts bool
}

// DefaultPolicy keeps back-to-back ranges in conflict.
var DefaultPolicy = Policy{TouchingConflicts: true}

// Overlaps is the single conflict predicate used for schedule slots and
// booked sessions.
func Overlaps(existing, candidate Range, p Policy) bool {
	if p.TouchingConflicts {
		return existing.Start <= candidate.End && existing.End >= candidate.Start
	}
	return existing.Start < candidate.End && existing.End > candidate.Start
}

// FirstConflict returns the index of the first range in existing that
// overlaps candidate, or -1.
func FirstConflict(existing []Range, candidate Range, p Policy) int {
	for i, r := range existing {
		if Overlaps(r, candidate, p) {
			return i
		}
	}
	return -1
}

// Subtract removes every booked range from the windows and returns what is
// left, sorted and without empty pieces.
func Subtract(windows, booked []Range) []Range {
	free := make([]Range, 0, len(windows))
	for _, w := range windows {
		pieces := []Range{w}
		for _, b := range booked {
			var next []Range
			for _, p := range pieces {
				next = append(next, cut(p, b)...)
			}
			pieces = next
		}
		free = append(free, pieces...)
	}
	sort.Slice(free, func(i, j int) bool { return free[i].Start < free[j].Start })
	return free
}

func cut(p, b Range) []Range {
	if b.End <= p.Start || b.Start >= p.End {
		return []Range{p}
	}
	var out []Range
	if b.Start > p.Start {
		out = append(out, Range{Start: p.Start, End: b.Start})
	}
	if b.End < p.End {
		out = append(out, Range{Start: b.End, End: p.End})
	}
	return out
}

// ValidDay checks a weekly schedule day_of_week.
func ValidDay(d int) error {
	if d < 0 || d > 6 {
		return ErrInvalidDay
	}
	return nil
}
