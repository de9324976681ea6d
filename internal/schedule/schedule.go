// Package schedule models the hours of the day (UTC) during which the light
// should be on.
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const HoursPerDay = 24

// Range is an inclusive span of hours.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (r Range) String() string {
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// Schedule is a set of active hours stored as a bitmask. It is a plain value:
// copies never share state, so replacing one is a single assignment.
type Schedule struct {
	mask uint32
}

func Empty() Schedule {
	return Schedule{}
}

// Default is the fixed policy the light ran before hours were configurable:
// on through the early half of the UTC day and again from 20:00.
func Default() Schedule {
	s, _ := Ranges(Range{0, 11}, Range{20, 23})
	return s
}

func Hours(hours ...int) (Schedule, error) {
	var s Schedule
	for _, h := range hours {
		if err := checkHour(h); err != nil {
			return Empty(), err
		}
		s.mask |= 1 << uint(h)
	}
	return s, nil
}

func Ranges(ranges ...Range) (Schedule, error) {
	var s Schedule
	for _, r := range ranges {
		if err := checkHour(r.From); err != nil {
			return Empty(), err
		}
		if err := checkHour(r.To); err != nil {
			return Empty(), err
		}
		if r.From > r.To {
			return Empty(), fmt.Errorf("range %d-%d is reversed", r.From, r.To)
		}
		for h := r.From; h <= r.To; h++ {
			s.mask |= 1 << uint(h)
		}
	}
	return s, nil
}

func checkHour(h int) error {
	if h < 0 || h >= HoursPerDay {
		return fmt.Errorf("hour %d out of range 0-23", h)
	}
	return nil
}

// Parse reads a comma separated list of hours and inclusive ranges, e.g.
// "0-11,20,21,22-23". Blank tokens are skipped; "" is the empty schedule.
func Parse(s string) (Schedule, error) {
	var out Schedule
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		from, to, isRange := strings.Cut(tok, "-")
		if !isRange {
			h, err := strconv.Atoi(tok)
			if err != nil {
				return Empty(), fmt.Errorf("invalid hour %q", tok)
			}
			part, err := Hours(h)
			if err != nil {
				return Empty(), err
			}
			out.mask |= part.mask
			continue
		}

		a, errA := strconv.Atoi(strings.TrimSpace(from))
		b, errB := strconv.Atoi(strings.TrimSpace(to))
		if errA != nil || errB != nil {
			return Empty(), fmt.Errorf("invalid range %q", tok)
		}
		part, err := Ranges(Range{a, b})
		if err != nil {
			return Empty(), err
		}
		out.mask |= part.mask
	}
	return out, nil
}

// ParseOrEmpty is Parse for configuration input: a malformed value is logged
// and yields the empty schedule, which keeps the light off.
func ParseOrEmpty(s string) Schedule {
	sched, err := Parse(s)
	if err != nil {
		log.Warn().Err(err).Str("hours", s).Msg("Malformed light hours, using empty schedule")
		return Empty()
	}
	return sched
}

// Active reports whether the light should be on during hour h.
func (s Schedule) Active(h int) bool {
	if h < 0 || h >= HoursPerDay {
		return false
	}
	return s.mask&(1<<uint(h)) != 0
}

func (s Schedule) IsEmpty() bool {
	return s.mask == 0
}

func (s Schedule) Hours() []int {
	hours := []int{}
	for h := 0; h < HoursPerDay; h++ {
		if s.Active(h) {
			hours = append(hours, h)
		}
	}
	return hours
}

// RangesOf collapses the schedule into maximal inclusive ranges.
func (s Schedule) RangesOf() []Range {
	ranges := []Range{}
	for h := 0; h < HoursPerDay; h++ {
		if !s.Active(h) {
			continue
		}
		if n := len(ranges); n > 0 && ranges[n-1].To == h-1 {
			ranges[n-1].To = h
			continue
		}
		ranges = append(ranges, Range{From: h, To: h})
	}
	return ranges
}

// String is the canonical form accepted by Parse, e.g. "0-11,20-23".
func (s Schedule) String() string {
	parts := make([]string, 0, HoursPerDay)
	for _, r := range s.RangesOf() {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}

// HourList is the comma separated hour list the settings form stores.
func (s Schedule) HourList() string {
	parts := make([]string, 0, HoursPerDay)
	for _, h := range s.Hours() {
		parts = append(parts, strconv.Itoa(h))
	}
	return strings.Join(parts, ",")
}
