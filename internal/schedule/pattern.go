// Package schedule answers calendar questions about weekly habit patterns:
// whether a day is scheduled and on which day the n-th occurrence falls.
//
// Weekday indexing is fixed across the module: Monday=0 ... Sunday=6.
package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DaysPerWeek is the width of a frequency pattern
const DaysPerWeek = 7

// Pattern selects the weekdays on which a habit is scheduled, indexed Monday=0 ... Sunday=6.
type Pattern [DaysPerWeek]bool

var weekdayNames = [DaysPerWeek]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

var weekdayAliases = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// Daily schedules every day of the week.
var Daily = Pattern{true, true, true, true, true, true, true}

// Weekdays schedules Monday through Friday.
var Weekdays = Pattern{true, true, true, true, true, false, false}

// Index maps a time.Weekday onto the Monday-first pattern index.
func Index(wd time.Weekday) int {
	return (int(wd) + 6) % DaysPerWeek
}

// IsScheduled reports whether the date's weekday is selected by the pattern.
func (p Pattern) IsScheduled(date time.Time) bool {
	return p[Index(date.Weekday())]
}

// Count returns the number of scheduled weekdays.
func (p Pattern) Count() int {
	n := 0
	for _, on := range p {
		if on {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no weekday is scheduled.
func (p Pattern) IsEmpty() bool {
	return p.Count() == 0
}

// Codes returns the scheduled weekdays as codes 1-7 (1=Monday ... 7=Sunday).
func (p Pattern) Codes() []int {
	codes := make([]int, 0, DaysPerWeek)
	for i, on := range p {
		if on {
			codes = append(codes, i+1)
		}
	}
	return codes
}

// PatternFromCodes builds a pattern from weekday codes 1-7 (1=Monday ... 7=Sunday).
// Duplicate codes are tolerated.
func PatternFromCodes(codes []int) (Pattern, error) {
	var p Pattern
	for _, c := range codes {
		if c < 1 || c > DaysPerWeek {
			return Pattern{}, fmt.Errorf("invalid weekday code %d (expected 1-7)", c)
		}
		p[c-1] = true
	}
	return p, nil
}

// ParsePattern parses a comma-separated list of weekday names or codes.
// The keywords "daily" and "weekdays" are accepted as shorthands.
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "daily", "everyday":
		return Daily, nil
	case "weekdays":
		return Weekdays, nil
	case "weekends":
		return Pattern{false, false, false, false, false, true, true}, nil
	case "":
		return Pattern{}, fmt.Errorf("empty pattern")
	}

	var p Pattern
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if idx, ok := weekdayAliases[part]; ok {
			p[idx] = true
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil || code < 1 || code > DaysPerWeek {
			return Pattern{}, fmt.Errorf("invalid weekday: %s", part)
		}
		p[code-1] = true
	}
	return p, nil
}

// String renders the pattern as a comma-separated list of short weekday names.
func (p Pattern) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekdays:
		return "weekdays"
	}
	var days []string
	for i, on := range p {
		if on {
			days = append(days, weekdayNames[i])
		}
	}
	if len(days) == 0 {
		return "never"
	}
	return strings.Join(days, ",")
}

// MarshalJSON encodes the pattern as a list of weekday codes.
func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Codes())
}

// UnmarshalJSON decodes a list of weekday codes.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var codes []int
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	parsed, err := PatternFromCodes(codes)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML encodes the pattern as a list of weekday codes.
func (p Pattern) MarshalYAML() (interface{}, error) {
	return p.Codes(), nil
}

// UnmarshalYAML decodes a list of weekday codes.
func (p *Pattern) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var codes []int
	if err := unmarshal(&codes); err != nil {
		return err
	}
	parsed, err := PatternFromCodes(codes)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value stores the pattern as a JSON array of weekday codes.
func (p Pattern) Value() (driver.Value, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON array of weekday codes.
func (p *Pattern) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Pattern{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Pattern", src)
	}
	if len(raw) == 0 {
		*p = Pattern{}
		return nil
	}
	return p.UnmarshalJSON(raw)
}
