// Package timestamp implements the date-time value attached to every traffic and
// clone data point. A Timestamp keeps the exact text it was parsed from so that
// persisted records echo the source byte for byte, while the numeric fields give
// the calendar date used to name output files.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	perr "repotraffic/internal/platform/errors"

	json "github.com/goccy/go-json"
)

// clockLen is the width of the HH:MM:SS window that follows the T separator
const clockLen = 8

// Timestamp is a parsed view over a YYYY-MM-DDTHH:MM:SS<zone> string
type Timestamp struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
	Zone   string

	raw string
}

// Parse reads s into a Timestamp. The date half is split on '-', the time half
// is the fixed HH:MM:SS window after 'T' and anything past it is the zone suffix
func Parse(s string) (Timestamp, error) {
	date, clock, ok := strings.Cut(s, "T")
	if !ok {
		return Timestamp{}, perr.InvalidArgf("failed to parse date (%s): missing T separator", s)
	}

	year, month, day, err := parseDate(date)
	if err != nil {
		return Timestamp{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "failed to parse date (%s)", s)
	}
	hour, minute, second, zone, err := parseClock(clock)
	if err != nil {
		return Timestamp{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "failed to parse time (%s)", s)
	}

	return Timestamp{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
		Zone:   zone,
		raw:    s,
	}, nil
}

// MustParse is Parse for literals in tests and fixtures; panics on error
func MustParse(s string) Timestamp {
	ts, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// FromTime captures t in UTC with the canonical "Z" zone
func FromTime(t time.Time) Timestamp {
	u := t.UTC()
	return Timestamp{
		Year:   uint16(u.Year()),
		Month:  uint8(u.Month()),
		Day:    uint8(u.Day()),
		Hour:   uint8(u.Hour()),
		Minute: uint8(u.Minute()),
		Second: uint8(u.Second()),
		Zone:   "Z",
		raw:    u.Format("2006-01-02T15:04:05Z"),
	}
}

// NowUTC captures the current instant
func NowUTC() Timestamp { return FromTime(time.Now()) }

// DateKey returns the zero padded calendar date used as a file stem
func (t Timestamp) DateKey() string {
	return fmt.Sprintf("%d-%02d-%02d", t.Year, t.Month, t.Day)
}

// String returns the text the value was parsed from
func (t Timestamp) String() string { return t.raw }

// IsZero reports whether t was never parsed or captured
func (t Timestamp) IsZero() bool { return t == Timestamp{} }

// MarshalJSON emits the original text verbatim
func (t Timestamp) MarshalJSON() ([]byte, error) { return json.Marshal(t.raw) }

// UnmarshalJSON parses a JSON string field
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDecode, "timestamp must be a string")
	}
	ts, err := Parse(s)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDecode, "invalid timestamp")
	}
	*t = ts
	return nil
}

func parseDate(date string) (year uint16, month, day uint8, err error) {
	parts := strings.Split(date, "-")
	if len(parts) < 3 {
		return 0, 0, 0, fmt.Errorf("expected year-month-day, got %d components", len(parts))
	}
	y, err := component(parts[0], 16, 9999)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("year: %w", err)
	}
	m, err := component(parts[1], 8, 12)
	if err != nil || m == 0 {
		return 0, 0, 0, fmt.Errorf("month %q out of range", parts[1])
	}
	d, err := component(parts[2], 8, 31)
	if err != nil || d == 0 {
		return 0, 0, 0, fmt.Errorf("day %q out of range", parts[2])
	}
	return uint16(y), uint8(m), uint8(d), nil
}

func parseClock(clock string) (hour, minute, second uint8, zone string, err error) {
	if len(clock) < clockLen {
		return 0, 0, 0, "", fmt.Errorf("expected HH:MM:SS, got %q", clock)
	}
	parts := strings.Split(clock[:clockLen], ":")
	if len(parts) != 3 {
		return 0, 0, 0, "", fmt.Errorf("expected HH:MM:SS, got %q", clock[:clockLen])
	}
	limits := [3]uint64{23, 59, 59}
	var vals [3]uint8
	for i, p := range parts {
		v, cerr := component(p, 8, limits[i])
		if cerr != nil {
			return 0, 0, 0, "", cerr
		}
		vals[i] = uint8(v)
	}
	return vals[0], vals[1], vals[2], clock[clockLen:], nil
}

// component strips leading zeros (all zeros reads as 0) and parses an unsigned value <= limit
func component(s string, bits int, limit uint64) (uint64, error) {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	v, err := strconv.ParseUint(trimmed, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%q is not a non-negative integer", s)
	}
	if v > limit {
		return 0, fmt.Errorf("%q exceeds %d", s, limit)
	}
	return v, nil
}
