package calculator

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// TimestampLayout is the broker's "YYYYMMDD HH:MM:SS" timestamp format.
const TimestampLayout = "20060102 15:04:05"

const dateLayout = "20060102"

// DefaultLookback is used when neither a day count nor a start is given.
const DefaultLookback = 30 * 24 * time.Hour

// ErrParse is returned for timestamps that match none of the accepted layouts.
var ErrParse = errors.New("malformed timestamp")

// Unit is a duration unit of the broker's historical-data grammar.
type Unit string

const (
	Years   Unit = "Y"
	Months  Unit = "M"
	Days    Unit = "D"
	Hours   Unit = "H"
	Minutes Unit = "min"
	Seconds Unit = "S"
)

// Duration is a lookback window in the broker's lossy "<n> <unit>" encoding.
type Duration struct {
	N    int
	Unit Unit
}

func (d Duration) String() string {
	return fmt.Sprintf("%d %s", d.N, d.Unit)
}

// FromDays maps a day count to years, months or days.
func FromDays(days int) Duration {
	if days < 0 {
		days = 0
	}
	switch {
	case days > 365:
		return Duration{N: days / 365, Unit: Years}
	case days > 30:
		return Duration{N: days / 30, Unit: Months}
	default:
		return Duration{N: days, Unit: Days}
	}
}

// FromSpan maps the elapsed time between start and end to the first bucket
// that fits: years, months, days, hours, minutes, seconds.
func FromSpan(start, end time.Time) Duration {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return Duration{N: 0, Unit: Seconds}
	}
	days := int(elapsed / (24 * time.Hour))
	if days > 0 {
		return FromDays(days)
	}
	seconds := int(elapsed / time.Second)
	switch {
	case seconds > 3600:
		return Duration{N: seconds / 3600, Unit: Hours}
	case seconds > 60:
		return Duration{N: seconds / 60, Unit: Minutes}
	default:
		return Duration{N: seconds, Unit: Seconds}
	}
}

// ParseTimestamp reads s in loc using the broker layout or a bare date.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{TimestampLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrParse, "%q (want %q)", s, TimestampLayout)
}

// Lookback selects the duration for a run. A day count wins when set;
// otherwise the span from start (or now minus DefaultLookback) to now is used.
func Lookback(days *int, start string, now time.Time, loc *time.Location) (Duration, error) {
	if days != nil {
		return FromDays(*days), nil
	}
	from := now.Add(-DefaultLookback)
	if start != "" {
		t, err := ParseTimestamp(start, loc)
		if err != nil {
			return Duration{}, err
		}
		from = t
	}
	return FromSpan(from, now), nil
}
