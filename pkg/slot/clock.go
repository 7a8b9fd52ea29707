package slot

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Clock is a wall-clock time of day stored as minutes since midnight.
type Clock int

const minutesPerDay = 24 * 60

// ParseClock accepts "HH:MM" and "HH:MM:SS" (seconds are dropped).
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
}

func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) Valid() bool { return c >= 0 && c < minutesPerDay }

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidClock, b)
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Scan reads a postgres TIME column. lib/pq hands TIME back as text, other
// drivers as time.Time.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = Clock(v.Hour()*60 + v.Minute())
		return nil
	case string:
		p, err := ParseClock(v)
		if err != nil {
			return err
		}
		*c = p
		return nil
	case []byte:
		return c.Scan(string(v))
	case nil:
		return fmt.Errorf("%w: NULL", ErrInvalidClock)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidClock, src)
	}
}

func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}
