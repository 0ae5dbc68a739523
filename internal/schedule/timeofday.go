package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ErrInvalidTimeOfDay 时间字符串不是 HH:MM:SS
var ErrInvalidTimeOfDay = errors.New("invalid time of day")

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time without a date, stored as seconds since midnight.
// It always lies in [0, 86400) and serializes as "HH:MM:SS".
type TimeOfDay int

// NewTimeOfDay normalizes h:m:s into a TimeOfDay, wrapping past midnight.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return wrap(hour*3600 + minute*60 + second)
}

// FromTime takes the clock part of t in t's own location.
func FromTime(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return NewTimeOfDay(h, m, s)
}

// ParseTimeOfDay accepts "15:04:05" and "15:04".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

// ParseOffset parses a signed "HH:MM:SS" offset, e.g. "06:00:00" or "-05:00:00".
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("%w: offset %q", ErrInvalidTimeOfDay, s)
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("%w: offset %q", ErrInvalidTimeOfDay, s)
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
	return sign * d, nil
}

func wrap(seconds int) TimeOfDay {
	seconds %= secondsPerDay
	if seconds < 0 {
		seconds += secondsPerDay
	}
	return TimeOfDay(seconds)
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// Add shifts t by d and wraps around midnight.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return wrap(int(t) + int(d/time.Second))
}

// Within reports whether t lies in [start, end). A window with end before
// start spans midnight; start == end is an empty window.
func (t TimeOfDay) Within(start, end TimeOfDay) bool {
	if start <= end {
		return t >= start && t < end
	}
	return t >= start || t < end
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, string(data))
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalBSONValue keeps the mongo representation identical to the JSON one.
func (t TimeOfDay) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.String())
}

func (t *TimeOfDay) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: typ, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("%w: bson type %s", ErrInvalidTimeOfDay, typ)
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
