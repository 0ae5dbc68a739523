package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDuration 时长字符串无法解析（如 "abc"、"30m1h"）
var ErrInvalidDuration = errors.New("invalid duration")

// <N>h<N>m<N>s, every segment optional, order fixed
var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// Duration is a light-schedule length as entered by the user ("1h30m").
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// ParseDuration parses strings such as "1h30m", "45s" or "2h5m10s".
// The empty string is a zero duration.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, nil
	}

	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var parts [3]int
	for i, raw := range m[1:] {
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		parts[i] = n
	}

	return Duration{Hours: parts[0], Minutes: parts[1], Seconds: parts[2]}, nil
}

// dayOffset 按天取模后的秒数，大数值不会溢出
func (d Duration) dayOffset() int {
	return (d.Hours%24)*3600 + (d.Minutes%(24*60))*60 + d.Seconds%secondsPerDay
}

// IsZero reports whether every segment is zero.
func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

func (d Duration) String() string {
	var b strings.Builder
	if d.Hours != 0 {
		fmt.Fprintf(&b, "%dh", d.Hours)
	}
	if d.Minutes != 0 {
		fmt.Fprintf(&b, "%dm", d.Minutes)
	}
	if d.Seconds != 0 || b.Len() == 0 {
		fmt.Fprintf(&b, "%ds", d.Seconds)
	}
	return b.String()
}
