package schedule

import (
	"context"
	"fmt"
	"strings"
)

// ModeSunset 以当天日落时间为灯光基准
const ModeSunset = "sunset"

// ModeTime 以用户给定的 HH:MM:SS 为基准
const ModeTime = "time"

// SunsetSource resolves today's local sunset time.
type SunsetSource interface {
	Sunset(ctx context.Context) (TimeOfDay, error)
}

// Schedule is a resolved light schedule.
type Schedule struct {
	Mode     string    `json:"light_mode"`
	Base     TimeOfDay `json:"user_light"`
	Duration Duration  `json:"duration"`
	LightOff TimeOfDay `json:"light_time_off"`
}

// Resolver turns (light mode, duration) into an absolute light-off time.
type Resolver struct {
	sunset SunsetSource
}

func NewResolver(sunset SunsetSource) *Resolver {
	return &Resolver{sunset: sunset}
}

// Resolve parses the duration first so a malformed duration never costs an
// upstream sunset lookup.
func (r *Resolver) Resolve(ctx context.Context, lightMode, duration string) (Schedule, error) {
	d, err := ParseDuration(duration)
	if err != nil {
		return Schedule{}, err
	}

	mode, base, err := r.base(ctx, lightMode)
	if err != nil {
		return Schedule{}, err
	}

	return Schedule{
		Mode:     mode,
		Base:     base,
		Duration: d,
		LightOff: LightOffTime(base, d),
	}, nil
}

func (r *Resolver) base(ctx context.Context, lightMode string) (string, TimeOfDay, error) {
	if strings.EqualFold(strings.TrimSpace(lightMode), ModeSunset) {
		if r.sunset == nil {
			return "", 0, fmt.Errorf("sunset mode requested but no sunset source configured")
		}
		t, err := r.sunset.Sunset(ctx)
		if err != nil {
			return "", 0, fmt.Errorf("resolve sunset: %w", err)
		}
		return ModeSunset, t, nil
	}

	t, err := ParseTimeOfDay(lightMode)
	if err != nil {
		return "", 0, err
	}
	return ModeTime, t, nil
}

// LightOffTime adds d to base and keeps only the clock part, so 23:00:00 + 2h
// is 01:00:00. Whole days in d drop out.
func LightOffTime(base TimeOfDay, d Duration) TimeOfDay {
	return wrap(int(base) + d.dayOffset())
}
