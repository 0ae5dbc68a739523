package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want Duration
	}{
		{"1h30m", Duration{Hours: 1, Minutes: 30}},
		{"", Duration{}},
		{"45s", Duration{Seconds: 45}},
		{"2h", Duration{Hours: 2}},
		{"1h2m3s", Duration{Hours: 1, Minutes: 2, Seconds: 3}},
		{"90m", Duration{Minutes: 90}},
		{"  3m ", Duration{Minutes: 3}},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, in := range []string{"abc", "30m1h", "1d", "h", "1.5h", "-1h"} {
		_, err := ParseDuration(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrInvalidDuration), in)
	}
}

func TestDuration_DayOffset(t *testing.T) {
	d := Duration{Hours: 1, Minutes: 30, Seconds: 5}
	assert.Equal(t, 5405, d.dayOffset())
	assert.Equal(t, 0, Duration{Hours: 48}.dayOffset())
	assert.Equal(t, "1h30m5s", d.String())
	assert.Equal(t, "0s", Duration{}.String())
	assert.True(t, Duration{}.IsZero())
}
