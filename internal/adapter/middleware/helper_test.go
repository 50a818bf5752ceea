package middleware

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint64
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"007", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := parseUserID(tc.raw)
		if !tc.ok {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestRequestID(t *testing.T) {
	accepted := []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88",
		strings.Repeat("a", 32),
	}
	for _, raw := range accepted {
		id, ok := requestID(" " + raw + " ")
		assert.True(t, ok, raw)
		assert.Equal(t, raw, id)
	}

	refused := []string{
		"",
		"NOT-VALID",
		strings.Repeat("A", 32),
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880",
		strings.Repeat("z", 32),
		"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88",
		"3f9a6a1b-3d54-4fbe-cb3a-6b3e8d6b2c88",
		"urn:uuid:3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		"{3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88}",
	}
	for _, raw := range refused {
		_, ok := requestID(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseRequestAt(t *testing.T) {
	sec := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC).Unix()
	ms := time.Date(2026, 3, 14, 9, 30, 0, 250e6, time.UTC).UnixMilli()

	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"epoch seconds", strconv.FormatInt(sec, 10), time.Unix(sec, 0).UTC()},
		{"epoch millis", strconv.FormatInt(ms, 10), time.UnixMilli(ms).UTC()},
		{"rfc3339 with offset", "2026-03-14T16:30:00+07:00", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
		{"rfc3339 zulu", "2026-03-14T09:30:00Z", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
		{"rfc3339 nano", "2026-03-14T09:30:00.125Z", time.Date(2026, 3, 14, 9, 30, 0, 125e6, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseRequestAt(tc.raw)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v want %v", got, tc.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, raw := range []string{"", "not-a-time", "2026-03-14T09:30:00", "1736123456abc"} {
		_, err := parseRequestAt(raw)
		assert.Error(t, err, raw)
	}
}

func TestWithinSkew(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	assert.True(t, withinSkew(now, now, maxClockSkew))
	assert.True(t, withinSkew(now.Add(-maxClockSkew), now, maxClockSkew))
	assert.True(t, withinSkew(now.Add(maxClockSkew), now, maxClockSkew))
	assert.False(t, withinSkew(now.Add(-maxClockSkew-time.Second), now, maxClockSkew))
	assert.False(t, withinSkew(now.Add(maxClockSkew+time.Second), now, maxClockSkew))
}
