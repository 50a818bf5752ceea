package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderUserID    = "Ax-User-Id"
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
)

// parseUserID accepts a positive decimal user id.
func parseUserID(raw string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", HeaderUserID)
	}
	return n, nil
}

// requestID normalises an Ax-Request-Id. Clients send either a dashed RFC 4122
// uuid (versions 1 to 5) or 32 bare hex digits, always lowercase.
func requestID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw != strings.ToLower(raw) {
		return "", false
	}
	switch len(raw) {
	case 32:
		if _, err := uuid.Parse(raw); err != nil {
			return "", false
		}
		return raw, true
	case 36:
		id, err := uuid.Parse(raw)
		if err != nil || id.Variant() != uuid.RFC4122 || id.Version() < 1 || id.Version() > 5 {
			return "", false
		}
		return raw, true
	}
	return "", false
}

// epochMillisFloor separates epoch seconds from epoch milliseconds.
const epochMillisFloor = 1e12

var requestAtLayouts = []string{time.RFC3339Nano, time.RFC3339}

// parseRequestAt reads Ax-Request-At as epoch seconds, epoch milliseconds or
// an RFC3339 timestamp carrying a zone. Zoneless timestamps are refused.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing %s", HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > epochMillisFloor {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range requestAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be epoch seconds, epoch milliseconds or RFC3339 with a zone", HeaderRequestAt)
}

// withinSkew reports whether at lies inside ±skew of now.
func withinSkew(at, now time.Time, skew time.Duration) bool {
	return !at.Before(now.Add(-skew)) && !at.After(now.Add(skew))
}
