package helpers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// absoluteLayouts are tried in order; layouts without a zone are read as UTC.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006年1月2日 15:04",
	"2006年1月2日",
}

var (
	relativeJapanese = regexp.MustCompile(`^(\d+)\s*(秒|分|時間|日|週間|ヶ月|か月)前$`)
	relativeEnglish  = regexp.MustCompile(`^(\d+)\s*(second|minute|hour|day|week|month)s?\s+ago$`)
)

var relativeUnits = map[string]time.Duration{
	"秒":      time.Second,
	"分":      time.Minute,
	"時間":     time.Hour,
	"日":      24 * time.Hour,
	"週間":     7 * 24 * time.Hour,
	"ヶ月":     30 * 24 * time.Hour,
	"か月":     30 * 24 * time.Hour,
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
}

// NormalizeTimestamp turns the date strings found in community content into an
// absolute UTC time. It accepts ISO-8601 and common calendar layouts as well as
// relative display strings ("2時間前", "たった今", "3 days ago"), which are
// resolved against now. Callers normalize when a record is written.
func NormalizeTimestamp(raw string, now time.Time) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	for _, layout := range absoluteLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}

	lower := strings.ToLower(value)
	switch lower {
	case "たった今", "今", "just now", "now":
		return now.UTC(), nil
	case "昨日", "yesterday":
		return now.Add(-24 * time.Hour).UTC(), nil
	}

	for _, pattern := range []*regexp.Regexp{relativeJapanese, relativeEnglish} {
		match := pattern.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		amount, err := strconv.Atoi(match[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative amount in %q: %w", raw, err)
		}
		return now.Add(-time.Duration(amount) * relativeUnits[match[2]]).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
