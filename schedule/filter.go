// Package schedule maps raw backend playlist rows to creatives and filters them for current eligibility.
package schedule

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/log"
)

// Row is one raw playlist entry as delivered by the backend or the push channel.
// Field names vary between backend versions, so rows are kept untyped and
// resolved through aliases.
type Row = map[string]any

// Field aliases observed across backend versions, in resolution order.
var (
	urlAliases      = []string{"creative_url", "url", "media_url", "creative"}
	typeAliases     = []string{"creative_type", "type", "media_type"}
	durationAliases = []string{"media_duration", "duration", "media_duration_sec"}
)

// secondsPerDay is the upper bound for intraday windows; an item with a start
// but no end stays eligible until end of day.
const secondsPerDay = 86400

// FromRows maps raw rows to creatives and returns the subset eligible at the given time.
func FromRows(rows []Row, now time.Time) []creative.Item {
	items := make([]creative.Item, 0, len(rows))
	for _, row := range rows {
		if item, ok := MapRow(row); ok {
			items = append(items, item)
		}
	}
	return Filter(items, now)
}

// MapRow converts one raw row into a creative Item.
// Rows without a resolvable URL are rejected outright: the active playlist
// never contains an item that cannot be displayed.
func MapRow(row Row) (creative.Item, bool) {
	rawURL := stringField(row, urlAliases...)
	if rawURL == "" {
		return creative.Item{}, false
	}

	item := creative.Item{
		ID:            int(numberField(row, "id")),
		Slot:          int(numberField(row, "slot")),
		CreativeType:  stringField(row, typeAliases...),
		CreativeURL:   rawURL,
		StartTime:     stringField(row, "start_time"),
		EndTime:       stringField(row, "end_time"),
		CmpStart:      stringField(row, "cmp_start_date_time"),
		CmpEnd:        stringField(row, "cmp_end_date_time"),
		DeviceID:      int(numberField(row, "device_id")),
		ScreenID:      int(numberField(row, "screen_id")),
		MediaID:       int(numberField(row, "media_id")),
		CmpID:         int(numberField(row, "cmp_id")),
		LoopSlot:      int(numberField(row, "loopslot")),
		CreatedAt:     stringField(row, "created_at"),
		UpdatedAt:     stringField(row, "updated_at"),
		MediaDuration: resolveDuration(row),
	}

	if v, ok := optionalNumber(row, "start_time_sec"); ok {
		item.StartTimeSec = &v
	}
	if v, ok := optionalNumber(row, "end_time_sec"); ok {
		item.EndTimeSec = &v
	}

	return item, true
}

// Filter returns the subset of items eligible for display at the given time.
// Output order follows input order; the result is always a subset of the input.
func Filter(items []creative.Item, now time.Time) []creative.Item {
	return lo.Filter(items, func(item creative.Item, _ int) bool {
		return Eligible(item, now)
	})
}

// Eligible reports whether a single item may display at the given time.
func Eligible(item creative.Item, now time.Time) bool {
	if item.CreativeURL == "" {
		return false
	}
	return campaignEligible(item, now) && intradayEligible(item, now)
}

// campaignEligible checks the ISO campaign validity window.
// Unparseable timestamps fail open: a malformed date must not hide paid content.
func campaignEligible(item creative.Item, now time.Time) bool {
	if item.CmpStart == "" && item.CmpEnd == "" {
		return true
	}

	if item.CmpStart != "" {
		start, err := parseTimestamp(item.CmpStart)
		if err != nil {
			log.Warnf("unparseable campaign start %q for creative %d, treating as eligible", item.CmpStart, item.ID)
			return true
		}
		if now.Before(start) {
			return false
		}
	}

	if item.CmpEnd != "" {
		end, err := parseTimestamp(item.CmpEnd)
		if err != nil {
			log.Warnf("unparseable campaign end %q for creative %d, treating as eligible", item.CmpEnd, item.ID)
			return true
		}
		if now.After(end) {
			return false
		}
	}

	return true
}

// intradayEligible checks the time-of-day window, independent of date.
func intradayEligible(item creative.Item, now time.Time) bool {
	if item.StartTime == "" && item.EndTime == "" {
		return true
	}

	current := float64(now.Hour()*3600 + now.Minute()*60 + now.Second())

	start := 0.0
	if item.StartTime != "" {
		start = parseTimeOfDay(item.StartTime)
	}

	end := float64(secondsPerDay)
	if item.EndTime != "" {
		end = parseTimeOfDay(item.EndTime)
	}

	return current >= start && current <= end
}

// resolveDuration computes the display duration in seconds for a row:
// the explicit numeric duration when present and finite, else the positive
// difference of the intraday end and start times, else the configured fallback.
func resolveDuration(row Row) float64 {
	if v, ok := optionalNumber(row, durationAliases...); ok && !math.IsInf(v, 0) && !math.IsNaN(v) && v > 0 {
		return v
	}

	start, end := stringField(row, "start_time"), stringField(row, "end_time")
	if start != "" && end != "" {
		if diff := parseTimeOfDay(end) - parseTimeOfDay(start); diff > 0 {
			return diff
		}
	}

	return fallbackDuration()
}

func fallbackDuration() float64 {
	if v := viper.GetFloat64(key.PlaybackFallbackDuration); v > 0 {
		return v
	}
	return 10
}

// parseTimeOfDay converts a HH:MM:SS or MM:SS string to seconds since midnight.
// Invalid input yields 0, mirroring the tolerant behavior of the backend clients.
func parseTimeOfDay(value string) float64 {
	parts := strings.Split(value, ":")

	nums := make([]float64, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Warnf("invalid time format: %q", value)
			return 0
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	default:
		log.Warnf("invalid time format: %q", value)
		return 0
	}
}

// timestampLayouts covers the ISO shapes the backend has been observed to emit.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}

// stringField returns the first non-empty string value among the aliased keys.
func stringField(row Row, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// numberField returns the first numeric value among the aliased keys, or 0.
func numberField(row Row, keys ...string) float64 {
	v, _ := optionalNumber(row, keys...)
	return v
}

// optionalNumber resolves a numeric field that may arrive as a JSON number,
// a json.Number, an integer, or a numeric string.
func optionalNumber(row Row, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
