package schedule

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
)

// TimeLayout is the UTC instant format used everywhere: second precision
// with an explicit Z marker. Lexicographic order on it matches time order.
const TimeLayout = "2006-01-02T15:04:05Z"

const localLayout = "2006-01-02T15:04:05"

var ErrAutopostingDisabled = errors.New("autoposting not enabled for this account")

// All local wall-clock interpretation happens in one fixed timezone,
// matching the accounts' configured downtime windows.
var localZone = mustLoadZone("Europe/Berlin")

func mustLoadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load timezone %s: %v", name, err))
	}
	return loc
}

// ParseInstant parses an ISO-8601 instant. Strings with a Z suffix or an
// explicit offset are taken as written; naive strings are assumed UTC.
func ParseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, err)
	}
	return t, nil
}

// FormatUTC renders an instant in the canonical queue/storage format.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NormalizeInstant re-renders an instant string in the canonical format so
// that queue entries added and removed by this service always compare equal.
// Unparseable input is returned unchanged.
func NormalizeInstant(s string) string {
	t, err := ParseInstant(s)
	if err != nil {
		return s
	}
	return FormatUTC(t)
}

// LocalToUTC converts a naive local wall-clock string to a UTC instant,
// applying the zone's seasonal offset for that date.
func LocalToUTC(local string) (string, error) {
	t, err := time.ParseInLocation(localLayout, strings.TrimSuffix(local, "Z"), localZone)
	if err != nil {
		return "", fmt.Errorf("parse local time %q: %w", local, err)
	}
	return FormatUTC(t), nil
}

// UTCToLocal converts a UTC instant to the naive local wall-clock form.
func UTCToLocal(utc string) (string, error) {
	t, err := ParseInstant(utc)
	if err != nil {
		return "", err
	}
	return t.In(localZone).Format(localLayout), nil
}

// ComputeNextUploadTime calculates when the account's next automated post
// should go out.
//
// Anchor: the latest pending scheduled instant, else the last upload time,
// else now; clamped forward to now. The base interval spreads the slowest
// platform's daily quota over the account's active hours, with a ±20%
// jitter so posting cadence looks human. A candidate landing inside the
// configured downtime window is pushed past the window's end plus a random
// 5-30 minute delay.
func ComputeNextUploadTime(acc *models.Account, now time.Time) (string, error) {
	policy := acc.Autoposting
	if !policy.Enabled {
		return "", ErrAutopostingDisabled
	}

	now = now.In(localZone)
	base := now

	if len(acc.ScheduledTimes) > 0 {
		var latest time.Time
		for _, s := range acc.ScheduledTimes {
			t, err := ParseInstant(s)
			if err != nil {
				continue
			}
			if t.After(latest) {
				latest = t
			}
		}
		if !latest.IsZero() {
			base = latest.In(localZone)
		}
	} else if acc.LastUploadTime != "" {
		if t, err := ParseInstant(acc.LastUploadTime); err == nil {
			base = t.In(localZone)
		}
	}

	if base.Before(now) {
		base = now
	}

	totalDailyPosts := minDailyPosts(policy.DailyPosts)

	downtimeHours := policy.DowntimeHours
	if downtimeHours <= 0 {
		downtimeHours = 8
	}
	activeMinutes := float64((24 - downtimeHours) * 60)
	minutesPerPost := activeMinutes / float64(totalDailyPosts)

	// Top-level rand, not a shared *rand.Rand: upload handlers call this
	// from concurrent requests.
	jitter := 0.8 + rand.Float64()*0.4
	next := base.Add(time.Duration(minutesPerPost * jitter * float64(time.Minute)))

	if policy.DowntimeStart != "" && policy.DowntimeEnd != "" {
		next = avoidDowntime(next, policy.DowntimeStart, policy.DowntimeEnd)
	}

	return FormatUTC(next), nil
}

// The slowest platform governs cadence.
func minDailyPosts(daily map[string]int) int {
	if len(daily) == 0 {
		return 10
	}
	min := 0
	for _, n := range daily {
		if min == 0 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return 10
	}
	return min
}

// avoidDowntime pushes t past the downtime window if it falls inside it.
// Both the window on t's own date and the overnight window that started the
// previous day are checked, so windows wrapping midnight are handled.
func avoidDowntime(t time.Time, startClock, endClock string) time.Time {
	startHour, startMin, err := parseClock(startClock)
	if err != nil {
		return t
	}
	endHour, endMin, err := parseClock(endClock)
	if err != nil {
		return t
	}

	t = t.In(localZone)
	y, m, d := t.Date()
	windowStart := time.Date(y, m, d, startHour, startMin, 0, 0, localZone)
	windowEnd := time.Date(y, m, d, endHour, endMin, 0, 0, localZone)
	if windowEnd.Before(windowStart) {
		windowEnd = windowEnd.Add(24 * time.Hour)
	}

	if !t.Before(windowStart) && t.Before(windowEnd) {
		return windowEnd.Add(escapeDelay())
	}

	if t.Before(windowStart) {
		prevStart := windowStart.Add(-24 * time.Hour)
		prevEnd := windowEnd.Add(-24 * time.Hour)
		if !t.Before(prevStart) && t.Before(prevEnd) {
			return prevEnd.Add(escapeDelay())
		}
	}

	return t
}

// Uniform 5-30 minutes, so posts right after downtime do not cluster at the
// exact window boundary.
func escapeDelay() time.Duration {
	return time.Duration(5+rand.Intn(26)) * time.Minute
}

func parseClock(s string) (hour, min int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour, min, nil
}

// GenerateDowntimeWindow picks a randomized quiet-hours window of the given
// duration, centered near 02:00 local with up to an hour of drift and
// minute-level jitter on both bounds. Bounds wrap modulo 24 hours.
func GenerateDowntimeWindow(durationHours int) (start, end string) {
	center := 2.0 + (rand.Float64()*2 - 1)
	half := float64(durationHours) / 2

	startHour := math.Mod(center-half+24, 24)
	endHour := math.Mod(center+half+24, 24)

	start = fmt.Sprintf("%02d:%02d", int(startHour), rand.Intn(60))
	end = fmt.Sprintf("%02d:%02d", int(endHour), rand.Intn(60))
	return start, end
}
