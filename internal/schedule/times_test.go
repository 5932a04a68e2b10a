package schedule

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
)

func TestNormalizeInstant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "2025-06-01T10:00:00Z", "2025-06-01T10:00:00Z"},
		{"naive assumed utc", "2025-06-01T10:00:00", "2025-06-01T10:00:00Z"},
		{"explicit offset", "2025-06-01T12:00:00+02:00", "2025-06-01T10:00:00Z"},
		{"unparseable passes through", "not-a-time", "not-a-time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeInstant(tt.input); got != tt.want {
				t.Errorf("NormalizeInstant(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocalToUTCRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		local string
		utc   string
	}{
		{"summer offset", "2025-06-01T12:00:00", "2025-06-01T10:00:00Z"},
		{"winter offset", "2025-01-15T12:00:00", "2025-01-15T11:00:00Z"},
		{"trailing z stripped", "2025-06-01T12:00:00Z", "2025-06-01T10:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalToUTC(tt.local)
			if err != nil {
				t.Fatalf("LocalToUTC(%q): %v", tt.local, err)
			}
			if got != tt.utc {
				t.Errorf("LocalToUTC(%q) = %q, want %q", tt.local, got, tt.utc)
			}

			back, err := UTCToLocal(got)
			if err != nil {
				t.Fatalf("UTCToLocal(%q): %v", got, err)
			}
			want := strings.TrimSuffix(tt.local, "Z")
			if back != want {
				t.Errorf("round trip of %q = %q, want %q", tt.local, back, want)
			}
		})
	}
}

func TestComputeNextUploadTimeDisabled(t *testing.T) {
	acc := &models.Account{
		Autoposting: models.AutopostingPolicy{Enabled: false},
	}
	_, err := ComputeNextUploadTime(acc, time.Now())
	if !errors.Is(err, ErrAutopostingDisabled) {
		t.Fatalf("expected ErrAutopostingDisabled, got %v", err)
	}
}

func TestComputeNextUploadTimeStrictlyFuture(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	acc := &models.Account{
		Autoposting: models.AutopostingPolicy{Enabled: true},
	}

	for i := 0; i < 200; i++ {
		got, err := ComputeNextUploadTime(acc, now)
		if err != nil {
			t.Fatalf("ComputeNextUploadTime: %v", err)
		}
		next, err := ParseInstant(got)
		if err != nil {
			t.Fatalf("result %q not parseable: %v", got, err)
		}
		if !next.After(now) {
			t.Fatalf("next %v not after now %v", next, now)
		}
	}
}

func TestComputeNextUploadTimeIntervalBounds(t *testing.T) {
	// 10 posts/day over 16 active hours is a 96 minute base interval;
	// jitter keeps the result within 76.8 to 115.2 minutes of the anchor.
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	acc := &models.Account{
		LastUploadTime: "2025-06-01T10:00:00Z",
		Autoposting: models.AutopostingPolicy{
			Enabled:       true,
			DailyPosts:    map[string]int{"tiktok": 10},
			DowntimeHours: 8,
		},
	}

	lo := now.Add(time.Duration(96*0.8*float64(time.Minute)) - time.Second)
	hi := now.Add(time.Duration(96*1.2*float64(time.Minute)) + time.Second)

	for i := 0; i < 200; i++ {
		got, err := ComputeNextUploadTime(acc, now)
		if err != nil {
			t.Fatalf("ComputeNextUploadTime: %v", err)
		}
		next, _ := ParseInstant(got)
		if next.Before(lo) || next.After(hi) {
			t.Fatalf("next %v outside jitter bounds [%v, %v]", next, lo, hi)
		}
	}
}

func TestComputeNextUploadTimeSlowestPlatformGoverns(t *testing.T) {
	// Two posts/day on the slowest platform over 16 active hours means at
	// least 6.4 hours to the next slot even at minimum jitter.
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	acc := &models.Account{
		Autoposting: models.AutopostingPolicy{
			Enabled:       true,
			DailyPosts:    map[string]int{"tiktok": 12, "instagram": 2},
			DowntimeHours: 8,
		},
	}

	for i := 0; i < 100; i++ {
		got, err := ComputeNextUploadTime(acc, now)
		if err != nil {
			t.Fatalf("ComputeNextUploadTime: %v", err)
		}
		next, _ := ParseInstant(got)
		if next.Sub(now) < 6*time.Hour {
			t.Fatalf("interval %v too short for 2 posts/day", next.Sub(now))
		}
	}
}

func TestComputeNextUploadTimeAnchorsOnLatestPending(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	acc := &models.Account{
		LastUploadTime: "2025-06-01T09:00:00Z",
		ScheduledTimes: []string{
			"2025-06-01T11:00:00Z",
			"2025-06-01T14:00:00Z",
			"2025-06-01T12:30:00Z",
		},
		Autoposting: models.AutopostingPolicy{
			Enabled:    true,
			DailyPosts: map[string]int{"tiktok": 10},
		},
	}

	anchor := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		got, err := ComputeNextUploadTime(acc, now)
		if err != nil {
			t.Fatalf("ComputeNextUploadTime: %v", err)
		}
		next, _ := ParseInstant(got)
		if !next.After(anchor) {
			t.Fatalf("next %v not after queue tail %v", next, anchor)
		}
	}
}

func TestComputeNextUploadTimeAvoidsDowntime(t *testing.T) {
	// 23:30 local anchor with a short interval lands inside the overnight
	// window; result must clear 06:30 local plus the escape delay.
	localAnchor := time.Date(2025, 6, 1, 23, 30, 0, 0, localZone)
	acc := &models.Account{
		LastUploadTime: FormatUTC(localAnchor),
		Autoposting: models.AutopostingPolicy{
			Enabled:       true,
			DailyPosts:    map[string]int{"tiktok": 48},
			DowntimeStart: "22:30",
			DowntimeEnd:   "06:30",
		},
	}

	windowEnd := time.Date(2025, 6, 2, 6, 30, 0, 0, localZone)
	for i := 0; i < 100; i++ {
		got, err := ComputeNextUploadTime(acc, localAnchor)
		if err != nil {
			t.Fatalf("ComputeNextUploadTime: %v", err)
		}
		next, _ := ParseInstant(got)
		if next.Before(windowEnd.Add(5 * time.Minute)) {
			t.Fatalf("next %v inside or too close to downtime ending %v", next, windowEnd)
		}
		if next.After(windowEnd.Add(30 * time.Minute)) {
			t.Fatalf("next %v too far past downtime end %v", next, windowEnd)
		}
	}
}

func TestAvoidDowntimePriorDayWindow(t *testing.T) {
	// 01:00 local is inside the 22:30 window that started the previous
	// evening.
	inside := time.Date(2025, 6, 2, 1, 0, 0, 0, localZone)
	got := avoidDowntime(inside, "22:30", "06:30")
	windowEnd := time.Date(2025, 6, 2, 6, 30, 0, 0, localZone)
	if got.Before(windowEnd) {
		t.Fatalf("avoidDowntime(%v) = %v, still before window end %v", inside, got, windowEnd)
	}

	outside := time.Date(2025, 6, 2, 12, 0, 0, 0, localZone)
	if got := avoidDowntime(outside, "22:30", "06:30"); !got.Equal(outside) {
		t.Fatalf("avoidDowntime moved %v to %v outside any window", outside, got)
	}
}

func TestAvoidDowntimeBadClockLeavesTimeAlone(t *testing.T) {
	ts := time.Date(2025, 6, 2, 3, 0, 0, 0, localZone)
	if got := avoidDowntime(ts, "quiet", "06:30"); !got.Equal(ts) {
		t.Fatalf("avoidDowntime with bad clock moved %v to %v", ts, got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		min     int
		wantErr bool
	}{
		{"06:30", 6, 30, false},
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"12", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, m, err := parseClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseClock(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseClock(%q): %v", tt.input, err)
			}
			if h != tt.hour || m != tt.min {
				t.Errorf("parseClock(%q) = %d:%d, want %d:%d", tt.input, h, m, tt.hour, tt.min)
			}
		})
	}
}

func TestGenerateDowntimeWindow(t *testing.T) {
	for i := 0; i < 100; i++ {
		start, end := GenerateDowntimeWindow(8)

		sh, sm, err := parseClock(start)
		if err != nil {
			t.Fatalf("generated start %q invalid: %v", start, err)
		}
		eh, em, err := parseClock(end)
		if err != nil {
			t.Fatalf("generated end %q invalid: %v", end, err)
		}

		// Center drifts within 01:00-03:00, so an 8 hour window starts
		// in the evening and ends in the morning.
		if sh < 21 {
			t.Errorf("start hour %d outside expected evening range (start %s)", sh, start)
		}
		if eh < 5 || eh > 7 {
			t.Errorf("end hour %d outside expected morning range (end %s)", eh, end)
		}
		_ = sm
		_ = em
	}
}

func TestComputeNextUploadTimeConcurrent(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	acc := &models.Account{
		Autoposting: models.AutopostingPolicy{
			Enabled:       true,
			DowntimeStart: "22:30",
			DowntimeEnd:   "06:30",
		},
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if _, err := ComputeNextUploadTime(acc, now); err != nil {
					t.Errorf("ComputeNextUploadTime: %v", err)
					return
				}
				GenerateDowntimeWindow(8)
			}
		}()
	}
	wg.Wait()
}
