package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestInsertKeepsOrder(t *testing.T) {
	var times []string
	times = Insert(times, "2025-06-01T14:00:00Z")
	times = Insert(times, "2025-06-01T10:00:00Z")
	times = Insert(times, "2025-06-01T12:00:00Z")

	want := []string{
		"2025-06-01T10:00:00Z",
		"2025-06-01T12:00:00Z",
		"2025-06-01T14:00:00Z",
	}
	if !reflect.DeepEqual(times, want) {
		t.Fatalf("queue = %v, want %v", times, want)
	}
}

func TestInsertAllowsDuplicates(t *testing.T) {
	times := Insert([]string{"2025-06-01T10:00:00Z"}, "2025-06-01T10:00:00Z")
	if len(times) != 2 {
		t.Fatalf("queue = %v, want two entries", times)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		times   []string
		instant string
		want    []string
	}{
		{
			"removes exact match",
			[]string{"2025-06-01T10:00:00Z", "2025-06-01T12:00:00Z"},
			"2025-06-01T10:00:00Z",
			[]string{"2025-06-01T12:00:00Z"},
		},
		{
			"removes first of duplicates",
			[]string{"2025-06-01T10:00:00Z", "2025-06-01T10:00:00Z"},
			"2025-06-01T10:00:00Z",
			[]string{"2025-06-01T10:00:00Z"},
		},
		{
			"absent instant is a no-op",
			[]string{"2025-06-01T10:00:00Z"},
			"2025-06-01T11:00:00Z",
			[]string{"2025-06-01T10:00:00Z"},
		},
		{
			"empty queue stays empty",
			nil,
			"2025-06-01T10:00:00Z",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remove(tt.times, tt.instant)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Remove(%v, %q) = %v, want %v", tt.times, tt.instant, got, tt.want)
			}
		})
	}
}

func TestPruneExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	times := []string{
		"2025-06-01T11:00:00Z",
		"2025-06-01T12:00:00Z",
		"2025-06-01T13:00:00Z",
	}

	got := PruneExpired(times, now)
	// An entry equal to now is kept; only strictly past entries fall out.
	want := []string{"2025-06-01T12:00:00Z", "2025-06-01T13:00:00Z"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PruneExpired = %v, want %v", got, want)
	}
}

func TestPruneExpiredAllFuture(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	times := []string{"2025-06-01T10:00:00Z", "2025-06-01T11:00:00Z"}
	got := PruneExpired(times, now)
	if !reflect.DeepEqual(got, times) {
		t.Fatalf("PruneExpired = %v, want unchanged %v", got, times)
	}
}
