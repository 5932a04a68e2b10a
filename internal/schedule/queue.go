package schedule

import (
	"sort"
	"time"
)

// Pure operations over an account's pending-scheduled-instants queue. The
// queue is a multiset of canonical UTC instant strings kept in ascending
// order; two videos may legitimately share a timestamp. Persistence is the
// repository's concern.

// Insert returns the queue with instant added and order restored.
func Insert(times []string, instant string) []string {
	out := make([]string, 0, len(times)+1)
	out = append(out, times...)
	out = append(out, instant)
	sort.Strings(out)
	return out
}

// Remove drops the first exact match of instant. An instant that is not
// present (already pruned, or differently formatted) is a silent no-op.
func Remove(times []string, instant string) []string {
	for i, t := range times {
		if t == instant {
			out := make([]string, 0, len(times)-1)
			out = append(out, times[:i]...)
			out = append(out, times[i+1:]...)
			return out
		}
	}
	return times
}

// PruneExpired drops every entry strictly before now, preserving the order
// of the remainder. Entries in the canonical layout compare correctly as
// strings; anything unparseable-but-smaller goes with them.
func PruneExpired(times []string, now time.Time) []string {
	cutoff := FormatUTC(now)
	out := make([]string, 0, len(times))
	for _, t := range times {
		if t >= cutoff {
			out = append(out, t)
		}
	}
	return out
}
