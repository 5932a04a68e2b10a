package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/schedule"
)

func enabledAccount(times ...string) *models.Account {
	return &models.Account{
		UserID:         "u1",
		Username:       "creator",
		ScheduledTimes: times,
		Autoposting:    models.AutopostingPolicy{Enabled: true},
	}
}

func TestResolveAutoSchedule(t *testing.T) {
	ctx := context.Background()
	future := schedule.FormatUTC(time.Now().Add(2 * time.Hour))

	t.Run("future instant is returned", func(t *testing.T) {
		acc := enabledAccount()
		acc.NextUploadTime = future
		svc := NewScheduleService(newFakeAccountRepo(acc))

		if got := svc.ResolveAutoSchedule(ctx, "u1", "creator"); got != future {
			t.Errorf("ResolveAutoSchedule = %q, want %q", got, future)
		}
	})

	t.Run("past instant means immediate and stamps last upload", func(t *testing.T) {
		acc := enabledAccount()
		acc.NextUploadTime = "2020-01-01T00:00:00Z"
		repo := newFakeAccountRepo(acc)
		svc := NewScheduleService(repo)

		if got := svc.ResolveAutoSchedule(ctx, "u1", "creator"); got != "" {
			t.Errorf("ResolveAutoSchedule = %q, want immediate", got)
		}
		if acc.LastUploadTime == "" {
			t.Error("last upload time not stamped for past next-upload instant")
		}
	})

	t.Run("empty instant means immediate", func(t *testing.T) {
		svc := NewScheduleService(newFakeAccountRepo(enabledAccount()))
		if got := svc.ResolveAutoSchedule(ctx, "u1", "creator"); got != "" {
			t.Errorf("ResolveAutoSchedule = %q, want immediate", got)
		}
	})

	t.Run("unknown account means immediate", func(t *testing.T) {
		svc := NewScheduleService(newFakeAccountRepo())
		if got := svc.ResolveAutoSchedule(ctx, "u1", "creator"); got != "" {
			t.Errorf("ResolveAutoSchedule = %q, want immediate", got)
		}
	})
}

func TestAddScheduledTimeNormalizesAndSorts(t *testing.T) {
	ctx := context.Background()
	acc := enabledAccount("2025-06-01T12:00:00Z")
	repo := newFakeAccountRepo(acc)
	svc := NewScheduleService(repo)

	// Offset form of 10:00Z; must land in canonical form before 12:00Z.
	if err := svc.AddScheduledTime(ctx, "u1", "creator", "2025-06-01T12:00:00+02:00"); err != nil {
		t.Fatalf("AddScheduledTime: %v", err)
	}

	want := []string{"2025-06-01T10:00:00Z", "2025-06-01T12:00:00Z"}
	if !reflect.DeepEqual(acc.ScheduledTimes, want) {
		t.Errorf("queue = %v, want %v", acc.ScheduledTimes, want)
	}
}

func TestRemoveScheduledTime(t *testing.T) {
	ctx := context.Background()

	t.Run("removes normalized match", func(t *testing.T) {
		acc := enabledAccount("2025-06-01T10:00:00Z", "2025-06-01T12:00:00Z")
		svc := NewScheduleService(newFakeAccountRepo(acc))

		if err := svc.RemoveScheduledTime(ctx, "u1", "creator", "2025-06-01T12:00:00+02:00"); err != nil {
			t.Fatalf("RemoveScheduledTime: %v", err)
		}
		want := []string{"2025-06-01T12:00:00Z"}
		if !reflect.DeepEqual(acc.ScheduledTimes, want) {
			t.Errorf("queue = %v, want %v", acc.ScheduledTimes, want)
		}
	})

	t.Run("missing account is a no-op", func(t *testing.T) {
		svc := NewScheduleService(newFakeAccountRepo())
		if err := svc.RemoveScheduledTime(ctx, "u1", "ghost", "2025-06-01T10:00:00Z"); err != nil {
			t.Fatalf("RemoveScheduledTime on missing account: %v", err)
		}
	})
}

func TestPruneExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("drops past entries", func(t *testing.T) {
		acc := enabledAccount("2025-06-01T11:00:00Z", "2025-06-01T13:00:00Z")
		svc := NewScheduleService(newFakeAccountRepo(acc))

		if err := svc.PruneExpired(ctx, "u1", "creator", now); err != nil {
			t.Fatalf("PruneExpired: %v", err)
		}
		want := []string{"2025-06-01T13:00:00Z"}
		if !reflect.DeepEqual(acc.ScheduledTimes, want) {
			t.Errorf("queue = %v, want %v", acc.ScheduledTimes, want)
		}
	})

	t.Run("skips write when nothing expired", func(t *testing.T) {
		acc := enabledAccount("2025-06-01T13:00:00Z")
		repo := newFakeAccountRepo(acc)
		svc := NewScheduleService(repo)

		if err := svc.PruneExpired(ctx, "u1", "creator", now); err != nil {
			t.Fatalf("PruneExpired: %v", err)
		}
		want := []string{"2025-06-01T13:00:00Z"}
		if !reflect.DeepEqual(acc.ScheduledTimes, want) {
			t.Errorf("queue = %v, want %v", acc.ScheduledTimes, want)
		}
	})
}

func TestRecalculateNextUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a future instant", func(t *testing.T) {
		acc := enabledAccount()
		svc := NewScheduleService(newFakeAccountRepo(acc))

		if err := svc.RecalculateNextUpload(ctx, acc); err != nil {
			t.Fatalf("RecalculateNextUpload: %v", err)
		}
		if acc.NextUploadTime == "" {
			t.Fatal("next upload time not persisted")
		}
		next, err := schedule.ParseInstant(acc.NextUploadTime)
		if err != nil {
			t.Fatalf("persisted instant %q not parseable: %v", acc.NextUploadTime, err)
		}
		if !next.After(time.Now()) {
			t.Errorf("persisted instant %v not in the future", next)
		}
	})

	t.Run("disabled policy surfaces sentinel", func(t *testing.T) {
		acc := &models.Account{UserID: "u1", Username: "creator"}
		svc := NewScheduleService(newFakeAccountRepo(acc))

		err := svc.RecalculateNextUpload(ctx, acc)
		if !errors.Is(err, schedule.ErrAutopostingDisabled) {
			t.Fatalf("err = %v, want ErrAutopostingDisabled", err)
		}
		if acc.NextUploadTime != "" {
			t.Error("next upload time written for disabled account")
		}
	})
}
