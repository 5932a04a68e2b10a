package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/repository"
	"github.com/fbuehler/autopost-api/internal/schedule"
)

// ScheduleService owns every mutation of an account's pending-schedule
// queue and next-upload instant. Queue updates are read-modify-write over a
// JSON column, so all of them for one account are serialized behind a
// per-account lock.
type ScheduleService interface {
	ResolveAutoSchedule(ctx context.Context, userID, username string) string
	AddScheduledTime(ctx context.Context, userID, username, instant string) error
	RemoveScheduledTime(ctx context.Context, userID, username, instant string) error
	PruneExpired(ctx context.Context, userID, username string, now time.Time) error
	RecalculateNextUpload(ctx context.Context, acc *models.Account) error
}

type scheduleService struct {
	accounts repository.AccountRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewScheduleService(accounts repository.AccountRepository) ScheduleService {
	return &scheduleService{
		accounts: accounts,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *scheduleService) accountLock(userID, username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "/" + username
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// ResolveAutoSchedule turns the "auto" scheduling hint into a concrete
// scheduled date. An empty return means dispatch immediately: either no
// next-upload instant is recorded, or the recorded one has already passed
// (in which case it is cleared and the account's last-upload time is
// stamped so the next computation anchors off now). Best effort: storage
// errors are logged and fall back to immediate dispatch.
func (s *scheduleService) ResolveAutoSchedule(ctx context.Context, userID, username string) string {
	next, err := s.accounts.GetNextUploadTime(ctx, userID, username)
	if err != nil {
		slog.Error("auto-schedule: fetching next upload time failed", "username", username, "error", err)
		return ""
	}
	if next == "" {
		slog.Warn("auto-schedule: no next upload time set, uploading immediately", "username", username)
		return ""
	}

	nextTime, err := schedule.ParseInstant(next)
	if err != nil {
		slog.Error("auto-schedule: unparseable next upload time", "username", username, "value", next)
		return ""
	}

	if nextTime.Before(time.Now()) {
		now := schedule.FormatUTC(time.Now())
		if _, err := s.accounts.UpdateLastUploadTime(ctx, userID, username, now); err != nil {
			slog.Error("auto-schedule: updating last upload time failed", "username", username, "error", err)
		}
		slog.Info("auto-schedule: next upload time in the past, uploading immediately",
			"username", username, "next_upload_time", next)
		return ""
	}

	return next
}

func (s *scheduleService) AddScheduledTime(ctx context.Context, userID, username, instant string) error {
	lock := s.accountLock(userID, username)
	lock.Lock()
	defer lock.Unlock()

	times, err := s.accounts.GetScheduledTimes(ctx, userID, username)
	if err != nil {
		return err
	}
	times = schedule.Insert(times, schedule.NormalizeInstant(instant))
	_, err = s.accounts.SetScheduledTimes(ctx, userID, username, times)
	return err
}

func (s *scheduleService) RemoveScheduledTime(ctx context.Context, userID, username, instant string) error {
	lock := s.accountLock(userID, username)
	lock.Lock()
	defer lock.Unlock()

	times, err := s.accounts.GetScheduledTimes(ctx, userID, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	times = schedule.Remove(times, schedule.NormalizeInstant(instant))
	_, err = s.accounts.SetScheduledTimes(ctx, userID, username, times)
	return err
}

func (s *scheduleService) PruneExpired(ctx context.Context, userID, username string, now time.Time) error {
	lock := s.accountLock(userID, username)
	lock.Lock()
	defer lock.Unlock()

	times, err := s.accounts.GetScheduledTimes(ctx, userID, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	pruned := schedule.PruneExpired(times, now)
	if len(pruned) == len(times) {
		return nil
	}
	_, err = s.accounts.SetScheduledTimes(ctx, userID, username, pruned)
	return err
}

// RecalculateNextUpload recomputes and persists the account's next upload
// instant. Returns schedule.ErrAutopostingDisabled unchanged so callers can
// skip accounts without a policy.
func (s *scheduleService) RecalculateNextUpload(ctx context.Context, acc *models.Account) error {
	next, err := schedule.ComputeNextUploadTime(acc, time.Now())
	if err != nil {
		return err
	}

	if _, err := s.accounts.UpdateNextUploadTime(ctx, acc.UserID, acc.Username, next); err != nil {
		return err
	}
	slog.Info("next upload time updated", "username", acc.Username, "next_upload_time", next)
	return nil
}
