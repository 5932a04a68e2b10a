package service

import (
	"context"
	"sync"

	"github.com/fbuehler/autopost-api/internal/models"
	"github.com/fbuehler/autopost-api/internal/repository"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account

	getTimesErr error
}

func newFakeAccountRepo(accounts ...*models.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*models.Account)}
	for _, acc := range accounts {
		r.accounts[accountKey(acc.UserID, acc.Username)] = acc
	}
	return r
}

func accountKey(userID, username string) string {
	return userID + "/" + username
}

func (r *fakeAccountRepo) get(userID, username string) *models.Account {
	return r.accounts[accountKey(userID, username)]
}

func (r *fakeAccountRepo) Create(ctx context.Context, acc *models.Account) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := accountKey(acc.UserID, acc.Username)
	if _, ok := r.accounts[key]; ok {
		return 0, repository.ErrAlreadyExists
	}
	r.accounts[key] = acc
	return int64(len(r.accounts)), nil
}

func (r *fakeAccountRepo) GetByUsername(ctx context.Context, userID, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return nil, nil
	}
	return acc, nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID string) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Account
	for _, acc := range r.accounts {
		if acc.UserID == userID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) Update(ctx context.Context, userID, username string, upd repository.AccountUpdate) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return 0, nil
	}
	if upd.IsAI != nil {
		acc.IsAI = *upd.IsAI
	}
	if upd.Autoposting != nil {
		acc.Autoposting = *upd.Autoposting
	}
	if upd.Platforms != nil {
		acc.Platforms = upd.Platforms
	}
	return 1, nil
}

func (r *fakeAccountRepo) Delete(ctx context.Context, userID, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := accountKey(userID, username)
	if _, ok := r.accounts[key]; !ok {
		return 0, nil
	}
	delete(r.accounts, key)
	return 1, nil
}

func (r *fakeAccountRepo) UpdateLastUploadTime(ctx context.Context, userID, username, uploadTime string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return 0, nil
	}
	acc.LastUploadTime = uploadTime
	return 1, nil
}

func (r *fakeAccountRepo) UpdateNextUploadTime(ctx context.Context, userID, username, next string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return 0, nil
	}
	acc.NextUploadTime = next
	return 1, nil
}

func (r *fakeAccountRepo) GetNextUploadTime(ctx context.Context, userID, username string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return "", repository.ErrNotFound
	}
	return acc.NextUploadTime, nil
}

func (r *fakeAccountRepo) GetScheduledTimes(ctx context.Context, userID, username string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getTimesErr != nil {
		return nil, r.getTimesErr
	}
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]string, len(acc.ScheduledTimes))
	copy(out, acc.ScheduledTimes)
	return out, nil
}

func (r *fakeAccountRepo) SetScheduledTimes(ctx context.Context, userID, username string, times []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[accountKey(userID, username)]
	if !ok {
		return 0, nil
	}
	acc.ScheduledTimes = times
	return 1, nil
}

type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*models.Video
}

func newFakeVideoRepo(videos ...*models.Video) *fakeVideoRepo {
	r := &fakeVideoRepo{videos: make(map[string]*models.Video)}
	for _, v := range videos {
		r.videos[v.VideoID] = v
	}
	return r
}

func (r *fakeVideoRepo) Create(ctx context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[v.VideoID]; ok {
		return repository.ErrAlreadyExists
	}
	r.videos[v.VideoID] = v
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, videoID string) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (r *fakeVideoRepo) ListByUserID(ctx context.Context, userID, status string) ([]*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Video
	for _, v := range r.videos {
		if v.UserID != userID {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeVideoRepo) UpdateStatus(ctx context.Context, videoID, status, scheduledAt string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return 0, nil
	}
	v.Status = status
	if scheduledAt != "" {
		v.ScheduledAt = scheduledAt
	}
	return 1, nil
}

func (r *fakeVideoRepo) SetPostURL(ctx context.Context, videoID, postURL string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return 0, nil
	}
	v.PostURL = postURL
	return 1, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs []*models.ScheduledJob
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.ScheduledJob) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.jobs {
		if existing.JobID == job.JobID {
			return 0, repository.ErrAlreadyExists
		}
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	r.jobs = append(r.jobs, job)
	return int64(len(r.jobs)), nil
}

func (r *fakeJobRepo) ListPending(ctx context.Context, isAsync bool) ([]*models.ScheduledJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ScheduledJob
	for _, job := range r.jobs {
		if job.Status == models.JobStatusPending && job.IsAsync == isAsync {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, jobID, status, platformPostURL string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.JobID == jobID && job.Status == models.JobStatusPending {
			job.Status = status
			job.PlatformPostURL = platformPostURL
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeJobRepo) find(jobID string) *models.ScheduledJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		if job.JobID == jobID {
			return job
		}
	}
	return nil
}
