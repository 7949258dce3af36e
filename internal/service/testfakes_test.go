package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hireloop/hireloop-api/internal/llm"
	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// memJobRepo is an in-memory JobRepository for service tests.
type memJobRepo struct {
	mu   sync.Mutex
	seq  int
	jobs map[string]*models.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*models.Job)}
}

func (m *memJobRepo) add(job *models.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
}

func (m *memJobRepo) Upsert(_ context.Context, job *models.Job, _ time.Time) (repository.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.jobs {
		hit := existing.Source == job.Source &&
			((job.SourceID != nil && existing.SourceID != nil && *job.SourceID == *existing.SourceID) ||
				(job.SourceID == nil && existing.SourceID == nil && job.Fingerprint == existing.Fingerprint))
		if hit {
			job.ID = existing.ID
			return repository.UpsertRefreshed, nil
		}
	}

	m.seq++
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", m.seq)
	}
	job.ScrapedAt = time.Now().UTC()
	m.jobs[job.ID] = job
	return repository.UpsertInserted, nil
}

func (m *memJobRepo) GetByID(_ context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id], nil
}

func (m *memJobRepo) List(context.Context, repository.JobFilters, int, int) ([]*models.Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Job
	for _, job := range m.jobs {
		out = append(out, job)
	}
	return out, len(out), nil
}

func (m *memJobRepo) ListScrapedSince(context.Context, time.Time) ([]*models.Job, error) {
	jobs, _, _ := m.List(context.Background(), repository.JobFilters{}, 0, 0)
	return jobs, nil
}

func (m *memJobRepo) DeleteOld(context.Context, time.Time, int) (int, int, error) {
	return 0, 0, nil
}

func (m *memJobRepo) DeleteOwned(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok || job.Source != models.SourceExternal || job.OwnerID == nil || *job.OwnerID != ownerID {
		return false, nil
	}
	delete(m.jobs, id)
	return true, nil
}

// memRunRepo is an in-memory ScrapeRunRepository.
type memRunRepo struct {
	mu   sync.Mutex
	seq  int
	runs map[string]*models.ScrapeRun
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: make(map[string]*models.ScrapeRun)}
}

func (m *memRunRepo) Create(_ context.Context, run *models.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", m.seq)
	}
	if run.Status == "" {
		run.Status = models.ScrapeStatusPending
	}
	run.CreatedAt = time.Now().UTC()
	m.runs[run.ID] = run
	return nil
}

func (m *memRunRepo) GetByID(_ context.Context, id string) (*models.ScrapeRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[id], nil
}

func (m *memRunRepo) Update(_ context.Context, run *models.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *memRunRepo) ListRecent(_ context.Context, limit int) ([]*models.ScrapeRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ScrapeRun
	for _, run := range m.runs {
		if len(out) >= limit {
			break
		}
		out = append(out, run)
	}
	return out, nil
}

// memSavedRepo is an in-memory SavedJobRepository.
type memSavedRepo struct {
	mu    sync.Mutex
	seq   int
	saved map[string]*models.SavedJob // keyed by userID+"|"+jobID
}

func newMemSavedRepo() *memSavedRepo {
	return &memSavedRepo{saved: make(map[string]*models.SavedJob)}
}

func savedKey(userID, jobID string) string { return userID + "|" + jobID }

func (m *memSavedRepo) Save(_ context.Context, userID, jobID string, expiresAt time.Time, maxLive int) (*models.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.saved[savedKey(userID, jobID)]; exists {
		return nil, repository.ErrDuplicateSave
	}
	live := 0
	for _, sj := range m.saved {
		if sj.UserID == userID && sj.Status == models.SavedStatusSaved {
			live++
		}
	}
	if live >= maxLive {
		return nil, repository.ErrSaveLimitReached
	}

	m.seq++
	now := time.Now().UTC()
	sj := &models.SavedJob{
		ID:        fmt.Sprintf("saved-%d", m.seq),
		UserID:    userID,
		JobID:     jobID,
		Status:    models.SavedStatusSaved,
		SavedAt:   now,
		ExpiresAt: &expiresAt,
		UpdatedAt: now,
	}
	m.saved[savedKey(userID, jobID)] = sj
	return sj, nil
}

func (m *memSavedRepo) Unsave(_ context.Context, userID, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := savedKey(userID, jobID)
	if _, ok := m.saved[key]; !ok {
		return false, nil
	}
	delete(m.saved, key)
	return true, nil
}

func (m *memSavedRepo) GetByJobID(_ context.Context, userID, jobID string) (*models.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[savedKey(userID, jobID)], nil
}

func (m *memSavedRepo) ListByUserID(_ context.Context, userID string) ([]*models.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SavedJob
	for _, sj := range m.saved {
		if sj.UserID == userID {
			out = append(out, sj)
		}
	}
	return out, nil
}

func (m *memSavedRepo) UpdateStatus(_ context.Context, userID, jobID, status string) (*models.SavedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sj, ok := m.saved[savedKey(userID, jobID)]
	if !ok {
		return nil, nil
	}
	sj.Status = status
	if status != models.SavedStatusSaved {
		sj.ExpiresAt = nil
	}
	sj.UpdatedAt = time.Now().UTC()
	return sj, nil
}

func (m *memSavedRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, sj := range m.saved {
		if sj.Status == models.SavedStatusSaved && sj.ExpiresAt != nil && !sj.ExpiresAt.After(now) {
			delete(m.saved, key)
			n++
		}
	}
	return n, nil
}

// memProfileRepo is an in-memory ProfileRepository.
type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (m *memProfileRepo) Get(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *memProfileRepo) Upsert(_ context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *memProfileRepo) ListUserIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

// memCVRepo is an in-memory CVRepository.
type memCVRepo struct {
	mu  sync.Mutex
	seq int
	cvs map[string]*models.CV
}

func newMemCVRepo() *memCVRepo {
	return &memCVRepo{cvs: make(map[string]*models.CV)}
}

func (m *memCVRepo) Create(_ context.Context, cv *models.CV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if cv.ID == "" {
		cv.ID = fmt.Sprintf("cv-%d", m.seq)
	}
	if cv.Status == "" {
		cv.Status = models.CVStatusPending
	}
	if cv.IsActive {
		for _, other := range m.cvs {
			if other.UserID == cv.UserID {
				other.IsActive = false
			}
		}
	}
	now := time.Now().UTC()
	cv.CreatedAt = now
	cv.UpdatedAt = now
	m.cvs[cv.ID] = cv
	return nil
}

func (m *memCVRepo) GetByID(_ context.Context, id string) (*models.CV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cvs[id], nil
}

func (m *memCVRepo) GetActive(_ context.Context, userID string) (*models.CV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cv := range m.cvs {
		if cv.UserID == userID && cv.IsActive {
			return cv, nil
		}
	}
	return nil, nil
}

func (m *memCVRepo) SetParsed(_ context.Context, id string, parsed *models.ParsedCV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cv, ok := m.cvs[id]
	if !ok {
		return fmt.Errorf("cv %s not found", id)
	}
	cv.Parsed = parsed
	cv.Status = models.CVStatusCompleted
	cv.Error = nil
	return nil
}

func (m *memCVRepo) MarkFailed(_ context.Context, id, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cv, ok := m.cvs[id]
	if !ok {
		return fmt.Errorf("cv %s not found", id)
	}
	cv.Status = models.CVStatusFailed
	cv.Error = &errMsg
	return nil
}

// memTailoredRepo is an in-memory TailoredCVRepository.
type memTailoredRepo struct {
	mu   sync.Mutex
	seq  int
	tcvs map[string]*models.TailoredCV
}

func newMemTailoredRepo() *memTailoredRepo {
	return &memTailoredRepo{tcvs: make(map[string]*models.TailoredCV)}
}

func (m *memTailoredRepo) Create(_ context.Context, tcv *models.TailoredCV) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if tcv.ID == "" {
		tcv.ID = fmt.Sprintf("tcv-%d", m.seq)
	}
	tcv.CreatedAt = time.Now().UTC()
	m.tcvs[tcv.ID] = tcv
	return nil
}

func (m *memTailoredRepo) GetByID(_ context.Context, id string) (*models.TailoredCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tcvs[id], nil
}

func (m *memTailoredRepo) ListByUserID(_ context.Context, userID string) ([]*models.TailoredCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TailoredCV
	for _, tcv := range m.tcvs {
		if tcv.UserID == userID {
			out = append(out, tcv)
		}
	}
	return out, nil
}

// fakeParser is a canned llm.Parser.
type fakeParser struct {
	parsed    *llm.ParsedJob
	parseErr  error
	tailored  string
	tailorErr error
}

func (f *fakeParser) ParseJob(context.Context, string) (*llm.ParsedJob, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.parsed, nil
}

func (f *fakeParser) TailorCV(context.Context, string, string, string) (string, error) {
	if f.tailorErr != nil {
		return "", f.tailorErr
	}
	return f.tailored, nil
}
