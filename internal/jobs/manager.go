package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Maksimka7878/fixnew-importer/internal/database"
	"github.com/Maksimka7878/fixnew-importer/internal/models"
	"github.com/Maksimka7878/fixnew-importer/internal/scraper"
	"github.com/Maksimka7878/fixnew-importer/internal/storage"
)

// ErrImportRunning means a job already holds the import slot.
var ErrImportRunning = errors.New("an import job is already running")

const (
	slotKey   = "importer:slot"
	statusKey = "importer:status"

	// slotTTL bounds how long a crashed instance can block imports.
	slotTTL   = 2 * time.Hour
	statusTTL = 24 * time.Hour
)

// Status is the externally visible state of the current or last import.
type Status struct {
	JobID      string          `json:"job_id,omitempty"`
	State      string          `json:"state"` // idle, running, completed, failed
	Progress   models.Progress `json:"progress"`
	Found      int             `json:"found"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// Runner is the piece of the scraper the manager drives.
type Runner interface {
	Run(ctx context.Context) []models.ScrapedProduct
}

// StatusStore is the slice of the shared store the manager needs: the
// cross-instance job slot and the status mirror. Satisfied by
// kvstore.Store.
type StatusStore interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
}

// Manager runs at most one import at a time. The local mutex guards this
// process; the redis slot extends the guard across instances. Both store
// and repo are optional: without them the manager still works as a
// single-instance, file-output importer.
type Manager struct {
	newRunner  func(opts scraper.Options) Runner
	store      StatusStore
	repo       *database.ProductRepo
	outputPath string
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	status  Status
}

func NewManager(newRunner func(opts scraper.Options) Runner, store StatusStore, repo *database.ProductRepo, outputPath string, logger *slog.Logger) *Manager {
	return &Manager{
		newRunner:  newRunner,
		store:      store,
		repo:       repo,
		outputPath: outputPath,
		logger:     logger.With("component", "job_manager"),
		status:     Status{State: "idle"},
	}
}

// Start launches an import in the background and returns its job id, or
// ErrImportRunning when the slot is taken. Fire-and-forget: progress is
// observed through Status.
func (m *Manager) Start(ctx context.Context, opts scraper.Options) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return "", ErrImportRunning
	}

	jobID := uuid.New().String()

	if m.store != nil {
		ok, err := m.store.Acquire(ctx, slotKey, jobID, slotTTL)
		if err != nil {
			// Redis being down must not take imports down with it; the
			// local guard still holds for this instance.
			m.logger.Warn("slot acquire failed, relying on local guard", "error", err)
		} else if !ok {
			return "", ErrImportRunning
		}
	}

	now := time.Now()
	m.running = true
	m.status = Status{
		JobID:     jobID,
		State:     "running",
		StartedAt: &now,
	}

	go m.run(jobID, opts)

	m.logger.Info("import job started", "job_id", jobID)
	return jobID, nil
}

// Current returns this instance's job status. When this instance is idle
// and a shared store is configured, it falls back to the status mirrored
// by whichever instance ran last, so any instance behind a load balancer
// can answer a status poll.
func (m *Manager) Current(ctx context.Context) Status {
	m.mu.Lock()
	status := m.status
	m.mu.Unlock()

	if status.State != "idle" || m.store == nil {
		return status
	}

	var mirrored Status
	found, err := m.store.GetJSON(ctx, statusKey, &mirrored)
	if err != nil {
		m.logger.Warn("status mirror read failed", "error", err)
		return status
	}
	if found {
		return mirrored
	}
	return status
}

// run executes the whole job. The background context is deliberate: the
// job must outlive the HTTP request that triggered it.
func (m *Manager) run(jobID string, opts scraper.Options) {
	ctx := context.Background()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()

		if m.store != nil {
			if err := m.store.Release(ctx, slotKey, jobID); err != nil {
				m.logger.Warn("slot release failed", "error", err)
			}
		}
	}()

	if m.repo != nil {
		known, err := m.repo.KnownSourceIDs(ctx)
		if err != nil {
			m.logger.Warn("failed to load known ids, import will not be incremental", "error", err)
		}
		for _, id := range known {
			opts.ExistingProducts = append(opts.ExistingProducts, models.ScrapedProduct{SourceID: id})
		}
	}

	opts.OnProgress = func(p models.Progress) {
		m.setProgress(ctx, p)
	}

	products := m.newRunner(opts).Run(ctx)

	if m.repo != nil {
		if _, err := m.repo.Upsert(ctx, products); err != nil {
			m.logger.Error("failed to persist products", "error", err)
		}
	}
	if m.outputPath != "" {
		if err := storage.WriteProducts(m.outputPath, products); err != nil {
			m.logger.Error("failed to write output file", "error", err)
		}
	}

	m.finish(ctx, len(products))
	m.logger.Info("import job finished", "job_id", jobID, "found", len(products))
}

func (m *Manager) setProgress(ctx context.Context, p models.Progress) {
	m.mu.Lock()
	m.status.Progress = p
	if p.Found > 0 {
		m.status.Found = p.Found
	}
	status := m.status
	m.mu.Unlock()

	m.mirror(ctx, status)
}

func (m *Manager) finish(ctx context.Context, found int) {
	m.mu.Lock()
	now := time.Now()
	m.status.Found = found
	m.status.FinishedAt = &now
	if m.status.Progress.Phase == models.PhaseFallbackToMock || m.status.Progress.Phase == models.PhaseError {
		m.status.State = "failed"
	} else {
		m.status.State = "completed"
	}
	status := m.status
	m.mu.Unlock()

	m.mirror(ctx, status)
}

func (m *Manager) mirror(ctx context.Context, status Status) {
	if m.store == nil {
		return
	}
	if err := m.store.SetJSON(ctx, statusKey, status, statusTTL); err != nil {
		m.logger.Warn("status mirror failed", "error", err)
	}
}
