package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
	"github.com/Maksimka7878/fixnew-importer/internal/scraper"
	"github.com/Maksimka7878/fixnew-importer/internal/storage"
)

type fakeRunner struct {
	products []models.ScrapedProduct
	release  chan struct{}
	progress func(models.Progress)
}

func (f *fakeRunner) Run(ctx context.Context) []models.ScrapedProduct {
	if f.release != nil {
		<-f.release
	}
	if f.progress != nil {
		f.progress(models.Progress{Phase: models.PhaseComplete, Found: len(f.products)})
	}
	return f.products
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory StatusStore.
type fakeStore struct {
	mu     sync.Mutex
	slots  map[string]string
	values map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:  make(map[string]string),
		values: make(map[string][]byte),
	}
}

func (s *fakeStore) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.slots[key]; held {
		return false, nil
	}
	s.slots[key] = token
	return true, nil
}

func (s *fakeStore) Release(ctx context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots[key] == token {
		delete(s.slots, key)
	}
	return nil
}

func (s *fakeStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
	return nil
}

func (s *fakeStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	data, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.json")

	var captured func(models.Progress)
	m := NewManager(func(opts scraper.Options) Runner {
		captured = opts.OnProgress
		return &fakeRunner{
			products: []models.ScrapedProduct{{SourceID: "a", Title: "A", Price: 100}},
			progress: func(p models.Progress) { captured(p) },
		}
	}, nil, nil, outputPath, testLogger())

	jobID, err := m.Start(context.Background(), scraper.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		return m.Current(context.Background()).State == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	status := m.Current(context.Background())
	assert.Equal(t, jobID, status.JobID)
	assert.Equal(t, 1, status.Found)
	assert.NotNil(t, status.FinishedAt)

	written, err := storage.LoadProducts(outputPath)
	require.NoError(t, err)
	assert.Len(t, written, 1)
}

func TestManagerRejectsConcurrentImport(t *testing.T) {
	release := make(chan struct{})
	m := NewManager(func(opts scraper.Options) Runner {
		return &fakeRunner{release: release}
	}, nil, nil, "", testLogger())

	_, err := m.Start(context.Background(), scraper.Options{})
	require.NoError(t, err)

	_, err = m.Start(context.Background(), scraper.Options{})
	assert.ErrorIs(t, err, ErrImportRunning)

	close(release)
	require.Eventually(t, func() bool {
		return m.Current(context.Background()).State == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	// Slot is free again once the job finished.
	_, err = m.Start(context.Background(), scraper.Options{})
	assert.NoError(t, err)
}

func TestManagerCurrentFallsBackToMirror(t *testing.T) {
	store := newFakeStore()

	ran := NewManager(func(opts scraper.Options) Runner {
		return &fakeRunner{products: []models.ScrapedProduct{{SourceID: "a"}}}
	}, store, nil, "", testLogger())

	jobID, err := ran.Start(context.Background(), scraper.Options{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return ran.Current(context.Background()).State == "completed"
	}, 5*time.Second, 10*time.Millisecond)

	// A second instance that never ran anything answers from the mirror.
	idle := NewManager(func(opts scraper.Options) Runner {
		return &fakeRunner{}
	}, store, nil, "", testLogger())

	status := idle.Current(context.Background())
	assert.Equal(t, "completed", status.State)
	assert.Equal(t, jobID, status.JobID)
	assert.Equal(t, 1, status.Found)
}

func TestManagerCurrentPrefersLocalState(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.SetJSON(context.Background(), statusKey,
		Status{JobID: "stale", State: "completed"}, time.Hour))

	release := make(chan struct{})
	m := NewManager(func(opts scraper.Options) Runner {
		return &fakeRunner{release: release}
	}, store, nil, "", testLogger())

	jobID, err := m.Start(context.Background(), scraper.Options{})
	require.NoError(t, err)

	status := m.Current(context.Background())
	assert.Equal(t, "running", status.State, "a live local job shadows the mirror")
	assert.Equal(t, jobID, status.JobID)

	close(release)
	require.Eventually(t, func() bool {
		return m.Current(context.Background()).State == "completed"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestManagerMarksFallbackRunsFailed(t *testing.T) {
	m := NewManager(func(opts scraper.Options) Runner {
		return &fakeRunner{
			products: scraper.Fixtures(),
			progress: func(models.Progress) {
				opts.OnProgress(models.Progress{Phase: models.PhaseFallbackToMock, Error: "no categories discovered"})
			},
		}
	}, nil, nil, "", testLogger())

	_, err := m.Start(context.Background(), scraper.Options{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return m.Current(context.Background()).State == "failed"
	}, 5*time.Second, 10*time.Millisecond)

	status := m.Current(context.Background())
	assert.Equal(t, models.PhaseFallbackToMock, status.Progress.Phase)
	assert.Equal(t, 10, status.Found, "fixture fallback still reports what the caller received")
}
