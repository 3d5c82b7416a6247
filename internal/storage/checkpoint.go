package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Maksimka7878/fixnew-importer/internal/models"
)

// WriteProducts overwrites path with the full product array. The file is
// always a complete, valid snapshot: a crash right after the write loses
// nothing already written. The orchestrator is the only writer, so the
// plain overwrite is race-free; a concurrent reader can still observe a
// torn read mid-write, which is accepted.
func WriteProducts(path string, products []models.ScrapedProduct) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadProducts reads a previous run's snapshot. A missing file is not an
// error: it simply means there is nothing to resume from.
func LoadProducts(path string) ([]models.ScrapedProduct, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var products []models.ScrapedProduct
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return products, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}
