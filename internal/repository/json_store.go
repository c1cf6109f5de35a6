package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

// JSONStore keeps one document per database under <dir>/<version>/<id>.json.
type JSONStore struct {
	dir    string
	logger *slog.Logger
}

func NewJSONStore(dir string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{dir: dir, logger: logger}
}

// Path is where the document for (id, version) lives.
func (s *JSONStore) Path(id string, version int) string {
	return filepath.Join(s.dir, strconv.Itoa(version), id+".json")
}

func (s *JSONStore) Load(_ context.Context, id string, version int) (*entity.Database, error) {
	path := s.Path(id, version)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s version %d", common.ErrNotFound, id, version)
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %q: %w", path, err)
	}

	db, err := Decode(data)
	if err != nil {
		s.logger.Error("cache.load.invalid", "path", path, "error", err)
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	return db, nil
}

// Save writes the document through a temporary file so readers never see a
// partial write.
func (s *JSONStore) Save(_ context.Context, db *entity.Database) error {
	data, err := Encode(db)
	if err != nil {
		return err
	}

	path := s.Path(db.ID, db.Version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+db.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	s.logger.Debug("cache.saved", "path", path, "entries", len(db.Entries))
	return nil
}

func (s *JSONStore) List(ctx context.Context) ([]Summary, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*", "*.json"))
	if err != nil {
		return nil, err
	}

	var out []Summary
	for _, m := range matches {
		version, err := strconv.Atoi(filepath.Base(filepath.Dir(m)))
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(filepath.Base(m), ".json")
		db, err := s.Load(ctx, id, version)
		if err != nil {
			s.logger.Warn("cache.list.skipped", "path", m, "error", err)
			continue
		}
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		out = append(out, Summary{
			ID:          db.ID,
			Version:     db.Version,
			URL:         db.URL,
			Entries:     len(db.Entries),
			ExtractedAt: info.ModTime(),
		})
	}

	slices.SortFunc(out, compareSummary)
	return out, nil
}

func (s *JSONStore) Close() error { return nil }

// newest version first, then by id
func compareSummary(a, b Summary) int {
	if a.Version != b.Version {
		return b.Version - a.Version
	}
	return strings.Compare(a.ID, b.ID)
}
