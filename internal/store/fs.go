package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stockcaster/internal/domain"
)

const artifactExt = ".json"

// FSStore keeps one artifact file per ticker under a base directory.
type FSStore struct {
	dir string
}

// NewFSStore creates the base directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) path(ticker string) string {
	return filepath.Join(s.dir, domain.NormalizeTicker(ticker)+artifactExt)
}

func (s *FSStore) Exists(_ context.Context, ticker string) (bool, error) {
	_, err := os.Stat(s.path(ticker))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *FSStore) Load(_ context.Context, ticker string) ([]byte, error) {
	b, err := os.ReadFile(s.path(ticker))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return b, nil
}

// Save writes to a temp file in the same directory and renames it over the
// destination. Rename is atomic on POSIX filesystems, so a trainer replacing
// an artifact mid-read never exposes a truncated file to the predictor.
func (s *FSStore) Save(_ context.Context, ticker string, artifact []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+domain.NormalizeTicker(ticker)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(artifact); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.path(ticker)); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

func (s *FSStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		tickers = append(tickers, strings.TrimSuffix(name, artifactExt))
	}
	sort.Strings(tickers)
	return tickers, nil
}
