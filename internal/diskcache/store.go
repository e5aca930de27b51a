// Package diskcache is the durable half of the caching contract: generated
// variants live in a flat directory under content-derived filenames, and
// the presence of a file is itself the index. An unchanged source reuses
// its files across build runs; a changed source produces new filenames, so
// stale entries are never served.
package diskcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vk/imagesetgo/internal/ctxlog"
	"github.com/vk/imagesetgo/internal/identity"
	"github.com/vk/imagesetgo/internal/imaging"
	"github.com/vk/imagesetgo/internal/metrics"
)

// ErrCacheIO is wrapped by errors caused by filesystem failures on the
// cache directory.
var ErrCacheIO = errors.New("cache I/O failure")

// Store is a filesystem variant cache rooted at one directory. Safe for
// concurrent use within a process. The directory may be shared by several
// build processes; the existence-check-then-write pattern is not atomic
// across processes, which is a documented limitation of the design.
type Store struct {
	dir string

	// sourceHashes memoizes per-source content digests for the lifetime of
	// the store, so each source file is read and hashed once per session.
	mu           sync.Mutex
	sourceHashes map[string]string
}

// New creates (if needed) the cache directory and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create cache directory %s: %v", ErrCacheIO, dir, err)
	}
	return &Store{dir: dir, sourceHashes: make(map[string]string)}, nil
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// SourceHash returns the digest of the source file's own bytes, memoized
// per path for the session.
func (s *Store) SourceHash(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sourceHashes[path]; ok {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source file %s: %w", path, err)
	}
	h := identity.HashBytes(data)
	s.sourceHashes[path] = h
	return h, nil
}

// FileName derives the cache filename for a variant:
// {sourceBaseName}.{hash(identity + hash(sourceBytes))}.{format}. Mixing in
// the source's content hash means editing the source under an unchanged
// path yields a new filename instead of a stale serve.
func (s *Store) FileName(sourcePath, id string, format imaging.Format) (string, error) {
	srcHash, err := s.SourceHash(sourcePath)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return fmt.Sprintf("%s.%s.%s", base, identity.HashStrings(id, srcHash), format), nil
}

// EnsureFile returns the bytes cached under name, invoking producer only on
// a miss and persisting its result before returning.
func (s *Store) EnsureFile(ctx context.Context, name string, producer func(context.Context) ([]byte, error)) ([]byte, error) {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path)
	if err == nil {
		metrics.DiskCacheHits.Inc()
		ctxlog.FromContext(ctx).Debug("Disk cache hit.", "file", name)
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to read cache file %s: %v", ErrCacheIO, path, err)
	}

	data, err = producer(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: failed to write cache file %s: %v", ErrCacheIO, path, err)
	}
	ctxlog.FromContext(ctx).Debug("Cache file written.", "file", name, "bytes", len(data))
	return data, nil
}

// Purge deletes every cache file not named in keep. Called once per build,
// after the final set of referenced assets is known. Individual delete
// failures are logged and skipped; listing failure is the only fatal case.
func (s *Store) Purge(ctx context.Context, keep map[string]struct{}) error {
	logger := ctxlog.FromContext(ctx)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("%w: failed to list cache directory %s: %v", ErrCacheIO, s.dir, err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, referenced := keep[entry.Name()]; referenced {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			logger.Warn("Failed to delete unreferenced cache file.", "file", entry.Name(), "error", err)
			continue
		}
		metrics.PurgedFiles.Inc()
		deleted++
	}

	logger.Info("Cache reconciled.", "kept", len(keep), "deleted", deleted)
	return nil
}
