// Package store persists chat state to a local JSON file so a restart does
// not lose conversation history. Writes are debounced: per-token updates
// during streaming collapse into infrequent disk writes.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/learnnova/learnnova-cli/internal/model/chat"
)

const defaultDebounce = 300 * time.Millisecond

// WriteFunc writes one serialized snapshot to its destination. Tests replace
// it to count or fail writes.
type WriteFunc func(path string, data []byte) error

// Option configures a FileStore.
type Option func(*FileStore)

// WithWriteFunc swaps the on-disk write implementation.
func WithWriteFunc(write WriteFunc) Option {
	return func(s *FileStore) { s.write = write }
}

// FileStore is the durable local cache of chat threads. The on-disk snapshot
// is always replaced whole; there is no partial or diffed update.
type FileStore struct {
	path      string
	logger    *zap.Logger
	debouncer *Debouncer
	write     WriteFunc

	mu      sync.Mutex
	pending *chat.Snapshot
}

// NewFileStore builds a store writing to path. A non-positive debounce falls
// back to the default window; a nil logger to a no-op one.
func NewFileStore(path string, debounce time.Duration, logger *zap.Logger, opts ...Option) *FileStore {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		path:      path,
		logger:    logger,
		debouncer: NewDebouncer(debounce),
		write:     writeFileAtomic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the last persisted snapshot. A missing file or a snapshot that
// no longer parses both load as the empty state: the local cache must never
// stop startup. Only a file that exists but cannot be read reports an error.
func (s *FileStore) Load() (chat.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return chat.EmptySnapshot(), nil
		}
		return chat.EmptySnapshot(), fmt.Errorf("read state file: %w", err)
	}

	var snap chat.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("state file corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err))
		return chat.EmptySnapshot(), nil
	}
	if snap.Threads == nil {
		snap.Threads = make(map[chat.ThreadID]chat.Thread)
	}
	return snap, nil
}

// SaveDebounced records snap as the state to persist and schedules a write
// once the debounce window passes without another save. Each call replaces
// the previously pending snapshot.
func (s *FileStore) SaveDebounced(snap chat.Snapshot) {
	s.mu.Lock()
	s.pending = &snap
	s.mu.Unlock()

	s.debouncer.Debounce(func() {
		if err := s.flushPending(); err != nil {
			s.logger.Warn("state save failed", zap.Error(err))
		}
	})
}

// Flush writes any pending snapshot now, bypassing the debounce window. Call
// on shutdown so the tail of a stream is not lost to the timer.
func (s *FileStore) Flush() error {
	s.debouncer.Cancel()
	return s.flushPending()
}

// Close flushes pending state and stops the debounce timer.
func (s *FileStore) Close() error {
	return s.Flush()
}

func (s *FileStore) flushPending() error {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()

	if snap == nil {
		return nil
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return s.write(s.path, data)
}

// writeFileAtomic replaces path via a temp file and rename so a crash
// mid-write cannot leave a truncated snapshot behind.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
