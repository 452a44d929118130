package feedback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

// DefaultPath is feedback.txt in $TEMP, or /tmp when TEMP is unset.
func DefaultPath() string {
	dir := os.Getenv("TEMP")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, "feedback.txt")
}

// FileStore appends one "timestamp: text" line per entry.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open feedback file")
	}
	defer f.Close()

	// one line per entry keeps the file greppable
	text := strings.ReplaceAll(entry.Text, "\n", " ")
	if _, err := fmt.Fprintf(f, "%s: %s\n", entry.CreatedAt.Format(timestampLayout), text); err != nil {
		return errors.Wrap(err, "write feedback")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
