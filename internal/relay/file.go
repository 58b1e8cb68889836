package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/domain/order"
)

// FileStore persists the pending decision slot as a JSON file on disk, so a
// decision captured just before a process restart survives to the next
// consumer activation on the same host.
type FileStore struct {
	// path is the filesystem location of the pending JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// NewFileStore creates a store that reads/writes JSON at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Put stores the decision with the single-slot overwrite rules.
func (f *FileStore) Put(_ context.Context, pending *order.PendingDecision) error {
	if pending == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}

	// Same-order redelivery attempts are idempotent no-ops.
	if current != nil && current.OrderID == pending.OrderID {
		return nil
	}

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending decision: %w", err)
	}

	if err := os.WriteFile(f.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write pending file: %w", err)
	}

	return nil
}

// Take returns the stored decision and removes the file under the same lock,
// so the read-and-clear is atomic towards other users of this store.
func (f *FileStore) Take(_ context.Context) (*order.PendingDecision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending, err := f.read()
	if err != nil {
		return nil, err
	}

	if pending == nil {
		return nil, nil
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("clear pending file: %w", err)
	}

	return pending, nil
}

// read loads the slot from disk; missing file means an empty slot.
// Callers must hold mu.
func (f *FileStore) read() (*order.PendingDecision, error) {
	contents, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read pending file: %w", err)
	}

	var pending order.PendingDecision
	if err := json.Unmarshal(contents, &pending); err != nil {
		// A corrupt slot is dropped rather than wedging the relay.
		return nil, nil
	}

	return &pending, nil
}
