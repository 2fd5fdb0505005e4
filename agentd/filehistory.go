package agentd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// FileHistory persists each session as one JSON file under a directory, so
// conversations survive restarts without a redis server. The TTL counts from
// the session's last write.
type FileHistory struct {
	mu   sync.Mutex
	root string
	ttl  time.Duration
	max  int
}

type fileRecord struct {
	OrderID   string     `json:"order_id,omitempty"`
	Exchanges []Exchange `json:"exchanges"`
	Touched   time.Time  `json:"touched"`
}

// NewFileHistory creates root if needed and returns a store rooted there.
func NewFileHistory(root string, ttl time.Duration, max int) (*FileHistory, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistory, err)
	}
	return &FileHistory{root: root, ttl: ttl, max: max}, nil
}

// path maps a session id to a file name. Session ids come from clients, so
// they are encoded rather than joined.
func (h *FileHistory) path(sessionID string) string {
	return filepath.Join(h.root, base64.RawURLEncoding.EncodeToString([]byte(sessionID))+".json")
}

func (h *FileHistory) read(sessionID string) (fileRecord, error) {
	path := h.path(sessionID)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileRecord{}, nil
		}
		return fileRecord{}, fmt.Errorf("%w: %v", ErrHistory, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, fmt.Errorf("%w: decode %s: %v", ErrHistory, sessionID, err)
	}

	if h.ttl > 0 && time.Since(rec.Touched) > h.ttl {
		os.Remove(path)
		return fileRecord{}, nil
	}
	return rec, nil
}

func (h *FileHistory) write(sessionID string, rec fileRecord) error {
	rec.Touched = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrHistory, sessionID, err)
	}

	tmp, err := os.CreateTemp(h.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	if err := os.Rename(tmpName, h.path(sessionID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	return nil
}

func (h *FileHistory) Load(ctx context.Context, sessionID string, limit int) (Conversation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.read(sessionID)
	if err != nil {
		return Conversation{}, err
	}

	history := rec.Exchanges
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return Conversation{OrderID: rec.OrderID, History: slices.Clone(history)}, nil
}

func (h *FileHistory) SetOrder(ctx context.Context, sessionID, orderID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.read(sessionID)
	if err != nil {
		return err
	}
	rec.OrderID = orderID
	return h.write(sessionID, rec)
}

func (h *FileHistory) Append(ctx context.Context, sessionID string, ex Exchange) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.read(sessionID)
	if err != nil {
		return err
	}
	rec.Exchanges = append(rec.Exchanges, stamp(ex))
	if h.max > 0 && len(rec.Exchanges) > h.max {
		rec.Exchanges = rec.Exchanges[len(rec.Exchanges)-h.max:]
	}
	return h.write(sessionID, rec)
}

// Ping checks that the directory is still there.
func (h *FileHistory) Ping(ctx context.Context) error {
	info, err := os.Stat(h.root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrHistory, h.root)
	}
	return nil
}

func (h *FileHistory) Close() error { return nil }
