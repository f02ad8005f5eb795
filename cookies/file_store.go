package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore is a MemoryStore persisted as JSON, used by command line clients
// that outlive a single process.
type FileStore struct {
	*MemoryStore
	path    string
	nowTime func() time.Time
}

var _ Store = (*FileStore)(nil)

// OpenFileStore loads the cookie file at path, dropping cookies expired at now.
// Max-Age cookies set later are anchored at now. A missing file yields an
// empty store.
func OpenFileStore(path string, now time.Time) (*FileStore, error) {
	fs := &FileStore{MemoryStore: NewMemoryStore(), path: path, nowTime: func() time.Time { return now }}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie file %s: %w", path, err)
	}

	var saved []Cookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode cookie file %s: %w", path, err)
	}
	for _, c := range saved {
		if c.ExpiredAt(now) {
			continue
		}
		fs.Set(c)
	}
	return fs, nil
}

// Set stores the cookie. Max-Age is relative to when the cookie was received,
// so it is pinned to an absolute Expires that survives a save and reload.
func (fs *FileStore) Set(cookie Cookie) {
	if cookie.MaxAge > 0 && cookie.Expires.IsZero() {
		cookie.Expires = fs.nowTime().Add(time.Duration(cookie.MaxAge) * time.Second).UTC()
	}
	fs.MemoryStore.Set(cookie)
}

// Save writes the store back to disk with owner-only permissions.
func (fs *FileStore) Save() error {
	data, err := json.MarshalIndent(fs.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file %s: %w", fs.path, err)
	}
	return nil
}
