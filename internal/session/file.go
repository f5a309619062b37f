package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileDriver stores the session as a small JSON document. Every write
// replaces the file atomically so a crash never leaves a half-written file.
type FileDriver struct {
	path string
	mu   sync.Mutex
}

var _ Driver = (*FileDriver)(nil)

func NewFileDriver(path string) (*FileDriver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session file path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	return &FileDriver{path: path}, nil
}

func (d *FileDriver) Load(_ context.Context, key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := d.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (d *FileDriver) Save(_ context.Context, key string, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := d.readLocked()
	if err != nil {
		// An unreadable file is replaced rather than blocking new logins.
		data = map[string]string{}
	}
	data[key] = value
	return d.writeLocked(data)
}

func (d *FileDriver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := d.readLocked()
	if err != nil {
		return d.writeLocked(map[string]string{})
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return d.writeLocked(data)
}

func (d *FileDriver) Close() error { return nil }

func (d *FileDriver) readLocked() (map[string]string, error) {
	raw, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]string{}, nil
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return data, nil
}

func (d *FileDriver) writeLocked(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
