package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketPrefix = "session:"

// BoltDriver keeps the session in a bbolt database, one bucket per namespace.
type BoltDriver struct {
	db     *bbolt.DB
	bucket []byte
}

var _ Driver = (*BoltDriver)(nil)

// NewBoltDriver wraps an open database.
func NewBoltDriver(db *bbolt.DB, namespace string) *BoltDriver {
	return &BoltDriver{db: db, bucket: []byte(boltBucketPrefix + namespace)}
}

// OpenBoltDriver opens (or creates) the database file at path.
func OpenBoltDriver(path string, namespace string) (*BoltDriver, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewBoltDriver(db, namespace), nil
}

func (d *BoltDriver) Load(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := d.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(d.bucket)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		value, found = string(data), true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

func (d *BoltDriver) Save(_ context.Context, key string, value string) error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(d.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (d *BoltDriver) Delete(_ context.Context, key string) error {
	return d.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(d.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (d *BoltDriver) Close() error {
	return d.db.Close()
}
