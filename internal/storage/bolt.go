package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

const (
	// settingsFileName is the bolt database file under the lantern home.
	settingsFileName = "settings.db"

	// settingsFilePermissions is the permission mode for the database file.
	settingsFilePermissions = 0o600

	// settingsDirPermissions is the permission mode for the home directory.
	settingsDirPermissions = 0o700

	// openTimeout bounds how long we wait for the bolt file lock, so a
	// second lantern process fails fast instead of hanging.
	openTimeout = 3 * time.Second
)

// settingsBucket is the single bucket holding all key-value pairs.
var settingsBucket = []byte("settings")

// SettingsStore is the general-purpose durable store, backed by bolt.
type SettingsStore struct {
	db *bolt.DB
}

// OpenSettings opens (creating if necessary) the settings database under dir.
func OpenSettings(dir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dir, settingsDirPermissions); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	path := filepath.Join(dir, settingsFileName)
	db, err := bolt.Open(path, settingsFilePermissions, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, bErr := tx.CreateBucketIfNotExists(settingsBucket)
		return bErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing settings bucket: %w", err)
	}

	return &SettingsStore{db: db}, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *SettingsStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(settingsBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// The slice is only valid inside the transaction.
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set writes the value for key, replacing any previous value. The write is
// atomic: bolt commits the transaction or leaves the old value intact.
func (s *SettingsStore) Set(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Put([]byte(key), value)
	})
}

// Delete removes the key. Deleting a missing key is not an error.
func (s *SettingsStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settingsBucket).Delete([]byte(key))
	})
}

// Close closes the underlying database.
func (s *SettingsStore) Close() error {
	return s.db.Close()
}
