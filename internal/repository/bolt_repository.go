package repository

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("storefront")

type BoltRepository struct {
	db *bolt.DB
}

// NewBoltRepository opens (or creates) the bbolt file at path.
func NewBoltRepository(path string) (*BoltRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

func (r *BoltRepository) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *BoltRepository) Put(_ context.Context, key string, value []byte) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (r *BoltRepository) Close() error {
	return r.db.Close()
}
