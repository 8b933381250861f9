// Package store wraps the bbolt database that holds repository metadata.
package store

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// ErrKeyNotFound is returned by Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Buckets
var (
	BucketTimelines = []byte("timelines") // timeline name -> JSON record
	BucketMeta      = []byte("meta")      // HEAD and other singletons
	BucketSelection = []byte("selection") // timeline name -> "1" selected / "0" deselected
)

var buckets = [][]byte{BucketTimelines, BucketMeta, BucketSelection}

type DB struct{ *bbolt.DB }

// Open opens (or creates) the database at path and ensures all buckets exist.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0666, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, e := tx.CreateBucketIfNotExists(name); e != nil {
				return e
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func (db *DB) Close() error { return db.DB.Close() }

// Put stores key -> value in bucket.
func (db *DB) Put(bucket, key, value []byte) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

// Get returns a copy of the value for key. Values returned by bbolt are only
// valid inside the transaction.
func (db *DB) Get(bucket, key []byte) ([]byte, error) {
	var value []byte
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

// Delete removes key from bucket. Deleting an absent key is not an error.
func (db *DB) Delete(bucket, key []byte) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

// ForEach calls fn for every pair in bucket in key order. The slices are
// only valid during the call.
func (db *DB) ForEach(bucket []byte, fn func(k, v []byte) error) error {
	return db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(fn)
	})
}

// Clear deletes every key of bucket.
func (db *DB) Clear(bucket []byte) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucket)
		return err
	})
}
