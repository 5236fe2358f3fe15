// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package cache provides key-value store with per entry expiration for query results.
package cache

import (
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	pkgerrors "github.com/pkg/errors"
)

// ErrMiss defines that key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store describes cache store.
type Store interface {
	// Get returns value by key, ErrMiss if there is no live entry.
	Get(key []byte) ([]byte, error)
	// Set stores value, zero ttl means the entry never expires.
	Set(key, value []byte, ttl time.Duration) error
	// Delete removes entry if any.
	Delete(key []byte) error
	// Close releases the store.
	Close() error
}

// Badger implements Store on top of badger with native entry TTL.
type Badger struct {
	db *badger.DB
}

var _ Store = (*Badger)(nil)

// NewBadger opens cache at the given path, in memory when path is empty.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, pkgerrors.Wrapf(err, "cache at %s is locked by another process", path)
		}

		return nil, pkgerrors.Wrapf(err, "open cache at %s", path)
	}

	return &Badger{db: db}, nil
}

// Get returns value by key.
func (b *Badger) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "badger get")
	}

	return value, nil
}

// Set stores value with optional ttl.
func (b *Badger) Set(key, value []byte, ttl time.Duration) error {
	entry := badger.NewEntry(key, value)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})

	return pkgerrors.Wrap(err, "badger set")
}

// Delete removes entry.
func (b *Badger) Delete(key []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})

	return pkgerrors.Wrap(err, "badger delete")
}

// Purge removes all entries.
func (b *Badger) Purge() error {
	return pkgerrors.Wrap(b.db.DropAll(), "badger drop all")
}

// Close closes the store.
func (b *Badger) Close() error {
	return b.db.Close()
}
