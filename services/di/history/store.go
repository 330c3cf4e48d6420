// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDI/services/di/model"
	"github.com/AleutianAI/AleutianDI/services/di/stats"
)

const (
	runPrefix = "run/"
	idPrefix  = "id/"
)

// RunRecord is one stored analysis run.
type RunRecord struct {
	ID             string                  `json:"id"`
	Label          string                  `json:"label,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	ComponentCount int                     `json:"componentCount"`
	Metrics        stats.AccuracyMetrics   `json:"metrics"`
	IssueCounts    map[model.IssueType]int `json:"issueCounts"`
}

// Store is a BadgerDB-backed run history.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	gc     *gcRunner
	mu     sync.RWMutex
	closed bool
	now    func() time.Time

	// clockMu guards last so generated CreatedAt values strictly increase.
	clockMu sync.Mutex
	last    time.Time
}

// Open opens or creates a store.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: time.Now}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		runner, err := newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create GC runner: %w", err)
		}
		s.gc = runner
		runner.start()
	}
	return s, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return Open(InMemoryConfig())
}

// Close stops GC and closes the database. Safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}

// Save stores a run. Missing ID and CreatedAt are filled in; the stored
// record is returned.
func (s *Store) Save(ctx context.Context, rec RunRecord) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return RunRecord{}, ErrStoreClosed
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.nextTimestamp()
	}
	if rec.IssueCounts == nil {
		rec.IssueCounts = make(map[model.IssueType]int)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal run %s: %w", rec.ID, err)
	}
	key := runKey(rec)

	err = withTxn(ctx, s.db, true, func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(idPrefix+rec.ID), key)
	})
	if err != nil {
		return RunRecord{}, fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns the run with the given ID, or ErrRunNotFound.
func (s *Store) Get(ctx context.Context, id string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return RunRecord{}, ErrStoreClosed
	}

	var rec RunRecord
	err := withTxn(ctx, s.db, false, func(txn *badger.Txn) error {
		ref, err := txn.Get([]byte(idPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return err
		}
		key, err := ref.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRunNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// Latest returns the most recent run, or ErrRunNotFound when empty.
func (s *Store) Latest(ctx context.Context) (RunRecord, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return RunRecord{}, err
	}
	if len(runs) == 0 {
		return RunRecord{}, ErrRunNotFound
	}
	return runs[0], nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	runs := make([]RunRecord, 0)
	err := withTxn(ctx, s.db, false, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append([]byte(runPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(runPrefix)); it.Next() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var rec RunRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			runs = append(runs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// nextTimestamp returns now, nudged past the previous generated timestamp
// so runs saved back to back keep their save order.
func (s *Store) nextTimestamp() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	ts := s.now().UTC()
	if !ts.After(s.last) {
		ts = s.last.Add(time.Nanosecond)
	}
	s.last = ts
	return ts
}

func runKey(rec RunRecord) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", runPrefix, rec.CreatedAt.UnixNano(), rec.ID))
}
