// Package journal persists session snapshots in a bbolt file so that a
// session killed during its hold can be repaired by a later run.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/albibenni/focus/internal/focus/domain"
)

var (
	bucketSessions = []byte("sessions")
	bucketMeta     = []byte("meta")
	keyPending     = []byte("pending")
)

// ErrNotFound is returned by Finish for an unknown record id.
var ErrNotFound = errors.New("journal record not found")

// Store implements the journal on bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the journal at path, creating parent directories.
// bbolt holds an exclusive file lock, so a second focus process fails here
// after a short timeout.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Begin stores r and returns its id. r becomes the pending session unless
// another one is still pending, so recovery always targets the oldest
// unfinished snapshot.
func (s *Store) Begin(r domain.Record) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = seq
		r.ID = id
		r.Outcome = domain.OutcomePending
		if err := putRecord(b, r); err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		if len(meta.Get(keyPending)) == 8 {
			return nil
		}
		return meta.Put(keyPending, itob(id))
	})
	return id, err
}

// Finish records the outcome of session id. Any outcome other than
// OutcomePending clears the pending marker when it points at id.
func (s *Store) Finish(id uint64, outcome domain.Outcome, at time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		r, ok, err := getRecord(b, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		r.Outcome = outcome
		r.EndedAt = at
		if err := putRecord(b, r); err != nil {
			return err
		}
		if outcome == domain.OutcomePending {
			return nil
		}
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keyPending); len(v) == 8 && binary.BigEndian.Uint64(v) == id {
			return meta.Delete(keyPending)
		}
		return nil
	})
}

// Pending returns the unfinished session, if any.
func (s *Store) Pending() (domain.Record, bool, error) {
	var (
		rec domain.Record
		ok  bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyPending)
		if len(v) != 8 {
			return nil
		}
		var err error
		rec, ok, err = getRecord(tx.Bucket(bucketSessions), binary.BigEndian.Uint64(v))
		return err
	})
	return rec, ok, err
}

// History returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) History(limit int) ([]domain.Record, error) {
	var out []domain.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketSessions).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r domain.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding journal record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func putRecord(b *bbolt.Bucket, r domain.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return b.Put(itob(r.ID), data)
}

func getRecord(b *bbolt.Bucket, id uint64) (domain.Record, bool, error) {
	v := b.Get(itob(id))
	if v == nil {
		return domain.Record{}, false, nil
	}
	var r domain.Record
	if err := json.Unmarshal(v, &r); err != nil {
		return domain.Record{}, false, fmt.Errorf("decoding journal record %d: %w", id, err)
	}
	return r, true, nil
}

// itob encodes id big-endian so cursor order matches insertion order.
func itob(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}
