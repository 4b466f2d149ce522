// Package store persists finalized draw reports so past draws can be
// fetched and re-verified later. Pending and failed draws are never stored.
package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"btcdraw/internal/models"
	"btcdraw/internal/report"
)

var drawsBucket = []byte("draws")

// ErrNotFound is returned when no draw exists under the requested id.
var ErrNotFound = errors.New("draw not found")

// DrawRecord is one archived draw.
type DrawRecord struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Report    *report.Report      `json:"report"`
	Outcome   *models.DrawOutcome `json:"outcome"`
}

// Store is a single-file bbolt archive of draw records.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store file.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(drawsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDraw archives a finalized draw and returns its generated id.
func (s *Store) SaveDraw(rep *report.Report, outcome *models.DrawOutcome) (*DrawRecord, error) {
	record := &DrawRecord{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Report:    rep,
		Outcome:   outcome,
	}
	buf, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(drawsBucket).Put([]byte(record.ID), buf)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetDraw fetches one archived draw by id.
func (s *Store) GetDraw(id string) (*DrawRecord, error) {
	var record *DrawRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		buf := tx.Bucket(drawsBucket).Get([]byte(id))
		if buf == nil {
			return ErrNotFound
		}
		record = &DrawRecord{}
		return json.Unmarshal(buf, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListDraws returns all archived draws in key order.
func (s *Store) ListDraws() ([]*DrawRecord, error) {
	var list []*DrawRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(drawsBucket).ForEach(func(_, buf []byte) error {
			record := &DrawRecord{}
			if err := json.Unmarshal(buf, record); err != nil {
				return err
			}
			list = append(list, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
