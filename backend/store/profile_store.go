// Package store persists profile documents keyed by identity id. It exposes
// document-store semantics (get, set, patch, ensure) over a GORM table with
// a JSON column, so the progress layer never sees SQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/priyotosh-27/CodeMaster/backend/errs"
	"github.com/priyotosh-27/CodeMaster/backend/models"
)

type ProfileStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db, now: time.Now}
}

// Get loads and normalizes the document for id. A missing document is
// reported as a StorageError wrapping errs.ErrProfileNotFound.
func (s *ProfileStore) Get(ctx context.Context, id string) (*models.ProfileDocument, error) {
	var rec models.ProfileRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &errs.StorageError{Op: "get", Err: errs.ErrProfileNotFound}
		}
		return nil, &errs.StorageError{Op: "get", Err: err}
	}
	return decodeDocument(rec.Document)
}

// Set writes the full document for id, creating the row if needed.
func (s *ProfileStore) Set(ctx context.Context, id string, doc *models.ProfileDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return &errs.StorageError{Op: "set", Err: err}
	}
	rec := models.ProfileRecord{
		UserID:    id,
		Document:  datatypes.JSON(payload),
		UpdatedAt: s.now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return &errs.StorageError{Op: "set", Err: err}
	}
	return nil
}

// Patch loads the current document, applies mutate to it and writes it back.
// Because mutate runs on the freshly loaded document, related fields (for
// example a solved id and its counter) land in the same write.
func (s *ProfileStore) Patch(ctx context.Context, id string, mutate func(*models.ProfileDocument) error) (*models.ProfileDocument, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(doc); err != nil {
		return nil, err
	}
	if err := s.Set(ctx, id, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Ensure creates the document if it does not exist yet. Re-running it on an
// existing document never overwrites fields; it only refreshes timestamps.
func (s *ProfileStore) Ensure(ctx context.Context, id string, fresh *models.ProfileDocument) (*models.ProfileDocument, error) {
	_, err := s.Get(ctx, id)
	if err == nil {
		return s.Patch(ctx, id, func(d *models.ProfileDocument) error {
			d.Touch(s.now().UTC())
			return nil
		})
	}
	if !errors.Is(err, errs.ErrProfileNotFound) {
		return nil, err
	}
	if err := s.Set(ctx, id, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func decodeDocument(payload datatypes.JSON) (*models.ProfileDocument, error) {
	var doc models.ProfileDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &errs.StorageError{Op: "decode", Err: err}
	}
	doc.Normalize()
	return &doc, nil
}
