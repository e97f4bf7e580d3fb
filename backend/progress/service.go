// Package progress applies the recording operations to profile documents.
// Each operation loads the current document, mutates it and writes it back
// in a single store call; there are no automatic retries.
package progress

import (
	"context"
	"time"

	"github.com/priyotosh-27/CodeMaster/backend/models"
)

// Store is the slice of the document store the recording operations need.
type Store interface {
	Patch(ctx context.Context, id string, mutate func(*models.ProfileDocument) error) (*models.ProfileDocument, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RecordTestResult counts an attempt and appends the score for the category.
// Each call is a new attempt; this is deliberately not idempotent.
func (s *Service) RecordTestResult(ctx context.Context, id, category string, score float64) (*models.ProfileDocument, error) {
	return s.store.Patch(ctx, id, func(doc *models.ProfileDocument) error {
		return doc.RecordTestResult(category, score, s.now().UTC())
	})
}

// RecordSolvedChallenge marks a challenge solved. An already-solved id is a
// success no-op that still refreshes nothing.
func (s *Service) RecordSolvedChallenge(ctx context.Context, id, category, challengeID string) (*models.ProfileDocument, error) {
	return s.store.Patch(ctx, id, func(doc *models.ProfileDocument) error {
		_, err := doc.RecordSolvedChallenge(category, challengeID, s.now().UTC())
		return err
	})
}

// RecordNoteAccess saves a note id; idempotent.
func (s *Service) RecordNoteAccess(ctx context.Context, id, noteID string) (*models.ProfileDocument, error) {
	return s.store.Patch(ctx, id, func(doc *models.ProfileDocument) error {
		_, err := doc.RecordNoteAccess(noteID, s.now().UTC())
		return err
	})
}

// IncrementStreak adds one to the streak counter.
func (s *Service) IncrementStreak(ctx context.Context, id string) (*models.ProfileDocument, error) {
	return s.store.Patch(ctx, id, func(doc *models.ProfileDocument) error {
		doc.IncrementStreak(s.now().UTC())
		return nil
	})
}
