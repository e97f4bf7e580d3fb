package models

import (
	"time"

	"github.com/priyotosh-27/CodeMaster/backend/errs"
)

// The fixed category sets the platform recognizes. Recording operations
// reject anything outside them.
var (
	TestCategories      = []string{"programming", "java", "dsa", "general"}
	ChallengeCategories = []string{"basic", "company", "interview"}
)

type TestCategoryProgress struct {
	Attempts int       `json:"attempts"`
	Scores   []float64 `json:"scores"`
}

type ChallengeCategoryProgress struct {
	SolvedCount int      `json:"solvedCount"`
	SolvedIDs   []string `json:"solvedIds"`
}

type ProfilePrefs struct {
	Theme string `json:"theme"`
	Bio   string `json:"bio"`
}

// ProfileDocument is the canonical per-identity progress document. All
// update rules live on this type so every layer applies the same semantics.
type ProfileDocument struct {
	UID               string                                `json:"uid"`
	Name              string                                `json:"name"`
	Email             string                                `json:"email"`
	Streak            int                                   `json:"streak"`
	SavedNotes        []string                              `json:"savedNotes"`
	TestProgress      map[string]*TestCategoryProgress      `json:"testProgress"`
	ChallengeProgress map[string]*ChallengeCategoryProgress `json:"challengeProgress"`
	Profile           ProfilePrefs                          `json:"profile"`
	CreatedAt         time.Time                             `json:"createdAt"`
	UpdatedAt         time.Time                             `json:"updatedAt"`
	LastLogin         time.Time                             `json:"lastLogin"`

	// LegacySolved carries the flat solved-challenge list written by older
	// document shapes. Normalize folds it into ChallengeProgress and clears it.
	LegacySolved []string `json:"solvedChallenges,omitempty"`
}

// NewProfileDocument returns the zeroed canonical document for a fresh
// registration: every counter at zero, every list empty, theme "light".
func NewProfileDocument(uid, name, email string, now time.Time) *ProfileDocument {
	doc := &ProfileDocument{
		UID:        uid,
		Name:       name,
		Email:      email,
		SavedNotes: []string{},
		Profile:    ProfilePrefs{Theme: "light"},
		CreatedAt:  now,
		UpdatedAt:  now,
		LastLogin:  now,
	}
	doc.Normalize()
	return doc
}

// Normalize backfills a document written under an older shape to the
// canonical one. It is idempotent and applied on every load:
//   - missing category entries get zero values
//   - a legacy flat solvedChallenges list migrates into the basic category
//   - duplicate note and challenge ids are dropped, counts recomputed
func (d *ProfileDocument) Normalize() {
	if d.SavedNotes == nil {
		d.SavedNotes = []string{}
	}
	d.SavedNotes = dedupe(d.SavedNotes)

	if d.TestProgress == nil {
		d.TestProgress = make(map[string]*TestCategoryProgress, len(TestCategories))
	}
	for _, cat := range TestCategories {
		if d.TestProgress[cat] == nil {
			d.TestProgress[cat] = &TestCategoryProgress{Scores: []float64{}}
		} else if d.TestProgress[cat].Scores == nil {
			d.TestProgress[cat].Scores = []float64{}
		}
	}

	if d.ChallengeProgress == nil {
		d.ChallengeProgress = make(map[string]*ChallengeCategoryProgress, len(ChallengeCategories))
	}
	for _, cat := range ChallengeCategories {
		if d.ChallengeProgress[cat] == nil {
			d.ChallengeProgress[cat] = &ChallengeCategoryProgress{SolvedIDs: []string{}}
		}
	}

	if len(d.LegacySolved) > 0 {
		basic := d.ChallengeProgress["basic"]
		for _, id := range d.LegacySolved {
			if !contains(basic.SolvedIDs, id) {
				basic.SolvedIDs = append(basic.SolvedIDs, id)
			}
		}
		d.LegacySolved = nil
	}

	for _, cat := range ChallengeCategories {
		cp := d.ChallengeProgress[cat]
		cp.SolvedIDs = dedupe(cp.SolvedIDs)
		cp.SolvedCount = len(cp.SolvedIDs)
	}

	if d.Profile.Theme == "" {
		d.Profile.Theme = "light"
	}
}

// Touch refreshes the mutation timestamp. Every mutating operation calls it.
func (d *ProfileDocument) Touch(now time.Time) {
	d.UpdatedAt = now
}

// RecordTestResult counts one more attempt and appends the score. Scores are
// an append log, so repeated identical values are kept.
func (d *ProfileDocument) RecordTestResult(category string, score float64, now time.Time) error {
	if !ValidTestCategory(category) {
		return &errs.ValidationError{Field: "category", Message: "unknown test category: " + category}
	}
	tp := d.TestProgress[category]
	tp.Attempts++
	tp.Scores = append(tp.Scores, score)
	d.Touch(now)
	return nil
}

// RecordSolvedChallenge marks a challenge solved. Solving the same challenge
// twice is a success no-op; otherwise the id is appended and the count
// incremented together. Returns whether the document changed.
func (d *ProfileDocument) RecordSolvedChallenge(category, challengeID string, now time.Time) (bool, error) {
	if !ValidChallengeCategory(category) {
		return false, &errs.ValidationError{Field: "category", Message: "unknown challenge category: " + category}
	}
	if challengeID == "" {
		return false, &errs.ValidationError{Field: "challengeId", Message: "challenge id is required"}
	}
	cp := d.ChallengeProgress[category]
	if contains(cp.SolvedIDs, challengeID) {
		return false, nil
	}
	cp.SolvedIDs = append(cp.SolvedIDs, challengeID)
	cp.SolvedCount++
	d.Touch(now)
	return true, nil
}

// RecordNoteAccess saves a note id if it is not saved yet. Idempotent.
func (d *ProfileDocument) RecordNoteAccess(noteID string, now time.Time) (bool, error) {
	if noteID == "" {
		return false, &errs.ValidationError{Field: "noteId", Message: "note id is required"}
	}
	if contains(d.SavedNotes, noteID) {
		return false, nil
	}
	d.SavedNotes = append(d.SavedNotes, noteID)
	d.Touch(now)
	return true, nil
}

// IncrementStreak adds one to the streak counter. There is no upper bound
// and no reset rule here; the trigger decides when to call it.
func (d *ProfileDocument) IncrementStreak(now time.Time) {
	d.Streak++
	d.Touch(now)
}

// Clone returns a deep copy so the session mirror never aliases store state.
func (d *ProfileDocument) Clone() *ProfileDocument {
	out := *d
	out.SavedNotes = append([]string(nil), d.SavedNotes...)
	out.TestProgress = make(map[string]*TestCategoryProgress, len(d.TestProgress))
	for cat, tp := range d.TestProgress {
		cp := *tp
		cp.Scores = append([]float64(nil), tp.Scores...)
		out.TestProgress[cat] = &cp
	}
	out.ChallengeProgress = make(map[string]*ChallengeCategoryProgress, len(d.ChallengeProgress))
	for cat, chp := range d.ChallengeProgress {
		cp := *chp
		cp.SolvedIDs = append([]string(nil), chp.SolvedIDs...)
		out.ChallengeProgress[cat] = &cp
	}
	out.LegacySolved = append([]string(nil), d.LegacySolved...)
	out.Normalize()
	return &out
}

func ValidTestCategory(category string) bool {
	return contains(TestCategories, category)
}

func ValidChallengeCategory(category string) bool {
	return contains(ChallengeCategories, category)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
