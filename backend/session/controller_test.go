package session

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/priyotosh-27/CodeMaster/backend/auth"
	"github.com/priyotosh-27/CodeMaster/backend/errs"
	"github.com/priyotosh-27/CodeMaster/backend/models"
	"github.com/priyotosh-27/CodeMaster/backend/progress"
	"github.com/priyotosh-27/CodeMaster/backend/store"
)

func newTestController(t *testing.T) (*Controller, *store.ProfileStore, *auth.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ProfileRecord{}, &models.LoginHistory{}))

	credentials := auth.NewService(db)
	profiles := store.NewProfileStore(db)
	controller := NewController(credentials, profiles, progress.NewService(profiles))
	return controller, profiles, credentials
}

func TestRegisterValidation(t *testing.T) {
	c, _, _ := newTestController(t)
	ctx := context.Background()

	cases := []struct {
		name, email, password, display string
	}{
		{"short name", "ok@example.com", "password123", "X"},
		{"bad email", "not-an-email", "password123", "Tester"},
		{"short password", "ok@example.com", "12345", "Tester"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Register(ctx, tc.email, tc.password, tc.display)
			var validation *errs.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
	assert.Nil(t, c.Current())
}

func TestRegisterCreatesZeroedProfile(t *testing.T) {
	c, profiles, _ := newTestController(t)
	ctx := context.Background()

	doc, err := c.Register(ctx, "New@Example.com", "password123", "Newbie")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", doc.Email)

	stored, err := profiles.Get(ctx, doc.UID)
	require.NoError(t, err)
	for _, cat := range models.TestCategories {
		assert.Equal(t, 0, stored.TestProgress[cat].Attempts)
		assert.Empty(t, stored.TestProgress[cat].Scores)
	}
	for _, cat := range models.ChallengeCategories {
		assert.Empty(t, stored.ChallengeProgress[cat].SolvedIDs)
	}

	mirror := c.Current()
	require.NotNil(t, mirror)
	assert.Equal(t, stored.UID, mirror.UID)
}

func TestLoginFailureLeavesMirrorUnchanged(t *testing.T) {
	c, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "tester@example.com", "password123", "Tester")
	require.NoError(t, err)
	before := c.Current()
	require.NotNil(t, before)

	var authErr *errs.AuthError

	_, err = c.Login(ctx, "tester@example.com", "wrongpass")
	assert.True(t, errors.As(err, &authErr))
	assert.Equal(t, before.UID, c.Current().UID)

	_, err = c.Login(ctx, "stranger@example.com", "password123")
	assert.True(t, errors.As(err, &authErr))
	assert.Equal(t, before.UID, c.Current().UID)
}

func TestLoginRefreshesTimestampsAndMirror(t *testing.T) {
	c, _, _ := newTestController(t)
	ctx := context.Background()

	registered, err := c.Register(ctx, "tester@example.com", "password123", "Tester")
	require.NoError(t, err)

	loggedIn, err := c.Login(ctx, "tester@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.UID, loggedIn.UID)
	assert.False(t, loggedIn.LastLogin.Before(registered.LastLogin))
	assert.Equal(t, loggedIn.UID, c.Current().UID)
}

func TestLoginRecreatesMissingProfile(t *testing.T) {
	c, _, credentials := newTestController(t)
	ctx := context.Background()

	// An identity without a document, as left behind by a failed
	// registration. Login must heal it.
	user, err := credentials.CreateIdentity(ctx, "orphan@example.com", "password123", "Orphan")
	require.NoError(t, err)

	doc, err := c.Login(ctx, "orphan@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, doc.UID)
	assert.Equal(t, "Orphan", doc.Name)
	assert.Equal(t, 0, doc.Streak)
}

func TestLogoutIsSafeWithoutSession(t *testing.T) {
	c, _, _ := newTestController(t)

	c.Logout()
	assert.Nil(t, c.Current())

	_, err := c.Register(context.Background(), "tester@example.com", "password123", "Tester")
	require.NoError(t, err)
	c.Logout()
	assert.Nil(t, c.Current())
	c.Logout()
	assert.Nil(t, c.Current())
}

func TestProgressOpsRequireSession(t *testing.T) {
	c, _, _ := newTestController(t)
	ctx := context.Background()

	var notAuthed *errs.NotAuthenticatedError

	_, err := c.RecordTestResult(ctx, "dsa", 90)
	assert.True(t, errors.As(err, &notAuthed))
	_, err = c.RecordSolvedChallenge(ctx, "basic", "two-sum")
	assert.True(t, errors.As(err, &notAuthed))
	_, err = c.RecordNoteAccess(ctx, "python")
	assert.True(t, errors.As(err, &notAuthed))
	_, err = c.IncrementStreak(ctx)
	assert.True(t, errors.As(err, &notAuthed))
}

func TestProgressOpsKeepMirrorConsistent(t *testing.T) {
	c, profiles, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "tester@example.com", "password123", "Tester")
	require.NoError(t, err)

	_, err = c.RecordTestResult(ctx, "java", 75)
	require.NoError(t, err)
	_, err = c.RecordTestResult(ctx, "java", 90)
	require.NoError(t, err)
	_, err = c.RecordSolvedChallenge(ctx, "company", "merge-intervals")
	require.NoError(t, err)
	_, err = c.RecordNoteAccess(ctx, "dsa")
	require.NoError(t, err)
	_, err = c.IncrementStreak(ctx)
	require.NoError(t, err)

	mirror := c.Current()
	stored, err := profiles.Get(ctx, mirror.UID)
	require.NoError(t, err)

	assert.Equal(t, stored.TestProgress, mirror.TestProgress)
	assert.Equal(t, stored.ChallengeProgress, mirror.ChallengeProgress)
	assert.Equal(t, stored.SavedNotes, mirror.SavedNotes)
	assert.Equal(t, stored.Streak, mirror.Streak)
	assert.Equal(t, 2, mirror.TestProgress["java"].Attempts)
	assert.Equal(t, []float64{75, 90}, mirror.TestProgress["java"].Scores)
	assert.Equal(t, []string{"merge-intervals"}, mirror.ChallengeProgress["company"].SolvedIDs)
	assert.Equal(t, []string{"dsa"}, mirror.SavedNotes)
	assert.Equal(t, 1, mirror.Streak)
}

func TestProgressFailureLeavesMirrorUnchanged(t *testing.T) {
	c, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "tester@example.com", "password123", "Tester")
	require.NoError(t, err)
	before := c.Current()

	_, err = c.RecordTestResult(ctx, "cobol", 50)
	var validation *errs.ValidationError
	assert.True(t, errors.As(err, &validation))
	assert.Equal(t, before, c.Current())
}

func TestOnAuthChangeFollowsProviderEvents(t *testing.T) {
	c, _, credentials := newTestController(t)
	ctx := context.Background()

	var seen []string
	c.OnAuthChange(func(doc *models.ProfileDocument) {
		if doc == nil {
			seen = append(seen, "out")
		} else {
			seen = append(seen, "in:"+doc.Email)
		}
	})

	_, err := c.Register(ctx, "tester@example.com", "password123", "Tester")
	require.NoError(t, err)
	c.Logout()

	// A provider-side session restore with no explicit Login call.
	_, err = credentials.Authenticate(ctx, "tester@example.com", "password123")
	require.NoError(t, err)

	require.NotNil(t, c.Current())
	assert.Equal(t, "tester@example.com", c.Current().Email)
	assert.Equal(t, []string{"in:tester@example.com", "out", "in:tester@example.com"}, seen)
}
