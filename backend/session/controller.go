// Package session bridges the credential store to the profile document store
// and keeps an in-memory mirror of the signed-in user's document for
// synchronous reads.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/priyotosh-27/CodeMaster/backend/errs"
	"github.com/priyotosh-27/CodeMaster/backend/models"
	"github.com/priyotosh-27/CodeMaster/backend/progress"
)

// Matches the address check the registration form applies.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CredentialStore authenticates identities and delivers auth-change events.
type CredentialStore interface {
	CreateIdentity(ctx context.Context, email, password, name string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	EndSession()
	Subscribe(fn func(*models.User))
}

// ProfileStore is the slice of the document store the controller needs.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*models.ProfileDocument, error)
	Set(ctx context.Context, id string, doc *models.ProfileDocument) error
	Ensure(ctx context.Context, id string, fresh *models.ProfileDocument) (*models.ProfileDocument, error)
}

type Controller struct {
	creds    CredentialStore
	profiles ProfileStore
	progress *progress.Service
	now      func() time.Time

	mu        sync.RWMutex
	current   *models.ProfileDocument
	callbacks []func(*models.ProfileDocument)
}

// NewController wires the controller to the credential store's auth-change
// feed. One provider subscription is registered per controller instance.
func NewController(creds CredentialStore, profiles ProfileStore, prog *progress.Service) *Controller {
	c := &Controller{
		creds:    creds,
		profiles: profiles,
		progress: prog,
		now:      time.Now,
	}
	creds.Subscribe(c.handleAuthEvent)
	return c
}

// Current returns the mirror, or nil when no session is active.
func (c *Controller) Current() *models.ProfileDocument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Register validates the input, creates the identity, writes a zeroed
// profile document and sets the mirror. Validation failures never reach the
// credential store. If the profile write fails after the identity was
// created, the error is surfaced and the missing document is recreated on
// the next login.
func (c *Controller) Register(ctx context.Context, email, password, name string) (*models.ProfileDocument, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if len([]rune(name)) < 2 {
		return nil, &errs.ValidationError{Field: "name", Message: "Please enter a valid name (at least 2 characters)"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &errs.ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if len(password) < 6 {
		return nil, &errs.ValidationError{Field: "password", Message: "Password must be at least 6 characters long"}
	}

	user, err := c.creds.CreateIdentity(ctx, email, password, name)
	if err != nil {
		return nil, err
	}

	doc := models.NewProfileDocument(user.ID, name, email, c.now().UTC())
	if err := c.profiles.Set(ctx, user.ID, doc); err != nil {
		return nil, err
	}

	c.setMirror(doc)
	return doc, nil
}

// Login authenticates and loads the profile document, creating a minimal
// default when it is absent. lastLogin and updatedAt are refreshed on every
// successful login. A failed login leaves any prior mirror untouched.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.ProfileDocument, error) {
	user, err := c.creds.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	doc, err := c.profiles.Get(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, errs.ErrProfileNotFound) {
			return nil, err
		}
		doc, err = c.profiles.Ensure(ctx, user.ID, models.NewProfileDocument(user.ID, user.Name, user.Email, now))
		if err != nil {
			return nil, err
		}
	}

	doc.LastLogin = now
	doc.Touch(now)
	if err := c.profiles.Set(ctx, user.ID, doc); err != nil {
		return nil, err
	}

	c.setMirror(doc)
	return doc, nil
}

// Logout ends the provider session and clears the mirror. Calling it with no
// active session is a no-op.
func (c *Controller) Logout() {
	c.mu.RLock()
	active := c.current != nil
	c.mu.RUnlock()
	if !active {
		return
	}
	c.creds.EndSession()
	c.setMirror(nil)
}

// OnAuthChange registers a callback invoked with the refreshed mirror after
// every provider auth-change event, nil on sign-out. Events are processed in
// delivery order, including a restored session with no prior Login call.
func (c *Controller) OnAuthChange(fn func(*models.ProfileDocument)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, fn)
}

func (c *Controller) handleAuthEvent(user *models.User) {
	if user == nil {
		c.setMirror(nil)
		c.fanOut(nil)
		return
	}

	ctx := context.Background()
	doc, err := c.profiles.Get(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, errs.ErrProfileNotFound) {
			// Keep the previous mirror; a later event or explicit call refreshes it.
			return
		}
		doc, err = c.profiles.Ensure(ctx, user.ID, models.NewProfileDocument(user.ID, user.Name, user.Email, c.now().UTC()))
		if err != nil {
			return
		}
	}

	c.setMirror(doc)
	c.fanOut(doc)
}

// RecordTestResult records a test attempt for the active session and updates
// the mirror to the written state.
func (c *Controller) RecordTestResult(ctx context.Context, category string, score float64) (*models.ProfileDocument, error) {
	return c.apply(func(id string) (*models.ProfileDocument, error) {
		return c.progress.RecordTestResult(ctx, id, category, score)
	})
}

// RecordSolvedChallenge records a solved challenge for the active session.
func (c *Controller) RecordSolvedChallenge(ctx context.Context, category, challengeID string) (*models.ProfileDocument, error) {
	return c.apply(func(id string) (*models.ProfileDocument, error) {
		return c.progress.RecordSolvedChallenge(ctx, id, category, challengeID)
	})
}

// RecordNoteAccess saves a note id for the active session.
func (c *Controller) RecordNoteAccess(ctx context.Context, noteID string) (*models.ProfileDocument, error) {
	return c.apply(func(id string) (*models.ProfileDocument, error) {
		return c.progress.RecordNoteAccess(ctx, id, noteID)
	})
}

// IncrementStreak bumps the streak counter for the active session.
func (c *Controller) IncrementStreak(ctx context.Context) (*models.ProfileDocument, error) {
	return c.apply(func(id string) (*models.ProfileDocument, error) {
		return c.progress.IncrementStreak(ctx, id)
	})
}

// apply runs op for the signed-in identity. On success the mirror is
// replaced with the just-written document without a re-read; on failure it
// is left unchanged.
func (c *Controller) apply(op func(id string) (*models.ProfileDocument, error)) (*models.ProfileDocument, error) {
	current := c.Current()
	if current == nil {
		return nil, &errs.NotAuthenticatedError{}
	}
	doc, err := op(current.UID)
	if err != nil {
		return nil, err
	}
	c.setMirror(doc)
	return doc, nil
}

func (c *Controller) setMirror(doc *models.ProfileDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if doc == nil {
		c.current = nil
		return
	}
	c.current = doc.Clone()
}

func (c *Controller) fanOut(doc *models.ProfileDocument) {
	c.mu.RLock()
	callbacks := make([]func(*models.ProfileDocument), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.mu.RUnlock()
	for _, fn := range callbacks {
		fn(doc)
	}
}
