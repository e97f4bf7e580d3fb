// Package auth is the credential store: it owns the users table, verifies
// email/password pairs and fans out sign-in/sign-out events to subscribers.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/priyotosh-27/CodeMaster/backend/errs"
	"github.com/priyotosh-27/CodeMaster/backend/models"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time

	mu   sync.Mutex
	subs []func(*models.User)

	// dispatch serializes event delivery so subscribers observe sign-in and
	// sign-out notifications in publish order.
	dispatch sync.Mutex
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// CreateIdentity registers a new identity and notifies subscribers of the
// sign-in. Email is stored lower-cased; a duplicate address is an AuthError.
func (s *Service) CreateIdentity(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, &errs.AuthError{Message: "An account with this email already exists. Please login instead."}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.StorageError{Op: "lookup identity", Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &errs.StorageError{Op: "hash password", Err: err}
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &errs.StorageError{Op: "create identity", Err: err}
	}

	s.notify(&user)
	return &user, nil
}

// Authenticate verifies the credentials, records the login and notifies
// subscribers. Unknown email and wrong password produce the same AuthError.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &errs.AuthError{Message: "Invalid credentials"}
		}
		return nil, &errs.StorageError{Op: "lookup identity", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &errs.AuthError{Message: "Invalid credentials", Err: err}
	}

	s.db.WithContext(ctx).Create(&models.LoginHistory{
		UserID:    user.ID,
		LoginTime: s.now().UTC(),
	})

	s.notify(&user)
	return &user, nil
}

// EndSession signals sign-out. Safe to call with no session active.
func (s *Service) EndSession() {
	s.notify(nil)
}

// Subscribe registers an auth-change callback. Callbacks receive the signed
// in identity, or nil on sign-out, in the order events were published.
func (s *Service) Subscribe(fn func(*models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Service) notify(user *models.User) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	subs := make([]func(*models.User), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
