package repository

import (
	"context"
	"sync"
	"time"

	"github.com/aireap/aireap-auth/internal/domain"
)

// MemoryStore is an in-process credential store with the same contract as
// UsersRepository: email uniqueness is enforced atomically and the OTP triple
// is written as one unit. It backs the engine tests and dev mode.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*domain.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, users: make(map[int64]*domain.User)}
}

// Create inserts a new user, assigning the next ID. A concurrent insert with
// the same email loses with ErrDuplicateEmail, never a duplicate row.
func (s *MemoryStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.ID = s.nextID
	s.nextID++

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// FindByID retrieves a user by ID.
func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// FindByEmail retrieves a user by email.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(func(u *domain.User) bool { return u.Email == email })
}

// FindByEmailOrGoogleID retrieves a user matching either key.
func (s *MemoryStore) FindByEmailOrGoogleID(ctx context.Context, email, googleID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(func(u *domain.User) bool {
		if u.Email == email {
			return true
		}
		return u.GoogleID != nil && *u.GoogleID == googleID
	})
}

// FindByEmailAndOTP retrieves the user matching the recovery email and code.
func (s *MemoryStore) FindByEmailAndOTP(ctx context.Context, email, code string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(func(u *domain.User) bool {
		return u.Email == email && u.OTP != nil && *u.OTP == code
	})
}

// UpdatePasswordHash replaces the stored password hash.
func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return s.update(id, func(u *domain.User) {
		h := hash
		u.PasswordHash = &h
	})
}

// LinkGoogle attaches a Google identity to the record with the given email.
func (s *MemoryStore) LinkGoogle(ctx context.Context, email, googleID, picture string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			gid := googleID
			u.GoogleID = &gid
			u.Picture = picture
			u.LoginType = domain.LoginTypeGoogle
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// SetOTP writes the OTP triple as one unit.
func (s *MemoryStore) SetOTP(ctx context.Context, email, code string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			c, e := code, expiry
			u.OTP = &c
			u.OTPExpiry = &e
			u.OTPUsed = false
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// MarkOTPUsed consumes the stored code.
func (s *MemoryStore) MarkOTPUsed(ctx context.Context, id int64) error {
	return s.update(id, func(u *domain.User) { u.OTPUsed = true })
}

// ClearOTP wipes the OTP triple.
func (s *MemoryStore) ClearOTP(ctx context.Context, id int64) error {
	return s.update(id, func(u *domain.User) {
		u.OTP = nil
		u.OTPExpiry = nil
		u.OTPUsed = false
	})
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *MemoryStore) findLocked(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *MemoryStore) update(id int64, fn func(*domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}
