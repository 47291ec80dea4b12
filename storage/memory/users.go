package memorystore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gharkaam/authcore/core"
)

type profileRow struct {
	userID     string
	phone      string
	isComplete bool
	lastActive time.Time
}

// Users is an in-memory core.UserDirectory for tests and development.
type Users struct {
	mu         sync.Mutex
	identities map[string]string      // phone -> userID
	profiles   map[string]*profileRow // phone -> profile
}

func NewUsers() *Users {
	return &Users{
		identities: make(map[string]string),
		profiles:   make(map[string]*profileRow),
	}
}

func (u *Users) FindIdentityByPhone(ctx context.Context, phone string) (string, error) {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	id, ok := u.identities[phone]
	if !ok {
		return "", core.ErrUserNotFound
	}
	return id, nil
}

func (u *Users) CreateIdentity(ctx context.Context, phone string) (string, error) {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.identities[phone]; ok {
		return "", core.ErrIdentityExists
	}
	id := uuid.NewString()
	u.identities[phone] = id
	return id, nil
}

func (u *Users) FindProfileByPhone(ctx context.Context, phone string) (*core.Profile, error) {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	row, ok := u.profiles[phone]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &core.Profile{UserID: row.userID, Phone: row.phone, IsComplete: row.isComplete}, nil
}

func (u *Users) CreateProfile(ctx context.Context, userID, phone string) (*core.Profile, error) {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.profiles[phone]; ok {
		return nil, core.ErrProfileExists
	}
	u.profiles[phone] = &profileRow{userID: userID, phone: phone}
	return &core.Profile{UserID: userID, Phone: phone}, nil
}

func (u *Users) TouchLastActive(ctx context.Context, userID string) error {
	_ = ctx
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, row := range u.profiles {
		if row.userID == userID {
			row.lastActive = time.Now()
			return nil
		}
	}
	return core.ErrUserNotFound
}

// SetProfileComplete flips the completeness flag; test helper.
func (u *Users) SetProfileComplete(phone string, v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if row, ok := u.profiles[phone]; ok {
		row.isComplete = v
	}
}

// DeleteProfile removes only the profile row, leaving the identity; test
// helper for the schema-drift sign-in path.
func (u *Users) DeleteProfile(phone string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.profiles, phone)
}
