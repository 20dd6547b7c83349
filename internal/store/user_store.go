package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

// UserStore is the in-memory user directory.  It is constructed once at
// process start and passed by handle to handlers and middleware; all state is
// lost on restart, which is acceptable for this service's scope.  A RWMutex
// guards the map so compound operations (check email, then insert) stay
// atomic with respect to concurrent requests.  Callers always receive copies
// of stored records.
type UserStore struct {
	mu         sync.RWMutex
	users      map[string]*model.User
	bcryptCost int
}

// NewUserStore creates an empty directory.  The bcrypt cost applies to every
// hash performed through the store.
func NewUserStore(bcryptCost int) *UserStore {
	return &UserStore{
		users:      make(map[string]*model.User),
		bcryptCost: bcryptCost,
	}
}

// UserPatch describes a partial update.  Nil fields are left untouched.  A
// non-nil Password is re-hashed before storage; plaintext never outlives the
// Update call.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
	City     *string
	Role     *string
	IsActive *bool
}

func copyUser(u *model.User) *model.User {
	cp := *u
	cp.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	return &cp
}

// Create hashes the password, assigns an id and timestamps, and inserts the
// user.  The id is generated once and never changes.  Email uniqueness is
// checked and the row inserted under a single lock acquisition.
func (s *UserStore) Create(u *model.User) (*model.User, error) {
	u.Email = model.NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	hash, err := utils.HashPassword(u.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, ErrEmailExists
		}
	}
	now := time.Now().UTC()
	stored := copyUser(u)
	stored.ID = uuid.NewString()
	stored.Password = hash
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored
	return copyUser(stored), nil
}

// FindByID returns a copy of the user, or nil when absent.
func (s *UserStore) FindByID(id string) *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return copyUser(u)
}

// FindByEmail returns a copy of the user with the given email, or nil.
func (s *UserStore) FindByEmail(email string) *model.User {
	email = model.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u)
		}
	}
	return nil
}

// FindAll returns copies of every user in the directory.
func (s *UserStore) FindAll() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	return out
}

// FindByRole returns copies of every user holding the given role.
func (s *UserStore) FindByRole(role string) []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, copyUser(u))
		}
	}
	return out
}

// EmailExists reports whether any user other than excludeID already claims
// the email.  Pass an empty excludeID to check against everyone.
func (s *UserStore) EmailExists(email, excludeID string) bool {
	email = model.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true
		}
	}
	return false
}

// Update applies a patch to the user and returns the updated copy, or
// ErrNotFound.  A password in the patch is hashed before the lock is taken
// so the slow bcrypt work never blocks other requests.  An email in the
// patch is checked for uniqueness under the same lock as the mutation, so a
// concurrent Create or Update for the same address cannot slip a duplicate
// past the check.
func (s *UserStore) Update(id string, patch UserPatch) (*model.User, error) {
	var hash string
	if patch.Password != nil {
		h, err := utils.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Email != nil {
		email := model.NormalizeEmail(*patch.Email)
		for _, other := range s.users {
			if other.ID != id && other.Email == email {
				return nil, ErrEmailExists
			}
		}
		u.Email = email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Password != nil {
		u.Password = hash
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}
	if patch.City != nil {
		u.City = *patch.City
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

// Delete removes the user and returns the deleted copy, or nil when absent.
func (s *UserStore) Delete(id string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	delete(s.users, id)
	return copyUser(u)
}

// Authenticate verifies credentials and fails closed: unknown email, wrong
// password and inactive account all return nil, so callers cannot tell the
// cases apart and leak account existence.  The bcrypt comparison runs on a
// copy outside the lock.
func (s *UserStore) Authenticate(email, password string) *model.User {
	u := s.FindByEmail(email)
	if u == nil {
		return nil
	}
	if !utils.VerifyPassword(u.Password, password) {
		return nil
	}
	if !u.IsActive {
		return nil
	}
	return u
}

// UpdateLastLogin stamps the user's last-login time.
func (s *UserStore) UpdateLastLogin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		now := time.Now().UTC()
		u.LastLogin = &now
	}
}

// AddRefreshToken appends a refresh-token hash to the user's active list.
func (s *UserStore) AddRefreshToken(id, tokenHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.RefreshTokens = append(u.RefreshTokens, tokenHash)
	}
}

// RemoveRefreshToken drops a single refresh-token hash from the user's
// active list, leaving other sessions untouched.
func (s *UserStore) RemoveRefreshToken(id, tokenHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return
	}
	kept := u.RefreshTokens[:0]
	for _, t := range u.RefreshTokens {
		if t != tokenHash {
			kept = append(kept, t)
		}
	}
	u.RefreshTokens = kept
}

// HasRefreshToken reports whether the hash is in the user's active list.
func (s *UserStore) HasRefreshToken(id, tokenHash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	for _, t := range u.RefreshTokens {
		if t == tokenHash {
			return true
		}
	}
	return false
}

// ClearRefreshTokens revokes every active refresh token for the user,
// logging them out of all sessions.
func (s *UserStore) ClearRefreshTokens(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.RefreshTokens = nil
	}
}

// RotateRefreshToken swaps oldHash for newHash in one uninterrupted step.
// If oldHash is no longer active the rotation fails with ErrTokenNotFound
// and newHash is NOT added, so a concurrent second use of the same token
// cannot mint an extra session.
func (s *UserStore) RotateRefreshToken(id, oldHash, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	for i, t := range u.RefreshTokens {
		if t == oldHash {
			u.RefreshTokens[i] = newHash
			return nil
		}
	}
	return ErrTokenNotFound
}

// Count returns the number of users in the directory.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// ActiveCount returns the number of active users.
func (s *UserStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.IsActive {
			n++
		}
	}
	return n
}
