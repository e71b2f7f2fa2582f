package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// UserRepo is an in-process account store with the same contract as the
// postgres repository. Used by handler tests and local runs.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	// strictly increasing so List order is stable
	u.CreatedAt = r.now()
	for _, other := range r.byID {
		if !u.CreatedAt.After(other.CreatedAt) {
			u.CreatedAt = other.CreatedAt.Add(time.Nanosecond)
		}
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// updateByEmail applies fn to the account with the given email under the write lock.
func (r *UserRepo) updateByEmail(email string, miss func() *domain.Error, fn func(u *domain.User) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return miss()
	}
	u := r.byID[id]
	if !fn(&u) {
		return miss()
	}
	r.byID[id] = u
	return nil
}

func (r *UserRepo) updateByID(id string, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound()
	}
	fn(&u)
	r.byID[id] = u
	return nil
}

func (r *UserRepo) ConsumeVerificationToken(_ context.Context, email, token string) error {
	return r.updateByEmail(email, domain.ErrTokenInvalid, func(u *domain.User) bool {
		if token == "" || u.VerificationToken != token {
			return false
		}
		u.Verified = true
		u.VerificationToken = ""
		return true
	})
}

func (r *UserRepo) SetResetToken(_ context.Context, email, token string) error {
	return r.updateByEmail(email, domain.ErrUserNotFound, func(u *domain.User) bool {
		u.ResetToken = token
		return true
	})
}

func (r *UserRepo) ConsumeResetToken(_ context.Context, email, token, newHash string) error {
	return r.updateByEmail(email, domain.ErrTokenInvalid, func(u *domain.User) bool {
		if token == "" || u.ResetToken != token {
			return false
		}
		u.PasswordHash = newHash
		u.ResetToken = ""
		return true
	})
}

func (r *UserRepo) SetRole(_ context.Context, id string, role domain.Role) error {
	return r.updateByID(id, func(u *domain.User) { u.Role = role })
}

func (r *UserRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.updateByID(id, func(u *domain.User) { u.Active = active })
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound()
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *UserRepo) Ping(context.Context) error { return nil }
