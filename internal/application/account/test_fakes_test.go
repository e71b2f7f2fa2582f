package account

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/account-service/internal/application/notify"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/infrastructure/security"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User
	seq  int

	// injected errors (if set, method returns error)
	getByEmailErr error
	createErr     error
	setRoleErr    error

	setRoleCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) findByEmail(email string) (domain.User, bool) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.findByEmail(email)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.findByEmail(u.Email); ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.seq++
	u.CreatedAt = time.Unix(int64(f.seq), 0)
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUserRepo) ConsumeVerificationToken(_ context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.findByEmail(email)
	if !ok || u.VerificationToken == "" || u.VerificationToken != token {
		return domain.ErrTokenInvalid()
	}
	u.Verified = true
	u.VerificationToken = ""
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.findByEmail(email)
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.ResetToken = token
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) ConsumeResetToken(_ context.Context, email, token, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.findByEmail(email)
	if !ok || u.ResetToken == "" || u.ResetToken != token {
		return domain.ErrTokenInvalid()
	}
	u.PasswordHash = newHash
	u.ResetToken = ""
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) SetRole(_ context.Context, id string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setRoleCalls++
	if f.setRoleErr != nil {
		return f.setRoleErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Role = role
	f.byID[id] = u
	return nil
}

func (f *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Active = active
	f.byID[id] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(pw)
	}
	return "hashed:" + pw, nil
}

func (h *fakeHasher) Compare(hash, pw string) error {
	if hash != "hashed:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *fakeNotifier) Dispatch(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *fakeNotifier) last(t *testing.T) notify.Message {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatalf("expected a dispatched message")
	}
	return n.sent[len(n.sent)-1]
}

type auditEntry struct {
	action string
	target string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) add(action, target string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action, target})
}

func (a *fakeAuditor) Registered(_ context.Context, userID, _, _ string) { a.add("registered", userID) }
func (a *fakeAuditor) EmailVerified(_ context.Context, email string)     { a.add("email_verified", email) }
func (a *fakeAuditor) PasswordResetRequested(_ context.Context, email string) {
	a.add("password_reset_requested", email)
}
func (a *fakeAuditor) PasswordReset(_ context.Context, email string) { a.add("password_reset", email) }
func (a *fakeAuditor) RoleChanged(_ context.Context, targetID, _, _ string) {
	a.add("role_changed", targetID)
}
func (a *fakeAuditor) ActiveChanged(_ context.Context, targetID string, _ bool) {
	a.add("active_changed", targetID)
}
func (a *fakeAuditor) AccountDeleted(_ context.Context, targetID string) {
	a.add("account_deleted", targetID)
}

func (a *fakeAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

type testEnv struct {
	svc      *Service
	users    *fakeUserRepo
	hasher   *fakeHasher
	signer   *security.JWTSigner
	notifier *fakeNotifier
	auditor  *fakeAuditor
}

func newSvcForTest(t *testing.T) testEnv {
	t.Helper()

	env := testEnv{
		users:    newFakeUserRepo(),
		hasher:   &fakeHasher{},
		signer:   security.NewJWTSigner("test-secret", "account-service"),
		notifier: &fakeNotifier{},
		auditor:  &fakeAuditor{},
	}
	env.svc = NewService(env.users, env.hasher, env.signer, env.notifier, Config{
		VerifyTokenTTL: time.Hour,
		ResetTokenTTL:  30 * time.Minute,
		VerifyURL:      func(tok string) string { return "http://test/auth/verify/" + tok },
		ResetURL:       func(tok string) string { return "http://test/auth/reset-password/" + tok },
	}).WithAudit(env.auditor)
	return env
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

// mustRegister registers a user and returns it with the mailed token.
func mustRegister(t *testing.T, env testEnv, email string, role domain.Role) (domain.User, string) {
	t.Helper()
	u, err := env.svc.Register(context.Background(), email, "password1", role)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u, u.VerificationToken
}
