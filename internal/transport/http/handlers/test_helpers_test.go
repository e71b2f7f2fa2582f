package http_handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/application/auth"
	"github.com/baechuer/account-service/internal/application/notify"
	"github.com/baechuer/account-service/internal/infrastructure/memory"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	http_handlers "github.com/baechuer/account-service/internal/transport/http/handlers"
	"github.com/baechuer/account-service/internal/transport/http/router"
)

const (
	adminEmail    = "admin@x.com"
	adminPassword = "admin-pass"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *captureNotifier) Dispatch(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

// lastLink returns the link of the newest mail sent to "to".
func (n *captureNotifier) lastLink(t *testing.T, to string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.msgs) - 1; i >= 0; i-- {
		if n.msgs[i].To == to {
			return n.msgs[i].Link
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return ""
}

type testServer struct {
	h        http.Handler
	repo     *memory.UserRepo
	notifier *captureNotifier
	accounts *account.Service
}

type serverOpt func(*router.Deps)

func withLimits(l router.RateLimits) serverOpt {
	return func(d *router.Deps) { d.Limits = l }
}

func newTestServer(t *testing.T, opts ...serverOpt) *testServer {
	t.Helper()

	repo := memory.NewUserRepo()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	signer := security.NewJWTSigner("test-secret", "account-service")
	n := &captureNotifier{}

	accounts := account.NewService(repo, hasher, signer, n, account.Config{})
	sessions := auth.NewService(repo, hasher, signer, auth.Config{})

	require.NoError(t, accounts.EnsureAdmin(context.Background(), adminEmail, adminPassword, zerolog.Nop()))

	deps := router.Deps{
		Health:   http_handlers.NewHealthHandler(map[string]http_handlers.Pinger{"db": repo}),
		Account:  http_handlers.NewAccountHandler(accounts),
		Auth:     http_handlers.NewAuthHandler(sessions),
		Verifier: signer,
	}
	for _, o := range opts {
		o(&deps)
	}

	h, err := router.New(deps)
	require.NoError(t, err)

	return &testServer{h: h, repo: repo, notifier: n, accounts: accounts}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	return rr
}

// data decodes the {"data": ...} envelope into out.
func data(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body=%s", rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), "body=%s", rr.Body.String())
}

func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body=%s", rr.Body.String())
	return body.Error.Code
}

func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/user/register", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	data(t, rr, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	return s.login(t, adminEmail, adminPassword)
}

func (s *testServer) userID(t *testing.T, email string) string {
	t.Helper()
	u, err := s.repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}
