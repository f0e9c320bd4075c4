package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/service"
	"github.com/iliyamo/movie-club/internal/utils"
)

// stubAuth answers from fixed tables instead of hashing passwords.
type stubAuth struct {
	registered map[string]bool
	logins     map[string]error
}

func (s *stubAuth) Register(_ context.Context, username, email, _ string) (model.User, error) {
	if s.registered[email] {
		return model.User{}, repository.ErrEmailExists
	}
	s.registered[email] = true
	return model.User{ID: "u-" + username, Username: username, Email: email, Role: model.RoleUser, Status: model.StatusPending}, nil
}

func (s *stubAuth) Authenticate(_ context.Context, email, _ string) (model.User, utils.AccessToken, error) {
	if err, ok := s.logins[email]; ok && err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	if _, ok := s.logins[email]; !ok {
		return model.User{}, utils.AccessToken{}, service.ErrInvalidCredentials
	}
	return admin, utils.AccessToken{Token: "tok", ID: "jti", Exp: time.Now().Add(time.Hour)}, nil
}

type recordingRevoker struct{ jti, userID string }

func (r *recordingRevoker) Revoke(_ context.Context, jti, userID string, _ time.Time) error {
	r.jti, r.userID = jti, userID
	return nil
}

func newAuthHandler() (*AuthHandler, *recordingRevoker) {
	rev := &recordingRevoker{}
	a := &stubAuth{
		registered: map[string]bool{},
		logins: map[string]error{
			"alice@example.com":   nil,
			"pending@example.com": service.ErrAccountPending,
			"off@example.com":     service.ErrAccountInactive,
		},
	}
	return NewAuthHandler(a, rev, service.NopPublisher{}), rev
}

func TestRegister(t *testing.T) {
	h, _ := newAuthHandler()
	body := `{"username":"carol","email":"Carol@Example.com","password":"longenough"}`

	rec := call(t, h.Register, http.MethodPost, "/auth/register", "/auth/register", body, nil)
	expectStatus(t, rec, http.StatusCreated)
	var out struct {
		User map[string]any `json:"user"`
	}
	decodeBody(t, rec, &out)
	if out.User["email"] != "carol@example.com" {
		t.Fatalf("email = %v", out.User["email"])
	}
	if _, leaked := out.User["password_hash"]; leaked {
		t.Fatal("password hash in response")
	}

	rec = call(t, h.Register, http.MethodPost, "/auth/register", "/auth/register", body, nil)
	expectStatus(t, rec, http.StatusConflict)
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuthHandler()
	cases := map[string]string{
		"short password": `{"username":"carol","email":"c@example.com","password":"short"}`,
		"bad email":      `{"username":"carol","email":"nope","password":"longenough"}`,
		"short username": `{"username":"cc","email":"c@example.com","password":"longenough"}`,
		"not json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := call(t, h.Register, http.MethodPost, "/auth/register", "/auth/register", body, nil)
			expectStatus(t, rec, http.StatusBadRequest)
		})
	}
}

// emptyUserStore has no accounts and accepts every Create.
type emptyUserStore struct{}

func (emptyUserStore) Create(_ context.Context, username, email, _ string) (model.User, error) {
	return model.User{ID: "u1", Username: username, Email: email, Role: model.RoleAdmin, Status: model.StatusActive}, nil
}

func (emptyUserStore) GetByEmail(context.Context, string) (model.User, error) {
	return model.User{}, repository.ErrNotFound
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	auth := &service.AuthService{Users: emptyUserStore{}, Secret: "s", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}
	h := NewAuthHandler(auth, &recordingRevoker{}, service.NopPublisher{})

	// 40 characters pass the rune-based max but take 80 bytes
	long := strings.Repeat("é", 40)
	rec := call(t, h.Register, http.MethodPost, "/auth/register", "/auth/register",
		`{"username":"carol","email":"c@example.com","password":"`+long+`"}`, nil)
	expectStatus(t, rec, http.StatusBadRequest)
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &out)
	if out.Fields["password"] == "" {
		t.Fatalf("fields = %v", out.Fields)
	}

	ok := strings.Repeat("é", 36)
	rec = call(t, h.Register, http.MethodPost, "/auth/register", "/auth/register",
		`{"username":"carol","email":"c@example.com","password":"`+ok+`"}`, nil)
	expectStatus(t, rec, http.StatusCreated)
}

func TestLoginStatusCodes(t *testing.T) {
	h, _ := newAuthHandler()
	cases := []struct {
		email  string
		status int
		code   string
	}{
		{"alice@example.com", http.StatusOK, ""},
		{"ghost@example.com", http.StatusUnauthorized, "invalid_credentials"},
		{"pending@example.com", http.StatusForbidden, "account_pending"},
		{"off@example.com", http.StatusForbidden, "account_inactive"},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			body := `{"email":"` + tc.email + `","password":"whatever1"}`
			rec := call(t, h.Login, http.MethodPost, "/auth/login", "/auth/login", body, nil)
			expectStatus(t, rec, tc.status)
			var out map[string]any
			decodeBody(t, rec, &out)
			if tc.code != "" && out["code"] != tc.code {
				t.Fatalf("code = %v, want %s", out["code"], tc.code)
			}
			if tc.status == http.StatusOK && out["token"] != "tok" {
				t.Fatalf("token = %v", out["token"])
			}
			if tc.status != http.StatusOK && out["token"] != nil {
				t.Fatal("token issued for a rejected login")
			}
		})
	}
}

func TestMeAndLogout(t *testing.T) {
	h, rev := newAuthHandler()

	rec := call(t, h.Me, http.MethodGet, "/auth/me", "/auth/me", "", &bob)
	expectStatus(t, rec, http.StatusOK)

	rec = call(t, h.Logout, http.MethodPost, "/auth/logout", "/auth/logout", "", &bob)
	expectStatus(t, rec, http.StatusNoContent)
	if rev.jti != "jti-bob" || rev.userID != "bob" {
		t.Fatalf("revoked %q for %q", rev.jti, rev.userID)
	}

	rec = call(t, h.Me, http.MethodGet, "/auth/me", "/auth/me", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}
