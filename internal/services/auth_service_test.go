package services

import (
	"strings"
	"testing"
	"time"
)

type stubAuthStore struct {
	users map[string]*User
}

func newStubAuthStore() *stubAuthStore { return &stubAuthStore{users: map[string]*User{}} }

func (s *stubAuthStore) FindUserByEmail(email string) (*User, error) {
	return s.users[strings.ToLower(email)], nil
}

func (s *stubAuthStore) AddUser(u *User) error {
	s.users[strings.ToLower(u.Email)] = u
	return nil
}

func testSigner(uid, email string, ttl time.Duration) (string, error) {
	return "tok-" + uid, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	svc.idGen = func(prefix string, n int) string { return prefix + "123" }

	res, err := svc.Register("coach@vitalpath.fit", "Secret123!", "Coach")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token != "tok-u123" || res.UserID != "u123" {
		t.Fatalf("register result = %+v", res)
	}

	login, err := svc.Login("coach@vitalpath.fit", "Secret123!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Token != "tok-u123" {
		t.Fatalf("login token = %q", login.Token)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	if _, err := svc.Register("coach@vitalpath.fit", "pw12345", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register("coach@vitalpath.fit", "pw12345", "")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	if _, err := svc.Register("coach@vitalpath.fit", "correct-pw", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Login("coach@vitalpath.fit", "wrong-pw")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	_, err = svc.Login("nobody@vitalpath.fit", "whatever1")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestAuthRequiresCredentials(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), testSigner)
	if _, err := svc.Register("", "pw", ""); err == nil {
		t.Fatalf("register accepted empty email")
	}
	if _, err := svc.Login("a@b.c", "  "); err == nil {
		t.Fatalf("login accepted blank password")
	}
}
