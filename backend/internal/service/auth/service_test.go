package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"isizulu-corpus/backend/internal/infra/token"
	"isizulu-corpus/backend/internal/repository"
	authsvc "isizulu-corpus/backend/internal/service/auth"
	"isizulu-corpus/backend/internal/testutil"
)

func newAuthService(t *testing.T) (*authsvc.Service, *repository.UserRepository, *token.JWTManager) {
	t.Helper()
	repo := repository.NewUserRepository(testutil.NewDB(t))
	tokens := token.NewJWTManager("test-secret", time.Hour)
	return authsvc.NewService(repo, tokens, nil), repo, tokens
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, repo, tokens := newAuthService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "  editor ", "correct-horse", true)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Username != "editor" || !created.IsAdmin {
		t.Fatalf("unexpected user: %+v", created)
	}
	if created.PasswordHash == "" || created.PasswordHash == "correct-horse" {
		t.Fatalf("password must be stored as a hash")
	}

	u, access, err := svc.Login(ctx, "editor", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.LastLoginAt == nil {
		t.Fatalf("expected last login to be set")
	}
	claims, err := tokens.Parse(access.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != created.ID || !claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Fatalf("expected last login persisted")
	}
}

func TestLoginRejectsUnknownUserAndWrongPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "editor", "correct-horse", false); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, _, err := svc.Login(ctx, "editor", "wrong-password"); !errors.Is(err, authsvc.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost", "correct-horse"); !errors.Is(err, authsvc.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin for unknown user, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "", "correct-horse", false); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank username, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, "editor", "short", false); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, "editor", "correct-horse", false); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "editor", "another-pass", false); !errors.Is(err, authsvc.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}
