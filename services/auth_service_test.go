package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/sports-center/models"
)

const testSecret = "test-secret"

// JWT expiry is checked against the wall clock, so auth tests run on it too.
func newAuthFixture() (AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour, Clock{Now: time.Now, Location: testLocation}, nil)
	return svc, repo
}

func TestRegisterAndResolve(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: " Ana@Example.com ", Password: "secreto123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.User.Email != "ana@example.com" {
		t.Fatalf("expected normalised email, got %q", result.User.Email)
	}
	if result.User.PasswordHash != "" {
		t.Fatalf("expected the password hash to be stripped")
	}

	identity, err := svc.ResolveIdentity(ctx, result.Token)
	if err != nil {
		t.Fatalf("expected the issued token to resolve, got %v", err)
	}
	if identity.UserID != result.User.ID || identity.IsAdmin || identity.IsActiveMember {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "otro12345"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_RotatesToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Luis", Email: "luis@example.com", Password: "secreto123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "luis@example.com", Password: "incorrecta"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "nadie@example.com", Password: "secreto123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "luis@example.com", Password: "secreto123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.ResolveIdentity(ctx, registered.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected the previous token to stop resolving, got %v", err)
	}
	if _, err := svc.ResolveIdentity(ctx, loggedIn.Token); err != nil {
		t.Fatalf("expected the new token to resolve, got %v", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Name: "Eva", Email: "eva@example.com", Password: "secreto123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Logout(ctx, models.Identity{UserID: result.User.ID}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.ResolveIdentity(ctx, result.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestResolveIdentity_RejectsForeignTokens(t *testing.T) {
	svc, _ := newAuthFixture()
	other := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour, NewClock(testLocation), nil)
	ctx := context.Background()

	foreign, err := other.Register(ctx, RegisterInput{Name: "Mal", Email: "mal@example.com", Password: "secreto123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.ResolveIdentity(ctx, foreign.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a token signed elsewhere, got %v", err)
	}
	if _, err := svc.ResolveIdentity(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestResolveIdentity_ReportsActiveMembership(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, time.Hour, NewClock(testLocation), nil)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Name: "Sara", Email: "sara@example.com", Password: "secreto123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	today := NewClock(testLocation).Today()
	end := today.AddDays(5)
	repo.users[result.User.ID].IsMember = true
	repo.users[result.User.ID].MembershipEnd = &end

	identity, err := svc.ResolveIdentity(ctx, result.Token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !identity.IsActiveMember {
		t.Fatalf("expected an active member")
	}
}
