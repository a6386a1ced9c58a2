package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/repositories"
)

const (
	jwtClaimUserID  = "user_id"
	jwtClaimRole    = "role"
	jwtClaimTokenID = "jti"

	roleAdmin = "admin"
	roleUser  = "user"

	apiTokenLength = 60
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context, caller models.Identity) (*models.User, error)
	// Logout revokes the caller's current token.
	Logout(ctx context.Context, caller models.Identity) error
	// ResolveIdentity verifies a bearer token and loads the identity it
	// belongs to. A token stops resolving once the user logs in again or
	// logs out.
	ResolveIdentity(ctx context.Context, bearer string) (*models.Identity, error)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     Clock
	logger    *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, clock Clock, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clock:     clock,
		logger:    orDefaultLogger(logger),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID))
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return s.issue(ctx, user)
}

// issue rotates the user's opaque token and signs a JWT bound to it.
func (s *authService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	opaque, err := generateRandomToken(apiTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate api token: %w", err)
	}
	if err := s.userRepo.SetAPIToken(ctx, user.ID, &opaque); err != nil {
		return nil, fmt.Errorf("failed to store api token: %w", err)
	}
	user.APIToken = &opaque

	role := roleUser
	if user.IsAdmin {
		role = roleAdmin
	}
	now := s.clock.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		jwtClaimUserID:  user.ID,
		jwtClaimRole:    role,
		jwtClaimTokenID: opaque,
		"exp":           expiresAt.Unix(),
		"iat":           now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResult{User: user, Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *authService) Me(ctx context.Context, caller models.Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", caller.UserID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Logout(ctx context.Context, caller models.Identity) error {
	if err := s.userRepo.SetAPIToken(ctx, caller.UserID, nil); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to revoke api token: %w", err)
	}
	return nil
}

func (s *authService) ResolveIdentity(ctx context.Context, bearer string) (*models.Identity, error) {
	token, err := jwt.Parse(bearer, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	tokenID, _ := claims[jwtClaimTokenID].(string)
	if tokenID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user.APIToken == nil || *user.APIToken != tokenID {
		return nil, ErrInvalidToken
	}

	return &models.Identity{
		UserID:         user.ID,
		IsAdmin:        user.IsAdmin,
		IsActiveMember: user.IsActiveMember(s.clock.Today()),
	}, nil
}

func userIDFromClaims(claims jwt.MapClaims) (int, error) {
	raw, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: expected float64, got %T", jwtClaimUserID, raw)
	}
	if f != float64(int(f)) || f <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %v", jwtClaimUserID, f)
	}
	return int(f), nil
}

func generateRandomToken(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	b := make([]byte, length)
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b), nil
}
