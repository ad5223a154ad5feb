package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/capitalize-ai/investor-finder/internal/apperr"
	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	minNameLength    = 2
	maxNameLength    = 100
)

// tokenClaims is the JWT payload issued at login.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// AuthService manages accounts and issues bearer tokens.
type AuthService struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	logger *logger.Logger
}

// NewAuthService creates a new auth service signing HS256 tokens with secret.
func NewAuthService(st *store.Store, secret string, ttl time.Duration, log *logger.Logger) *AuthService {
	return &AuthService{
		store:  st,
		secret: []byte(secret),
		ttl:    ttl,
		logger: log.Named("auth"),
	}
}

// Register creates an active account.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if req == nil {
		return nil, apperr.New(apperr.KindValidation, "auth.Register", "request body is required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Newf(apperr.KindValidation, "auth.Register", "password must be at least %d characters", minPasswordLength)
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, apperr.Newf(apperr.KindValidation, "auth.Register", "password must be at most %d bytes", maxPasswordBytes)
	}
	name := strings.TrimSpace(req.Name)
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return nil, apperr.Newf(apperr.KindValidation, "auth.Register", "name must be %d to %d characters", minNameLength, maxNameLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, apperr.New(apperr.KindValidation, "auth.Login", "email and password are required")
	}

	user, err := s.store.Users.ByEmail(ctx, req.Email)
	if errors.Is(err, apperr.NotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.Active {
		return nil, apperr.New(apperr.KindUnauthorized, "auth.Login", "account is disabled")
	}
	return s.Issue(user)
}

var errInvalidCredentials = apperr.New(apperr.KindUnauthorized, "auth.Login", "incorrect email or password")

// Refresh issues a fresh token for an authenticated user.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*model.TokenResponse, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Issue(user)
}

// Me returns the active account behind a token subject.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "auth.Me", "authentication required")
	}
	user, err := s.store.Users.ByID(ctx, userID)
	if errors.Is(err, apperr.NotFound) {
		return nil, apperr.New(apperr.KindUnauthorized, "auth.Me", "user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, apperr.New(apperr.KindUnauthorized, "auth.Me", "account is disabled")
	}
	return user, nil
}

// Issue signs a bearer token for user.
func (s *AuthService) Issue(user *model.User) (*model.TokenResponse, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: user.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.ttl.Seconds()),
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", apperr.New(apperr.KindValidation, "auth.Register", "a valid email address is required")
	}
	return email, nil
}
