package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photoshare/internal/apperr"
	"photoshare/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxHandleLen = 255
	minSecretLen = 8
)

// ErrInvalidCredentials means the handle/secret pair did not match a
// stored account. Login fails softly on it, without distinguishing an
// unknown handle from a wrong secret.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountService handles registration, login and session tokens
type AccountService struct {
	accounts   AccountStore
	jwtSecret  string
	sessionTTL time.Duration
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountStore, jwtSecret string, sessionTTL time.Duration) *AccountService {
	return &AccountService{
		accounts:   accounts,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
	}
}

// Register validates and creates a new account with a bcrypt-hashed secret
func (s *AccountService) Register(ctx context.Context, handle, secret, confirmation string) (*models.Account, error) {
	v := apperr.Validation()
	if handle == "" {
		v.Add("handle", "handle is required")
	} else if len(handle) > maxHandleLen {
		v.Add("handle", fmt.Sprintf("handle must be at most %d characters", maxHandleLen))
	}
	if secret == "" {
		v.Add("secret", "password is required")
	} else if len(secret) < minSecretLen {
		v.Add("secret", fmt.Sprintf("password must be at least %d characters", minSecretLen))
	} else if secret != confirmation {
		v.Add("secret", "passwords do not match")
	}
	if v.Err() == nil {
		taken, err := s.accounts.HandleExists(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("failed to check handle: %w", err)
		}
		if taken {
			v.Add("handle", "handle is already taken")
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		Handle:       handle,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// A registration racing this one may have taken the handle after
		// the pre-check; the unique constraint reports it. The existing
		// account is untouched either way.
		if errors.Is(err, apperr.ErrConflict) {
			v.Add("handle", "handle is already taken")
			return nil, v.Err()
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Login verifies the handle/secret pair against the stored hash
func (s *AccountService) Login(ctx context.Context, handle, secret string) (*models.Account, error) {
	account, err := s.accounts.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// GenerateJWT generates a session token for an account
func (s *AccountService) GenerateJWT(accountID string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"exp":        time.Now().Add(s.sessionTTL).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a session token and returns the account ID
func (s *AccountService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	accountID, ok := claims["account_id"].(string)
	if !ok {
		return "", fmt.Errorf("account_id not found in token")
	}

	return accountID, nil
}

// SessionTTL returns the configured session lifetime
func (s *AccountService) SessionTTL() time.Duration {
	return s.sessionTTL
}
