package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/repository"
)

const tokenLifetime = 24 * time.Hour

// Auth failures map to 401 at the HTTP layer, outside the request-error
// taxonomy the ordering core uses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims is the JWT payload for dashboard sessions.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService authenticates dashboard accounts and issues session tokens.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
}

func NewAuthService(users repository.UserRepository, secret string) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
	}
}

// SeedAdmin creates the configured admin account when it does not exist yet.
// passwordHash must already be a bcrypt hash.
func (s *AuthService) SeedAdmin(ctx context.Context, username, passwordHash string) error {
	if username == "" || passwordHash == "" {
		return nil
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if err != repository.ErrNoDocument {
		return err
	}

	err := s.users.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	zap.L().Info("seeded admin account", zap.String("username", username))
	return nil
}

// Login verifies credentials and returns a signed session token. Bad
// credentials are reported without revealing whether the account exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, apperrors.Validation("username", "username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err == repository.ErrNoDocument {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, apperrors.Transient("failed to load account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, apperrors.Transient("failed to sign token", err)
	}
	return signed, user, nil
}

// VerifyToken parses and validates a session token.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
