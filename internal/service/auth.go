package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-generator/discovery/internal/auth"
)

// ErrInvalidKey is returned when a key matches neither configured hash.
var ErrInvalidKey = errors.New("invalid credentials")

// ErrTokensDisabled is returned when no key hash is configured.
var ErrTokensDisabled = errors.New("token issuing is disabled")

// AuthService exchanges operator and admin keys for access tokens.
type AuthService struct {
	operatorHash []byte
	adminHash    []byte
	jwt          *auth.JWTManager
}

// NewAuthService constructs a new AuthService from bcrypt key hashes.
// Either hash may be empty to disable that role.
func NewAuthService(operatorHash, adminHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		operatorHash: []byte(strings.TrimSpace(operatorHash)),
		adminHash:    []byte(strings.TrimSpace(adminHash)),
		jwt:          jwtManager,
	}
}

// IssueToken validates the key and returns a JWT with the matching role.
// The admin hash is checked first.
func (s *AuthService) IssueToken(key string) (string, string, error) {
	if len(s.operatorHash) == 0 && len(s.adminHash) == 0 {
		return "", "", ErrTokensDisabled
	}
	if strings.TrimSpace(key) == "" {
		return "", "", errors.New("key must not be empty")
	}

	role := ""
	switch {
	case matches(s.adminHash, key):
		role = auth.RoleAdmin
	case matches(s.operatorHash, key):
		role = auth.RoleOperator
	default:
		return "", "", ErrInvalidKey
	}

	token, err := s.jwt.GenerateToken(role+"-key", role)
	if err != nil {
		return "", "", err
	}
	return token, role, nil
}

func matches(hash []byte, key string) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil
}
