package service

import (
	"crypto/subtle"
	"time"

	"github.com/fasevent/registrations/internal/domain/common/errorz"
	"github.com/fasevent/registrations/pkg/logger/types"
	"github.com/fasevent/registrations/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type tokenCodec interface {
	Issue(role string) (string, time.Time, error)
	IsAdmin(tokenStr string) bool
}

// AuthService checks the admin password and issues session tokens.
type AuthService struct {
	logger *types.Logger
	codec  tokenCodec

	password     string
	passwordHash []byte
}

// NewAuthService accepts either a bcrypt hash or a plain password; the hash wins when both are set.
func NewAuthService(logger *types.Logger, codec tokenCodec, password, passwordHash string) *AuthService {
	return &AuthService{
		logger:       logger,
		codec:        codec,
		password:     password,
		passwordHash: []byte(passwordHash),
	}
}

// Login returns an admin token and its expiry for the correct password.
func (s *AuthService) Login(password string) (string, time.Time, error) {
	if password == "" || !s.checkPassword(password) {
		s.logger.Warn("admin login failed")
		return "", time.Time{}, errorz.Unauthorized("invalid password")
	}
	signed, expiresAt, err := s.codec.Issue(token.RoleAdmin)
	if err != nil {
		return "", time.Time{}, err
	}
	s.logger.Info("admin logged in")
	return signed, expiresAt, nil
}

func (s *AuthService) checkPassword(password string) bool {
	if len(s.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	}
	if s.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) == 1
}

// IsAdmin reports whether tokenStr is a valid admin session token.
func (s *AuthService) IsAdmin(tokenStr string) bool {
	return s.codec.IsAdmin(tokenStr)
}
