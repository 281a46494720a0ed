package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
)

// SessionStore keeps the current session id per operator.
type SessionStore interface {
	Save(ctx context.Context, subject, sid string, ttl time.Duration) error
	Current(ctx context.Context, subject string) (string, error)
	Delete(ctx context.Context, subject string) error
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthService authenticates the dashboard operator. There is a single operator account,
// configured by email and bcrypt hash.
type AuthService struct {
	AdminEmail        string
	AdminPasswordHash string
	JWT               *helpers.JWTManager
	Sessions          SessionStore
	Logger            *logrus.Logger
}

func NewAuthService(adminEmail, adminPasswordHash string, jwt *helpers.JWTManager, sessions SessionStore, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		AdminEmail:        strings.ToLower(strings.TrimSpace(adminEmail)),
		AdminPasswordHash: adminPasswordHash,
		JWT:               jwt,
		Sessions:          sessions,
		Logger:            logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.AdminEmail == "" || s.AdminPasswordHash == "" || email != s.AdminEmail {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !helpers.CheckPassword(s.AdminPasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.issue(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	s.Logger.WithField("operator", email).Info("operator logged in")
	return pair, nil
}

// Refresh rotates both tokens. The refresh token must belong to the current session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := s.checkSession(ctx, claims.Subject, claims.ID); err != nil {
		return TokenPair{}, err
	}
	return s.issue(ctx, claims.Subject)
}

// Authorize validates an access token against the live session and returns the operator.
func (s *AuthService) Authorize(ctx context.Context, accessToken string) (string, error) {
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := s.checkSession(ctx, claims.Subject, claims.ID); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *AuthService) Logout(ctx context.Context, subject string) error {
	if s.Sessions == nil || subject == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, subject); err != nil {
		s.Logger.WithError(err).WithField("operator", subject).Warn("session delete failed")
		return err
	}
	return nil
}

func (s *AuthService) checkSession(ctx context.Context, subject, sid string) error {
	if s.Sessions == nil {
		return nil
	}
	current, err := s.Sessions.Current(ctx, subject)
	if err != nil || current == "" || current != sid {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, subject string) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(subject, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("operator", subject).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(subject, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("operator", subject).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, subject, sid, s.JWT.RefreshTTL); err != nil {
			s.Logger.WithError(err).WithField("operator", subject).Error("save session failed")
			return TokenPair{}, err
		}
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
