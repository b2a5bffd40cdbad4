package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
)

const (
	defaultSessionTTL    = 7 * 24 * time.Hour
	defaultResetTokenTTL = 15 * time.Minute

	resetTokenPurpose = "password_reset"
)

var (
	// ErrSessionSecretRequired aborts construction without a signing secret.
	ErrSessionSecretRequired = errors.New("session signing secret is required")
	// ErrInvalidSession indicates the token failed signature or shape checks.
	ErrInvalidSession = errors.New("session token invalid")
	// ErrExpiredSession indicates a well-formed token outside its validity window.
	ErrExpiredSession = errors.New("session token expired")
	// ErrResetTokenInvalid indicates the reset token failed validation.
	ErrResetTokenInvalid = errors.New("reset token invalid")
)

// SessionClaims is the authenticated principal carried by a session token.
type SessionClaims struct {
	UserID   string
	Email    string
	UserType domain.UserType
}

// SessionService issues and validates the signed tokens backing the session
// cookie, plus the short-lived tokens bridging OTP verification to password
// reset.
type SessionService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

// NewSessionService constructs the service. The secret is mandatory; there
// is no insecure fallback.
func NewSessionService(secret string, sessionTTL, resetTTL time.Duration) (*SessionService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSessionSecretRequired
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTokenTTL
	}
	return &SessionService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}, nil
}

// WithClock overrides the internal clock, used in tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// SessionTTL reports the configured session lifetime, used to size the cookie.
func (s *SessionService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Issue signs a session token for the principal.
func (s *SessionService) Issue(profile *domain.Profile) (string, error) {
	if profile == nil || profile.ID == "" {
		return "", fmt.Errorf("profile is required")
	}

	now := s.now().UTC()
	claims := jwt.MapClaims{
		"jti":   uuid.NewString(),
		"sub":   profile.ID,
		"email": profile.Email,
		"role":  string(profile.UserType),
		"iat":   now.Unix(),
		"exp":   now.Add(s.sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token.
func (s *SessionService) Validate(tokenString string) (*SessionClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || email == "" {
		return nil, ErrInvalidSession
	}

	return &SessionClaims{
		UserID:   sub,
		Email:    email,
		UserType: domain.NormalizeUserType(role),
	}, nil
}

// IssueResetToken signs a short-lived token proving OTP verification for the
// email. It authorizes exactly one password change.
func (s *SessionService) IssueResetToken(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email is required")
	}

	now := s.now().UTC()
	claims := jwt.MapClaims{
		"jti":     uuid.NewString(),
		"email":   email,
		"purpose": resetTokenPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(s.resetTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}

	return signed, nil
}

// ValidateResetToken verifies a reset token and returns the email it is
// bound to.
func (s *SessionService) ValidateResetToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, ErrExpiredSession) || errors.Is(err, ErrInvalidSession) {
			return "", ErrResetTokenInvalid
		}
		return "", err
	}

	purpose, _ := claims["purpose"].(string)
	email, _ := claims["email"].(string)
	if purpose != resetTokenPurpose || email == "" {
		return "", ErrResetTokenInvalid
	}

	return email, nil
}

func (s *SessionService) parse(tokenString string) (jwt.MapClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidSession
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
