package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/ashgrove/schedcore/pkg/errors"
)

// ServiceClaims identifies the caller submitting an asynchronous job.
type ServiceClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// AuthConfig configures the job-submission route guard.
type AuthConfig struct {
	Secret       string
	TokenExpiry  time.Duration
	ClientHashes map[string]string // client id -> bcrypt hash of its shared secret
}

// AuthService issues and validates the bearer tokens that protect the
// job-submission route. The optimisation core itself never authenticates
// anyone; this guards only the demo HTTP gateway around it.
type AuthService struct {
	logger *zap.Logger
	config AuthConfig
}

// NewAuthService builds an AuthService. A nil logger defaults to zap.NewNop().
func NewAuthService(logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = time.Hour
	}
	return &AuthService{logger: logger, config: config}
}

// IssueToken verifies clientID/clientSecret against the configured bcrypt
// hashes and returns a signed bearer token on success.
func (s *AuthService) IssueToken(clientID, clientSecret string) (string, time.Time, error) {
	hash, ok := s.config.ClientHashes[clientID]
	if !ok {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrUnauthorized, "unknown client")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(clientSecret)); err != nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrUnauthorized, "invalid client credentials")
	}

	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &ServiceClaims{
		Subject: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates a bearer token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
