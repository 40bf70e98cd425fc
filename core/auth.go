package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/orlanda/accounts/cache"
	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
)

// userCacheTTL bounds how long a cached user record may serve authenticated
// requests before the store is consulted again.
const userCacheTTL = 5 * time.Minute

// Authenticator defines the interface for authentication operations
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, jsonResponse, error)
}

// DefaultAuthenticator implements Authenticator using the standard flow:
// Bearer token, session-purpose JWT, user lookup (cached).
type DefaultAuthenticator struct {
	dbAuth         db.DbAuth
	userCache      cache.Cache[string, *db.User]
	logger         *slog.Logger
	configProvider *config.Provider
}

// NewDefaultAuthenticator creates a new DefaultAuthenticator instance
func NewDefaultAuthenticator(dbAuth db.DbAuth, userCache cache.Cache[string, *db.User], logger *slog.Logger, configProvider *config.Provider) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		dbAuth:         dbAuth,
		userCache:      userCache,
		logger:         logger,
		configProvider: configProvider,
	}
}

// Authenticate implements the Authenticator interface
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, jsonResponse, error) {
	errAuth := errors.New("auth error")

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errorNoAuthHeader, errAuth
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errorInvalidTokenFormat, errAuth
	}

	cfg := a.configProvider.Get()
	userID, err := crypto.ParseSessionToken(tokenString, []byte(cfg.Jwt.SessionSecret))
	if err != nil {
		// Expired and forged tokens answer identically.
		return nil, errorJwtInvalidToken, errAuth
	}

	if a.userCache != nil {
		if user, ok := a.userCache.Get(userID); ok {
			return user, jsonResponse{}, nil
		}
	}

	user, err := a.dbAuth.GetUserById(userID)
	if err != nil {
		a.logger.Error("failed to load user for session", "err", err)
		return nil, errorAuthDatabaseError, errAuth
	}
	if user == nil {
		return nil, errorJwtInvalidToken, errAuth
	}

	if a.userCache != nil {
		a.userCache.SetWithTTL(userID, user, 1, userCacheTTL)
	}

	return user, jsonResponse{}, nil
}
