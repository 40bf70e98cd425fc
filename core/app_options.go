package core

import (
	"log/slog"

	"github.com/orlanda/accounts/cache"
	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/router"
)

// Option configures the App during construction.
type Option func(*App)

// WithDbApp wires all three store roles from one implementation.
func WithDbApp(dbApp db.DbApp) Option {
	return func(a *App) {
		if dbApp == nil {
			panic("DbApp cannot be nil")
		}
		a.dbAuth = dbApp
		a.dbOtp = dbApp
		a.dbQueue = dbApp
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithUserCache sets the session-lookup cache. Optional; without it every
// authenticated request hits the store.
func WithUserCache(c cache.Cache[string, *db.User]) Option {
	return func(a *App) {
		a.userCache = c
	}
}

func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) {
		a.authenticator = auth
	}
}

func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}
