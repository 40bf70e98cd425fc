package core

import (
	"fmt"
	"log/slog"

	"github.com/orlanda/accounts/cache"
	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/router"
)

// App is the application wide context.
// db connections and permanent structs go here.
//
// All handlers have App as receiver, so every endpoint reaches the stores,
// the config and the logger through the same accessors.
type App struct {
	dbAuth         db.DbAuth
	dbOtp          db.DbOtp
	dbQueue        db.DbQueue
	router         router.Router
	userCache      cache.Cache[string, *db.User]
	configProvider *config.Provider
	logger         *slog.Logger
	authenticator  Authenticator
	validator      Validator
}

// NewApp assembles the application from options and checks that every
// required collaborator is present.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.dbAuth == nil || a.dbOtp == nil || a.dbQueue == nil {
		return nil, fmt.Errorf("database is required but was not provided (use WithDbApp)")
	}
	if a.configProvider == nil {
		return nil, fmt.Errorf("config provider is required but was not provided (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("logger is required but was not provided (use WithLogger)")
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}
	if a.authenticator == nil {
		a.authenticator = NewDefaultAuthenticator(a.dbAuth, a.userCache, a.logger, a.configProvider)
	}

	return a, nil
}

// Router returns the application's router instance
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbAuth
}

func (a *App) DbOtp() db.DbOtp {
	return a.dbOtp
}

func (a *App) DbQueue() db.DbQueue {
	return a.dbQueue
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) UserCache() cache.Cache[string, *db.User] {
	return a.userCache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

// Validator returns the validator instance
func (a *App) Validator() Validator {
	return a.validator
}
