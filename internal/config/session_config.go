package config

import (
	"path/filepath"
	"time"
)

type SessionConfig interface {
	GetSessionPollInterval() time.Duration
	GetSessionDBPath() string
	GetTokenSecret() string
	GetTokenTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionPollInterval() time.Duration {
	return 5 * time.Minute
}

// GetSessionDBPath is the SQLite file holding the persisted session.
func (Session) GetSessionDBPath() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), "session.db")
}

// GetTokenSecret is only used by the mock backend to sign the tokens it issues.
func (Session) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "yenikoza-dev-secret")
}

func (Session) GetTokenTTL() time.Duration {
	if ttl, err := time.ParseDuration(GetEnv("TOKEN_TTL", "8h")); err == nil && ttl > 0 {
		return ttl
	}
	return 8 * time.Hour
}
