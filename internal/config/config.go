package config

type Config interface {
	EnvConfig
	CorsConfig
	RefreshConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetAPIURL() string
	GetDashboardAPIURL() string
	GetUsername() string
	GetPassword() string
	GetStartSection() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Refresh
	Session
}

func New() Config {
	return mainConfig{}
}
