package config

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	ProviderConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Providers
	Security
	Storage
}

func New() Config {
	return mainConfig{}
}
