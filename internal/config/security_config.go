package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() string
	GetMaxSessionAge() time.Duration
	GetFlowStateTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionSecret() string {
	return GetFirstEnv("", "SESSION_SECRET", "NEXTAUTH_SECRET")
}

func (Security) GetMaxSessionAge() time.Duration {
	return GetDurationEnv("SESSION_MAX_AGE", 30*24*time.Hour)
}

func (Security) GetFlowStateTimeout() time.Duration {
	return 10 * time.Minute
}
