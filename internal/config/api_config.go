package config

import (
	"strings"
	"time"
)

// APIConfig describes the remote booking API that owns users and tokens.
type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetFirstEnv("http://localhost:8080/api", "API_URL", "NEXT_PUBLIC_API_URL"), "/")
}

// GetHTTPTimeout is zero (no timeout) unless HTTP_TIMEOUT is set.
func (API) GetHTTPTimeout() time.Duration {
	return GetDurationEnv("HTTP_TIMEOUT", 0)
}
