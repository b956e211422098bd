package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-cinema-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"PORT", "ENV", "BASE_URL", "API_URL", "NEXT_PUBLIC_API_URL", "SESSION_SECRET", "NEXTAUTH_SECRET", "SESSION_MAX_AGE", "HTTP_TIMEOUT", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "REDIS_ADDR", "CORS_ORIGINS"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:3000", c.GetBaseURL())
	require.Equal(t, "http://localhost:8080/api", c.GetAPIBaseURL())
	require.Zero(t, c.GetHTTPTimeout())
	require.Equal(t, 30*24*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, 10*time.Minute, c.GetFlowStateTimeout())
	require.Empty(t, c.GetSessionSecret())
	require.False(t, c.GoogleEnabled())
	require.Equal(t, "https://accounts.google.com", c.GetGoogleIssuer())
	require.Empty(t, c.GetRedisAddr())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", ":8081")
	t.Setenv("BASE_URL", "https://app.example.com/")
	t.Setenv("API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "https://api.example.com/api/")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("NEXTAUTH_SECRET", "legacy-secret")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	c := config.New()

	require.Equal(t, ":8081", c.GetPort())
	require.Equal(t, "https://app.example.com", c.GetBaseURL())
	require.Equal(t, "https://api.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, "legacy-secret", c.GetSessionSecret())
	require.Equal(t, time.Hour, c.GetMaxSessionAge())
	require.Equal(t, 5*time.Second, c.GetHTTPTimeout())
	require.True(t, c.GoogleEnabled())

	t.Setenv("SESSION_SECRET", "primary")
	require.Equal(t, "primary", c.GetSessionSecret())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("BASE_URL", "https://app.example.com/")
	t.Setenv("CORS_ORIGINS", "https://admin.example.com, ,http://localhost:5173")
	origins := config.New().GetAllowedOrigins()

	require.True(t, origins.IsAllowedOrigin("https://app.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://admin.example.com"))
	require.True(t, origins.IsAllowedOrigin("http://localhost:5173"))
	require.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
	require.Len(t, origins, 3)
	require.Equal(t, "http://localhost:5173, https://admin.example.com, https://app.example.com", origins.String())
}
