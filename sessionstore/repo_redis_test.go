package sessionstore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/jrsteele09/go-cinema-auth/sessionstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Integration tests against a real Redis started with testcontainers-go.
//
//	GO_TEST_INTEGRATION=1 go test ./sessionstore -run Redis -v -count=1
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/library/redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := sessionstore.Connect(ctx, fmt.Sprintf("%s:%s", host, port.Port()), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func redisTestSession() *session.Session {
	return &session.Session{
		Identity:           session.Identity{ID: "1", Email: "a@b.com", Name: "A", Role: session.RoleUser},
		TokenPair:          session.TokenPair{AccessToken: "T1", RefreshToken: "R1", AccessTokenExpiresAt: 1700000000},
		Error:              session.RefreshAccessTokenError,
		RefreshAttemptedAt: 1700000000123,
	}
}

func TestRedisRepo_Integration(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	r := sessionstore.NewRedisRepo(client, time.Minute)

	t.Run("upsert get delete", func(t *testing.T) {
		sid := uuid.NewString()
		s := redisTestSession()

		require.NoError(t, r.Upsert(ctx, sid, s))
		got, err := r.Get(ctx, sid)
		require.NoError(t, err)
		require.Equal(t, s, got)

		s.AccessToken = "T2"
		s.Error = ""
		require.NoError(t, r.Upsert(ctx, sid, s))
		got, err = r.Get(ctx, sid)
		require.NoError(t, err)
		require.Equal(t, "T2", got.AccessToken)
		require.Empty(t, got.Error)

		require.NoError(t, r.Delete(ctx, sid))
		_, err = r.Get(ctx, sid)
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("missing key is not found", func(t *testing.T) {
		_, err := r.Get(ctx, uuid.NewString())
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		require.NoError(t, r.Delete(ctx, uuid.NewString()))
	})

	t.Run("ttl is set", func(t *testing.T) {
		sid := uuid.NewString()
		require.NoError(t, r.Upsert(ctx, sid, redisTestSession()))

		ttl, err := client.TTL(ctx, "session:"+sid).Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
		require.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("entries expire", func(t *testing.T) {
		short := sessionstore.NewRedisRepo(client, time.Second)
		sid := uuid.NewString()
		require.NoError(t, short.Upsert(ctx, sid, redisTestSession()))

		require.Eventually(t, func() bool {
			_, err := short.Get(ctx, sid)
			return apperrors.Is(err, apperrors.ErrSessionNotFound)
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("empty id", func(t *testing.T) {
		require.Error(t, r.Upsert(ctx, "", redisTestSession()))
		_, err := r.Get(ctx, "")
		require.Error(t, err)
	})
}

func TestRedisRepo_ConnectFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := sessionstore.Connect(ctx, "127.0.0.1:1", "")
	require.Error(t, err)
}
