package database

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/config"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mustPort(t, mr.Port())}

	client := NewRedis(context.Background(), cfg, zap.NewNop())
	require.NotNil(t, client)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewRedisDisabledOrUnreachable(t *testing.T) {
	assert.Nil(t, NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop()))

	mr := miniredis.RunT(t)
	port := mustPort(t, mr.Port())
	mr.Close()
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port}
	assert.Nil(t, NewRedis(context.Background(), cfg, zap.NewNop()))
}

func mustPort(t *testing.T, s string) int {
	t.Helper()
	p, err := strconv.Atoi(s)
	require.NoError(t, err)
	return p
}
