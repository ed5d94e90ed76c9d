package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reportform/internal/config"
)

func TestNewRedisClientUnreachable(t *testing.T) {
	t.Parallel()

	_, err := NewRedisClient(config.RedisConfig{Addr: "127.0.0.1:1"}, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRedisUnavailable))
}
