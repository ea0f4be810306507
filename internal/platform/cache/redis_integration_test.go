package cache

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/forum-backend/internal/platform/logger"
)

func TestRedisCacheIntegration(t *testing.T) {
	if strings.TrimSpace(os.Getenv("REDIS_INTEGRATION")) != "1" {
		t.Skip("set REDIS_INTEGRATION=1 (and REDIS_ADDR) to run redis integration tests")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		addr = "localhost:6379"
	}
	log, err := logger.New("test")
	require.NoError(t, err)

	ctx := context.Background()
	prefix := "forum_it_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ":"
	c, _, err := NewRedis(ctx, log, RedisOptions{Addr: addr, KeyPrefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.DeletePrefix(context.Background(), "")
		_ = c.Close()
	})

	require.NoError(t, c.Set(ctx, "descendants:1:0", payload{IDs: []int64{2, 3}}, 0))
	require.NoError(t, c.Set(ctx, "descendants:1:1", payload{IDs: []int64{2}}, 0))

	var got payload
	found, err := c.Get(ctx, "descendants:1:0", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{2, 3}, got.IDs)

	require.NoError(t, c.DeletePrefix(ctx, "descendants:1:"))
	found, err = c.Get(ctx, "descendants:1:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
