package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBypassWithoutAddr(t *testing.T) {
	c := NewRedis("", "", "evalboard:", nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.Error(t, c.Ping(ctx))
	require.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	ok, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Redis
	ok, err := c.GetJSON(context.Background(), "k", new(int))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.Enabled())
}

func TestKeyPrefix(t *testing.T) {
	c := &Redis{prefix: "evalboard:"}
	assert.Equal(t, "evalboard:dashboard:stats", c.key("dashboard:stats"))
}
