package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBlocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	for i := 0; i < 4; i++ {
		require.NoError(t, l.Hit(ctx, "login:1.2.3.4", time.Minute))
		limited, err := l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
		require.NoError(t, err)
		assert.False(t, limited, "attempt %d should not be limited", i+1)
	}

	require.NoError(t, l.Hit(ctx, "login:1.2.3.4", time.Minute))
	limited, err := l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
	require.NoError(t, err)
	assert.True(t, limited)

	// 其它 key 不受影响
	limited, err = l.TooManyAttempts(ctx, "login:5.6.7.8", 5)
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestMemoryLimiterClearResetsWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Hit(ctx, "login:1.2.3.4", time.Minute))
	}
	limited, _ := l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
	require.True(t, limited)

	require.NoError(t, l.Clear(ctx, "login:1.2.3.4"))
	limited, _ = l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
	assert.False(t, limited)
}

func TestMemoryLimiterExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Hit(ctx, "login:1.2.3.4", 10*time.Millisecond))
	}
	limited, _ := l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
	require.True(t, limited)

	time.Sleep(30 * time.Millisecond)

	limited, _ = l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
	assert.False(t, limited, "counter should decay after the window")

	// 过期后第一击重新开窗
	require.NoError(t, l.Hit(ctx, "login:1.2.3.4", time.Minute))
	limited, _ = l.TooManyAttempts(ctx, "login:1.2.3.4", 5)
	assert.False(t, limited)
}
