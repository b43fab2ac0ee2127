package signal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnRateLimiter(t *testing.T) {
	req := require.New(t)
	rl := NewConnRateLimiter(1, 2)

	req.True(rl.Allow("c1"))
	req.True(rl.Allow("c1"))
	req.False(rl.Allow("c1"))

	// Buckets are per connection
	req.True(rl.Allow("c2"))
	req.Equal(2, rl.Len())

	rl.Forget("c1")
	req.Equal(1, rl.Len())
	req.True(rl.Allow("c1"))
}

func TestConnRateLimiter_Disabled(t *testing.T) {
	req := require.New(t)
	rl := NewConnRateLimiter(0, 0)

	req.Nil(rl)
	for i := 0; i < 1000; i++ {
		req.True(rl.Allow("c1"))
	}
	rl.Forget("c1")
	req.Zero(rl.Len())
}
