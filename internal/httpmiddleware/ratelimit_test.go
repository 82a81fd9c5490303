package httpmiddleware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenBucketExhausts(t *testing.T) {
	t.Parallel()

	l := NewSimpleTokenBucket(3, 3)
	for i := 0; i < 3; i++ {
		require.True(t, l.allow("1.2.3.4"), "request %d should pass", i+1)
	}
	require.False(t, l.allow("1.2.3.4"), "bucket should be empty")
}

func TestTokenBucketIsPerKey(t *testing.T) {
	t.Parallel()

	l := NewSimpleTokenBucket(1, 1)
	require.True(t, l.allow("1.2.3.4"))
	require.False(t, l.allow("1.2.3.4"))
	require.True(t, l.allow("5.6.7.8"), "different client has its own bucket")
}
