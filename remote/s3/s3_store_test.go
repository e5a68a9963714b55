package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semcache/remote"
)

func TestObjectKeyLayout(t *testing.T) {
	s := &Store{prefix: "semcache"}

	assert.Equal(t, "semcache/agents/agent-1/abc", s.objectKey("agent-1", "abc"))
	assert.Equal(t, "semcache/agents/agent-1/", s.agentPrefix("agent-1"))

	// Agent prefixes must not be prefixes of each other.
	assert.NotContains(t, s.agentPrefix("agent-11"), s.agentPrefix("agent-1"))
}

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	prefix := fmt.Sprintf("test-semcache-%d/", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, prefix)

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "agent-1", "k1", []byte("v1")))

		data, err := store.Get(ctx, "agent-1", "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), data)

		_, err = store.Get(ctx, "agent-1", "missing")
		assert.ErrorIs(t, err, remote.ErrNotFound)
	})

	t.Run("DeleteAgent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "agent-a", "k1", []byte("a1")))
		require.NoError(t, store.Put(ctx, "agent-a", "k2", []byte("a2")))
		require.NoError(t, store.Put(ctx, "agent-b", "k1", []byte("b1")))

		require.NoError(t, store.DeleteAgent(ctx, "agent-a"))

		_, err := store.Get(ctx, "agent-a", "k1")
		assert.ErrorIs(t, err, remote.ErrNotFound)

		data, err := store.Get(ctx, "agent-b", "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("b1"), data)

		require.NoError(t, store.DeleteAgent(ctx, "agent-b"))
	})
}
