package minio

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyLayout(t *testing.T) {
	s := &Store{prefix: "results"}

	assert.Equal(t, "results/agents/a1/k", s.objectKey("a1", "k"))
	assert.Equal(t, "results/agents/a1/", s.agentPrefix("a1"))
}

func TestIntegration_MinioStore(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := os.Getenv("MINIO_BUCKET")
	prefix := fmt.Sprintf("test-semcache-%d/", time.Now().UnixNano())
	store := NewStore(client, bucket, prefix)

	require.NoError(t, store.Put(ctx, "agent-1", "k1", []byte("v1")))

	data, err := store.Get(ctx, "agent-1", "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)

	require.NoError(t, store.DeleteAgent(ctx, "agent-1"))
}
