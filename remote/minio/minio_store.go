package minio

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/semcache/remote"
)

// Store implements remote.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a MinIO store.
// rootPrefix is prepended to all keys (e.g. "results/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) objectKey(agentID, key string) string {
	return path.Join(s.prefix, "agents", agentID, key)
}

func (s *Store) agentPrefix(agentID string) string {
	return path.Join(s.prefix, "agents", agentID) + "/"
}

// Get returns the stored entry, or remote.ErrNotFound.
func (s *Store) Get(ctx context.Context, agentID, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(agentID, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, remote.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes an entry, overwriting any previous value.
func (s *Store) Put(ctx context.Context, agentID, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(agentID, key),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Delete removes a single entry.
func (s *Store) Delete(ctx context.Context, agentID, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.objectKey(agentID, key), minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil // Already gone
		}
		return err
	}
	return nil
}

// DeleteAgent removes every entry under the agent's prefix.
func (s *Store) DeleteAgent(ctx context.Context, agentID string) error {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.agentPrefix(agentID),
		Recursive: true,
	})

	for obj := range objects {
		if obj.Err != nil {
			return obj.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}
