package s3

import (
	"bytes"
	"context"
	"errors"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/semcache/remote"
)

// deleteBatchSize is the DeleteObjects API limit.
const deleteBatchSize = 1000

// Store implements remote.Store for S3.
type Store struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	bucket     string
	prefix     string
}

// Options configures a Store.
type Options struct {
	// Prefix is prepended to all keys (e.g. "semcache/").
	Prefix string
	// Region overrides the region from the ambient AWS configuration.
	Region string
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) func(o *Options) {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) func(o *Options) {
	return func(o *Options) {
		o.Region = region
	}
}

// New creates an S3 store using the ambient AWS configuration (environment,
// shared config files, instance metadata).
func New(ctx context.Context, bucket string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var cfgOptFns []func(*config.LoadOptions) error
	if opts.Region != "" {
		cfgOptFns = append(cfgOptFns, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, cfgOptFns...)
	if err != nil {
		return nil, err
	}

	return NewStore(s3.NewFromConfig(cfg), bucket, opts.Prefix), nil
}

// NewStore creates an S3 store with an existing client.
// rootPrefix is prepended to all keys (e.g. "semcache/").
func NewStore(client *s3.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client:     client,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		prefix:     rootPrefix,
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
	buf := manager.NewWriteAtBuffer(nil)

	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(agentID, key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, remote.ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, remote.ErrNotFound
		}
		return nil, err
	}

	return buf.Bytes(), nil
}

// Put writes an entry, overwriting any previous value.
func (s *Store) Put(ctx context.Context, agentID, key string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(agentID, key)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes a single entry.
func (s *Store) Delete(ctx context.Context, agentID, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(agentID, key)),
	})
	return err
}

// DeleteAgent removes every entry under the agent's prefix.
func (s *Store) DeleteAgent(ctx context.Context, agentID string) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.agentPrefix(agentID)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}

		for start := 0; start < len(objects); start += deleteBatchSize {
			end := start + deleteBatchSize
			if end > len(objects) {
				end = len(objects)
			}
			_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{
					Objects: objects[start:end],
					Quiet:   aws.Bool(true),
				},
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}
