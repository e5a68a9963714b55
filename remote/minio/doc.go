// Package minio provides a remote.Store implementation for MinIO and other
// S3-compatible object stores.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := miniostore.NewStore(client, "semcache", "results/")
package minio
