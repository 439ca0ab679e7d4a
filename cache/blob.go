package cache

import (
	"context"
	"errors"
	"io"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"
)

const defaultBlobPrefix = "calinga/"

// BlobCache stores each entry as one object in a gocloud bucket. It suits
// on-disk caches (file://) and shared object storage alike.
type BlobCache struct {
	bucket *blob.Bucket
	prefix string
}

// OpenBlobCache opens the bucket at urlstr (e.g., "file:///var/cache/calinga").
func OpenBlobCache(ctx context.Context, urlstr, prefix string) (*BlobCache, error) {
	bucket, err := blob.OpenBucket(ctx, urlstr)
	if err != nil {
		return nil, err
	}
	return NewBlobCache(bucket, prefix), nil
}

// NewBlobCache wraps an opened bucket.
func NewBlobCache(bucket *blob.Bucket, prefix string) *BlobCache {
	if prefix == "" {
		prefix = defaultBlobPrefix
	}
	return &BlobCache{bucket: bucket, prefix: prefix}
}

// Read retrieves an object. A missing object is not an error.
func (c *BlobCache) Read(ctx context.Context, key string) (string, bool, error) {
	data, err := c.bucket.ReadAll(ctx, c.prefix+key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Write stores an object.
func (c *BlobCache) Write(ctx context.Context, key string, value string) error {
	return c.bucket.WriteAll(ctx, c.prefix+key, []byte(value), &blob.WriterOptions{
		ContentType: contentType(key),
	})
}

// Entries lists every object under the prefix.
func (c *BlobCache) Entries(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)
	iter := c.bucket.List(&blob.ListOptions{Prefix: c.prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}

		key := strings.TrimPrefix(obj.Key, c.prefix)
		val, found, err := c.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			result[key] = val
		}
	}
}

// Close releases the bucket.
func (c *BlobCache) Close() error {
	return c.bucket.Close()
}

func contentType(key string) string {
	if strings.HasPrefix(key, "translations:") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Verify BlobCache implements ExportableCache
var _ ExportableCache = (*BlobCache)(nil)
