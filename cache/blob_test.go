package cache

import (
	"context"
	"testing"

	"gocloud.dev/blob/memblob"
)

func newTestBlobCache(t *testing.T) *BlobCache {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	c := NewBlobCache(bucket, "")
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBlobCache_ReadWrite(t *testing.T) {
	ctx := context.Background()
	c := newTestBlobCache(t)

	if err := c.Write(ctx, "translations:app:en", `{"hello":"Hello"}`); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	val, ok, err := c.Read(ctx, "translations:app:en")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !ok || val != `{"hello":"Hello"}` {
		t.Errorf("Expected stored value, got %q (ok=%v)", val, ok)
	}
}

func TestBlobCache_Miss(t *testing.T) {
	c := newTestBlobCache(t)

	val, ok, err := c.Read(context.Background(), "etag:app:en")
	if err != nil {
		t.Errorf("Expected a miss without error, got %v", err)
	}
	if ok || val != "" {
		t.Errorf("Expected miss, got %q (ok=%v)", val, ok)
	}
}

func TestBlobCache_Entries(t *testing.T) {
	ctx := context.Background()
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	// An object outside the prefix must not be listed.
	if err := bucket.WriteAll(ctx, "other/object", []byte("x"), nil); err != nil {
		t.Fatal(err)
	}

	c := NewBlobCache(bucket, "calinga/")
	_ = c.Write(ctx, "translations:app:en", `{"a":"b"}`)
	_ = c.Write(ctx, "etag:app:en", `"e1"`)

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %v", entries)
	}
	if entries["etag:app:en"] != `"e1"` {
		t.Errorf("unexpected etag entry %q", entries["etag:app:en"])
	}
}

func TestOpenBlobCache(t *testing.T) {
	ctx := context.Background()
	c, err := OpenBlobCache(ctx, "mem://", "test/")
	if err != nil {
		t.Fatalf("OpenBlobCache failed: %v", err)
	}
	defer c.Close()

	if err := c.Write(ctx, "k", "v"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if val, ok, _ := c.Read(ctx, "k"); !ok || val != "v" {
		t.Errorf("Expected 'v', got %q", val)
	}
}

func TestOpenBlobCache_UnknownScheme(t *testing.T) {
	if _, err := OpenBlobCache(context.Background(), "nope://bucket", ""); err == nil {
		t.Error("Expected error for unregistered scheme")
	}
}

func TestBlobCache_File(t *testing.T) {
	ctx := context.Background()
	c, err := OpenBlobCache(ctx, "file://"+t.TempDir(), "")
	if err != nil {
		t.Fatalf("OpenBlobCache failed: %v", err)
	}
	defer c.Close()

	if err := c.Write(ctx, "translations:app:de", `{"x":"y"}`); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if val, ok, err := c.Read(ctx, "translations:app:de"); err != nil || !ok || val != `{"x":"y"}` {
		t.Errorf("Expected stored value, got %q (ok=%v, err=%v)", val, ok, err)
	}
}
