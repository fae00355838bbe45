package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bookquery/bookquery/internal/config"
	"github.com/bookquery/bookquery/internal/storage"
)

func TestPutAppliesPrefix(t *testing.T) {
	fake := &fakeClient{}
	store, err := NewWithClient("bookquery", "/archive/prod/", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	info, err := store.Put(context.Background(), "/runs/date=2026-01-02/run-a.parquet", bytes.NewBufferString("abc"), 3, storage.PutOptions{ContentType: "application/vnd.apache.parquet"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if fake.lastPutBucket != "bookquery" {
		t.Fatalf("bucket = %q", fake.lastPutBucket)
	}
	if fake.lastPutKey != "archive/prod/runs/date=2026-01-02/run-a.parquet" {
		t.Fatalf("key = %q", fake.lastPutKey)
	}
	if info.Key != "runs/date=2026-01-02/run-a.parquet" {
		t.Fatalf("info.Key = %q", info.Key)
	}
}

func TestObjectKeyRejectsTraversal(t *testing.T) {
	store, err := NewWithClient("bookquery", "", &fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	for _, key := range []string{"../secrets.txt", "runs/../../x", "", "  "} {
		if _, err := store.Put(context.Background(), key, bytes.NewBufferString("x"), 1, storage.PutOptions{}); err == nil {
			t.Fatalf("Put(%q) expected validation error", key)
		}
	}
}

func TestGetMapsNotFound(t *testing.T) {
	store, err := NewWithClient("bookquery", "", &fakeClient{getErr: storage.ErrObjectNotFound})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "runs/missing.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Get() error = %v, want ErrObjectNotFound", err)
	}
}

func TestListStripsPrefix(t *testing.T) {
	fake := &fakeClient{listed: []storage.ObjectInfo{
		{Key: "archive/runs/date=2026-01-02/run-a.parquet", Size: 10},
		{Key: "archive/runs/date=2026-01-02/run-b.parquet", Size: 11},
	}}
	store, err := NewWithClient("bookquery", "archive", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	items, err := store.List(context.Background(), "runs/date=2026-01-02")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if fake.lastListPrefix != "archive/runs/date=2026-01-02/" {
		t.Fatalf("list prefix = %q", fake.lastListPrefix)
	}
	if len(items) != 2 || items[0].Key != "runs/date=2026-01-02/run-a.parquet" {
		t.Fatalf("List() = %+v", items)
	}
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	fake := &fakeClient{bucketExists: false}
	store, err := NewWithClient("bookquery", "", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if err := store.ensureBucket(context.Background(), "us-east-1"); err != nil {
		t.Fatalf("ensureBucket() error = %v", err)
	}
	if !fake.createBucketCalled {
		t.Fatal("expected CreateBucket to be called")
	}
}

func TestNewRequiresEndpointAndBucket(t *testing.T) {
	if _, err := New(context.Background(), config.ObjectStoreConfig{Bucket: "b"}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := New(context.Background(), config.ObjectStoreConfig{Endpoint: "localhost:9000"}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		useSSL  bool
		want    string
		secure  bool
		wantErr bool
	}{
		{raw: "https://minio.example.com", want: "minio.example.com", secure: true},
		{raw: "http://localhost:9000", want: "localhost:9000"},
		{raw: "localhost:9000", useSSL: true, want: "localhost:9000", secure: true},
		{raw: "ftp://files", wantErr: true},
		{raw: " ", wantErr: true},
	}
	for _, tt := range tests {
		endpoint, secure, err := parseEndpoint(tt.raw, tt.useSSL)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseEndpoint(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseEndpoint(%q) error = %v", tt.raw, err)
		}
		if endpoint != tt.want || secure != tt.secure {
			t.Fatalf("parseEndpoint(%q) = %q/%v", tt.raw, endpoint, secure)
		}
	}
}

type fakeClient struct {
	lastPutBucket      string
	lastPutKey         string
	lastListPrefix     string
	listed             []storage.ObjectInfo
	getErr             error
	bucketExists       bool
	createBucketCalled bool
}

func (f *fakeClient) Put(_ context.Context, bucket, key string, reader io.Reader, size int64, _ string) (storage.ObjectInfo, error) {
	f.lastPutBucket = bucket
	f.lastPutKey = key
	_, _ = io.Copy(io.Discard, reader)
	return storage.ObjectInfo{Key: key, Size: size, ETag: "etag-1", LastModified: time.Now().UTC()}, nil
}

func (f *fakeClient) Get(_ context.Context, _, key string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return io.NopCloser(strings.NewReader(key)), nil
}

func (f *fakeClient) List(_ context.Context, _, prefix string) ([]storage.ObjectInfo, error) {
	f.lastListPrefix = prefix
	out := make([]storage.ObjectInfo, len(f.listed))
	copy(out, f.listed)
	return out, nil
}

func (f *fakeClient) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeClient) CreateBucket(_ context.Context, _, _ string) error {
	f.createBucketCalled = true
	return nil
}
