// Package storage wraps the Supabase storage bucket behind the BlobStore
// interface the rest of the pipeline consumes. Uploads and removals go
// through the storage client; size probes and byte-range fetches are raw
// HTTP against the object URL because the storage client exposes neither.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

// Storage key conventions. Raw uploads are written once and never
// overwritten; thumbnails may be regenerated in place.
const (
	rawKeyPattern       = "raw/%s_original%s"
	thumbnailKeyPattern = "thumbnails/%s_thumbnail%s"
)

// RawVideoKey generates the storage key for a new raw upload and returns
// the generated id alongside it.
func RawVideoKey(ext string) (id string, key string) {
	id = uuid.NewString()
	return id, fmt.Sprintf(rawKeyPattern, id, ext)
}

// ThumbnailKey generates the storage key for a video's thumbnail.
func ThumbnailKey(videoID, ext string) string {
	return fmt.Sprintf(thumbnailKeyPattern, videoID, ext)
}

// ObjectKeyFromURL recovers the storage key from a public object URL,
// which ends in .../<bucket>/<key>. It returns ok=false when the URL
// does not reference the given bucket.
func ObjectKeyFromURL(bucket, url string) (string, bool) {
	marker := "/" + bucket + "/"
	idx := strings.LastIndex(url, marker)
	if idx < 0 {
		return "", false
	}
	key := url[idx+len(marker):]
	if key == "" {
		return "", false
	}
	return key, true
}

// FetchResult carries the upstream response for a stream request.
type FetchResult struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	StatusCode    int
}

// BlobStore is the contract the upload, processing, and streaming paths
// have with the object store.
type BlobStore interface {
	// Upload writes r to the bucket under key. Upsert false means
	// no-overwrite: the store rejects a duplicate key. The object's
	// public URL is returned on success.
	Upload(ctx context.Context, key string, r io.Reader, contentType string, upsert bool) (string, error)

	// Remove deletes the object under key.
	Remove(ctx context.Context, key string) error

	// PublicURL returns the public retrieval URL for key.
	PublicURL(key string) string

	// KeyFromURL recovers the storage key from a public URL into this
	// store's bucket, for deletions keyed by the catalog's URLs.
	KeyFromURL(url string) (string, bool)

	// Probe issues a metadata-only request against url and reports the
	// object's byte length and content type.
	Probe(ctx context.Context, url string) (size int64, contentType string, err error)

	// Fetch retrieves the object at url, optionally with a byte-range
	// header. A nil result with no error does not occur; callers must
	// close the body.
	Fetch(ctx context.Context, url string, rangeHeader string) (*FetchResult, error)
}

// SupabaseBlobStore implements BlobStore against a Supabase storage bucket.
type SupabaseBlobStore struct {
	client     *storage_go.Client
	httpClient *http.Client
	bucket     string
}

// NewSupabaseBlobStore creates a blob store over the given storage client
// and bucket. timeout bounds the probe and fetch requests.
func NewSupabaseBlobStore(client *storage_go.Client, bucket string, timeout time.Duration) *SupabaseBlobStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseBlobStore{
		client:     client,
		httpClient: &http.Client{Timeout: timeout},
		bucket:     bucket,
	}
}

func (s *SupabaseBlobStore) Upload(ctx context.Context, key string, r io.Reader, contentType string, upsert bool) (string, error) {
	_, err := s.client.UploadFile(s.bucket, key, r, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *SupabaseBlobStore) Remove(ctx context.Context, key string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseBlobStore) PublicURL(key string) string {
	return s.client.GetPublicUrl(s.bucket, key).SignedURL
}

func (s *SupabaseBlobStore) KeyFromURL(url string) (string, bool) {
	return ObjectKeyFromURL(s.bucket, url)
}

func (s *SupabaseBlobStore) Probe(ctx context.Context, url string) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("creating probe request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("probing %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("probing %s: unexpected status %d", url, resp.StatusCode)
	}

	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("probing %s: missing content length", url)
	}

	return size, resp.Header.Get("Content-Type"), nil
}

func (s *SupabaseBlobStore) Fetch(ctx context.Context, url string, rangeHeader string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating fetch request: %w", err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	return &FetchResult{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		StatusCode:    resp.StatusCode,
	}, nil
}
