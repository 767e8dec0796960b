package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/mediaprobe"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/models"
)

const testPublicBase = "https://cdn.test/storage/v1/object/public/videos/"

type fakeBlob struct {
	uploads   map[string]string // key -> content type
	uploadErr error
	probeSize int64
	probeErr  error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{uploads: make(map[string]string), probeSize: 10 << 20}
}

func (f *fakeBlob) Upload(ctx context.Context, key string, r io.Reader, contentType string, upsert bool) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[key] = contentType
	return testPublicBase + key, nil
}

func (f *fakeBlob) Remove(ctx context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeBlob) PublicURL(key string) string {
	return testPublicBase + key
}

func (f *fakeBlob) KeyFromURL(url string) (string, bool) {
	return storage.ObjectKeyFromURL("videos", url)
}

func (f *fakeBlob) Probe(ctx context.Context, url string) (int64, string, error) {
	if f.probeErr != nil {
		return 0, "", f.probeErr
	}
	return f.probeSize, "video/mp4", nil
}

func (f *fakeBlob) Fetch(ctx context.Context, url string, rangeHeader string) (*storage.FetchResult, error) {
	return nil, errors.New("not implemented")
}

type fakeCatalog struct {
	records     map[string]*models.VideoRecord
	completed   map[string]map[string]interface{}
	failed      map[string]string
	completeErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		records:   make(map[string]*models.VideoRecord),
		completed: make(map[string]map[string]interface{}),
		failed:    make(map[string]string),
	}
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (*models.VideoRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return record, nil
}

func (f *fakeCatalog) Insert(ctx context.Context, record *models.VideoRecord) (*models.VideoRecord, error) {
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeCatalog) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.VideoRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return record, nil
}

func (f *fakeCatalog) List(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	return nil, nil
}

func (f *fakeCatalog) Delete(ctx context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func (f *fakeCatalog) CompleteProcessing(ctx context.Context, id string, fields map[string]interface{}) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	record, ok := f.records[id]
	if !ok {
		return catalog.ErrNotFound
	}
	record.ProcessingStatus = models.ProcessingCompleted
	f.completed[id] = fields
	return nil
}

func (f *fakeCatalog) FailProcessing(ctx context.Context, id string, reason string) error {
	record, ok := f.records[id]
	if !ok {
		return catalog.ErrNotFound
	}
	record.ProcessingStatus = models.ProcessingFailed
	f.failed[id] = reason
	return nil
}

func (f *fakeCatalog) IncrementCounter(ctx context.Context, id string, counter string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeCatalog) ListStalled(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	return nil, nil
}

type fakeProber struct {
	meta *mediaprobe.Metadata
	err  error
}

func (f *fakeProber) Probe(ctx context.Context, url string) (*mediaprobe.Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func pendingRecord(id string) *models.VideoRecord {
	return &models.VideoRecord{
		ID:               id,
		Title:            "Test Clip",
		VideoURL:         testPublicBase + fmt.Sprintf("raw/%s_original.mp4", id),
		ProcessingStatus: models.ProcessingPending,
	}
}

func TestProcessCompletedImpliesFieldsPresent(t *testing.T) {
	blob := newFakeBlob()
	cat := newFakeCatalog()
	record := pendingRecord("vid-1")
	cat.records[record.ID] = record

	prober := &fakeProber{meta: &mediaprobe.Metadata{Duration: 120.5, Width: 1920, Height: 1080, Format: "mov,mp4,m4a"}}
	p := NewProcessor(blob, cat, prober, testLogger())

	result, err := p.Process(context.Background(), Request{
		VideoID:  record.ID,
		VideoURL: record.VideoURL,
		Title:    "Test Clip",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if record.ProcessingStatus != models.ProcessingCompleted {
		t.Errorf("status = %q, want completed", record.ProcessingStatus)
	}

	fields := cat.completed[record.ID]
	for _, name := range []string{"duration", "resolution", "thumbnail_url", "file_size", "video_format"} {
		if fields[name] == nil || fields[name] == "" {
			t.Errorf("completed record is missing field %q", name)
		}
	}
	if fields["duration"] != 120.5 {
		t.Errorf("duration = %v, want 120.5", fields["duration"])
	}
	if fields["resolution"] != "1920x1080" {
		t.Errorf("resolution = %v, want 1920x1080", fields["resolution"])
	}

	if !strings.HasPrefix(result.Slug, "test-clip-") {
		t.Errorf("slug = %q, want test-clip-<token>", result.Slug)
	}
	if result.ThumbnailURL == "" {
		t.Error("result has no thumbnail URL")
	}
	if _, ok := blob.uploads[storage.ThumbnailKey(record.ID, ".svg")]; !ok {
		t.Error("thumbnail was not uploaded under the thumbnail key")
	}
}

func TestProcessMetadataIsBestEffort(t *testing.T) {
	blob := newFakeBlob()
	blob.probeErr = errors.New("head request refused")
	cat := newFakeCatalog()
	record := pendingRecord("vid-2")
	cat.records[record.ID] = record

	prober := &fakeProber{err: errors.New("ffprobe not installed")}
	p := NewProcessor(blob, cat, prober, testLogger())

	_, err := p.Process(context.Background(), Request{VideoID: record.ID, VideoURL: record.VideoURL, Title: "Test Clip"})
	if err != nil {
		t.Fatalf("metadata failures must not fail processing, got %v", err)
	}

	fields := cat.completed[record.ID]
	if fields["resolution"] != defaultResolution {
		t.Errorf("resolution = %v, want fallback %q", fields["resolution"], defaultResolution)
	}
	if record.ProcessingStatus != models.ProcessingCompleted {
		t.Errorf("status = %q, want completed", record.ProcessingStatus)
	}
}

func TestProcessNilProberEstimatesDuration(t *testing.T) {
	blob := newFakeBlob()
	blob.probeSize = 2_500_000 // 20M bits at ~1 Mbps -> 20s
	cat := newFakeCatalog()
	record := pendingRecord("vid-3")
	cat.records[record.ID] = record

	p := NewProcessor(blob, cat, nil, testLogger())

	_, err := p.Process(context.Background(), Request{VideoID: record.ID, VideoURL: record.VideoURL})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	fields := cat.completed[record.ID]
	if fields["duration"] != 20.0 {
		t.Errorf("estimated duration = %v, want 20", fields["duration"])
	}
	if fields["file_size"] != int64(2_500_000) {
		t.Errorf("file_size = %v, want 2500000", fields["file_size"])
	}
}

func TestProcessThumbnailFailureUsesFallback(t *testing.T) {
	blob := newFakeBlob()
	blob.uploadErr = errors.New("bucket quota exceeded")
	cat := newFakeCatalog()
	record := pendingRecord("vid-4")
	cat.records[record.ID] = record

	p := NewProcessor(blob, cat, nil, testLogger())

	result, err := p.Process(context.Background(), Request{VideoID: record.ID, VideoURL: record.VideoURL, Title: "Test Clip"})
	if err != nil {
		t.Fatalf("thumbnail failure must not fail processing, got %v", err)
	}

	if result.ThumbnailURL == "" {
		t.Fatal("expected a fallback thumbnail URL")
	}
	if !strings.Contains(result.ThumbnailURL, fallbackThumbnailKey) {
		t.Errorf("thumbnail URL %q should point at the fallback asset", result.ThumbnailURL)
	}
	if record.ProcessingStatus != models.ProcessingCompleted {
		t.Errorf("status = %q, want completed", record.ProcessingStatus)
	}
}

func TestProcessUnknownRecord(t *testing.T) {
	p := NewProcessor(newFakeBlob(), newFakeCatalog(), nil, testLogger())

	_, err := p.Process(context.Background(), Request{VideoID: "missing", VideoURL: "https://cdn.test/x.mp4"})
	if err == nil {
		t.Fatal("expected an error for a record that does not exist")
	}
}

func TestProcessWriteFailureMarksFailed(t *testing.T) {
	blob := newFakeBlob()
	cat := newFakeCatalog()
	cat.completeErr = errors.New("connection reset")
	record := pendingRecord("vid-5")
	cat.records[record.ID] = record

	p := NewProcessor(blob, cat, nil, testLogger())

	_, err := p.Process(context.Background(), Request{VideoID: record.ID, VideoURL: record.VideoURL, Title: "Test Clip"})
	if err == nil {
		t.Fatal("expected the catalog write failure to surface")
	}

	if record.ProcessingStatus != models.ProcessingFailed {
		t.Errorf("status = %q, want failed", record.ProcessingStatus)
	}
	if cat.failed[record.ID] == "" {
		t.Error("failure reason was not recorded")
	}
}

func TestProcessKeepsExistingSlug(t *testing.T) {
	blob := newFakeBlob()
	cat := newFakeCatalog()
	record := pendingRecord("vid-6")
	existing := "test-clip-abcd1234"
	record.Slug = &existing
	cat.records[record.ID] = record

	p := NewProcessor(blob, cat, nil, testLogger())

	result, err := p.Process(context.Background(), Request{VideoID: record.ID, VideoURL: record.VideoURL, Title: "Renamed Clip"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Slug != existing {
		t.Errorf("slug = %q, want existing %q preserved", result.Slug, existing)
	}
	if _, ok := cat.completed[record.ID]["slug"]; ok {
		t.Error("slug must not be rewritten once set")
	}
}
