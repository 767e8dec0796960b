package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"trailforge/video-service/internal/catalog"
	"trailforge/video-service/internal/httprange"
	"trailforge/video-service/internal/processing"
	"trailforge/video-service/internal/storage"
	"trailforge/video-service/internal/validation"
	"trailforge/video-service/models"
)

const testPublicBase = "https://cdn.test/storage/v1/object/public/videos/"

// mockBlobStore is an in-memory blob store that counts network-shaped
// calls so tests can prove validation short-circuits before any of them.
type mockBlobStore struct {
	content     []byte
	contentType string

	uploadErr error
	probeErr  error
	fetchErr  error

	uploadCalls atomic.Int32
	probeCalls  atomic.Int32
	fetchCalls  atomic.Int32

	uploadedKeys []string
	removedKeys  []string
}

func (m *mockBlobStore) Upload(ctx context.Context, key string, r io.Reader, contentType string, upsert bool) (string, error) {
	m.uploadCalls.Add(1)
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.uploadedKeys = append(m.uploadedKeys, key)
	return testPublicBase + key, nil
}

func (m *mockBlobStore) Remove(ctx context.Context, key string) error {
	m.removedKeys = append(m.removedKeys, key)
	return nil
}

func (m *mockBlobStore) PublicURL(key string) string {
	return testPublicBase + key
}

func (m *mockBlobStore) KeyFromURL(url string) (string, bool) {
	return storage.ObjectKeyFromURL("videos", url)
}

func (m *mockBlobStore) Probe(ctx context.Context, url string) (int64, string, error) {
	m.probeCalls.Add(1)
	if m.probeErr != nil {
		return 0, "", m.probeErr
	}
	return int64(len(m.content)), m.contentType, nil
}

func (m *mockBlobStore) Fetch(ctx context.Context, url string, rangeHeader string) (*storage.FetchResult, error) {
	m.fetchCalls.Add(1)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	body := m.content
	status := 200
	if br, ok := httprange.Parse(rangeHeader, int64(len(m.content))); ok {
		body = m.content[br.Start : br.End+1]
		status = 206
	}

	return &storage.FetchResult{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentType:   m.contentType,
		ContentLength: int64(len(body)),
		StatusCode:    status,
	}, nil
}

// mockCatalogStore keeps records in a map and counters alongside.
type mockCatalogStore struct {
	records  map[string]*models.VideoRecord
	counters map[string]int64
	incErr   error
}

func newMockCatalogStore() *mockCatalogStore {
	return &mockCatalogStore{
		records:  make(map[string]*models.VideoRecord),
		counters: make(map[string]int64),
	}
}

func (m *mockCatalogStore) Get(ctx context.Context, id string) (*models.VideoRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return record, nil
}

func (m *mockCatalogStore) Insert(ctx context.Context, record *models.VideoRecord) (*models.VideoRecord, error) {
	if _, exists := m.records[record.ID]; exists {
		return nil, errors.New("duplicate key")
	}
	m.records[record.ID] = record
	return record, nil
}

func (m *mockCatalogStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.VideoRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if title, ok := fields["title"].(string); ok {
		record.Title = title
	}
	return record, nil
}

func (m *mockCatalogStore) List(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	var records []models.VideoRecord
	for _, r := range m.records {
		records = append(records, *r)
	}
	return records, nil
}

func (m *mockCatalogStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockCatalogStore) CompleteProcessing(ctx context.Context, id string, fields map[string]interface{}) error {
	record, ok := m.records[id]
	if !ok {
		return catalog.ErrNotFound
	}
	record.ProcessingStatus = models.ProcessingCompleted
	return nil
}

func (m *mockCatalogStore) FailProcessing(ctx context.Context, id string, reason string) error {
	record, ok := m.records[id]
	if !ok {
		return catalog.ErrNotFound
	}
	record.ProcessingStatus = models.ProcessingFailed
	return nil
}

func (m *mockCatalogStore) IncrementCounter(ctx context.Context, id string, counter string) (int64, error) {
	if m.incErr != nil {
		return 0, m.incErr
	}
	if _, ok := m.records[id]; !ok {
		return 0, catalog.ErrNotFound
	}
	key := id + "/" + counter
	m.counters[key]++
	return m.counters[key], nil
}

func (m *mockCatalogStore) ListStalled(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	return nil, nil
}

// mockProcessor returns a canned result.
type mockProcessor struct {
	result *processing.Result
	err    error
	calls  int
}

func (m *mockProcessor) Process(ctx context.Context, req processing.Request) (*processing.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &processing.Result{
		VideoID:      req.VideoID,
		Slug:         "test-clip-abcd1234",
		Metadata:     models.VideoMetadata{Duration: 12, Resolution: "1920x1080", FileSize: 1024, Format: "mp4"},
		ThumbnailURL: testPublicBase + fmt.Sprintf("thumbnails/%s_thumbnail.svg", req.VideoID),
	}, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestApp wires the handler routes the same way cmd/api does.
func newTestApp(h *ApplicationHandler) *fiber.App {
	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	apiV1.Post("/videos/upload", h.UploadVideo)
	apiV1.Get("/videos/stream", h.StreamVideo)
	apiV1.Post("/videos/process", h.ProcessVideo)
	apiV1.Post("/videos", h.CreateVideo)
	apiV1.Get("/videos", h.ListVideos)
	apiV1.Get("/videos/:id", h.GetVideo)
	apiV1.Patch("/videos/:id", h.UpdateVideo)
	apiV1.Delete("/videos/:id", h.DeleteVideo)
	apiV1.Post("/videos/:id/interactions", h.RecordInteraction)

	return app
}

func newTestHandler(blob *mockBlobStore, cat *mockCatalogStore, proc *mockProcessor) *ApplicationHandler {
	return NewApplicationHandler(testLogger(), blob, cat, proc, validation.New(0, 0, 0))
}

func storedRecord(cat *mockCatalogStore, id string) *models.VideoRecord {
	record := &models.VideoRecord{
		ID:               id,
		Title:            "Test Clip",
		VideoURL:         testPublicBase + "raw/" + id + "_original.mp4",
		ProcessingStatus: models.ProcessingPending,
	}
	cat.records[id] = record
	return record
}
