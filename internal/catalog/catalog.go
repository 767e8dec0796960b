// Package catalog is the client for the video records table, accessed
// through PostgREST. All mutation of catalog rows flows through here.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"trailforge/video-service/models"
)

const videosTable = "videos"

// ErrNotFound is returned when no catalog row matches the requested id.
var ErrNotFound = errors.New("video record not found")

// Counter names accepted by IncrementCounter. These map to columns on
// the videos table; increments happen inside a database function so
// concurrent events never lose updates.
const (
	CounterView  = "view_count"
	CounterLike  = "like_count"
	CounterShare = "share_count"
	CounterSave  = "save_count"
)

var validCounters = map[string]bool{
	CounterView: true, CounterLike: true, CounterShare: true, CounterSave: true,
}

// ValidCounter reports whether name is an incrementable counter column.
func ValidCounter(name string) bool {
	return validCounters[name]
}

// Store is the contract the handlers, processor, and reconciler have
// with the video record store.
type Store interface {
	Get(ctx context.Context, id string) (*models.VideoRecord, error)
	Insert(ctx context.Context, record *models.VideoRecord) (*models.VideoRecord, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.VideoRecord, error)
	List(ctx context.Context, limit int) ([]models.VideoRecord, error)
	Delete(ctx context.Context, id string) error

	// CompleteProcessing writes the derived fields plus the completed
	// status in a single update.
	CompleteProcessing(ctx context.Context, id string, fields map[string]interface{}) error

	// FailProcessing marks the record's processing as failed.
	FailProcessing(ctx context.Context, id string, reason string) error

	// IncrementCounter atomically bumps one of the interaction counters
	// and returns the new value.
	IncrementCounter(ctx context.Context, id string, counter string) (int64, error)

	// ListStalled returns records stuck in pending or failed with no
	// thumbnail, for the reconciler sweep.
	ListStalled(ctx context.Context, limit int) ([]models.VideoRecord, error)
}

// Client implements Store over a PostgREST endpoint.
type Client struct {
	rest *postgrest.Client
}

// NewClient constructs a catalog client for the given Supabase project
// URL and service key.
func NewClient(supabaseURL, serviceKey string) (*Client, error) {
	rest := postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if rest.ClientError != nil {
		return nil, fmt.Errorf("initializing catalog client: %w", rest.ClientError)
	}
	return &Client{rest: rest}, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.VideoRecord, error) {
	var record models.VideoRecord
	_, err := c.rest.From(videosTable).
		Select("*", "exact", false).
		Eq("id", id).
		Single().
		ExecuteTo(&record)
	if err != nil {
		// PostgREST reports an empty single-row result as an error.
		return nil, ErrNotFound
	}
	return &record, nil
}

func (c *Client) Insert(ctx context.Context, record *models.VideoRecord) (*models.VideoRecord, error) {
	var results []models.VideoRecord
	_, err := c.rest.From(videosTable).
		Insert(record, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("inserting video record %s: %w", record.ID, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no record returned after insert, id: %s", record.ID)
	}
	return &results[0], nil
}

func (c *Client) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.VideoRecord, error) {
	fields["updated_at"] = time.Now()

	var results []models.VideoRecord
	_, err := c.rest.From(videosTable).
		Update(fields, "representation", "").
		Eq("id", id).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("updating video record %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (c *Client) List(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.VideoRecord
	_, err := c.rest.From(videosTable).
		Select("*", "exact", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&records)
	if err != nil {
		return nil, fmt.Errorf("listing video records: %w", err)
	}
	return records, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, _, err := c.rest.From(videosTable).
		Delete("", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("deleting video record %s: %w", id, err)
	}
	return nil
}

func (c *Client) CompleteProcessing(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["processing_status"] = string(models.ProcessingCompleted)
	_, err := c.Update(ctx, id, fields)
	return err
}

func (c *Client) FailProcessing(ctx context.Context, id string, reason string) error {
	_, err := c.Update(ctx, id, map[string]interface{}{
		"processing_status": string(models.ProcessingFailed),
		"processing_error":  reason,
	})
	return err
}

func (c *Client) IncrementCounter(ctx context.Context, id string, counter string) (int64, error) {
	if !ValidCounter(counter) {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	// increment_video_counter is a SQL function doing
	// UPDATE videos SET <counter> = <counter> + 1 ... RETURNING <counter>,
	// so concurrent increments never read stale values.
	result := c.rest.Rpc("increment_video_counter", "", map[string]interface{}{
		"p_video_id": id,
		"p_counter":  counter,
	})
	if c.rest.ClientError != nil {
		return 0, fmt.Errorf("incrementing %s for %s: %w", counter, id, c.rest.ClientError)
	}

	value, err := strconv.ParseInt(strings.TrimSpace(result), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("incrementing %s for %s: unexpected rpc result %q", counter, id, result)
	}
	return value, nil
}

func (c *Client) ListStalled(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []models.VideoRecord
	_, err := c.rest.From(videosTable).
		Select("*", "exact", false).
		In("processing_status", []string{string(models.ProcessingPending), string(models.ProcessingFailed)}).
		Is("thumbnail_url", "null").
		Limit(limit, "").
		ExecuteTo(&records)
	if err != nil {
		return nil, fmt.Errorf("listing stalled video records: %w", err)
	}
	return records, nil
}
