package services

import (
	"context"

	"github.com/foundry/shipit/internal/core/models"
)

// ObjectStore is the gateway to the remote release bucket.
type ObjectStore interface {
	// Upload writes content as a publicly readable object under key.
	Upload(ctx context.Context, key string, content []byte) error

	// Fetch returns an object's content. ok distinguishes
	// present-with-content from absent-or-unknown: probe and transport
	// failures report absent, they never surface as errors.
	Fetch(ctx context.Context, key string) (content []byte, ok bool)

	// URL returns the public address for a previously uploaded key.
	// Undefined for keys that were never uploaded.
	URL(key string) string
}

// VersionSource yields the release version for the current run. An
// implementation validates its integrity preconditions at construction,
// so LatestVersion is always safe to call.
type VersionSource interface {
	// LatestVersion returns the tag name of the release being published.
	LatestVersion() string
}

// PublishJournal records successful publishes locally for auditing.
// It is written after the release is live and never consulted for the
// duplicate-publish guard; the remote cumulative feed is the source of
// truth.
type PublishJournal interface {
	// Record appends one run's record.
	Record(rec models.PublishRecord) error

	// History returns all records, most recent first.
	History() ([]models.PublishRecord, error)

	// Close closes the journal.
	Close() error
}
