package release

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foundry/shipit/internal/core/models"
	"github.com/foundry/shipit/internal/core/services"
)

// Feed document keys in the release bucket.
const (
	LatestFeedKey     = "releases/latest.json"
	CumulativeFeedKey = "releases/all.json"
)

// FeedPublisher writes the two feed documents after the artifacts are
// uploaded: the latest pointer is overwritten unconditionally, the
// cumulative feed is fetched, appended to and rewritten in full.
type FeedPublisher struct {
	version   string
	artifacts []*Artifact
	store     services.ObjectStore
}

// NewFeedPublisher builds a publisher for already-uploaded artifacts.
func NewFeedPublisher(version string, artifacts []*Artifact, store services.ObjectStore) *FeedPublisher {
	return &FeedPublisher{version: version, artifacts: artifacts, store: store}
}

// Upload writes the latest feed, then the cumulative feed. The two writes
// are independent; a failure between them leaves the latest feed new and
// the cumulative feed stale.
func (p *FeedPublisher) Upload(ctx context.Context, logger zerolog.Logger) error {
	entry := p.entry()

	latest, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding latest feed: %w", err)
	}
	logger.Info().Str("key", LatestFeedKey).Msg("uploading latest feed")
	if err := p.store.Upload(ctx, LatestFeedKey, latest); err != nil {
		return fmt.Errorf("uploading latest feed: %w", err)
	}

	entries, err := fetchCumulative(ctx, p.store)
	if err != nil {
		return err
	}
	entries = appendUnique(entries, entry)

	all, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding cumulative feed: %w", err)
	}
	logger.Info().Str("key", CumulativeFeedKey).Int("entries", len(entries)).Msg("uploading cumulative feed")
	if err := p.store.Upload(ctx, CumulativeFeedKey, all); err != nil {
		return fmt.Errorf("uploading cumulative feed: %w", err)
	}
	return nil
}

// entry builds this run's feed entry in artifact order.
func (p *FeedPublisher) entry() models.FeedEntry {
	platforms := make([]models.PlatformAsset, 0, len(p.artifacts))
	for _, a := range p.artifacts {
		platforms = append(platforms, a.PlatformAsset())
	}
	return models.FeedEntry{Version: p.version, Platforms: platforms}
}

// fetchCumulative reads the cumulative feed, defaulting to empty when the
// document is absent or unreachable. A malformed document is fatal: better
// to stop than to overwrite history with a truncated feed.
func fetchCumulative(ctx context.Context, store services.ObjectStore) ([]models.FeedEntry, error) {
	data, ok := store.Fetch(ctx, CumulativeFeedKey)
	if !ok {
		return nil, nil
	}
	var entries []models.FeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing cumulative feed: %w", err)
	}
	return entries, nil
}

// appendUnique appends entry and drops exact structural duplicates,
// preserving first-seen order.
func appendUnique(entries []models.FeedEntry, entry models.FeedEntry) []models.FeedEntry {
	entries = append(entries, entry)
	out := make([]models.FeedEntry, 0, len(entries))
	for _, e := range entries {
		dup := false
		for _, kept := range out {
			if kept.Equal(e) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return out
}
