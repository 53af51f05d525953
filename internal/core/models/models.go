package models

import "time"

// PlatformAsset is one platform's row in a feed entry: where the binary
// lives and the digest update-checkers display for integrity.
type PlatformAsset struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Digest string `json:"digest"`
}

// FeedEntry is one published version's record. The latest feed holds a
// single entry; the cumulative feed is an ordered array of them.
type FeedEntry struct {
	Version   string          `json:"version"`
	Platforms []PlatformAsset `json:"platforms"`
}

// Equal reports structural equality, the identity used when de-duplicating
// the cumulative feed.
func (e FeedEntry) Equal(other FeedEntry) bool {
	if e.Version != other.Version || len(e.Platforms) != len(other.Platforms) {
		return false
	}
	for i, p := range e.Platforms {
		if p != other.Platforms[i] {
			return false
		}
	}
	return true
}

// PublishRecord is one successful run in the local journal.
type PublishRecord struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	Version       string    `json:"version"`
	ArtifactCount int       `json:"artifact_count"`
	TotalBytes    int64     `json:"total_bytes"`
	PublishedAt   time.Time `json:"published_at"`
}
