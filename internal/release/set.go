package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foundry/shipit/internal/core/services"
)

// Set holds the release artifacts for one run, one per fixed platform,
// and drives their upload through the object store.
type Set struct {
	version   string
	artifacts []*Artifact
	store     services.ObjectStore
}

// NewSet discovers one release binary per platform under distDir. The
// directory layout is distDir/<platform>/ with exactly one entry whose
// name contains marker; zero or multiple candidates fail loudly.
func NewSet(version, distDir, marker string, store services.ObjectStore) (*Set, error) {
	if _, err := os.Stat(distDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run the build first to populate it)", services.ErrNoDistDir, distDir)
		}
		return nil, fmt.Errorf("checking distribution directory: %w", err)
	}

	artifacts := make([]*Artifact, 0, len(Platforms))
	for _, platform := range Platforms {
		path, err := findBinary(filepath.Join(distDir, platform), marker)
		if err != nil {
			return nil, err
		}
		art, err := NewArtifact(version, platform, path)
		if err != nil {
			return nil, fmt.Errorf("loading %s artifact: %w", platform, err)
		}
		artifacts = append(artifacts, art)
	}

	return &Set{version: version, artifacts: artifacts, store: store}, nil
}

// Artifacts returns the artifacts in fixed platform order.
func (s *Set) Artifacts() []*Artifact {
	return s.artifacts
}

// TotalBytes returns the combined size of all artifacts.
func (s *Set) TotalBytes() int64 {
	var n int64
	for _, a := range s.artifacts {
		n += a.Size()
	}
	return n
}

// Upload publishes every artifact. It first re-checks the cumulative feed
// so an already-published version terminates the run before any object is
// written; afterwards each artifact is uploaded in platform order and its
// public URL recorded immediately. The first failure aborts the rest, with
// no rollback of objects already uploaded.
func (s *Set) Upload(ctx context.Context, logger zerolog.Logger) error {
	entries, err := fetchCumulative(ctx, s.store)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Version == s.version {
			return fmt.Errorf("%w: %s already has a feed entry", services.ErrAlreadyPublished, s.version)
		}
	}

	for _, a := range s.artifacts {
		logger.Info().Str("key", a.FullName()).Int64("size", a.Size()).Msg("uploading artifact")
		if err := s.store.Upload(ctx, a.FullName(), a.Content()); err != nil {
			return fmt.Errorf("uploading %s: %w", a.FullName(), err)
		}
		a.Location = s.store.URL(a.FullName())
	}
	return nil
}

// findBinary returns the single entry in dir whose name contains marker.
func findBinary(dir, marker string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading platform directory %s: %w", dir, err)
	}

	var matches []string
	for _, e := range entries {
		if !e.IsDir() && strings.Contains(e.Name(), marker) {
			matches = append(matches, e.Name())
		}
	}

	switch len(matches) {
	case 1:
		return filepath.Join(dir, matches[0]), nil
	case 0:
		return "", fmt.Errorf("%w: nothing matching %q in %s", services.ErrNoUniqueBinary, marker, dir)
	default:
		return "", fmt.Errorf("%w: %d entries matching %q in %s", services.ErrNoUniqueBinary, len(matches), marker, dir)
	}
}
