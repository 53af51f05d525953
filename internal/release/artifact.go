package release

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/foundry/shipit/internal/core/models"
	"github.com/foundry/shipit/internal/util/hashing"
)

// Artifact is one platform's binary for the current version. The whole
// file is read into memory at construction; Location is set only after a
// successful upload.
type Artifact struct {
	Version  string
	Platform string
	Path     string
	Location string

	content []byte
	digest  string
}

// NewArtifact reads the binary at path for the given version and platform.
func NewArtifact(version, platform, path string) (*Artifact, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading release binary: %w", err)
	}
	return &Artifact{
		Version:  version,
		Platform: platform,
		Path:     path,
		content:  content,
	}, nil
}

// FullName returns the canonical storage key, version/platform/basename.
func (a *Artifact) FullName() string {
	return a.Version + "/" + a.Platform + "/" + filepath.Base(a.Path)
}

// Content returns the binary's bytes.
func (a *Artifact) Content() []byte {
	return a.content
}

// Size returns the binary's length in bytes.
func (a *Artifact) Size() int64 {
	return int64(len(a.content))
}

// HexDigest returns the MD5 digest of the binary, computed once and
// memoized.
func (a *Artifact) HexDigest() string {
	if a.digest == "" {
		a.digest = hashing.MD5Hex(a.content)
	}
	return a.digest
}

// PlatformAsset serializes the artifact for a feed entry. Upload must
// have completed, otherwise the URL is empty.
func (a *Artifact) PlatformAsset() models.PlatformAsset {
	return models.PlatformAsset{
		Name:   a.Platform,
		URL:    a.Location,
		Digest: a.HexDigest(),
	}
}
