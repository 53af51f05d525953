package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/foundry/shipit/internal/core/services"
)

// GitSource reads the release version from the local repository's tags.
// Construction fails unless HEAD sits exactly at the latest tag, so a
// GitSource in hand means the integrity check already passed.
type GitSource struct {
	version string
}

// Open opens the repository at path and runs the release integrity check:
// the last tag in listing order must point at the checked-out commit.
func Open(path string) (*GitSource, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	tag, err := lastTag(repo)
	if err != nil {
		return nil, err
	}

	target, err := tagTarget(repo, tag)
	if err != nil {
		return nil, fmt.Errorf("resolving tag %s: %w", tag.Name().Short(), err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}

	if target != head.Hash() {
		return nil, fmt.Errorf("%w: tag %s points at %s but HEAD is %s",
			services.ErrTagMismatch, tag.Name().Short(), target, head.Hash())
	}

	return &GitSource{version: tag.Name().Short()}, nil
}

// LatestVersion returns the tag name of the release being published.
func (g *GitSource) LatestVersion() string {
	return g.version
}

// lastTag returns the final tag reference in listing order, mirroring a
// plain tag listing rather than any semver ordering.
func lastTag(repo *git.Repository) (*plumbing.Reference, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var last *plumbing.Reference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		last = ref
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	if last == nil {
		return nil, fmt.Errorf("no release tags in repository")
	}
	return last, nil
}

// tagTarget peels an annotated tag to its commit; lightweight tags already
// point at one.
func tagTarget(repo *git.Repository, ref *plumbing.Reference) (plumbing.Hash, error) {
	obj, err := repo.TagObject(ref.Hash())
	if err == nil {
		return obj.Target, nil
	}
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return ref.Hash(), nil
	}
	return plumbing.ZeroHash, err
}
