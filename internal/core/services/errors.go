package services

import "errors"

var (
	// ErrTagMismatch indicates HEAD is not at the latest release tag.
	ErrTagMismatch = errors.New("head not at latest tag")
	// ErrNoDistDir indicates the distribution output directory is missing.
	ErrNoDistDir = errors.New("distribution directory not found")
	// ErrAlreadyPublished indicates the version already has a feed entry.
	ErrAlreadyPublished = errors.New("version already published")
	// ErrNoUniqueBinary indicates a platform directory did not contain
	// exactly one candidate release binary.
	ErrNoUniqueBinary = errors.New("no unique release binary")
)
