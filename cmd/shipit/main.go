package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foundry/shipit/internal/adapters/journal"
	"github.com/foundry/shipit/internal/adapters/objectstore"
	"github.com/foundry/shipit/internal/adapters/vcs"
	"github.com/foundry/shipit/internal/config"
	"github.com/foundry/shipit/internal/core/models"
	"github.com/foundry/shipit/internal/core/services"
	"github.com/foundry/shipit/internal/release"
	"github.com/foundry/shipit/internal/util/logging"
)

func main() {
	configPath := flag.String("config", "shipit.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to environment file")
	distDir := flag.String("dist", "", "override the distribution directory")
	history := flag.Bool("history", false, "print the local publish journal and exit")
	flag.Parse()

	logger := logging.New(os.Stdout)

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if *distDir != "" {
		cfg.Release.DistDir = *distDir
	}

	if *history {
		printHistory(cfg, logger)
		return
	}

	publish(cfg, logger)
}

func publish(cfg *config.Config, logger zerolog.Logger) {
	runID := uuid.NewString()
	logger = logging.WithRunID(logger, runID)

	// Integrity check runs before anything touches the network:
	// publishing from a commit that is not the latest tag would produce a
	// release nobody can trace back to source.
	version, err := resolveVersion(cfg)
	if err != nil {
		if errors.Is(err, services.ErrTagMismatch) {
			logger.Fatal().Err(err).Msg("refusing to publish: HEAD is not at the latest tag")
		}
		logger.Fatal().Err(err).Msg("failed to read release version")
	}
	logger.Info().Str("version", version).Msg("publishing release")

	if err := cfg.ValidateStorage(); err != nil {
		logger.Fatal().Err(err).Msg("storage configuration incomplete")
	}
	store, err := objectstore.New(cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store")
	}

	set, err := release.NewSet(version, cfg.Release.DistDir, cfg.Release.BinaryMarker, store)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoDistDir):
			logger.Fatal().Err(err).Msg("no distribution directory; run the build before publishing")
		case errors.Is(err, services.ErrNoUniqueBinary):
			logger.Fatal().Err(err).Msg("binary discovery is ambiguous; clean the distribution directory")
		default:
			logger.Fatal().Err(err).Msg("failed to load release artifacts")
		}
	}

	ctx := context.Background()
	if err := set.Upload(ctx, logger); err != nil {
		if errors.Is(err, services.ErrAlreadyPublished) {
			logger.Fatal().Err(err).Msg("this version is already published")
		}
		logger.Fatal().Err(err).Msg("artifact upload failed")
	}

	pub := release.NewFeedPublisher(version, set.Artifacts(), store)
	if err := pub.Upload(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("feed upload failed")
	}

	// The release is live at this point; the journal is best effort.
	recordPublish(cfg, logger, models.PublishRecord{
		RunID:         runID,
		Version:       version,
		ArtifactCount: len(set.Artifacts()),
		TotalBytes:    set.TotalBytes(),
		PublishedAt:   time.Now().UTC(),
	})

	logger.Info().Str("version", version).Msg("release published")
}

func resolveVersion(cfg *config.Config) (string, error) {
	var src services.VersionSource
	src, err := vcs.Open(cfg.Release.RepoPath)
	if err != nil {
		return "", err
	}
	return src.LatestVersion(), nil
}

func openJournal(cfg *config.Config) (services.PublishJournal, error) {
	return journal.NewSQLiteJournal(cfg.Journal.StateDir)
}

func recordPublish(cfg *config.Config, logger zerolog.Logger, rec models.PublishRecord) {
	j, err := openJournal(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("publish journal unavailable")
		return
	}
	defer j.Close()

	if err := j.Record(rec); err != nil {
		logger.Warn().Err(err).Msg("failed to record publish in journal")
	}
}

func printHistory(cfg *config.Config, logger zerolog.Logger) {
	j, err := openJournal(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open publish journal")
	}
	defer j.Close()

	recs, err := j.History()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read publish journal")
	}

	if len(recs) == 0 {
		fmt.Println("No publishes recorded.")
		return
	}
	for _, r := range recs {
		fmt.Printf("%s  %-12s  %d artifacts  %s  run %s\n",
			r.PublishedAt.Format(time.RFC3339), r.Version, r.ArtifactCount, formatBytes(r.TotalBytes), r.RunID)
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
