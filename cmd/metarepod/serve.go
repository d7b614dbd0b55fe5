package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"metarepo/internal/adapters/rest"
	"metarepo/internal/archive"
	"metarepo/internal/audit"
	"metarepo/internal/cohort"
	"metarepo/internal/config"
	"metarepo/internal/infra/persistence/memory"
	"metarepo/internal/infra/persistence/postgres"
	"metarepo/internal/infra/persistence/sqlite"
	"metarepo/internal/logging"
	"metarepo/internal/observability"
	"metarepo/internal/repo"
	"metarepo/pkg/collection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metadata repository server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		return err
	}
	logging.Configure(os.Stderr, cfg.Log.Level)
	logger := logging.GetLogger("metarepod")

	collectionID := cfg.Collection.ID
	if collectionID == "" {
		collectionID = uuid.NewString()
		logger.Warn().Str("collection_id", collectionID).Msg("no collection id configured, generated a fresh one")
	}

	store, closeStore, err := openStore(ctx, cfg, collectionID)
	if err != nil {
		return err
	}
	defer closeStore()

	cohorts := cohort.NewManager(cohort.Registration{
		ServerName:             cfg.Server.Name,
		Organization:           cfg.Server.Organization,
		MetadataCollectionID:   collectionID,
		MetadataCollectionName: cfg.Collection.Name,
	})
	for _, c := range cfg.Cohorts {
		if _, err := cohorts.ConnectToCohort(c.Name); err != nil {
			return fmt.Errorf("connect to cohort %s: %w", c.Name, err)
		}
		logger.Info().Str("cohort", c.Name).Msg("connected to cohort")
	}

	registry := prometheus.NewRegistry()
	local := repo.NewLocalRepository(cfg.Server.Name, store,
		repo.WithMetrics(observability.NewPrometheusMetricsRecorder(registry)),
		repo.WithAuditSink(audit.NewZerologSink()),
		repo.WithPageURLBase(cfg.Server.PageURLBase),
		repo.WithMembershipView(cohorts),
	)

	archiveStore, err := openArchiveStore(ctx, cfg)
	if err != nil {
		return err
	}
	exporter := archive.NewExporter(archiveStore, collectionID)

	server := rest.New(cfg.Server.ListenAddr, local, cohorts, exporter, registry)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, collectionID string) (collection.MetadataCollection, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewStore(collectionID, cfg.Collection.Name), func() {}, nil
	case "sqlite":
		store, err := sqlite.NewStore(cfg.Storage.SQLitePath, collectionID, cfg.Collection.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := postgres.NewStore(ctx, cfg.Storage.PostgresDSN, collectionID, cfg.Collection.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func openArchiveStore(ctx context.Context, cfg *config.Config) (archive.Store, error) {
	switch cfg.Archive.Driver {
	case "fs":
		return archive.NewFSStore(cfg.Archive.Root)
	case "s3":
		return archive.NewS3Store(ctx, archive.S3Config{
			Region:    cfg.Archive.Region,
			Bucket:    cfg.Archive.Bucket,
			Endpoint:  cfg.Archive.Endpoint,
			PathStyle: cfg.Archive.PathStyle,
		})
	case "memory":
		return archive.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver: %s", cfg.Archive.Driver)
	}
}
