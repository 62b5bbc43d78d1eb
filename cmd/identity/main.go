package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/coogsnation/identity/internal/config"
	"github.com/coogsnation/identity/internal/logger"
	"github.com/coogsnation/identity/internal/model"
	"github.com/coogsnation/identity/internal/provider"
	"github.com/coogsnation/identity/internal/repository/postgres"
	"github.com/coogsnation/identity/internal/service"
	storage "github.com/coogsnation/identity/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	registry := provider.NewRegistry(cfg.OAuth.RedirectBaseURL, map[string]provider.Credentials{
		model.ProviderFacebook: {ClientID: cfg.OAuth.FacebookClientID, ClientSecret: cfg.OAuth.FacebookClientSecret},
		model.ProviderLinkedIn: {ClientID: cfg.OAuth.LinkedInClientID, ClientSecret: cfg.OAuth.LinkedInClientSecret},
		model.ProviderGoogle:   {ClientID: cfg.OAuth.GoogleClientID, ClientSecret: cfg.OAuth.GoogleClientSecret},
	})

	sink := makeReportSink(ctx, logger, cfg.Report)

	logAppVersion()

	switch os.Args[1] {
	case "migrate":
		migrator := service.NewMigrator(postgres.NewMigrationRepository(db), registry, cfg.Migration.DefaultProvider, logger)

		summary, err := migrator.Run(ctx)
		if err != nil {
			logger.Fatal("migration failed", "error", err)
		}

		publishReport(ctx, logger, sink, "migration", summary)

	case "verify":
		verifier := service.NewVerifier(postgres.NewVerificationRepository(db), logger)

		report, err := verifier.Run(ctx)
		if err != nil {
			logger.Fatal("verification failed", "error", err)
		}

		for _, id := range report.OrphanedUserIDs {
			logger.Warn("orphaned user", "user_id", id)
		}

		publishReport(ctx, logger, sink, "verification", report)

	default:
		usage()
		os.Exit(2)
	}
}

// makeReportSink builds the audit report sink, or nil when disabled.
func makeReportSink(ctx context.Context, logger *logger.Logger, cfg config.Report) model.ReportSink {
	if !cfg.Enabled {
		return nil
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}

	sink, err := storage.NewClient(ctx, minioClient, cfg.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize report sink", "error", err)
	}

	return sink
}

// publishReport uploads the run result as a timestamped JSON object. Upload
// failures are logged but never fail the run; the report is an audit
// artifact, not part of the migration itself.
func publishReport(ctx context.Context, logger *logger.Logger, sink model.ReportSink, name string, v any) {
	if sink == nil {
		return
	}

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("failed to marshal report", "name", name, "error", err)
		return
	}

	key := fmt.Sprintf("%s-%s.json", name, time.Now().UTC().Format("20060102T150405Z"))
	if err := sink.Put(ctx, key, payload); err != nil {
		logger.Error("failed to upload report", "key", key, "error", err)
		return
	}

	logger.Info("report uploaded", "key", key)
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s <command>

commands:
  migrate   move legacy single-provider users onto the user_identities table
  verify    check that every user has at least one linked identity
`, os.Args[0])
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
