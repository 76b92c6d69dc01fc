package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dkravets/hearthledger/internal/backup"
	"github.com/dkravets/hearthledger/internal/export/bigquery"
	"github.com/dkravets/hearthledger/internal/logger"
	"github.com/dkravets/hearthledger/internal/store/sqlite"
)

var (
	dbPath      = flag.String("db", os.Getenv("HEARTHLEDGER_DB"), "sqlite database path (or set HEARTHLEDGER_DB)")
	projectID   = flag.String("project", "", "GCP project ID (required unless -backup-only)")
	datasetID   = flag.String("dataset", "hearthledger", "BigQuery dataset ID")
	bucket      = flag.String("backup", "", "GCS bucket for a JSON snapshot backup (optional)")
	backupOnly  = flag.Bool("backup-only", false, "only upload the snapshot backup, skip BigQuery")
	incremental = flag.Bool("incremental", true, "only export transactions newer than the warehouse's latest")
)

func main() {
	flag.Parse()

	log := logger.New("export")
	ctx := context.Background()

	if *dbPath == "" {
		log.Fatal().Msg("A database path is required: set -db or HEARTHLEDGER_DB")
	}
	if !*backupOnly && *projectID == "" {
		log.Fatal().Msg("-project is required unless -backup-only is set")
	}
	if *backupOnly && *bucket == "" {
		log.Fatal().Msg("-backup-only requires -backup")
	}

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
	}
	defer st.Close()

	snap, err := st.Snapshot(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read snapshot")
	}

	now := time.Now()

	if *bucket != "" {
		uri, err := backup.UploadSnapshot(ctx, *bucket, snap, now)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to upload backup")
		}
		log.Info().Str("uri", uri).Msg("Snapshot backup uploaded")
	}
	if *backupOnly {
		return
	}

	exporter, err := bigquery.NewExporter(ctx, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer exporter.Close()

	txSnap := snap
	if *incremental {
		last, ok, err := exporter.LastExportedDate(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read last exported date")
		}
		if ok {
			txSnap = bigquery.TransactionsSince(snap, last)
			log.Info().Str("cutoff", last.String()).Msg("Incremental export")
		}
	}

	txCount, err := exporter.ExportTransactions(ctx, txSnap)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to export transactions")
	}
	completionCount, err := exporter.ExportCompletions(ctx, snap)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to export habit completions")
	}

	log.Info().
		Int("transactions", txCount).
		Int("completions", completionCount).
		Msg("Export completed")
}
