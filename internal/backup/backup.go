// Package backup writes JSON household snapshots to a GCS bucket, the
// export command's safety net before any destructive maintenance.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/dkravets/hearthledger/internal/domain"
)

// ObjectName returns the backup object path for one household at one
// instant: backups/<household>/<RFC3339 timestamp>.json.
func ObjectName(householdID string, now time.Time) string {
	return fmt.Sprintf("backups/%s/%s.json", householdID, now.UTC().Format("2006-01-02T15-04-05Z"))
}

// UploadSnapshot marshals the snapshot and writes it to the bucket.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
func UploadSnapshot(ctx context.Context, bucketName string, snap *domain.Snapshot, now time.Time) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	objectName := ObjectName(snap.Household.ID, now)
	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := writeSnapshot(w, snap); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}

func writeSnapshot(w io.Writer, snap *domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
