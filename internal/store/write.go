package store

import (
	"context"
	"fmt"

	"github.com/karstfuzz/karst/internal/meta"
)

// Record is what the journal keeps about one testcase.
type Record struct {
	ContentHash string
	Handle      string
	Filename    string
	Size        int64
	Origin      string
	Metadata    map[string]any
}

// RecordAdd journals a testcase and its add event. Idempotent on the
// content hash: importing the same bytes twice inserts nothing the
// second time and reports added=false, so seed re-import is a no-op.
//
// Metadata is serialized to canonical JSON so the stored form is
// byte-stable across runs.
func (s *Store) RecordAdd(ctx context.Context, rec Record) (added bool, err error) {
	metadataJSON := []byte("{}")
	if len(rec.Metadata) > 0 {
		metadataJSON, err = meta.MarshalCanonical(rec.Metadata)
		if err != nil {
			return false, fmt.Errorf("record add: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO testcases (content_hash, handle, filename, size, origin, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING
	`,
		rec.ContentHash,
		rec.Handle,
		rec.Filename,
		rec.Size,
		rec.Origin,
		string(metadataJSON),
	)
	if err != nil {
		return false, fmt.Errorf("record add: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record add: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := s.appendEvent(ctx, rec.ContentHash, "add"); err != nil {
		return false, err
	}
	return true, nil
}

// RecordRemove journals a remove event for a known testcase.
func (s *Store) RecordRemove(ctx context.Context, contentHash string) error {
	return s.appendEvent(ctx, contentHash, "remove")
}

// RecordLoad journals a lazy-load event for a known testcase.
func (s *Store) RecordLoad(ctx context.Context, contentHash string) error {
	return s.appendEvent(ctx, contentHash, "load")
}

func (s *Store) appendEvent(ctx context.Context, contentHash, kind string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (content_hash, kind) VALUES (?, ?)
	`, contentHash, kind)
	if err != nil {
		return fmt.Errorf("record %s event: %w", kind, err)
	}
	return nil
}
