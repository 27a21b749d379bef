package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Journaled is one testcase row plus the logical time it was added.
type Journaled struct {
	ContentHash string `json:"content_hash"`
	Handle      string `json:"handle"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size"`
	Origin      string `json:"origin,omitempty"`
	AddedSeq    int64  `json:"added_seq"`
}

// Counts summarizes the journal.
type Counts struct {
	Testcases  int64 `json:"testcases"`
	Adds       int64 `json:"adds"`
	Removes    int64 `json:"removes"`
	Loads      int64 `json:"loads"`
	TotalBytes int64 `json:"total_bytes"`
}

// ListTestcases returns all journaled testcases in logical add order.
// Ordering is deterministic: seq ASC, content_hash ASC as tiebreak.
//
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ListTestcases(ctx context.Context) ([]Journaled, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.content_hash, t.handle, t.filename, t.size, t.origin, MIN(e.seq)
		FROM testcases t
		JOIN events e ON e.content_hash = t.content_hash AND e.kind = 'add'
		GROUP BY t.content_hash
		ORDER BY MIN(e.seq) ASC, t.content_hash ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list testcases: %w", err)
	}
	defer rows.Close()

	out := []Journaled{}
	for rows.Next() {
		var j Journaled
		if err := rows.Scan(&j.ContentHash, &j.Handle, &j.Filename, &j.Size, &j.Origin, &j.AddedSeq); err != nil {
			return nil, fmt.Errorf("scan testcase: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list testcases: %w", err)
	}
	return out, nil
}

// Has reports whether the journal already contains the content hash.
func (s *Store) Has(ctx context.Context, contentHash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM testcases WHERE content_hash = ?
	`, contentHash).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("has testcase: %w", err)
	}
	return true, nil
}

// CountAll summarizes the journal in one pass per table.
func (s *Store) CountAll(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0) FROM testcases
	`).Scan(&c.Testcases, &c.TotalBytes)
	if err != nil {
		return Counts{}, fmt.Errorf("count testcases: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) FROM events GROUP BY kind
	`)
	if err != nil {
		return Counts{}, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return Counts{}, fmt.Errorf("scan event count: %w", err)
		}
		switch kind {
		case "add":
			c.Adds = n
		case "remove":
			c.Removes = n
		case "load":
			c.Loads = n
		}
	}
	if err := rows.Err(); err != nil {
		return Counts{}, fmt.Errorf("count events: %w", err)
	}
	return c, nil
}
