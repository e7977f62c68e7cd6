// Package store persists day aggregates as one JSON file per calendar date
// and keeps a lightweight metadata index in the SQLite database for
// listings. Saves fully replace the prior state; index upsert failures are
// logged but never fail the save.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"turnboard/internal/database"
	"turnboard/internal/dayerr"
	"turnboard/internal/models"
)

const dateFormat = "2006-01-02"

// Metadata is one index entry for a day.
type Metadata struct {
	Date      string        `json:"date"`
	Status    models.Status `json:"status"`
	CreatedAt string        `json:"created_at"`
	ClosedAt  *string       `json:"closed_at"`
}

type Store struct {
	dataDir string
	db      *database.DB
	log     zerolog.Logger

	cache *dayCache
}

// New creates a store writing day files under dataDir.
func New(dataDir string, db *database.DB, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, dayerr.IOf("create data dir %s: %v", dataDir, err)
	}
	return &Store{dataDir: dataDir, db: db, log: logger}, nil
}

// filePath validates the date and returns the day file path.
func (s *Store) filePath(date string) (string, error) {
	if _, err := time.Parse(dateFormat, date); err != nil {
		return "", dayerr.Invalidf("invalid date format: %s; expected YYYY-MM-DD", date)
	}
	return filepath.Join(s.dataDir, date+".json"), nil
}

// Exists reports whether a day file exists for the date.
func (s *Store) Exists(date string) bool {
	path, err := s.filePath(date)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the day aggregate for a date.
func (s *Store) Load(ctx context.Context, date string) (*models.Day, error) {
	path, err := s.filePath(date)
	if err != nil {
		return nil, err
	}

	if day, ok := s.cache.read(ctx, date); ok {
		return day, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dayerr.NotFoundf("day %s not found", date)
		}
		return nil, dayerr.IOf("read day file %s: %v", path, err)
	}

	var day models.Day
	if err := json.Unmarshal(data, &day); err != nil {
		return nil, dayerr.Decodef("invalid JSON in day file %s: %v", path, err)
	}

	s.cache.write(ctx, date, &day)
	return &day, nil
}

// Save fully replaces the persisted state for the day's date. With
// updateIndex the metadata entry is upserted as well; an index failure is
// logged and does not fail the save.
func (s *Store) Save(ctx context.Context, day *models.Day, updateIndex bool) error {
	path, err := s.filePath(day.Date)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return dayerr.IOf("encode day %s: %v", day.Date, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return dayerr.IOf("write day file %s: %v", path, err)
	}

	s.cache.write(ctx, day.Date, day)

	if updateIndex {
		if err := s.upsertMetadata(ctx, day, path); err != nil {
			s.log.Warn().Err(err).Str("date", day.Date).Msg("could not update day metadata index")
		}
	}
	return nil
}

// Delete removes the day file. With secure, the persisted bytes are first
// overwritten with random data of the same length. The index entry is marked
// deleted best-effort either way. Returns false when no file existed.
func (s *Store) Delete(ctx context.Context, date string, secure bool) (bool, error) {
	path, err := s.filePath(date)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, dayerr.IOf("stat day file %s: %v", path, err)
	}

	if secure {
		garbage := make([]byte, info.Size())
		if _, err := rand.Read(garbage); err != nil {
			return false, dayerr.IOf("generate overwrite data: %v", err)
		}
		if err := os.WriteFile(path, garbage, 0o644); err != nil {
			return false, dayerr.IOf("overwrite day file %s: %v", path, err)
		}
	}

	if err := os.Remove(path); err != nil {
		return false, dayerr.IOf("delete day file %s: %v", path, err)
	}

	s.cache.invalidate(ctx, date)

	if _, err := s.db.ExecContext(ctx,
		`UPDATE day_metadata SET status = ? WHERE date = ?`,
		models.StatusDeleted, date,
	); err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("could not mark day metadata deleted")
	}
	return true, nil
}

// ListDates returns the dates of all day files, newest first. Files not
// matching the YYYY-MM-DD.json pattern are skipped.
func (s *Store) ListDates() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, dayerr.IOf("read data dir %s: %v", s.dataDir, err)
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if _, err := time.Parse(dateFormat, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// ListMetadata returns index entries ordered by date descending, skipping
// deleted days.
func (s *Store) ListMetadata(ctx context.Context) ([]Metadata, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, status, created_at, closed_at FROM day_metadata
		 WHERE status != ? ORDER BY date DESC`,
		models.StatusDeleted,
	)
	if err != nil {
		return nil, dayerr.IOf("query day metadata: %v", err)
	}
	defer rows.Close()

	var metas []Metadata
	for rows.Next() {
		var m Metadata
		var closedAt sql.NullString
		if err := rows.Scan(&m.Date, &m.Status, &m.CreatedAt, &closedAt); err != nil {
			return nil, dayerr.IOf("scan day metadata: %v", err)
		}
		if closedAt.Valid {
			m.ClosedAt = &closedAt.String
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dayerr.IOf("iterate day metadata: %v", err)
	}
	return metas, nil
}

func (s *Store) upsertMetadata(ctx context.Context, day *models.Day, path string) error {
	var closedAt any
	if day.ClosedAt != nil {
		closedAt = *day.ClosedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO day_metadata (date, status, created_at, closed_at, file_path)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			status = excluded.status,
			closed_at = excluded.closed_at,
			file_path = excluded.file_path`,
		day.Date, day.Status, day.CreatedAt, closedAt, path,
	)
	return err
}
