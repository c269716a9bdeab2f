// Package sqlitescore keeps score tracks in a SQLite database and serves
// them as a score source.
package sqlitescore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"qseq/internal/feature"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrTrackExists   = errors.New("track already exists")
)

// Track is one named score track.
type Track struct {
	ID        string
	Name      string
	Source    string
	CreatedAt time.Time
}

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. Call MigrateUp
// before writing to a new database.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenExisting is Open for a database that must already exist.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return Open(path)
}

func (s *Store) Close() error { return s.db.Close() }

// MigrateUp applies all pending schema migrations.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the applied schema version; 0 when none.
func (s *Store) MigrateVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// CreateTrack registers a new track under a fresh ID.
func (s *Store) CreateTrack(ctx context.Context, name, source string) (Track, error) {
	if _, err := s.TrackByName(ctx, name); err == nil {
		return Track{}, fmt.Errorf("%w: %q", ErrTrackExists, name)
	} else if !errors.Is(err, ErrTrackNotFound) {
		return Track{}, err
	}
	t := Track{ID: uuid.NewString(), Name: name, Source: source, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracks (id, name, source, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Source, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Track{}, fmt.Errorf("create track %q: %w", name, err)
	}
	return t, nil
}

// DeleteTrack removes a track and its scores.
func (s *Store) DeleteTrack(ctx context.Context, name string) error {
	t, err := s.TrackByName(ctx, name)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE track_id = ?`, t.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, t.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// TrackByName looks a track up by name.
func (s *Store) TrackByName(ctx context.Context, name string) (Track, error) {
	t, err := scanTrack(s.db.QueryRowContext(ctx,
		`SELECT id, name, source, created_at FROM tracks WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Track{}, fmt.Errorf("%w: %q", ErrTrackNotFound, name)
	}
	return t, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (Track, error) {
	var (
		t       Track
		src     sql.NullString
		created sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &src, &created); err != nil {
		return Track{}, err
	}
	t.Source = src.String
	if created.Valid {
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created.String)
	}
	return t, nil
}

// Tracks lists all tracks by name.
func (s *Store) Tracks(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, source, created_at FROM tracks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Batch inserts scores for one track inside a single transaction.
type Batch struct {
	tx      *sql.Tx
	stmt    *sql.Stmt
	trackID string
	n       int
}

// BeginBatch starts a batch insert into track.
func (s *Store) BeginBatch(ctx context.Context, track Track) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scores (track_id, ref_name, start_pos, end_pos, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &Batch{tx: tx, stmt: stmt, trackID: track.ID}, nil
}

// Add queues one interval.
func (b *Batch) Add(ctx context.Context, refName string, f feature.ScoreFeature) error {
	if _, err := b.stmt.ExecContext(ctx, b.trackID, refName, f.Start, f.End, f.Score); err != nil {
		return fmt.Errorf("insert %s:%d-%d: %w", refName, f.Start, f.End, err)
	}
	b.n++
	return nil
}

// Len returns the number of intervals added so far.
func (b *Batch) Len() int { return b.n }

// Commit makes the batch visible.
func (b *Batch) Commit() error {
	_ = b.stmt.Close()
	return b.tx.Commit()
}

// Rollback discards the batch.
func (b *Batch) Rollback() error {
	_ = b.stmt.Close()
	return b.tx.Rollback()
}
