package sfsprite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// CatalogDB records a Summary of every archive found by a scan.
type CatalogDB struct {
	db *sql.DB
}

func NewCatalogDB(file string) (*CatalogDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Scan workers insert concurrently, a single connection serialises them
	// and keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS archive (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, size INTEGER NOT NULL, colors INTEGER, palettes INTEGER NOT NULL, tilesets INTEGER NOT NULL, tiles INTEGER NOT NULL, sprites INTEGER NOT NULL, subsprites INTEGER NOT NULL, animations INTEGER NOT NULL, frames INTEGER NOT NULL, stable INTEGER NOT NULL, error_id INTEGER, error TEXT)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS archive_sha1 ON archive (sha1)"); err != nil {
		return nil, err
	}

	return &CatalogDB{
		db: db,
	}, nil
}

func (db *CatalogDB) Close() error {
	return db.db.Close()
}

// Add records s, replacing any existing entry for the same path.
func (db *CatalogDB) Add(s *Summary) error {
	var colors, errorID sql.NullInt64
	if s.Colors != 0 {
		colors.Int64 = int64(s.Colors)
		colors.Valid = true
	}
	if s.ErrorID != 0 {
		errorID.Int64 = int64(s.ErrorID)
		errorID.Valid = true
	}

	var message sql.NullString
	if s.Error != "" {
		message.String = s.Error
		message.Valid = true
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO archive (path, sha1, size, colors, palettes, tilesets, tiles, sprites, subsprites, animations, frames, stable, error_id, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.Path, s.SHA1, s.Size, colors, s.Palettes, s.Tilesets, s.Tiles, s.Sprites, s.SubSprites, s.Animations, s.Frames, s.Stable, errorID, message); err != nil {
		return err
	}
	return nil
}

const summaryColumns = "path, sha1, size, colors, palettes, tilesets, tiles, sprites, subsprites, animations, frames, stable, error_id, error"

type scanner interface {
	Scan(...interface{}) error
}

func scanSummary(row scanner) (*Summary, error) {
	var (
		s             Summary
		colors, errID sql.NullInt64
		message       sql.NullString
	)
	if err := row.Scan(&s.Path, &s.SHA1, &s.Size, &colors, &s.Palettes, &s.Tilesets, &s.Tiles, &s.Sprites, &s.SubSprites, &s.Animations, &s.Frames, &s.Stable, &errID, &message); err != nil {
		return nil, err
	}
	s.Colors = int(colors.Int64)
	s.ErrorID = int(errID.Int64)
	s.Error = message.String
	return &s, nil
}

// FindByPath returns the entry for path, or nil if there isn't one.
func (db *CatalogDB) FindByPath(path string) (*Summary, error) {
	s, err := scanSummary(db.db.QueryRow("SELECT "+summaryColumns+" FROM archive WHERE path = ?", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return s, nil
	default:
		return nil, err
	}
}

// FindBySHA1 returns the paths of every archive with the given checksum.
func (db *CatalogDB) FindBySHA1(sha string) ([]string, error) {
	rows, err := db.db.Query("SELECT path FROM archive WHERE sha1 = ? ORDER BY path", sha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// List returns every entry ordered by path.
func (db *CatalogDB) List() ([]Summary, error) {
	rows, err := db.db.Query("SELECT " + summaryColumns + " FROM archive ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}
