/*
Package sfsprite is a library for inspecting, rewriting and cataloguing
SFSprite archives.
*/
package sfsprite

import (
	"io/ioutil"
	"log"

	"github.com/mmsf-tools/sfsprite/archive"
	"github.com/pkg/errors"
)

type SFSprite struct {
	db     *CatalogDB
	logger *log.Logger
}

// New opens the catalogue database held in file, creating it if necessary.
func New(file string, logger *log.Logger) (*SFSprite, error) {
	db, err := NewCatalogDB(file)
	if err != nil {
		return nil, err
	}
	return &SFSprite{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the catalogue database.
func (s *SFSprite) Close() error {
	return s.db.Close()
}

// List returns every archive in the catalogue.
func (s *SFSprite) List() ([]Summary, error) {
	return s.db.List()
}

// Inspect reads and summarises a single archive. Decode failures are
// recorded in the summary rather than returned.
func Inspect(file string) (*Summary, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Summarize(file, b), nil
}

// Load reads and decodes a single archive.
func Load(file string) (*archive.Document, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	doc, err := archive.Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file)
	}
	return doc, nil
}

// Rewrite decodes the archive in src and writes it back out to dst.
func Rewrite(src, dst string) error {
	doc, err := Load(src)
	if err != nil {
		return err
	}
	b, err := archive.Encode(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", dst)
	}
	return ioutil.WriteFile(dst, b, 0644)
}
