package sfsprite

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	numWorkers  = 10
	maxFileSize = 16 << (10 * 2)
)

func isArchive(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".bin", ".sfsprite":
		return true
	default:
		return false
	}
}

func (s *SFSprite) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if !isArchive(file) || info.Size() > maxFileSize {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

var summarize = Summarize

func (s *SFSprite) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			b, err := ioutil.ReadFile(file)
			if err != nil {
				errc <- errors.Wrapf(err, "reading %s", file)
				return
			}

			existing, err := s.db.FindByPath(file)
			if err != nil {
				errc <- err
				return
			}
			if existing != nil && existing.SHA1 == checksum(b) {
				s.logger.Printf("Unchanged \"%s\"\n", file)
				continue
			}

			summary := summarize(file, b)

			switch {
			case summary.Error != "":
				s.logger.Printf("Failed to decode \"%s\": %s\n", file, summary.Error)
			case !summary.Stable:
				s.logger.Printf("Re-encoding \"%s\" is not stable\n", file)
			}

			if err := s.db.Add(summary); err != nil {
				errc <- errors.Wrapf(err, "recording %s", file)
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path looking for archives, decoding each one and recording a
// summary of it in the catalogue. Files already recorded with the same
// checksum are skipped.
func (s *SFSprite) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := s.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := s.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
