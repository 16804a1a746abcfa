// Package storage keeps rendered documents on disk.
//
// Saves are atomic: content goes to a temporary file in the target
// directory, is fsynced, and only then renamed into place. A failed save
// leaves nothing behind.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned for names that do not exist in the store.
	ErrNotFound = errors.New("storage: file not found")
	// ErrInvalidName is returned for names that are not plain PDF file names.
	ErrInvalidName = errors.New("storage: invalid file name")
)

// File describes a stored document.
type File struct {
	Name    string    `json:"fileName"`
	Size    int64     `json:"fileSize"`
	ModTime time.Time `json:"createdAt"`
}

// Store is a directory of PDF documents.
type Store struct {
	dir    string
	logger *log.Logger

	// mu serialises the choice of a free name with the rename that claims it.
	mu sync.Mutex
}

// New opens dir, creating it when missing.
func New(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save writes a new document. When name is taken, a numeric suffix is added
// (report.pdf, report_2.pdf, ...). The returned File carries the final name.
func (s *Store) Save(ctx context.Context, name string, write func(io.Writer) error) (File, error) {
	if !ValidName(name) {
		return File{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*.tmp")
	if err != nil {
		return File{}, fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		return File{}, err
	}
	if err := bw.Flush(); err != nil {
		return File{}, fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return File{}, fmt.Errorf("storage: sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return File{}, fmt.Errorf("storage: close %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	s.mu.Lock()
	final := s.freeName(name)
	err = os.Rename(tmpPath, filepath.Join(s.dir, final))
	s.mu.Unlock()
	if err != nil {
		return File{}, fmt.Errorf("storage: commit %s: %w", final, err)
	}
	committed = true
	syncDir(s.dir)

	info, err := os.Stat(filepath.Join(s.dir, final))
	if err != nil {
		return File{}, fmt.Errorf("storage: stat %s: %w", final, err)
	}
	s.logger.Debug("document saved", "name", final, "size", info.Size())
	return fileFromInfo(info), nil
}

// List returns the stored documents, newest first.
func (s *Store) List() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !ValidName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed while listing
		}
		files = append(files, fileFromInfo(info))
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Open returns a reader for a stored document. The caller closes it.
func (s *Store) Open(name string) (*os.File, File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, File{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, File{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, File{}, fmt.Errorf("storage: open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, File{}, fmt.Errorf("storage: stat %s: %w", name, err)
	}
	return f, fileFromInfo(info), nil
}

// Delete removes a stored document.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	s.logger.Debug("document deleted", "name", name)
	return nil
}

func (s *Store) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// freeName must be called with s.mu held.
func (s *Store) freeName(name string) string {
	base := strings.TrimSuffix(name, ".pdf")
	candidate := name
	for i := 2; ; i++ {
		if _, err := os.Lstat(filepath.Join(s.dir, candidate)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		candidate = base + "_" + strconv.Itoa(i) + ".pdf"
	}
}

// syncDir flushes the directory entry of a rename. Not every platform
// supports it, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func fileFromInfo(info os.FileInfo) File {
	return File{Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()}
}
