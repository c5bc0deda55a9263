// Package storage keeps user content on local disk: tab downloads, article
// pictures and avatars, each in its own area directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
)

// Area is a content directory.
type Area string

// Content areas.
const (
	AreaDownloads Area = "downloads"
	AreaArticles  Area = "articles"
	AreaAvatars   Area = "avatars"
)

// Areas lists every content area.
var Areas = []Area{AreaDownloads, AreaArticles, AreaAvatars}

var (
	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("invalid file name")
	// ErrUnknownArea is returned for areas outside Areas.
	ErrUnknownArea = errors.New("unknown content area")
	// ErrNotFound is returned when the file does not exist.
	ErrNotFound = errors.New("file not found")
)

// FileStore reads and writes content files.
type FileStore interface {
	// Save copies src into area under name, replacing any existing file.
	Save(ctx context.Context, area Area, name string, src io.Reader) error
	// Open returns the file and its size. The caller closes it.
	Open(ctx context.Context, area Area, name string) (File, int64, error)
	// Remove deletes the file. Missing files are not an error.
	Remove(ctx context.Context, area Area, name string) error
}

// File is an opened content file.
type File interface {
	io.ReadSeekCloser
}

// Disk implements FileStore on a local directory tree. Each area is opened
// as an os.Root so no name can escape it.
type Disk struct {
	roots  map[Area]*os.Root
	logger *slog.Logger
}

// NewDisk creates the area directories below dir and opens them.
// If logger is nil, a default logger will be used.
func NewDisk(dir string, logger *slog.Logger) (*Disk, error) {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Disk{
		roots:  make(map[Area]*os.Root, len(Areas)),
		logger: logger.With(slog.String("component", "disk_storage")),
	}
	for _, area := range Areas {
		path := filepath.Join(dir, string(area))
		if err := os.MkdirAll(path, 0o755); err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("failed to create %s directory: %w", area, err)
		}
		root, err := os.OpenRoot(path)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("failed to open %s directory: %w", area, err)
		}
		d.roots[area] = root
	}
	return d, nil
}

var _ FileStore = (*Disk)(nil)

// Close releases the area directories.
func (d *Disk) Close() error {
	var errs []error
	for _, root := range d.roots {
		errs = append(errs, root.Close())
	}
	return errors.Join(errs...)
}

// ValidName reports whether name is a single, non-hidden path element.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`+"\x00") {
		return false
	}
	return filepath.Base(name) == name
}

func (d *Disk) root(area Area, name string) (*os.Root, error) {
	root, ok := d.roots[area]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return root, nil
}

// Save implements FileStore.
func (d *Disk) Save(ctx context.Context, area Area, name string, src io.Reader) error {
	root, err := d.root(area, name)
	if err != nil {
		return err
	}

	f, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", area, name, err)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = root.Remove(name)
		return fmt.Errorf("failed to write %s/%s: %w", area, name, err)
	}

	logger.FromContextOrDefault(ctx, d.logger).Debug("file saved",
		slog.String("area", string(area)),
		slog.String("name", name),
		slog.Int64("bytes", n))
	return nil
}

// Open implements FileStore.
func (d *Disk) Open(_ context.Context, area Area, name string) (File, int64, error) {
	root, err := d.root(area, name)
	if err != nil {
		return nil, 0, err
	}

	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to open %s/%s: %w", area, name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s/%s: %w", area, name, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, 0, ErrNotFound
	}
	return f, info.Size(), nil
}

// Remove implements FileStore.
func (d *Disk) Remove(ctx context.Context, area Area, name string) error {
	root, err := d.root(area, name)
	if err != nil {
		return err
	}
	if err := root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s/%s: %w", area, name, err)
	}

	logger.FromContextOrDefault(ctx, d.logger).Debug("file removed",
		slog.String("area", string(area)),
		slog.String("name", name))
	return nil
}
