package storage

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const LocalDiskName = "local"

// LocalDisk stores blobs on an afero filesystem, normally an OS directory.
type LocalDisk struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalDisk roots the disk at dir on the host filesystem. Blobs are publicly
// addressable under baseURL.
func NewLocalDisk(dir, baseURL string) (*LocalDisk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return NewLocalDiskFs(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

func NewLocalDiskFs(fs afero.Fs, baseURL string) *LocalDisk {
	return &LocalDisk{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *LocalDisk) Name() string { return LocalDiskName }

// Fs exposes the backing filesystem so the router can serve it read-only.
func (d *LocalDisk) Fs() afero.Fs { return d.fs }

func (d *LocalDisk) Put(_ context.Context, p string, r io.Reader, _ string) error {
	p = clean(p)
	if err := d.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return err
	}
	return afero.WriteReader(d.fs, p, r)
}

func (d *LocalDisk) Open(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := d.fs.Open(clean(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (d *LocalDisk) Delete(_ context.Context, p string) error {
	err := d.fs.Remove(clean(p))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *LocalDisk) URL(p string) string {
	return d.baseURL + "/" + strings.TrimPrefix(clean(p), "/")
}

func clean(p string) string {
	return path.Clean("/" + p)
}
