package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrNotFound = errors.New("storage: object not found")

// Disk is a flat object namespace addressed by slash-separated paths.
type Disk interface {
	Name() string
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Manager holds the configured disks and the one new uploads go to.
type Manager struct {
	disks       map[string]Disk
	defaultName string
}

func NewManager(defaultDisk Disk, others ...Disk) *Manager {
	m := &Manager{disks: map[string]Disk{}, defaultName: defaultDisk.Name()}
	m.disks[defaultDisk.Name()] = defaultDisk
	for _, d := range others {
		m.disks[d.Name()] = d
	}
	return m
}

func (m *Manager) Default() Disk {
	return m.disks[m.defaultName]
}

// Disk returns the disk a stored file was written to.
func (m *Manager) Disk(name string) (Disk, error) {
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}
