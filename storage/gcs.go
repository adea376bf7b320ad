package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const GCSDiskName = "gcs"

// GCSDisk stores blobs in a Cloud Storage bucket, usually the Firebase
// project's default bucket.
type GCSDisk struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewGCSDisk(bucket *gcs.BucketHandle, bucketName string) *GCSDisk {
	return &GCSDisk{bucket: bucket, bucketName: bucketName}
}

func (d *GCSDisk) Name() string { return GCSDiskName }

func (d *GCSDisk) Put(ctx context.Context, p string, r io.Reader, contentType string) error {
	w := d.bucket.Object(key(p)).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("gcs: write %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: close %s: %w", p, err)
	}
	return nil
}

func (d *GCSDisk) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	r, err := d.bucket.Object(key(p)).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return r, err
}

func (d *GCSDisk) Delete(ctx context.Context, p string) error {
	err := d.bucket.Object(key(p)).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (d *GCSDisk) URL(p string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", d.bucketName, (&url.URL{Path: key(p)}).EscapedPath())
}

func key(p string) string {
	return strings.TrimPrefix(clean(p), "/")
}
