// Package gcs implements driven.ArtifactArchive on Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// Ensure Archive implements the interface.
var _ driven.ArtifactArchive = (*Archive)(nil)

// objectWriter is the part of *storage.Writer the archive uses.
type objectWriter interface {
	io.Writer
	Close() error
}

type openFunc func(ctx context.Context, object, contentType string) objectWriter

// Archive uploads objects into a single bucket. Objects are written
// only if absent, so re-archiving a run never overwrites it.
type Archive struct {
	bucket string
	open   openFunc
	client *storage.Client
}

// NewArchive connects to Cloud Storage with Application Default
// Credentials unless opts say otherwise.
func NewArchive(ctx context.Context, bucket string, opts ...option.ClientOption) (*Archive, error) {
	bucket = strings.TrimPrefix(strings.TrimSpace(bucket), "gs://")
	if bucket == "" {
		return nil, errors.New("archive bucket is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating storage client")
	}

	handle := client.Bucket(bucket)
	open := func(ctx context.Context, object, contentType string) objectWriter {
		w := handle.Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return &Archive{bucket: bucket, open: open, client: client}, nil
}

// Bucket returns the target bucket name.
func (a *Archive) Bucket() string {
	return a.bucket
}

// Put uploads content as name and returns its gs:// URI.
func (a *Archive) Put(ctx context.Context, name string, content []byte, mimeType string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "", errors.New("object name is required")
	}
	uri := "gs://" + a.bucket + "/" + name

	w := a.open(ctx, name, mimeType)
	if _, err := io.Copy(w, bytes.NewReader(content)); err != nil {
		_ = w.Close()
		return a.result(uri, err)
	}
	if err := w.Close(); err != nil {
		return a.result(uri, err)
	}

	logger.Debugw("archived export", logger.FieldPath, uri)
	return uri, nil
}

// result treats a failed DoesNotExist precondition as success: the
// object is already archived.
func (a *Archive) result(uri string, err error) (string, error) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		logger.Debugw("export already archived", logger.FieldPath, uri)
		return uri, nil
	}
	return "", errors.Wrapf(err, "uploading %s", uri)
}

// Close releases the storage client.
func (a *Archive) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}
