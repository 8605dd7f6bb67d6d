package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

const uploadTimeout = 50 * time.Second

// GCSStore keeps blobs as objects in a Google Cloud Storage bucket.
type GCSStore struct {
	cl         *storage.Client
	projectID  string
	bucketName string
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, projectID, bucketName string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{cl: client, projectID: projectID, bucketName: bucketName}, nil
}

func (s *GCSStore) Save(ctx context.Context, name string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	// DoesNotExist makes the upload fail instead of overwriting an object.
	obj := s.cl.Bucket(s.bucketName).Object(name).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrExists
		}
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	err := s.cl.Bucket(s.bucketName).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (s *GCSStore) URL(name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, name)
}

func (s *GCSStore) Close() error {
	return s.cl.Close()
}
