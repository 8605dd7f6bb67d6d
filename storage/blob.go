// Package storage keeps uploaded photographs in write-once, path addressed
// blob storage: a local directory or a Google Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageNamespace is the prefix every stored image path starts with.
const ImageNamespace = "uploads/image"

const fileTimeLayout = "20060102T150405.000000Z"

// ErrExists is returned when a path has already been written.
var ErrExists = errors.New("blob already exists")

type BlobStore interface {
	// Save writes r under path. Writing the same path twice fails with ErrExists.
	Save(ctx context.Context, path string, r io.Reader) error
	// Delete removes path. Removing a missing blob is not an error.
	Delete(ctx context.Context, path string) error
	// URL is where clients can fetch path from.
	URL(path string) string
}

// ImageFilePath builds the stored path for an uploaded image from the record
// creation time and a fresh random suffix. Only the extension of the
// uploaded filename is kept.
func ImageFilePath(createdAt time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	name := fmt.Sprintf("%s_%s%s", createdAt.UTC().Format(fileTimeLayout), uuid.NewString(), ext)
	return path.Join(ImageNamespace, name)
}
