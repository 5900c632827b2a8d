package domain

import "context"

// ImageStore uploads binary images and returns a public URL (infrastructure port).
// Failures wrap ErrUpload.
type ImageStore interface {
	Store(ctx context.Context, data []byte, folder string) (url string, err error)
}
