package interfaces

import "context"

type UploadResult struct {
	PublicID string
	URL      string
}

type Uploader interface {
	UploadBytes(ctx context.Context, folder string, filename string, resourceType string, b []byte) (UploadResult, error)
}
