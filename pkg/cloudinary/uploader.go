package cloudinary

import (
	"bytes"
	"context"
	"errors"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/SundayYogurt/bursary_service/internal/interfaces"
)

// New reads credentials from CLOUDINARY_URL when url is empty.
func New(url string) (*cld.Cloudinary, error) {
	if url == "" {
		return cld.New()
	}
	return cld.NewFromURL(url)
}

type CloudinaryUploader struct {
	cld *cld.Cloudinary
}

func NewCloudinaryUploader(cloud *cld.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cloud}
}

func (u *CloudinaryUploader) UploadBytes(
	ctx context.Context,
	folder string,
	filename string,
	resourceType string,
	b []byte,
) (interfaces.UploadResult, error) {
	if len(b) == 0 {
		return interfaces.UploadResult{}, errors.New("empty upload")
	}
	if resourceType == "" {
		resourceType = "auto"
	}

	res, err := u.cld.Upload.Upload(
		ctx,
		bytes.NewReader(b),
		uploader.UploadParams{
			Folder:       folder,
			PublicID:     filename,
			ResourceType: resourceType,
		},
	)
	if err != nil {
		return interfaces.UploadResult{}, err
	}
	if res.Error.Message != "" {
		return interfaces.UploadResult{}, errors.New(res.Error.Message)
	}

	return interfaces.UploadResult{PublicID: res.PublicID, URL: res.SecureURL}, nil
}
