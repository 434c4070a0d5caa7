package utils

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type UploadResult struct {
	URL      string
	PublicID string
}

// CloudinaryUploader stores patient documents in one Cloudinary folder.
type CloudinaryUploader struct {
	cld          *cloudinary.Cloudinary
	uploadPreset string
	folder       string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, uploadPreset, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, uploadPreset: uploadPreset, folder: folder}, nil
}

// Upload sends file (a path, URL or io.Reader) and returns its secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, file any, publicID string) (UploadResult, error) {
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       u.folder,
		UploadPreset: u.uploadPreset,
		ResourceType: "auto",
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return UploadResult{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}
