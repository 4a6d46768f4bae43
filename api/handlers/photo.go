package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/charlesfaubert44-wq/nwt-bike-finder-sub000/config"
)

// PhotoUploader uploads one bike photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, name string, photo io.Reader) (string, error)
}

// Photo exported for testing purposes
type Photo struct {
	Uploader PhotoUploader

	once sync.Once
}

type cloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

func newCloudinaryUploader() (PhotoUploader, error) {
	cloudinaryURL := os.Getenv("CLOUDINARY_URL")
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL not set in environment")
	}
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %v", err)
	}
	return &cloudinaryUploader{client: client}, nil
}

func (c *cloudinaryUploader) Upload(ctx context.Context, name string, photo io.Reader) (string, error) {
	overwrite := false
	res, err := c.client.Upload.Upload(ctx, photo, uploader.UploadParams{
		Folder:       "bike-finder/reports",
		PublicID:     fmt.Sprintf("%s_%d", name, time.Now().Unix()),
		ResourceType: "image",
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %v", err)
	}
	return res.SecureURL, nil
}

// UploadPhotoHandler accepts a multipart photo upload, stores it in
// Cloudinary and returns the hosted URL for use in a bike report
func (p *Photo) UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	p.once.Do(func() {
		if p.Uploader != nil {
			return
		}
		up, err := newCloudinaryUploader()
		if err != nil {
			zap.S().Errorw("cloudinary uploader unavailable", "error", err)
			return
		}
		p.Uploader = up
	})
	if p.Uploader == nil {
		config.ErrorStatus("photo uploads are not configured", http.StatusServiceUnavailable, w, fmt.Errorf("no uploader available"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		config.ErrorStatus("photo file is required", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := p.Uploader.Upload(ctx, "report", file)
	if err != nil {
		config.ErrorStatus("failed to upload photo", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("photo uploaded", "filename", header.Filename, "url", url)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
