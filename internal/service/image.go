package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/apperrors"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService stores recipe images submitted as base64 data URIs. When S3
// is configured the bytes go to the bucket under a uuid key; otherwise they
// are written to the local media directory.
type ImageService struct {
	s3Config *config.S3Config
	mediaDir string
}

func NewImageService(s3Config *config.S3Config, mediaDir string) *ImageService {
	return &ImageService{
		s3Config: s3Config,
		mediaDir: mediaDir,
	}
}

// Store decodes a `data:image/...;base64,` payload, validates its content
// type and persists the bytes, returning the public URL. Plain URLs are
// passed through unchanged so clients may reference existing images.
func (s *ImageService) Store(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", nil
	}
	if !strings.HasPrefix(image, "data:") {
		return image, nil
	}

	payload := image[strings.Index(image, ":")+1:]
	sep := strings.Index(payload, ";base64,")
	if sep < 0 {
		return "", apperrors.Validation("image", "image must be a base64-encoded data URI")
	}

	data, err := base64.StdEncoding.DecodeString(payload[sep+len(";base64,"):])
	if err != nil {
		return "", apperrors.Validation("image", "invalid base64 image data")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperrors.Validation("image", fmt.Sprintf("unsupported image type %s", contentType))
	}

	fileName := uuid.New().String() + ext

	if s.s3Config != nil {
		return s.uploadToS3(ctx, data, contentType, "recipe-images/"+fileName)
	}
	return s.writeLocal(data, fileName)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, contentType, key string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

func (s *ImageService) writeLocal(data []byte, fileName string) (string, error) {
	dir := filepath.Join(s.mediaDir, "recipe-images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return "/media/recipe-images/" + fileName, nil
}
