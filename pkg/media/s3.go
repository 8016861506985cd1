package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"katalog/internal/models"
)

// Uploader is the media-service port: it stores image payloads externally
// and can later delete them by the identifier it returned.
type Uploader interface {
	Upload(ctx context.Context, payload string) (models.ImageRef, error)
	Destroy(ctx context.Context, externalID string) error
}

// allowedFormats lists the image formats the catalog accepts, mapped to the
// file extension used for the object key.
var allowedFormats = map[string]string{
	"image/png":     ".png",
	"image/jpg":     ".jpg",
	"image/jpeg":    ".jpeg",
	"image/svg+xml": ".svg",
	"image/x-icon":  ".ico",
	"image/jfif":    ".jfif",
	"image/webp":    ".webp",
}

// S3Client implements Uploader against an S3 bucket.
type S3Client struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
}

// NewS3Client builds an S3-backed media client from the default AWS
// credential chain.
func NewS3Client(ctx context.Context, region, bucket string) (*S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Client{
		uploader: manager.NewUploader(client),
		client:   client,
		bucket:   bucket,
	}, nil
}

// decodePayload splits a data-URI (or bare base64) image payload into raw
// bytes, content type and file extension. Bare base64 is assumed to be PNG.
func decodePayload(payload string) ([]byte, string, string, error) {
	contentType := "image/png"
	data := payload
	if strings.HasPrefix(payload, "data:") {
		rest := strings.TrimPrefix(payload, "data:")
		marker := strings.Index(rest, ";base64,")
		if marker < 0 {
			return nil, "", "", fmt.Errorf("malformed image data URI")
		}
		contentType = rest[:marker]
		data = rest[marker+len(";base64,"):]
	}

	ext, ok := allowedFormats[contentType]
	if !ok {
		return nil, "", "", fmt.Errorf("unsupported image format %q", contentType)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return raw, contentType, ext, nil
}

// Upload stores one image payload under a fresh object key and returns the
// public URL together with the key needed to delete the asset later.
func (c *S3Client) Upload(ctx context.Context, payload string) (models.ImageRef, error) {
	raw, contentType, ext, err := decodePayload(payload)
	if err != nil {
		return models.ImageRef{}, err
	}

	key := fmt.Sprintf("products/%s%s", uuid.New().String(), ext)
	result, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to upload image: %w", err)
	}

	return models.ImageRef{URL: result.Location, ExternalID: key}, nil
}

// Destroy deletes an asset by the object key returned from Upload.
func (c *S3Client) Destroy(ctx context.Context, externalID string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(externalID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", externalID, err)
	}
	return nil
}
