package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
)

// ErrInvalidImage is returned for uploads that are not a decodable image or are too large.
var ErrInvalidImage = errors.New("invalid image")

// IS3Storage defines the interface for S3 operations.
type IS3Storage interface {
	// PutImage normalises an uploaded listing image and stores it. It returns
	// the public URL and the object key.
	PutImage(ctx context.Context, agentEmail, propertyID string, data []byte) (string, string, error)
}

// objectPutter is the part of the S3 client PutImage needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	cfg      *config.Config
	s3Client objectPutter
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(ctx context.Context, cfg *config.Config) (IS3Storage, error) {
	if cfg.MockServices || cfg.AwsS3Bucket == "" {
		log.Println("S3 bucket not configured, images will be kept in memory")
		return NewMemoryStorage(cfg), nil
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Storage{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

func objectKey(agentEmail, propertyID string) string {
	owner := strings.NewReplacer("/", "_", "@", "_at_").Replace(strings.ToLower(agentEmail))
	return fmt.Sprintf("properties/%s/%s/%s.jpg", owner, propertyID, uuid.NewString())
}

func publicURL(cfg *config.Config, key string) string {
	if cfg.ImageBaseS3URL != "" {
		return cfg.ImageBaseS3URL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.AwsS3Bucket, cfg.AwsRegion, key)
}

func (s *s3Storage) PutImage(ctx context.Context, agentEmail, propertyID string, data []byte) (string, string, error) {
	processed, err := NormalizeImage(data, s.cfg.ImageMaxDimension, s.cfg.ImageMaxSizeMB)
	if err != nil {
		return "", "", err
	}

	key := objectKey(agentEmail, propertyID)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(processed),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		log.Printf("Error uploading image %s to S3: %v", key, err)
		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}

	log.Printf("Uploaded image %s (%d bytes) for property %s", key, len(processed), propertyID)
	return publicURL(s.cfg, key), key, nil
}

// NormalizeImage decodes an image, shrinks it to fit maxDimension and
// re-encodes it as JPEG. Both limits are ignored when non-positive.
func NormalizeImage(data []byte, maxDimension, maxSizeMB int) ([]byte, error) {
	maxSizeBytes := int64(maxSizeMB) * 1024 * 1024
	if maxSizeMB > 0 && int64(len(data)) > maxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d MB", ErrInvalidImage, len(data), maxSizeMB)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if maxDimension > 0 && (bounds.Dx() > maxDimension || bounds.Dy() > maxDimension) {
		img = resize.Thumbnail(uint(maxDimension), uint(maxDimension), img, resize.Lanczos3)
		log.Printf("Resized %s image from %dx%d to %dx%d", format, bounds.Dx(), bounds.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
