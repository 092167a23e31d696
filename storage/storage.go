package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	GardenImagesFolder = "gardens"
	PlantImagesFolder  = "plants"

	maxImageSize = 5 * 1024 * 1024
)

var (
	ErrFileTooBig      = errors.New("la imagen supera el tamaño máximo de 5MB")
	ErrInvalidFileType = errors.New("tipo de archivo inválido, solo se permiten imágenes JPEG o PNG")
	ErrUploadFailed    = errors.New("no se pudo subir la imagen")

	allowedContentTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
	}
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, body io.Reader, size int64, contentType, folder string) (string, error)
}

// S3Storage uploads to a single S3 bucket under folder-prefixed keys.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Storage(ctx context.Context, region, accessKeyID, secretAccessKey, bucket string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	return &S3Storage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// ValidateImage applies the size and content-type limits shared by every
// upload endpoint. Returned before any byte is sent to S3.
func ValidateImage(size int64, contentType string) error {
	if size > maxImageSize {
		return ErrFileTooBig
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return ErrInvalidFileType
	}
	return nil
}

func (s *S3Storage) UploadImage(ctx context.Context, body io.Reader, size int64, contentType, folder string) (string, error) {
	if err := ValidateImage(size, contentType); err != nil {
		return "", err
	}

	key := path.Join(folder, uuid.New().String()+allowedContentTypes[contentType])

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", ErrUploadFailed
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
