// Package storage uploads images to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/config"
)

const (
	FoodDonationFolder = "foodDonation/"
	ProfilePhotoFolder = "profilePhoto/"
)

// Accepted image types and the key extension each is stored under.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageExtension returns the object key extension for a sniffed media type.
// ok is false for types that are not accepted as photos.
func ImageExtension(mediaType string) (ext string, ok bool) {
	ext, ok = imageExtensions[mediaType]
	return ext, ok
}

// Uploader stores a payload under a key and hands out URLs the client can
// fetch it from. URLs may be time-limited; the key is the durable reference.
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey returns folder/<uuid><ext>.
func NewObjectKey(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

// S3Uploader implements Uploader on top of the AWS SDK. It works against AWS
// and against MinIO through a custom endpoint with path-style addressing.
type S3Uploader struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	publicBaseURL string
	signedURLTTL  time.Duration
}

func NewS3Uploader(ctx context.Context, cfg config.StorageConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Uploader{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
		signedURLTTL:  cfg.SignedURLTTL,
	}, nil
}

// Put uploads body and returns its URL as reported by URL.
func (u *S3Uploader) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return u.URL(ctx, key)
}

// URL returns the public URL of key, or a presigned GET URL valid for the
// configured TTL from the moment of the call when no public base URL is set.
func (u *S3Uploader) URL(ctx context.Context, key string) (string, error) {
	if u.publicBaseURL != "" {
		return publicURL(u.publicBaseURL, key), nil
	}

	req, err := u.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.signedURLTTL))
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", key, err)
	}

	return req.URL, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (u *S3Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func publicURL(base, key string) string {
	return base + "/" + key
}
