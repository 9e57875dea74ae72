package objectstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultPresignTTL = 15 * time.Minute

type S3Config struct {
	UploadBucket string
	ReplayBucket string
	PresignTTL   time.Duration
}

// S3Store issues presigned URLs for bot uploads, downloads and replays.
type S3Store struct {
	presign      *s3.PresignClient
	uploadBucket string
	replayBucket string
	ttl          time.Duration
}

func NewS3Store(client *s3.Client, cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.UploadBucket) == "" {
		return nil, fmt.Errorf("S3_UPLOAD_BUCKET is required")
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	replayBucket := strings.TrimSpace(cfg.ReplayBucket)
	if replayBucket == "" {
		replayBucket = cfg.UploadBucket
	}

	return &S3Store{
		presign:      s3.NewPresignClient(client),
		uploadBucket: strings.TrimSpace(cfg.UploadBucket),
		replayBucket: replayBucket,
		ttl:          ttl,
	}, nil
}

func (s *S3Store) Bucket() string {
	return s.uploadBucket
}

func (s *S3Store) PresignUpload(ctx context.Context, objectKey, contentType string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.uploadBucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign put object key=%s: %w", objectKey, err)
	}
	return req.URL, nil
}

func (s *S3Store) SubmissionURL(ctx context.Context, objectKey string) (string, error) {
	return s.presignGet(ctx, s.uploadBucket, objectKey)
}

func (s *S3Store) ReplayURL(ctx context.Context, replayKey string) (string, error) {
	return s.presignGet(ctx, s.replayBucket, replayKey)
}

func (s *S3Store) presignGet(ctx context.Context, bucket, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object bucket=%s key=%s: %w", bucket, key, err)
	}
	return req.URL, nil
}
