package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store implements ObjectStore on an S3 bucket
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store creates a new S3-backed object store. publicBaseURL is the
// address prefix returned for stored objects (e.g. a CloudFront domain or
// the bucket's website endpoint); if empty, the standard virtual-hosted S3
// URL for the bucket and region is used.
func NewS3Store(ctx context.Context, region, bucket, publicBaseURL string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("avatar bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Store{
		client:        s3.NewFromConfig(cfg),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload stores data under key and returns its public address
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return s.Address(key), nil
}

// Move renames a stored object via copy-then-delete, S3 having no native
// rename, and returns the new public address.
func (s *S3Store) Move(ctx context.Context, fromKey, toKey string) (string, error) {
	copySource := url.PathEscape(s.bucket + "/" + fromKey)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(copySource),
		Key:        aws.String(toKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy object %s to %s: %w", fromKey, toKey, err)
	}

	if err := s.Delete(ctx, fromKey); err != nil {
		// The copy succeeded, so the object resolves at both keys; the
		// leftover source is garbage, not an inconsistency.
		return s.Address(toKey), fmt.Errorf("failed to remove source after copy: %w", err)
	}

	return s.Address(toKey), nil
}

// Delete removes a stored object. S3 treats deleting an absent key as
// success, which matches the idempotency contract.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Address returns the public address for a stored key
func (s *S3Store) Address(key string) string {
	return s.publicBaseURL + "/" + key
}
